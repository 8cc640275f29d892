package rewrite_test

import (
	"log/slog"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/edge-proxy/config"
	"github.com/angeloszaimis/edge-proxy/internal/rewrite"
)

var _ = Describe("EmbeddedTarget", func() {
	It("extracts an https URL from the path", func() {
		target, ok := rewrite.EmbeddedTarget("/https://example.com/foo", "")
		Expect(ok).To(BeTrue())
		Expect(target).To(Equal("https://example.com/foo"))
	})

	It("extracts an http URL from the path", func() {
		target, ok := rewrite.EmbeddedTarget("/http://example.com/", "")
		Expect(ok).To(BeTrue())
		Expect(target).To(Equal("http://example.com/"))
	})

	It("appends the original query with ? when the embedded URL has none", func() {
		target, ok := rewrite.EmbeddedTarget("/https://example.com/foo", "y=2")
		Expect(ok).To(BeTrue())
		Expect(target).To(Equal("https://example.com/foo?y=2"))
	})

	It("appends the original query with & when the embedded URL has one", func() {
		target, ok := rewrite.EmbeddedTarget("/https://example.com/foo?x=1", "y=2")
		Expect(ok).To(BeTrue())
		Expect(target).To(Equal("https://example.com/foo?x=1&y=2"))
	})

	It("ignores ordinary paths", func() {
		_, ok := rewrite.EmbeddedTarget("/api/users", "")
		Expect(ok).To(BeFalse())
	})

	It("ignores unsupported schemes", func() {
		_, ok := rewrite.EmbeddedTarget("/ftp://example.com/file", "")
		Expect(ok).To(BeFalse())
	})

	It("falls through silently on an unparseable embedded URL", func() {
		_, ok := rewrite.EmbeddedTarget("/https://", "")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Rewriter", func() {
	var log *slog.Logger

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(os.Stdout, nil))
	})

	Describe("RewritePath", func() {
		It("applies the first matching rule", func() {
			rw := rewrite.NewRewriter([]config.RewriteRule{
				{Pattern: "^/api/(.*)", Replacement: "/v2/$1"},
			}, log)

			Expect(rw.RewritePath("/api/users")).To(Equal("/v2/users"))
		})

		It("leaves non-matching paths unchanged", func() {
			rw := rewrite.NewRewriter([]config.RewriteRule{
				{Pattern: "^/api/(.*)", Replacement: "/v2/$1"},
			}, log)

			Expect(rw.RewritePath("/other")).To(Equal("/other"))
		})

		It("stops at the first matching rule", func() {
			rw := rewrite.NewRewriter([]config.RewriteRule{
				{Pattern: "^/api/(.*)", Replacement: "/v2/$1"},
				{Pattern: "^/v2/(.*)", Replacement: "/v3/$1"},
			}, log)

			Expect(rw.RewritePath("/api/users")).To(Equal("/v2/users"))
		})

		It("substitutes the match only once", func() {
			rw := rewrite.NewRewriter([]config.RewriteRule{
				{Pattern: "ab", Replacement: "x"},
			}, log)

			Expect(rw.RewritePath("/ab/ab")).To(Equal("/x/ab"))
		})

		It("drops invalid patterns and keeps evaluating the rest", func() {
			rw := rewrite.NewRewriter([]config.RewriteRule{
				{Pattern: "([", Replacement: "/broken"},
				{Pattern: "^/old/(.*)", Replacement: "/new/$1"},
			}, log)

			Expect(rw.RewritePath("/old/thing")).To(Equal("/new/thing"))
		})

		It("passes everything through when no rules are configured", func() {
			rw := rewrite.NewRewriter(nil, log)
			Expect(rw.RewritePath("/api/users")).To(Equal("/api/users"))
		})
	})
})

var _ = Describe("BuildTarget", func() {
	It("joins base and path", func() {
		Expect(rewrite.BuildTarget("http://b:8081", "/v2/users", "")).
			To(Equal("http://b:8081/v2/users"))
	})

	It("appends the query string when present", func() {
		Expect(rewrite.BuildTarget("http://b:8081", "/v2/users", "page=2")).
			To(Equal("http://b:8081/v2/users?page=2"))
	})
})
