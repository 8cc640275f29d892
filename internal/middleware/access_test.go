package middleware_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/edge-proxy/config"
	"github.com/angeloszaimis/edge-proxy/internal/middleware"
)

var _ = Describe("AccessControl", func() {
	var log *slog.Logger

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(os.Stdout, nil))
	})

	newRequest := func(headers map[string]string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		for k, v := range headers {
			r.Header.Set(k, v)
		}
		return r
	}

	It("allows everything when no rules are configured", func() {
		ac := middleware.NewAccessControl(nil, log)
		Expect(ac.Allow(newRequest(nil))).To(BeTrue())
	})

	DescribeTable("rule evaluation",
		func(rules []config.AccessRule, headers map[string]string, allowed bool) {
			ac := middleware.NewAccessControl(rules, log)
			Expect(ac.Allow(newRequest(headers))).To(Equal(allowed))
		},
		Entry("deny_ip blocks a matching client",
			[]config.AccessRule{{Type: "deny_ip", Pattern: "10.0.0.9"}},
			map[string]string{"CF-Connecting-IP": "10.0.0.9"}, false),
		Entry("deny_ip passes a different client",
			[]config.AccessRule{{Type: "deny_ip", Pattern: "10.0.0.9"}},
			map[string]string{"CF-Connecting-IP": "10.0.0.7"}, true),
		Entry("allow_country blocks other countries",
			[]config.AccessRule{{Type: "allow_country", Pattern: "CH"}},
			map[string]string{"CF-IPCountry": "DE"}, false),
		Entry("allow_country passes the allowed country",
			[]config.AccessRule{{Type: "allow_country", Pattern: "CH"}},
			map[string]string{"CF-IPCountry": "CH"}, true),
		Entry("deny_country blocks a matching country",
			[]config.AccessRule{{Type: "deny_country", Pattern: "XX"}},
			map[string]string{"CF-IPCountry": "XX"}, false),
		Entry("deny_country passes other countries",
			[]config.AccessRule{{Type: "deny_country", Pattern: "XX"}},
			map[string]string{"CF-IPCountry": "CH"}, true),
		Entry("deny_user_agent blocks a matching agent",
			[]config.AccessRule{{Type: "deny_user_agent", Pattern: "(?i)badbot"}},
			map[string]string{"User-Agent": "Mozilla BadBot/2.0"}, false),
		Entry("deny_user_agent passes other agents",
			[]config.AccessRule{{Type: "deny_user_agent", Pattern: "(?i)badbot"}},
			map[string]string{"User-Agent": "Mozilla/5.0"}, true),
		Entry("unknown rule types are ignored",
			[]config.AccessRule{{Type: "deny_planet", Pattern: "Mars"}},
			nil, true),
	)

	It("drops user-agent rules with invalid patterns", func() {
		ac := middleware.NewAccessControl([]config.AccessRule{
			{Type: "deny_user_agent", Pattern: "(["},
		}, log)
		Expect(ac.Allow(newRequest(map[string]string{"User-Agent": "anything"}))).To(BeTrue())
	})
})

var _ = Describe("ClientIP", func() {
	It("prefers the platform header", func() {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("CF-Connecting-IP", "203.0.113.7")
		r.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
		Expect(middleware.ClientIP(r)).To(Equal("203.0.113.7"))
	})

	It("takes the first X-Forwarded-For entry", func() {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Forwarded-For", " 198.51.100.1 , 10.0.0.1")
		Expect(middleware.ClientIP(r)).To(Equal("198.51.100.1"))
	})

	It("falls back to X-Real-IP", func() {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("X-Real-IP", "198.51.100.9")
		Expect(middleware.ClientIP(r)).To(Equal("198.51.100.9"))
	})

	It("falls back to the connection address", func() {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = "192.0.2.4:51234"
		Expect(middleware.ClientIP(r)).To(Equal("192.0.2.4"))
	})
})

var _ = Describe("Response headers", func() {
	It("sets the security header set and strips server identification", func() {
		h := http.Header{"Server": {"nginx"}, "X-Powered-By": {"PHP"}}
		middleware.SetSecurityHeaders(h)

		Expect(h.Get("X-Content-Type-Options")).To(Equal("nosniff"))
		Expect(h.Get("X-Frame-Options")).To(Equal("DENY"))
		Expect(h.Get("X-XSS-Protection")).To(Equal("1; mode=block"))
		Expect(h.Get("Referrer-Policy")).To(Equal("strict-origin-when-cross-origin"))
		Expect(h.Get("X-Proxied-By")).NotTo(BeEmpty())
		Expect(h.Get("Server")).To(BeEmpty())
		Expect(h.Get("X-Powered-By")).To(BeEmpty())
	})

	It("sets the full CORS header set", func() {
		h := http.Header{}
		middleware.SetCORSHeaders(h)

		Expect(h.Get("Access-Control-Allow-Origin")).To(Equal("*"))
		Expect(h.Get("Access-Control-Allow-Methods")).To(ContainSubstring("OPTIONS"))
		Expect(h.Get("Access-Control-Allow-Headers")).To(ContainSubstring("Authorization"))
		Expect(h.Get("Access-Control-Max-Age")).To(Equal("86400"))
		Expect(h.Get("Access-Control-Allow-Credentials")).To(Equal("true"))
	})
})
