package rewrite

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/angeloszaimis/edge-proxy/config"
)

// Rewriter resolves the proxy target for a request: either a URL embedded in
// the request path, or a selected backend combined with ordered path-rewrite
// rules.
type Rewriter struct {
	rules []rule
}

type rule struct {
	re          *regexp.Regexp
	replacement string
}

// NewRewriter compiles the configured rewrite rules, preserving their order.
// Rules with invalid patterns are dropped.
func NewRewriter(rules []config.RewriteRule, logger *slog.Logger) *Rewriter {
	compiled := make([]rule, 0, len(rules))

	for _, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			logger.Warn("Dropping invalid rewrite rule",
				slog.String("pattern", r.Pattern),
				slog.String("error", err.Error()))
			continue
		}
		compiled = append(compiled, rule{re: re, replacement: r.Replacement})
	}

	return &Rewriter{rules: compiled}
}

// EmbeddedTarget checks whether the request path carries an absolute URL
// (e.g. /https://example.com/foo) and returns it with the original query
// string merged in. The second return value is false when the path carries
// no parseable embedded URL; callers then fall back to backend routing.
func EmbeddedTarget(path, rawQuery string) (string, bool) {
	remainder := strings.TrimPrefix(path, "/")
	if !strings.HasPrefix(remainder, "http://") && !strings.HasPrefix(remainder, "https://") {
		return "", false
	}

	embedded, err := url.Parse(remainder)
	if err != nil || embedded.Host == "" {
		return "", false
	}

	target := embedded.String()
	if rawQuery != "" {
		separator := "?"
		if embedded.RawQuery != "" {
			separator = "&"
		}
		target += separator + rawQuery
	}

	return target, true
}

// RewritePath applies the rewrite rules in configured order. The first rule
// whose pattern matches wins; the match is substituted exactly once using
// the rule's replacement template. A path matching no rule passes through
// unchanged.
func (rw *Rewriter) RewritePath(path string) string {
	for _, r := range rw.rules {
		m := r.re.FindStringSubmatchIndex(path)
		if m == nil {
			continue
		}

		var dst []byte
		dst = append(dst, path[:m[0]]...)
		dst = r.re.ExpandString(dst, r.replacement, path, m)
		dst = append(dst, path[m[1]:]...)
		return string(dst)
	}

	return path
}

// BuildTarget joins a backend base URL with the rewritten path and the
// original query string.
func BuildTarget(base, path, rawQuery string) string {
	target := base + path
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	return target
}
