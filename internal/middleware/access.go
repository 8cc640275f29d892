package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"strings"

	"github.com/angeloszaimis/edge-proxy/config"
)

// Access rule types. Unknown types are ignored.
const (
	RuleDenyIP        = "deny_ip"
	RuleAllowCountry  = "allow_country"
	RuleDenyCountry   = "deny_country"
	RuleDenyUserAgent = "deny_user_agent"
)

// Geo and client-address headers supplied by the fronting platform.
const (
	headerClientIP = "CF-Connecting-IP"
	headerCountry  = "CF-IPCountry"
)

// AccessControl evaluates the configured access rules against a request
// before any backend contact.
type AccessControl struct {
	rules  []accessRule
	logger *slog.Logger
}

type accessRule struct {
	ruleType string
	pattern  string
	re       *regexp.Regexp // compiled for deny_user_agent rules
}

// NewAccessControl compiles the configured rules, preserving order.
// User-agent rules with invalid patterns are dropped.
func NewAccessControl(rules []config.AccessRule, logger *slog.Logger) *AccessControl {
	compiled := make([]accessRule, 0, len(rules))

	for _, r := range rules {
		rule := accessRule{ruleType: r.Type, pattern: r.Pattern}

		if r.Type == RuleDenyUserAgent {
			re, err := regexp.Compile(r.Pattern)
			if err != nil {
				logger.Warn("Dropping invalid user-agent rule",
					slog.String("pattern", r.Pattern),
					slog.String("error", err.Error()))
				continue
			}
			rule.re = re
		}

		compiled = append(compiled, rule)
	}

	return &AccessControl{rules: compiled, logger: logger}
}

// Allow reports whether the request passes every access rule.
func (a *AccessControl) Allow(r *http.Request) bool {
	for _, rule := range a.rules {
		switch rule.ruleType {
		case RuleDenyIP:
			ip := ClientIP(r)
			if ip != "" && ip == rule.pattern {
				a.logger.Warn("Access denied by IP rule", slog.String("ip", ip))
				return false
			}
		case RuleAllowCountry:
			country := r.Header.Get(headerCountry)
			if country != "" && country != rule.pattern {
				a.logger.Warn("Access denied by country allow rule",
					slog.String("country", country))
				return false
			}
		case RuleDenyCountry:
			country := r.Header.Get(headerCountry)
			if country != "" && country == rule.pattern {
				a.logger.Warn("Access denied by country deny rule",
					slog.String("country", country))
				return false
			}
		case RuleDenyUserAgent:
			ua := r.Header.Get("User-Agent")
			if ua != "" && rule.re.MatchString(ua) {
				a.logger.Warn("Access denied by user-agent rule",
					slog.String("user_agent", ua))
				return false
			}
		}
	}

	return true
}

// ClientIP extracts the client address, preferring the platform-supplied
// header over forwarding headers over the connection address.
func ClientIP(r *http.Request) string {
	if ip := r.Header.Get(headerClientIP); ip != "" {
		return ip
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
