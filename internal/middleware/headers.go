package middleware

import "net/http"

const proxyIdentifier = "edge-proxy"

// SetSecurityHeaders adds the fixed security header set, identifies the
// proxy and strips server-identifying headers from the response.
func SetSecurityHeaders(h http.Header) {
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-XSS-Protection", "1; mode=block")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	h.Set("X-Proxied-By", proxyIdentifier)

	h.Del("Server")
	h.Del("X-Powered-By")
}

// SetCORSHeaders appends the full CORS header set. Applied unconditionally
// to every response, including OPTIONS preflights.
func SetCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD, PATCH")
	h.Set("Access-Control-Allow-Headers",
		"Content-Type, Authorization, X-Requested-With, Accept, Origin, User-Agent, "+
			"DNT, Cache-Control, X-Mx-ReqToken, Keep-Alive, If-Modified-Since")
	h.Set("Access-Control-Max-Age", "86400")
	h.Set("Access-Control-Allow-Credentials", "true")
}
