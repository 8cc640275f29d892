package main

import (
	"net/http"

	"github.com/angeloszaimis/edge-proxy/internal/proxy"
)

// setupRouter dispatches the management endpoints and hands everything else
// to the pipeline. A plain handler is used instead of http.ServeMux because
// the mux canonicalizes paths, which would mangle URLs embedded in the
// request path.
func setupRouter(p *proxy.Proxy) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/_proxy/health":
			p.HealthHandler()(w, r)
		case "/_proxy/stats":
			p.StatsHandler()(w, r)
		default:
			p.ServeHTTP(w, r)
		}
	})
}
