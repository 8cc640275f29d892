// Origin is a simple test HTTP server used for exercising the edge proxy.
// It echoes request details, exposes a /health endpoint, and can emit
// redirects and cacheable responses.
//
// Usage:
//
//	go run origin.go -port 8081 -name origin-1
//
// Run several instances on different ports to observe backend selection.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"
)

func main() {
	port := flag.Int("port", 8081, "port to listen on")
	name := flag.String("name", "origin", "name reported in responses")
	flag.Parse()

	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// returns a root-relative redirect so Location normalization can be observed
	mux.HandleFunc("/redirect", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/landed", http.StatusFound)
	})

	mux.HandleFunc("/cacheable", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=300")
		w.Header().Set("Content-Type", "application/json")
		b, _ := json.Marshal(map[string]any{
			"origin":    *name,
			"generated": time.Now().UTC().Format(time.RFC3339Nano),
		})
		w.Write(b)
	})

	// echo endpoint, reports what the origin actually received
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("request: method=%s path=%s from=%s", r.Method, r.URL.Path, r.RemoteAddr)

		headers := map[string]string{}
		for _, h := range []string{"X-Forwarded-For", "X-Forwarded-Proto", "X-Forwarded-Host", "X-Request-ID"} {
			if v := r.Header.Get(h); v != "" {
				headers[h] = v
			}
		}

		resp := map[string]any{
			"origin":  *name,
			"method":  r.Method,
			"path":    r.URL.Path,
			"query":   r.URL.RawQuery,
			"headers": headers,
		}
		b, _ := json.Marshal(resp)
		w.Header().Set("Content-Type", "application/json")
		w.Write(b)
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("starting %s on %s", *name, addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
