package proxy

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/angeloszaimis/edge-proxy/config"
	"github.com/angeloszaimis/edge-proxy/internal/backend"
	"github.com/angeloszaimis/edge-proxy/internal/cache"
	"github.com/angeloszaimis/edge-proxy/internal/health"
	"github.com/angeloszaimis/edge-proxy/internal/loadbalancer"
	"github.com/angeloszaimis/edge-proxy/internal/metrics"
	"github.com/angeloszaimis/edge-proxy/internal/middleware"
	"github.com/angeloszaimis/edge-proxy/internal/rewrite"
)

// Proxy is the per-request pipeline: inbound access control, target
// resolution, cache lookup, backend dispatch, redirect normalization,
// outbound header policy and metrics recording.
type Proxy struct {
	cfg       *config.Config
	logger    *slog.Logger
	backends  []*backend.Backend
	tracker   *health.Tracker
	selector  *loadbalancer.Selector
	rewriter  *rewrite.Rewriter
	access    *middleware.AccessControl
	store     cache.Store
	collector *metrics.Collector
	client    *http.Client
}

// New wires the pipeline. store may be nil when caching is disabled.
func New(
	cfg *config.Config,
	logger *slog.Logger,
	backends []*backend.Backend,
	tracker *health.Tracker,
	selector *loadbalancer.Selector,
	rewriter *rewrite.Rewriter,
	access *middleware.AccessControl,
	store cache.Store,
	collector *metrics.Collector,
) *Proxy {
	return &Proxy{
		cfg:       cfg,
		logger:    logger,
		backends:  backends,
		tracker:   tracker,
		selector:  selector,
		rewriter:  rewriter,
		access:    access,
		store:     store,
		collector: collector,
		client: &http.Client{
			// Redirects surface to the pipeline so Location headers can be
			// normalized in embedded-target mode.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := newRequestID()
	start := time.Now()
	log := p.logger.With(slog.String("request_id", requestID))

	p.collector.Emit(metrics.Event{Type: metrics.EventRequestReceived})

	if r.Method == http.MethodOptions {
		middleware.SetCORSHeaders(w.Header())
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if !p.access.Allow(r) {
		p.collector.Emit(metrics.Event{Type: metrics.EventErrorRecorded, ErrorType: errTypeAccessDenied})
		http.Error(w, ErrAccessDenied.Error(), http.StatusForbidden)
		return
	}

	target, embedded := rewrite.EmbeddedTarget(r.URL.Path, r.URL.RawQuery)

	var chosen *backend.Backend
	var fingerprint string

	if !embedded {
		fingerprint = cache.Fingerprint(r.Method, r.URL.Path, r.URL.RawQuery)

		if p.cacheEnabled() {
			if entry, found := p.store.Get(fingerprint); found {
				p.collector.Emit(metrics.Event{Type: metrics.EventCacheHit})
				log.Debug("Cache hit", slog.String("path", r.URL.Path))
				p.writeCached(w, entry, start)
				return
			}
			p.collector.Emit(metrics.Event{Type: metrics.EventCacheMiss})
		}

		healthy := p.tracker.HealthyBackends(p.backends)
		chosen = p.selector.Pick(healthy)
		if chosen == nil {
			p.collector.Emit(metrics.Event{Type: metrics.EventErrorRecorded, ErrorType: errTypeNoHealthyBackend})
			log.Warn("No healthy backend available")
			http.Error(w, ErrNoHealthyBackend.Error(), http.StatusServiceUnavailable)
			return
		}

		target = rewrite.BuildTarget(chosen.Base(), p.rewriter.RewritePath(r.URL.Path), r.URL.RawQuery)
	}

	log.Info("Proxying request",
		slog.String("method", r.Method),
		slog.String("target", target),
		slog.Bool("embedded", embedded))

	upstream, err := p.buildUpstreamRequest(r, target)
	if err != nil {
		p.collector.Emit(metrics.Event{Type: metrics.EventErrorRecorded, ErrorType: errTypeBackendError})
		log.Error("Failed to build upstream request", slog.Any("err", err))
		http.Error(w, ErrBackendUnavailable.Error(), http.StatusBadGateway)
		return
	}

	res, err := p.client.Do(upstream)
	if err != nil {
		p.collector.Emit(metrics.Event{Type: metrics.EventErrorRecorded, ErrorType: errTypeBackendError})
		// Health state is only touched for load-balanced dispatches.
		if !embedded && chosen != nil {
			p.tracker.MarkUnhealthy(chosen.Base())
		}
		log.Error("Backend dispatch failed",
			slog.String("target", target),
			slog.Any("err", err))
		http.Error(w, ErrBackendUnavailable.Error(), http.StatusBadGateway)
		return
	}
	defer res.Body.Close()

	if embedded && res.StatusCode >= 300 && res.StatusCode < 400 {
		if location := res.Header.Get("Location"); location != "" {
			res.Header.Set("Location", rewrite.NormalizeLocation(location, target))
		}
	}

	p.writeResponse(w, res, embedded, fingerprint, log)

	p.collector.Emit(metrics.Event{
		Type:       metrics.EventResponseCompleted,
		StatusCode: res.StatusCode,
		Duration:   time.Since(start),
	})
}

func (p *Proxy) cacheEnabled() bool {
	return p.cfg.Cache.Enabled && p.store != nil
}

// buildUpstreamRequest forwards method and body, injects the forwarding
// headers, drops Host and Origin and overlays the configured custom headers.
func (p *Proxy) buildUpstreamRequest(r *http.Request, target string) (*http.Request, error) {
	var body io.Reader
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		body = r.Body
	}

	upstream, err := http.NewRequestWithContext(r.Context(), r.Method, target, body)
	if err != nil {
		return nil, err
	}

	upstream.Header = r.Header.Clone()

	if clientIP := middleware.ClientIP(r); clientIP != "" {
		upstream.Header.Set("X-Forwarded-For", clientIP)
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	upstream.Header.Set("X-Forwarded-Proto", scheme)

	if r.Host != "" {
		upstream.Header.Set("X-Forwarded-Host", r.Host)
	}

	upstream.Header.Del("Host")
	upstream.Header.Del("Origin")

	for key, value := range p.cfg.CustomHeaders {
		upstream.Header.Set(key, value)
	}

	if body != nil {
		upstream.ContentLength = r.ContentLength
	}

	return upstream, nil
}

// writeResponse applies the outbound header policy, relays the backend
// response and persists it into the cache when eligible.
func (p *Proxy) writeResponse(w http.ResponseWriter, res *http.Response, embedded bool, fingerprint string, log *slog.Logger) {
	for key, values := range res.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	middleware.SetSecurityHeaders(w.Header())
	middleware.SetCORSHeaders(w.Header())

	cacheable := !embedded && p.cacheEnabled() && cache.Cacheable(res.StatusCode, res.Header)
	if !cacheable {
		w.WriteHeader(res.StatusCode)
		if _, err := io.Copy(w, res.Body); err != nil {
			log.Debug("Response relay interrupted", slog.Any("err", err))
		}
		return
	}

	bodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		log.Debug("Failed to read backend response", slog.Any("err", err))
		w.WriteHeader(res.StatusCode)
		return
	}

	// Best effort: a failed cache write never fails the request.
	p.store.Put(fingerprint, &cache.Entry{
		Status: res.StatusCode,
		Header: res.Header.Clone(),
		Body:   bodyBytes,
	}, p.cfg.CacheTTL())

	w.WriteHeader(res.StatusCode)
	if _, err := w.Write(bodyBytes); err != nil {
		log.Debug("Response relay interrupted", slog.Any("err", err))
	}
}

// writeCached serves a cache hit, still applying the outbound header policy
// and recording completion.
func (p *Proxy) writeCached(w http.ResponseWriter, entry *cache.Entry, start time.Time) {
	for key, values := range entry.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	middleware.SetSecurityHeaders(w.Header())
	middleware.SetCORSHeaders(w.Header())

	w.WriteHeader(entry.Status)
	_, _ = w.Write(entry.Body)

	p.collector.Emit(metrics.Event{
		Type:       metrics.EventResponseCompleted,
		StatusCode: entry.Status,
		Duration:   time.Since(start),
	})
}

// newRequestID returns a random correlation id.
func newRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "unknown"
	}
	return hex.EncodeToString(b)
}
