package health

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/angeloszaimis/edge-proxy/internal/backend"
)

// Tracker records backend failures and derives health on demand. A backend
// is healthy when checking is disabled, when it has no failure record, or
// when the recovery window has elapsed since the last recorded failure.
// Health state is never cached or refreshed in the background.
type Tracker struct {
	mu       sync.Mutex
	failures map[string]time.Time

	enabled  bool
	recovery time.Duration
	client   *http.Client
	logger   *slog.Logger
}

// NewTracker creates a tracker with the given recovery window. When enabled
// is false every backend is always reported healthy.
func NewTracker(enabled bool, recovery time.Duration, logger *slog.Logger) *Tracker {
	return &Tracker{
		failures: make(map[string]time.Time),
		enabled:  enabled,
		recovery: recovery,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// IsHealthy reports whether the backend identified by base is currently
// eligible for selection.
func (t *Tracker) IsHealthy(base string) bool {
	if !t.enabled {
		return true
	}

	t.mu.Lock()
	failedAt, found := t.failures[base]
	t.mu.Unlock()

	if !found {
		return true
	}

	return !time.Now().Before(failedAt.Add(t.recovery))
}

// MarkUnhealthy records a failure for the backend, overwriting any earlier
// failure timestamp.
func (t *Tracker) MarkUnhealthy(base string) {
	t.mu.Lock()
	t.failures[base] = time.Now()
	t.mu.Unlock()

	t.logger.Warn("Backend marked unhealthy", slog.String("backend", base))
}

// MarkHealthy removes the backend's failure record, if present.
func (t *Tracker) MarkHealthy(base string) {
	t.mu.Lock()
	_, found := t.failures[base]
	delete(t.failures, base)
	t.mu.Unlock()

	if found {
		t.logger.Info("Backend marked healthy", slog.String("backend", base))
	}
}

// Check probes the backend's health endpoint with a GET request and updates
// the failure record from the outcome. Checks always probe /health; the
// per-backend configured health check path is not consulted. A non-2xx
// status and a transport failure are treated the same way.
func (t *Tracker) Check(ctx context.Context, b *backend.Backend) bool {
	if !t.enabled {
		return true
	}

	checkURL := b.Base() + "/health"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, checkURL, nil)
	if err != nil {
		t.MarkUnhealthy(b.Base())
		return false
	}

	res, err := t.client.Do(req)
	if err != nil {
		t.MarkUnhealthy(b.Base())
		return false
	}
	defer res.Body.Close()

	healthy := res.StatusCode >= 200 && res.StatusCode < 300
	if healthy {
		t.MarkHealthy(b.Base())
	} else {
		t.MarkUnhealthy(b.Base())
	}

	return healthy
}

// HealthyBackends filters the full backend list, preserving configured order.
func (t *Tracker) HealthyBackends(all []*backend.Backend) []*backend.Backend {
	healthy := make([]*backend.Backend, 0, len(all))
	for _, b := range all {
		if t.IsHealthy(b.Base()) {
			healthy = append(healthy, b)
		}
	}
	return healthy
}

// Status returns the current health verdict for every backend.
func (t *Tracker) Status(all []*backend.Backend) map[string]bool {
	status := make(map[string]bool, len(all))
	for _, b := range all {
		status[b.Base()] = t.IsHealthy(b.Base())
	}
	return status
}

// Watch probes the backend on the given interval until the context is
// cancelled. Only started when active health checking is enabled.
func (t *Tracker) Watch(ctx context.Context, b *backend.Backend, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Health watch stopped", slog.String("backend", b.Base()))
			return
		case <-ticker.C:
			t.Check(ctx, b)
		}
	}
}
