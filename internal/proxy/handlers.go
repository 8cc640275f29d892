package proxy

import (
	"encoding/json"
	"net/http"
	"time"
)

type healthSummary struct {
	Status          string   `json:"status"`
	HealthyBackends int      `json:"healthy_backends"`
	TotalBackends   int      `json:"total_backends"`
	Backends        []string `json:"backends"`
	Timestamp       string   `json:"timestamp"`
}

// HealthHandler reports the healthy-backend summary. The status is
// "unhealthy" only when no backend is currently eligible.
func (p *Proxy) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		healthy := p.tracker.HealthyBackends(p.backends)

		all := make([]string, 0, len(p.backends))
		for _, b := range p.backends {
			all = append(all, b.Base())
		}

		status := "healthy"
		if len(healthy) == 0 {
			status = "unhealthy"
		}

		summary := healthSummary{
			Status:          status,
			HealthyBackends: len(healthy),
			TotalBackends:   len(p.backends),
			Backends:        all,
			Timestamp:       time.Now().UTC().Format(time.RFC3339),
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(summary); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

// StatsHandler serves the metrics snapshot.
func (p *Proxy) StatsHandler() http.HandlerFunc {
	return p.collector.Handler()
}
