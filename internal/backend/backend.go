package backend

import (
	"fmt"
	"net/url"
	"time"

	"github.com/angeloszaimis/edge-proxy/config"
)

// Backend represents an upstream origin server, identified by its base URL.
// The base string is the health-tracking identity and must match the
// configured value exactly.
type Backend struct {
	base            string
	url             *url.URL
	weight          int
	healthCheckPath string
	timeout         time.Duration
}

// New creates a Backend from a base URL string.
func New(rawURL string, weight int) (*Backend, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend URL %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend URL %q: scheme must be http or https", rawURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("backend URL %q: missing host", rawURL)
	}

	return &Backend{
		base:   rawURL,
		url:    u,
		weight: weight,
	}, nil
}

// FromConfig creates a Backend carrying the full per-backend configuration.
// Weight, health check path and timeout are configuration-level values; the
// active selection and health algorithms do not consult them.
func FromConfig(cfg config.BackendConfig) (*Backend, error) {
	b, err := New(cfg.URL, cfg.Weight)
	if err != nil {
		return nil, err
	}

	b.healthCheckPath = cfg.HealthCheckPath
	b.timeout = time.Duration(cfg.Timeout) * time.Second
	return b, nil
}

// Base returns the configured base URL string.
func (b *Backend) Base() string {
	return b.base
}

// URL returns the parsed base URL.
func (b *Backend) URL() *url.URL {
	return b.url
}

// Weight returns the configured weight.
func (b *Backend) Weight() int {
	return b.weight
}

// HealthCheckPath returns the configured health check path, if any.
func (b *Backend) HealthCheckPath() string {
	return b.healthCheckPath
}

// Timeout returns the configured per-backend timeout.
func (b *Backend) Timeout() time.Duration {
	return b.timeout
}
