package loadbalancer

import (
	"sync/atomic"
	"time"

	"github.com/angeloszaimis/edge-proxy/internal/backend"
)

// Selector picks one backend per request from the currently healthy set.
// It owns a single counter shared by all strategies for the lifetime of the
// instance; the counter is taken modulo the healthy count at selection time
// and is not rebased when the healthy set changes.
type Selector struct {
	strategy Strategy
	counter  atomic.Uint64
}

// NewSelector creates a selector using the given strategy.
func NewSelector(strategy Strategy) *Selector {
	return &Selector{strategy: strategy}
}

// Pick returns a backend from the healthy list, or nil when the list is
// empty. Callers treat nil as a no-healthy-backend failure.
func (s *Selector) Pick(healthy []*backend.Backend) *backend.Backend {
	if len(healthy) == 0 {
		return nil
	}

	switch s.strategy {
	case Random:
		return s.pickRandom(healthy)
	case LeastConnections, WeightedRoundRobin:
		// Documented fallback: neither a per-backend connection table nor a
		// weighted selection structure exists yet. Both strategies degrade
		// to round robin.
		return s.pickRoundRobin(healthy)
	default:
		return s.pickRoundRobin(healthy)
	}
}

func (s *Selector) pickRoundRobin(healthy []*backend.Backend) *backend.Backend {
	n := s.counter.Add(1)
	return healthy[(n-1)%uint64(len(healthy))]
}

// pickRandom derives an index from a coarse time value. Adequate for load
// spreading only, not for anything security-sensitive.
func (s *Selector) pickRandom(healthy []*backend.Backend) *backend.Backend {
	now := uint64(time.Now().UnixNano())
	return healthy[now%uint64(len(healthy))]
}

// Reset zeroes the shared counter. Called only when the backend list is
// replaced.
func (s *Selector) Reset() {
	s.counter.Store(0)
}

// Strategy returns the configured strategy.
func (s *Selector) Strategy() Strategy {
	return s.strategy
}
