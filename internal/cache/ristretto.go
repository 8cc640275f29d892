package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// RistrettoStore is the in-process Store implementation backed by a
// ristretto cache with per-entry TTL.
type RistrettoStore struct {
	cache *ristretto.Cache
}

// NewRistrettoStore creates a store bounded to roughly maxEntries cached
// responses.
func NewRistrettoStore(maxEntries int64) (*RistrettoStore, error) {
	if maxEntries < 1 {
		maxEntries = 1
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
		Cost: func(value interface{}) int64 {
			return 1
		},
	})
	if err != nil {
		return nil, fmt.Errorf("init response cache: %w", err)
	}

	return &RistrettoStore{cache: cache}, nil
}

func (s *RistrettoStore) Get(fingerprint string) (*Entry, bool) {
	value, found := s.cache.Get(fingerprint)
	if !found {
		return nil, false
	}

	entry, ok := value.(*Entry)
	if !ok {
		return nil, false
	}

	return entry, true
}

func (s *RistrettoStore) Put(fingerprint string, entry *Entry, ttl time.Duration) {
	s.cache.SetWithTTL(fingerprint, entry, 1, ttl)
}

// Wait blocks until buffered writes have been applied. Intended for tests.
func (s *RistrettoStore) Wait() {
	s.cache.Wait()
}
