package metrics

import (
	"fmt"
	"sync"
	"time"
)

// responseTimeWindow bounds the number of samples kept for averaging.
const responseTimeWindow = 1000

type Metrics struct {
	mutex         sync.RWMutex
	totalRequests int64
	errors        map[string]int64
	responseTimes []time.Duration
	cacheHits     int64
	cacheMisses   int64
}

// Stats is the wire shape served by the stats endpoint.
type Stats struct {
	TotalRequests       int64  `json:"total_requests"`
	TotalErrors         int64  `json:"total_errors"`
	ErrorRate           string `json:"error_rate"`
	AverageResponseTime string `json:"average_response_time"`
	CacheHits           int64  `json:"cache_hits"`
	CacheMisses         int64  `json:"cache_misses"`
	CacheHitRate        string `json:"cache_hit_rate"`
	Timestamp           string `json:"timestamp"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		errors: make(map[string]int64),
	}
}

func (m *Metrics) RecordRequest() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.totalRequests++
}

func (m *Metrics) RecordError(errorType string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.errors[errorType]++
}

func (m *Metrics) RecordResponseTime(duration time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.responseTimes = append(m.responseTimes, duration)
	if len(m.responseTimes) > responseTimeWindow {
		m.responseTimes = m.responseTimes[1:]
	}
}

func (m *Metrics) RecordCacheHit() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.cacheHits++
}

func (m *Metrics) RecordCacheMiss() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.cacheMisses++
}

// Reset clears all counters. Exposed for tests.
func (m *Metrics) Reset() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.totalRequests = 0
	m.errors = make(map[string]int64)
	m.responseTimes = nil
	m.cacheHits = 0
	m.cacheMisses = 0
}

// Snapshot renders the current counters into the stats wire shape.
func (m *Metrics) Snapshot() Stats {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var totalErrors int64
	for _, count := range m.errors {
		totalErrors += count
	}

	errorRate := 0.0
	if m.totalRequests > 0 {
		errorRate = float64(totalErrors) / float64(m.totalRequests) * 100
	}

	avgMillis := 0.0
	if len(m.responseTimes) > 0 {
		var sum time.Duration
		for _, d := range m.responseTimes {
			sum += d
		}
		avgMillis = float64(sum.Nanoseconds()) / float64(len(m.responseTimes)) / 1e6
	}

	hitRate := 0.0
	if lookups := m.cacheHits + m.cacheMisses; lookups > 0 {
		hitRate = float64(m.cacheHits) / float64(lookups) * 100
	}

	return Stats{
		TotalRequests:       m.totalRequests,
		TotalErrors:         totalErrors,
		ErrorRate:           fmt.Sprintf("%.2f%%", errorRate),
		AverageResponseTime: fmt.Sprintf("%.2fms", avgMillis),
		CacheHits:           m.cacheHits,
		CacheMisses:         m.cacheMisses,
		CacheHitRate:        fmt.Sprintf("%.2f%%", hitRate),
		Timestamp:           time.Now().UTC().Format(time.RFC3339),
	}
}
