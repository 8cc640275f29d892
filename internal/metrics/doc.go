// Package metrics provides request-level metrics collection for the proxy.
//
// Events flow through a buffered channel into a dedicated goroutine so the
// request path never blocks on bookkeeping. Tracked counters: total
// requests, typed errors, a bounded response-time window, and cache
// hits/misses. Snapshot renders them into the stats endpoint's wire shape
// with percentage and millisecond formatting.
package metrics
