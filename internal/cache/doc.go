// Package cache stores backend responses keyed by a deterministic request
// fingerprint (SHA-256 over method, path and query). Cacheability follows
// the response status and Cache-Control/Vary headers; entries expire after
// the configured TTL.
package cache
