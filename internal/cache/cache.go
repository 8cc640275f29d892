package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Entry is a cached backend response.
type Entry struct {
	Status int
	Header http.Header
	Body   []byte
}

// Store is the response cache contract: lookup and write-back by request
// fingerprint. Writes are best effort.
type Store interface {
	Get(fingerprint string) (*Entry, bool)
	Put(fingerprint string, entry *Entry, ttl time.Duration)
}

// Fingerprint derives the deterministic cache key for a request from its
// method, path and query string.
func Fingerprint(method, path, query string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("proxy:%s:%s:%s", method, path, query)))
	return hex.EncodeToString(sum[:])
}

// Cacheable reports whether a response may be stored: 2xx status, no
// no-cache/no-store/private directive and no wildcard Vary.
func Cacheable(status int, header http.Header) bool {
	if status < 200 || status >= 300 {
		return false
	}

	cacheControl := header.Get("Cache-Control")
	if strings.Contains(cacheControl, "no-cache") ||
		strings.Contains(cacheControl, "no-store") ||
		strings.Contains(cacheControl, "private") {
		return false
	}

	if strings.Contains(strings.ToLower(header.Get("Vary")), "*") {
		return false
	}

	return true
}
