package proxy

import "errors"

var (
	// ErrAccessDenied means an access rule matched before backend contact.
	ErrAccessDenied = errors.New("access denied")

	// ErrNoHealthyBackend means the healthy set was empty at selection time.
	ErrNoHealthyBackend = errors.New("no healthy backends available")

	// ErrBackendUnavailable means the dispatch to the upstream failed.
	ErrBackendUnavailable = errors.New("backend unavailable")
)

// Error types used for metrics bookkeeping.
const (
	errTypeAccessDenied     = "access_denied"
	errTypeNoHealthyBackend = "no_healthy_backend"
	errTypeBackendError     = "backend_error"
)
