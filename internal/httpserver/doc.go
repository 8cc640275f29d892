// Package httpserver wraps the standard http.Server with listen-address
// validation and graceful shutdown.
package httpserver
