// Package backend defines the upstream origin server type. A backend is
// identified by its configured base URL string; weight, health check path
// and timeout are carried from configuration for forward compatibility.
package backend
