// Package config handles loading and parsing of configuration from YAML files
// and environment variables. It defines the proxy configuration structure
// including backend servers, load-balancing strategy, health checking, caching,
// path rewriting, custom headers and access-control rules.
//
// Individual malformed entries (an unknown strategy name, a non-positive TTL)
// fall back to documented defaults; only structurally broken configuration
// such as an unparseable listen address or an invalid backend URL is fatal.
package config
