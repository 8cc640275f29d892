// Package loadbalancer selects a backend per request from the healthy set.
// Round robin uses an atomically incremented counter shared across all
// strategies; random uses a coarse time-derived index. Least-connections and
// weighted round robin are accepted strategy names that currently degrade to
// round robin.
package loadbalancer
