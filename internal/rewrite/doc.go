// Package rewrite resolves the upstream target for a request. It recognizes
// absolute URLs embedded directly in the request path, applies ordered
// first-match-wins path-rewrite rules for backend routing, and normalizes
// redirect Location headers when proxying embedded targets.
package rewrite
