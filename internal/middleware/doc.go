// Package middleware holds the request and response header policies around
// the proxy pipeline: access-control rule evaluation (IP, country and
// user-agent based), fixed security headers and the CORS header set.
package middleware
