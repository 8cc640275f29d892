// Package proxy implements the per-request pipeline. Each request flows
// through access control, target resolution (embedded URL or backend plus
// path rewriting), cache lookup, a single-attempt backend dispatch, redirect
// normalization for embedded targets, the outbound header policy and metrics
// recording. All terminal failures are single-attempt; there is no internal
// retry loop.
package proxy
