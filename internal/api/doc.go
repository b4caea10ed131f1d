// Package api hosts the HTTP server, middleware, and read-only REST handlers
// over the latest dataset. Notable routes:
//   - GET /healthz / readyz for Kubernetes probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /v1/dataset for the yearly records.
//   - GET /v1/frames/{policy} and /v1/frames/{policy}/{frame} for the polar
//     animation geometry and per-frame state.
//   - GET /v1/analysis for the statistical summary.
package api
