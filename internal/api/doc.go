// Package api hosts the HTTP server, middleware, and handlers for the HSN
// lookup service. Routes:
//   - ANY / and /lookup?hsn_code=... for prefix and exact lookups. These carry
//     CORS headers on every response and answer OPTIONS preflights with 204.
//     Unmatched paths are handled the same way.
//   - GET /healthz and /readyz for liveness and readiness probes.
//   - GET /metrics for Prometheus scraping, when enabled.
package api
