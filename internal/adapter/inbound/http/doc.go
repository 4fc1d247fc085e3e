// Package http provides the thin inbound REST facade for the control plane.
//
// The facade is intentionally small: it adapts HTTP requests onto the
// guardrails runtime and the interceptor, and exposes operational endpoints.
// It does not implement business logic itself.
//
// # Endpoints
//
//	POST /v1/guardrails/check   - Run a checkpoint's input or output phase
//	POST /v1/intercept          - Submit a tool call for an intercept decision
//	GET  /health                - Liveness/readiness with component checks
//	GET  /metrics               - Prometheus exposition
//
// # Request Headers
//
//	Authorization: Bearer <api-key>   - API key for authentication
//	X-Request-ID: <id>                - Optional request correlation ID
//
// # Middleware Chain
//
// Requests pass through middleware in this order:
//
//  1. RequestIDMiddleware - Assigns/propagates a request ID and enriched logger
//  2. RealIPMiddleware - Extracts client IP from proxy headers
//  3. DNSRebindingProtection - Validates Origin header
//  4. APIKeyMiddleware - Extracts API key from Authorization header
//  5. MetricsMiddleware - Records request count/duration
//
// Handlers then delegate to the guardrails runtime or interceptor, which own
// their own rate limiting, caching, and audit trail.
package http
