// Package api provides the HTTP API layer for the business digest service.
// It serves the latest digest in several shapes, exposes the background
// runner's status, and triggers on-demand refreshes.
//
// # Architecture
//
// The API package is structured as follows:
//
// - server.go: router construction, CORS, and middleware wiring
// - handlers/: HTTP request handlers for the digest endpoints
// - middleware/: HTTP middleware for cross-cutting concerns
//
// # Endpoints
//
//   - GET  /api/health           liveness probe
//   - GET  /api/news             flat article list
//   - GET  /api/cards            categories with colors and summary stats
//   - GET  /api/news/categorized digest grouped by section
//   - GET  /api/status           background runner status
//   - POST /api/refresh          synchronous pipeline run
//
// Every response uses the envelope:
//
//	{"success": true, "data": ..., "count": N, "timestamp": "..."}
//	{"success": false, "error": "...", "timestamp": "..."}
package api
