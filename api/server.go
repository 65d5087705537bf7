// ABOUTME: HTTP server construction for the digest API
// ABOUTME: Wires CORS, logging, and rate limiting around the digest handlers

package api

import (
	"net/http"

	"github.com/rs/cors"

	"business-digest-api/api/handlers"
	"business-digest-api/api/middleware"
	"business-digest-api/core/interfaces"
)

// Config holds configuration for the API server.
type Config struct {
	Logger interfaces.Logger

	// RateLimitPerSecond caps requests per client IP. Zero disables
	// rate limiting.
	RateLimitPerSecond float64

	// DigestPath and StatusPath locate the pipeline's artifact files.
	DigestPath string
	StatusPath string

	// Refresher runs a synchronous pipeline invocation for /api/refresh.
	Refresher handlers.Refresher
}

// NewHandler builds the fully wired API handler.
func NewHandler(cfg Config) http.Handler {
	mux := http.NewServeMux()

	digestHandler := handlers.NewDigestHandler(cfg.DigestPath, cfg.StatusPath, cfg.Refresher, cfg.Logger)
	digestHandler.RegisterRoutes(mux)

	var handler http.Handler = mux

	if cfg.RateLimitPerSecond > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond)
		handler = middleware.RateLimit(limiter)(handler)
	}

	if cfg.Logger != nil {
		handler = middleware.RequestLogging(cfg.Logger)(handler)
	}

	// CORS sits outermost so preflight requests never hit rate limits.
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}).Handler(handler)
}
