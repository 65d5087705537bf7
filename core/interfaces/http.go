package interfaces

import (
	"context"
	"io"
)

// HTTPClient performs outbound HTTP requests. The abstraction keeps feed
// fetching mockable and lets implementations add retry or backoff policies
// without the core knowing.
type HTTPClient interface {
	// Get performs an HTTP GET request to the given URL.
	Get(ctx context.Context, url string) (Response, error)
}

// Response is a minimal view of an HTTP response.
type Response interface {
	// StatusCode returns the HTTP status code.
	StatusCode() int

	// Body returns the response body. The caller closes it.
	Body() io.ReadCloser

	// Header returns the value of the named header, or "" if absent.
	Header(key string) string
}
