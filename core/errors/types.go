// ABOUTME: Structured error types for the aggregation pipeline
// ABOUTME: Distinguishes fetch, validation, external API, and persistence failures

package errors

import (
	"errors"
	"fmt"
)

// FeedFetchError represents a feed that could not be retrieved after
// exhausting retries. The run continues without the source.
type FeedFetchError struct {
	Source string
	URL    string
	Err    error
}

func (e *FeedFetchError) Error() string {
	return fmt.Sprintf("fetch failed for %s (%s): %v", e.Source, e.URL, e.Err)
}

func (e *FeedFetchError) Unwrap() error {
	return e.Err
}

// ValidationError represents a field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}

// ExternalAPIError represents an error response from an external API
// such as the LLM service.
type ExternalAPIError struct {
	API        string
	StatusCode int
	Message    string
}

func (e *ExternalAPIError) Error() string {
	return fmt.Sprintf("external API error from %s: %d - %s", e.API, e.StatusCode, e.Message)
}

// PersistenceError represents a failed write to durable storage. These
// are hard failures for the run; no silent data loss is tolerated.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure for %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsFeedFetch checks if an error is a FeedFetchError.
func IsFeedFetch(err error) bool {
	var fetchErr *FeedFetchError
	return errors.As(err, &fetchErr)
}

// IsValidation checks if an error is a ValidationError.
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// IsExternalAPI checks if an error is an ExternalAPIError.
func IsExternalAPI(err error) bool {
	var apiErr *ExternalAPIError
	return errors.As(err, &apiErr)
}

// IsPersistence checks if an error is a PersistenceError.
func IsPersistence(err error) bool {
	var persistErr *PersistenceError
	return errors.As(err, &persistErr)
}

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
