// Package interfaces defines the contracts between the pipeline core and
// its infrastructure. Everything the pipeline touches outside its own
// process (storage, HTTP, the LLM service, logging) comes in through
// these interfaces so the core stays testable without I/O.
package interfaces

import (
	"context"

	"business-digest-api/core/domain"
)

// ArticleStore persists processed articles keyed by link with a TTL.
// A store is owned by a single pipeline run at a time; concurrent runs
// against the same backing storage must be serialized externally.
type ArticleStore interface {
	// Lookup returns the processed article for each input whose link is
	// present and unexpired. Inputs without a fresh entry are omitted.
	// Does not mutate the store.
	Lookup(ctx context.Context, items []domain.RawArticle) ([]domain.ProcessedArticle, error)

	// FilterUncached returns the subset of items whose link is absent
	// or expired, preserving input order.
	FilterUncached(ctx context.Context, items []domain.RawArticle) ([]domain.RawArticle, error)

	// Update writes an entry for every processed item whose link matches
	// a raw item, stamped with the current time. The write is durable
	// before Update returns.
	Update(ctx context.Context, rawItems []domain.RawArticle, processed []domain.ProcessedArticle) error

	// CleanExpired removes every entry older than the TTL and returns
	// the number removed.
	CleanExpired(ctx context.Context) (int, error)

	// Close releases any resources held by the store.
	Close() error
}
