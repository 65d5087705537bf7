// ABOUTME: In-memory ArticleStore backed by the go-cache TTL cache
// ABOUTME: Suited to single-process deployments and tests; contents do not survive restarts

package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"business-digest-api/core/domain"
)

// Store is an in-process ArticleStore keyed by article link.
type Store struct {
	cache *gocache.Cache
}

// New creates a memory store whose entries expire after ttl.
func New(ttl time.Duration) *Store {
	// Janitor sweep at half the TTL keeps memory bounded between
	// explicit CleanExpired calls.
	return &Store{cache: gocache.New(ttl, ttl/2)}
}

// Lookup returns cached processed articles for items, in input order.
func (s *Store) Lookup(ctx context.Context, items []domain.RawArticle) ([]domain.ProcessedArticle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	found := []domain.ProcessedArticle{}
	for _, item := range items {
		if value, ok := s.cache.Get(item.Link); ok {
			found = append(found, value.(domain.ProcessedArticle))
		}
	}
	return found, nil
}

// FilterUncached returns the items with no live cache entry.
func (s *Store) FilterUncached(ctx context.Context, items []domain.RawArticle) ([]domain.RawArticle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	uncached := []domain.RawArticle{}
	for _, item := range items {
		if _, ok := s.cache.Get(item.Link); !ok {
			uncached = append(uncached, item)
		}
	}
	return uncached, nil
}

// Update caches processed articles with the store's default TTL.
func (s *Store) Update(ctx context.Context, rawItems []domain.RawArticle, processed []domain.ProcessedArticle) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rawLinks := make(map[string]struct{}, len(rawItems))
	for _, item := range rawItems {
		rawLinks[item.Link] = struct{}{}
	}

	for _, article := range processed {
		if article.Link == "" {
			continue
		}
		if _, ok := rawLinks[article.Link]; !ok {
			continue
		}
		s.cache.Set(article.Link, article, gocache.DefaultExpiration)
	}
	return nil
}

// CleanExpired evicts expired entries and reports how many were removed.
func (s *Store) CleanExpired(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	before := s.cache.ItemCount()
	s.cache.DeleteExpired()
	removed := before - s.cache.ItemCount()
	if removed < 0 {
		removed = 0
	}
	return removed, nil
}

// Close is a no-op; go-cache's janitor stops with the process.
func (s *Store) Close() error {
	return nil
}
