// ABOUTME: File-backed ArticleStore persisting processed articles as a single JSON document
// ABOUTME: Maps article links to timestamped cache entries with TTL-based expiry

package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"business-digest-api/core/domain"
	coreerrors "business-digest-api/core/errors"
)

// Store is a JSON-file ArticleStore. The whole document is loaded at
// construction and rewritten synchronously on every update, so a crash
// never leaves a partially written cache behind a processed batch.
type Store struct {
	mu      sync.Mutex
	path    string
	ttl     time.Duration
	entries map[string]domain.CacheEntry
	now     func() time.Time
}

// New opens (or creates) the store at path with the given entry TTL.
func New(path string, ttl time.Duration) (*Store, error) {
	s := &Store{
		path:    path,
		ttl:     ttl,
		entries: make(map[string]domain.CacheEntry),
		now:     time.Now,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, &coreerrors.PersistenceError{Path: path, Err: err}
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.entries); err != nil {
			// A corrupt cache file is recoverable: start empty and let
			// the next persist overwrite it.
			s.entries = make(map[string]domain.CacheEntry)
		}
	}

	return s, nil
}

// Lookup returns the cached processed articles for the given raw items,
// in input order. Expired entries are treated as absent.
func (s *Store) Lookup(ctx context.Context, items []domain.RawArticle) ([]domain.ProcessedArticle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	found := []domain.ProcessedArticle{}
	for _, item := range items {
		entry, ok := s.entries[item.Link]
		if !ok || entry.Expired(now, s.ttl) {
			continue
		}
		found = append(found, entry.Data)
	}
	return found, nil
}

// FilterUncached returns the raw items that have no live cache entry.
func (s *Store) FilterUncached(ctx context.Context, items []domain.RawArticle) ([]domain.RawArticle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	uncached := []domain.RawArticle{}
	for _, item := range items {
		entry, ok := s.entries[item.Link]
		if ok && !entry.Expired(now, s.ttl) {
			continue
		}
		uncached = append(uncached, item)
	}
	return uncached, nil
}

// Update stores the processed articles keyed by link and persists the
// document before returning.
func (s *Store) Update(ctx context.Context, rawItems []domain.RawArticle, processed []domain.ProcessedArticle) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rawLinks := make(map[string]struct{}, len(rawItems))
	for _, item := range rawItems {
		rawLinks[item.Link] = struct{}{}
	}

	ts := float64(s.now().UnixNano()) / float64(time.Second)
	for _, article := range processed {
		if article.Link == "" {
			continue
		}
		// The model occasionally rewrites a link; only articles that still
		// match a fetched item are worth caching under their key.
		if _, ok := rawLinks[article.Link]; !ok {
			continue
		}
		s.entries[article.Link] = domain.CacheEntry{Timestamp: ts, Data: article}
	}

	return s.persist()
}

// CleanExpired drops expired entries and persists when anything changed.
func (s *Store) CleanExpired(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for link, entry := range s.entries {
		if entry.Expired(now, s.ttl) {
			delete(s.entries, link)
			removed++
		}
	}

	if removed == 0 {
		return 0, nil
	}
	return removed, s.persist()
}

// Close persists any pending state. The file store has none, but the
// interface requires a shutdown hook.
func (s *Store) Close() error {
	return nil
}

// persist writes the full document. Callers must hold the mutex.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return &coreerrors.PersistenceError{Path: s.path, Err: err}
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &coreerrors.PersistenceError{Path: s.path, Err: err}
		}
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return &coreerrors.PersistenceError{Path: s.path, Err: err}
	}
	return nil
}
