// ABOUTME: Tests for the file-backed ArticleStore
// ABOUTME: Covers round-trips, TTL expiry, persistence format, and corrupt file recovery

package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"business-digest-api/core/domain"
)

func tempStore(t *testing.T, ttl time.Duration) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.json")
	s, err := New(path, ttl)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return s, path
}

func rawItem(link string) domain.RawArticle {
	return domain.RawArticle{
		Title:  "Title for " + link,
		Link:   link,
		Source: "Test Source",
	}
}

func processedItem(link string) domain.ProcessedArticle {
	return domain.ProcessedArticle{
		Title:    "Title for " + link,
		Link:     link,
		Source:   "Test Source",
		OneLiner: "Summary for " + link,
		Bullets:  []string{"A bullet."},
		Labels:   []string{domain.LabelMarkets},
		AutoTags: domain.EmptyAutoTags(),
	}
}

func TestUpdateAndLookup_RoundTrip(t *testing.T) {
	s, _ := tempStore(t, 24*time.Hour)
	ctx := context.Background()

	raw := []domain.RawArticle{rawItem("https://example.com/1"), rawItem("https://example.com/2")}
	processed := []domain.ProcessedArticle{processedItem("https://example.com/1"), processedItem("https://example.com/2")}

	if err := s.Update(ctx, raw, processed); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	found, err := s.Lookup(ctx, raw)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 cached articles, got %d", len(found))
	}
	if found[0].OneLiner != "Summary for https://example.com/1" {
		t.Errorf("unexpected cached article: %+v", found[0])
	}
}

func TestFilterUncached(t *testing.T) {
	s, _ := tempStore(t, 24*time.Hour)
	ctx := context.Background()

	cached := rawItem("https://example.com/cached")
	fresh := rawItem("https://example.com/fresh")

	if err := s.Update(ctx, []domain.RawArticle{cached}, []domain.ProcessedArticle{processedItem(cached.Link)}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	uncached, err := s.FilterUncached(ctx, []domain.RawArticle{cached, fresh})
	if err != nil {
		t.Fatalf("FilterUncached returned error: %v", err)
	}
	if len(uncached) != 1 || uncached[0].Link != fresh.Link {
		t.Errorf("expected only the fresh item, got %+v", uncached)
	}
}

func TestLookup_ExpiredEntriesAreMisses(t *testing.T) {
	s, _ := tempStore(t, 24*time.Hour)
	ctx := context.Background()

	raw := []domain.RawArticle{rawItem("https://example.com/old")}
	if err := s.Update(ctx, raw, []domain.ProcessedArticle{processedItem(raw[0].Link)}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	// Advance the store's clock past the TTL.
	s.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	found, err := s.Lookup(ctx, raw)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("expired entry should be a miss, got %+v", found)
	}

	uncached, err := s.FilterUncached(ctx, raw)
	if err != nil {
		t.Fatalf("FilterUncached returned error: %v", err)
	}
	if len(uncached) != 1 {
		t.Errorf("expired entry should count as uncached, got %+v", uncached)
	}
}

func TestCleanExpired(t *testing.T) {
	s, _ := tempStore(t, 24*time.Hour)
	ctx := context.Background()

	raw := []domain.RawArticle{rawItem("https://example.com/old"), rawItem("https://example.com/new")}
	if err := s.Update(ctx, raw[:1], []domain.ProcessedArticle{processedItem(raw[0].Link)}); err != nil {
		t.Fatal(err)
	}

	s.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	if err := s.Update(ctx, raw[1:], []domain.ProcessedArticle{processedItem(raw[1].Link)}); err != nil {
		t.Fatal(err)
	}

	removed, err := s.CleanExpired(ctx)
	if err != nil {
		t.Fatalf("CleanExpired returned error: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 expired entry removed, got %d", removed)
	}

	found, err := s.Lookup(ctx, raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].Link != raw[1].Link {
		t.Errorf("expected only the fresh entry to survive, got %+v", found)
	}
}

func TestPersistenceFormat(t *testing.T) {
	s, path := tempStore(t, 24*time.Hour)
	ctx := context.Background()

	link := "https://example.com/1"
	if err := s.Update(ctx, []domain.RawArticle{rawItem(link)}, []domain.ProcessedArticle{processedItem(link)}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading store file: %v", err)
	}

	var doc map[string]struct {
		Timestamp float64                 `json:"timestamp"`
		Data      domain.ProcessedArticle `json:"data"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("store file is not the expected JSON shape: %v\n%s", err, data)
	}

	entry, ok := doc[link]
	if !ok {
		t.Fatalf("store file missing entry for %s:\n%s", link, data)
	}
	if entry.Timestamp <= 0 {
		t.Errorf("entry timestamp should be epoch seconds, got %f", entry.Timestamp)
	}
	if entry.Data.OneLiner == "" {
		t.Error("entry data missing processed fields")
	}
}

func TestNew_ReloadsPersistedEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	ctx := context.Background()

	first, err := New(path, 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	link := "https://example.com/persisted"
	if err := first.Update(ctx, []domain.RawArticle{rawItem(link)}, []domain.ProcessedArticle{processedItem(link)}); err != nil {
		t.Fatal(err)
	}

	second, err := New(path, 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	found, err := second.Lookup(ctx, []domain.RawArticle{rawItem(link)})
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 {
		t.Errorf("expected reloaded store to serve the persisted entry, got %+v", found)
	}
}

func TestNew_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := New(path, 24*time.Hour)
	if err != nil {
		t.Fatalf("corrupt file should not fail open: %v", err)
	}

	uncached, err := s.FilterUncached(context.Background(), []domain.RawArticle{rawItem("https://example.com/1")})
	if err != nil {
		t.Fatal(err)
	}
	if len(uncached) != 1 {
		t.Errorf("corrupt store should behave as empty, got %+v", uncached)
	}
}

func TestUpdate_IgnoresArticlesWithoutMatchingRawItem(t *testing.T) {
	s, _ := tempStore(t, 24*time.Hour)
	ctx := context.Background()

	fetched := rawItem("https://example.com/real")
	rewritten := processedItem("https://example.com/hallucinated")
	processed := []domain.ProcessedArticle{processedItem(fetched.Link), rewritten}

	if err := s.Update(ctx, []domain.RawArticle{fetched}, processed); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if _, ok := s.entries[rewritten.Link]; ok {
		t.Errorf("article with no matching raw item was cached under %s", rewritten.Link)
	}

	found, err := s.Lookup(ctx, []domain.RawArticle{fetched})
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].Link != fetched.Link {
		t.Errorf("expected only the fetched article to be cached, got %+v", found)
	}
}

func TestUpdate_SkipsEmptyLinks(t *testing.T) {
	s, _ := tempStore(t, 24*time.Hour)
	ctx := context.Background()

	article := processedItem("")
	if err := s.Update(ctx, []domain.RawArticle{rawItem("")}, []domain.ProcessedArticle{article}); err != nil {
		t.Fatal(err)
	}

	if len(s.entries) != 0 {
		t.Errorf("empty-link article should not be cached: %+v", s.entries)
	}
}
