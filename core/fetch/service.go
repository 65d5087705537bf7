// ABOUTME: Feed fetcher service retrieves and parses RSS/Atom sources concurrently
// ABOUTME: Applies recency filtering, field sanitization, and per-source failure isolation

package fetch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"business-digest-api/core/domain"
	"business-digest-api/core/interfaces"
	"github.com/mmcdole/gofeed"
)

const (
	// maxConcurrentFetches bounds the fetch worker pool.
	maxConcurrentFetches = 10

	// defaultWindow is the recency window applied when none is configured.
	defaultWindow = 48 * time.Hour
)

// Service fetches and normalizes articles from configured feed sources.
type Service struct {
	deps   interfaces.Dependencies
	window time.Duration
	now    func() time.Time
}

// NewService creates a fetch service. A window of 0 selects the 48h default.
func NewService(deps interfaces.Dependencies, window time.Duration) *Service {
	if window <= 0 {
		window = defaultWindow
	}
	return &Service{
		deps:   deps,
		window: window,
		now:    time.Now,
	}
}

// sourceResult carries one source's outcome through the fan-in channel.
type sourceResult struct {
	items   []domain.RawArticle
	summary domain.FeedRunSummary
}

// FetchAll retrieves every source concurrently and returns the surviving
// articles plus one run summary per source. A source failing never affects
// the others; FetchAll itself only errors on context cancellation.
func (s *Service) FetchAll(ctx context.Context, sources []domain.FeedSource) ([]domain.RawArticle, []domain.FeedRunSummary, error) {
	if len(sources) == 0 {
		return []domain.RawArticle{}, []domain.FeedRunSummary{}, nil
	}

	resultsChan := make(chan sourceResult, len(sources))
	semaphore := make(chan struct{}, maxConcurrentFetches)
	var wg sync.WaitGroup

	for _, src := range sources {
		wg.Add(1)
		go func(src domain.FeedSource) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				resultsChan <- sourceResult{summary: domain.FeedRunSummary{
					Name:        src.Name,
					ItemsFailed: 1,
					Status:      domain.FeedStatusFailed,
				}}
				return
			default:
			}

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			resultsChan <- s.fetchSource(ctx, src)
		}(src)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	items := make([]domain.RawArticle, 0)
	summaries := make([]domain.FeedRunSummary, 0, len(sources))

	for result := range resultsChan {
		items = append(items, result.items...)
		summaries = append(summaries, result.summary)
	}

	if err := ctx.Err(); err != nil {
		return items, summaries, err
	}
	return items, summaries, nil
}

// fetchSource retrieves one feed and extracts its recent entries. All
// failures are absorbed into the returned summary.
func (s *Service) fetchSource(ctx context.Context, src domain.FeedSource) sourceResult {
	summary := domain.FeedRunSummary{Name: src.Name}

	s.logDebug("fetching feed", map[string]interface{}{"source": src.Name, "url": src.URL})

	parsed, err := s.retrieveAndParse(ctx, src)
	if err != nil {
		s.logWarn("feed fetch failed", map[string]interface{}{
			"source": src.Name,
			"url":    src.URL,
			"error":  err.Error(),
		})
		summary.ItemsFailed = 1
		summary.Status = domain.FeedStatusFailed
		return sourceResult{summary: summary}
	}

	if len(parsed.Items) == 0 {
		s.logWarn("feed returned no entries", map[string]interface{}{"source": src.Name})
		summary.ItemsFailed = 1
		summary.Status = domain.FeedStatusFailed
		return sourceResult{summary: summary}
	}

	cutoff := s.now().Add(-s.window)
	items := make([]domain.RawArticle, 0, len(parsed.Items))

	for _, entry := range parsed.Items {
		article, ok := s.extractEntry(entry, src.Name)
		if !ok {
			summary.ItemsFailed++
			continue
		}

		// Entries outside the recency window are dropped silently,
		// not counted as failures.
		if published, perr := time.Parse(time.RFC3339, article.Published); perr == nil {
			if published.Before(cutoff) {
				continue
			}
		}

		items = append(items, article)
		summary.ItemsOK++
	}

	if summary.ItemsOK > 0 {
		summary.Status = domain.FeedStatusSuccess
	} else {
		summary.Status = domain.FeedStatusFailed
	}

	s.logInfo("feed fetched", map[string]interface{}{
		"source":       src.Name,
		"items_ok":     summary.ItemsOK,
		"items_failed": summary.ItemsFailed,
	})

	return sourceResult{items: items, summary: summary}
}

// retrieveAndParse downloads the feed document and parses it. The HTTP
// client handles timeouts and transient-error retries.
func (s *Service) retrieveAndParse(ctx context.Context, src domain.FeedSource) (*gofeed.Feed, error) {
	if s.deps.HTTPClient == nil {
		return nil, errors.New("HTTP client not configured")
	}

	resp, err := s.deps.HTTPClient.Get(ctx, src.URL)
	if err != nil {
		return nil, err
	}
	defer resp.Body().Close()

	if resp.StatusCode() != 200 {
		return nil, errors.New("feed returned non-200 status code")
	}

	body, err := io.ReadAll(resp.Body())
	if err != nil {
		return nil, err
	}

	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		// Malformed XML: nothing recoverable from gofeed, so the
		// source is reported failed but the run continues.
		return nil, err
	}

	return parsed, nil
}

// extractEntry converts one gofeed item to a RawArticle. Entries missing
// a resolvable title or link are rejected.
func (s *Service) extractEntry(entry *gofeed.Item, source string) (domain.RawArticle, bool) {
	if entry == nil {
		return domain.RawArticle{}, false
	}

	title := CleanText(entry.Title)
	if title == "" || entry.Link == "" {
		return domain.RawArticle{}, false
	}

	summary := entry.Description
	if summary == "" {
		summary = entry.Content
	}

	return domain.RawArticle{
		Title:     title,
		Summary:   CleanText(summary),
		Link:      entry.Link,
		Published: s.publishedDate(entry),
		Source:    source,
	}, true
}

// publishedDate extracts the entry's timestamp from the possible source
// fields in priority order, falling back to the current time.
func (s *Service) publishedDate(entry *gofeed.Item) string {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.Format(time.RFC3339)
	}
	if entry.UpdatedParsed != nil {
		return entry.UpdatedParsed.Format(time.RFC3339)
	}
	for _, raw := range []string{entry.Published, entry.Updated} {
		if raw == "" {
			continue
		}
		if t := parseTime(raw); !t.IsZero() {
			return t.Format(time.RFC3339)
		}
	}
	return s.now().Format(time.RFC3339)
}

// parseTime attempts to parse a timestamp from the formats feeds use in
// the wild.
func parseTime(timeStr string) time.Time {
	formats := []string{
		time.RFC3339,
		time.RFC1123,
		time.RFC1123Z,
		time.RFC822,
		time.RFC822Z,
		time.RFC850,
		time.ANSIC,
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02 15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, timeStr); err == nil {
			return t
		}
	}

	return time.Time{}
}

func (s *Service) logDebug(msg string, fields map[string]interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.Debug(msg, fields)
	}
}

func (s *Service) logInfo(msg string, fields map[string]interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.Info(msg, fields)
	}
}

func (s *Service) logWarn(msg string, fields map[string]interface{}) {
	if s.deps.Logger != nil {
		s.deps.Logger.Warn(msg, fields)
	}
}
