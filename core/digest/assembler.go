// ABOUTME: Digest assembler groups processed articles and builds run outputs
// ABOUTME: Pure transformations from article lists to digest and audit structures

package digest

import (
	"time"

	"business-digest-api/core/domain"
)

// GroupByLabel buckets articles by their primary label. Only labels with
// at least one article appear in the result.
func GroupByLabel(items []domain.ProcessedArticle) map[string][]domain.ProcessedArticle {
	grouped := make(map[string][]domain.ProcessedArticle)
	for _, item := range items {
		label := item.PrimaryLabel()
		grouped[label] = append(grouped[label], item)
	}
	return grouped
}

// Build assembles the structured digest for a run. Section keys are the
// friendly names consumed by the web layer.
func Build(items []domain.ProcessedArticle, feedSummary []domain.FeedRunSummary, now time.Time) domain.Digest {
	categories := make(map[string][]domain.ProcessedArticle)
	for label, grouped := range GroupByLabel(items) {
		categories[domain.SectionName(label)] = grouped
	}

	return domain.Digest{
		Date:        now.Format("2006-01-02"),
		LastUpdated: now.Format(time.RFC3339),
		Categories:  categories,
		TotalItems:  len(items),
		FeedSummary: feedSummary,
	}
}

// BuildEmpty produces the well-formed digest written when no articles are
// available, so downstream consumers always find a valid artifact.
func BuildEmpty(message string, now time.Time) domain.Digest {
	return domain.Digest{
		Date:        now.Format("2006-01-02"),
		LastUpdated: now.Format(time.RFC3339),
		Categories:  map[string][]domain.ProcessedArticle{},
		TotalItems:  0,
		Message:     message,
	}
}

// BuildAudit assembles the daily audit record for a run.
func BuildAudit(rawItems []domain.RawArticle, processed []domain.ProcessedArticle, now time.Time) domain.Audit {
	if rawItems == nil {
		rawItems = []domain.RawArticle{}
	}
	if processed == nil {
		processed = []domain.ProcessedArticle{}
	}
	return domain.Audit{
		Date:                now.Format("2006-01-02"),
		TotalRawItems:       len(rawItems),
		TotalProcessedItems: len(processed),
		RawItems:            rawItems,
		LLMOutput:           processed,
	}
}
