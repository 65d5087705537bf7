// ABOUTME: Deterministic fallback processing used when the LLM is unavailable
// ABOUTME: Produces minimally useful summaries from the raw article fields alone

package process

import (
	"strings"

	"business-digest-api/core/domain"
)

const maxFallbackBulletLen = 200

// fallbackBatch produces one ProcessedArticle per input without any
// external call: the title stands in for the one-liner, the leading
// sentences of the summary become the single bullet, and everything is
// filed under misc.
func fallbackBatch(items []domain.RawArticle) []domain.ProcessedArticle {
	processed := make([]domain.ProcessedArticle, 0, len(items))

	for _, item := range items {
		processed = append(processed, domain.ProcessedArticle{
			Title:     item.Title,
			Source:    item.Source,
			Link:      item.Link,
			Published: item.Published,
			OneLiner:  truncateWords(item.Title, maxOneLinerWords),
			Bullets:   fallbackBullets(item),
			Labels:    []string{domain.LabelMisc},
			AutoTags:  domain.EmptyAutoTags(),
		})
	}

	return processed
}

// fallbackBullets extracts the first two sentences of the summary,
// truncated to 200 characters, or a generic placeholder when the item
// has no summary at all.
func fallbackBullets(item domain.RawArticle) []string {
	summary := strings.ReplaceAll(item.Summary, "\n", " ")
	summary = strings.TrimSpace(summary)

	if summary == "" {
		source := item.Source
		if source == "" {
			source = "India"
		}
		return []string{"News from " + source}
	}

	sentences := strings.SplitN(summary, ". ", 3)
	if len(sentences) > 2 {
		sentences = sentences[:2]
	}
	truncated := strings.Join(sentences, ". ")

	if len(truncated) > maxFallbackBulletLen {
		truncated = truncated[:maxFallbackBulletLen-3] + "..."
	} else if !strings.HasSuffix(truncated, ".") {
		truncated += "."
	}

	return []string{truncated}
}
