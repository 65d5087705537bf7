// Package dedup removes duplicate articles from a run's working set.
// The link is the identity key: it is the one field guaranteed to be
// unique per story across sources.
package dedup

import "business-digest-api/core/domain"

// ByLink returns items with at most one entry per distinct link,
// preserving first-seen order. Items with an empty link are dropped.
func ByLink(items []domain.RawArticle) []domain.RawArticle {
	seen := make(map[string]struct{}, len(items))
	deduped := make([]domain.RawArticle, 0, len(items))

	for _, item := range items {
		if item.Link == "" {
			continue
		}
		if _, ok := seen[item.Link]; ok {
			continue
		}
		seen[item.Link] = struct{}{}
		deduped = append(deduped, item)
	}

	return deduped
}
