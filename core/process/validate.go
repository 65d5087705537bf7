// ABOUTME: Validation and coercion of LLM article output
// ABOUTME: Re-enforces field caps, label vocabulary, and auto_tags shape

package process

import (
	"encoding/json"
	"strings"

	"business-digest-api/core/domain"
)

const (
	maxOneLinerWords  = 22
	maxBullets        = 2
	maxCompanies      = 5
	maxSectors        = 3
	maxFinancialTerms = 4
	maxEntities       = 3
)

// llmArticle is the loosely-typed decode target for one model output
// item. Models return labels as a string or an array, and drop or mangle
// auto_tags, so every field tolerates absence.
type llmArticle struct {
	Title     string                     `json:"title"`
	Source    string                     `json:"source"`
	Link      string                     `json:"link"`
	Published string                     `json:"published"`
	OneLiner  string                     `json:"one_liner"`
	Bullets   []string                   `json:"bullets"`
	Labels    flexStrings                `json:"labels"`
	AutoTags  map[string]json.RawMessage `json:"auto_tags"`
}

// flexStrings unmarshals either a JSON string or an array of strings.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*f = flexStrings{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*f = flexStrings(many)
		return nil
	}

	// Malformed labels are treated as absent; validation defaults them.
	*f = nil
	return nil
}

// validateOutput coerces decoded model items into well-formed
// ProcessedArticles. Missing identity fields are backfilled from the
// matching raw input (by link, then by position).
func validateOutput(items []llmArticle, batch []domain.RawArticle) []domain.ProcessedArticle {
	byLink := make(map[string]domain.RawArticle, len(batch))
	for _, raw := range batch {
		byLink[raw.Link] = raw
	}

	validated := make([]domain.ProcessedArticle, 0, len(items))

	for i, item := range items {
		raw, matched := byLink[item.Link]
		if !matched && i < len(batch) {
			raw = batch[i]
		}

		article := domain.ProcessedArticle{
			Title:     coalesce(item.Title, raw.Title),
			Source:    coalesce(item.Source, raw.Source),
			Link:      coalesce(item.Link, raw.Link),
			Published: coalesce(item.Published, raw.Published),
			OneLiner:  truncateWords(item.OneLiner, maxOneLinerWords),
			Bullets:   capList(item.Bullets, maxBullets),
			Labels:    validateLabels(item.Labels),
			AutoTags:  validateAutoTags(item.AutoTags),
		}

		validated = append(validated, article)
	}

	return validated
}

// validateLabels drops labels outside the fixed vocabulary and defaults
// to misc when none remain.
func validateLabels(labels []string) []string {
	valid := make([]string, 0, len(labels))
	for _, label := range labels {
		label = strings.ToLower(strings.TrimSpace(label))
		if domain.ValidLabel(label) {
			valid = append(valid, label)
		}
	}
	if len(valid) == 0 {
		return []string{domain.LabelMisc}
	}
	return valid
}

// validateAutoTags coerces the raw auto_tags object into the four bounded
// lists, defaulting each to empty when absent or malformed.
func validateAutoTags(raw map[string]json.RawMessage) domain.AutoTags {
	return domain.AutoTags{
		Companies:      capList(decodeTagList(raw["companies"]), maxCompanies),
		Sectors:        capList(decodeTagList(raw["sectors"]), maxSectors),
		FinancialTerms: capList(decodeTagList(raw["financial_terms"]), maxFinancialTerms),
		Entities:       capList(decodeTagList(raw["entities"]), maxEntities),
	}
}

// decodeTagList unmarshals a tag list, returning empty on any failure.
func decodeTagList(raw json.RawMessage) []string {
	if raw == nil {
		return []string{}
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return []string{}
	}
	if tags == nil {
		return []string{}
	}
	return tags
}

// truncateWords caps s at n words.
func truncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return s
	}
	return strings.Join(words[:n], " ")
}

// capList bounds a string list to n entries, never returning nil.
func capList(list []string, n int) []string {
	if list == nil {
		return []string{}
	}
	if len(list) > n {
		return list[:n]
	}
	return list
}

func coalesce(primary, fallback string) string {
	if primary != "" {
		return primary
	}
	return fallback
}
