// ABOUTME: Article domain models for the aggregation pipeline
// ABOUTME: Defines feed sources, raw and processed articles, and the label vocabulary

package domain

import "time"

// FeedSource identifies a single RSS/Atom source. Loaded once per run
// from configuration and never mutated afterwards.
type FeedSource struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// RawArticle is a sanitized feed entry as produced by the fetcher.
// Link is the identity key used for deduplication and cache lookups.
type RawArticle struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Link      string `json:"link"`
	Published string `json:"published"`
	Source    string `json:"source"`
}

// AutoTags holds the bounded tag lists extracted for an article.
type AutoTags struct {
	Companies      []string `json:"companies"`
	Sectors        []string `json:"sectors"`
	FinancialTerms []string `json:"financial_terms"`
	Entities       []string `json:"entities"`
}

// EmptyAutoTags returns an AutoTags value with all four lists present
// but empty, matching the shape expected by downstream consumers.
func EmptyAutoTags() AutoTags {
	return AutoTags{
		Companies:      []string{},
		Sectors:        []string{},
		FinancialTerms: []string{},
		Entities:       []string{},
	}
}

// ProcessedArticle is a RawArticle enriched with the summarization and
// classification output. Immutable once created.
type ProcessedArticle struct {
	Title     string   `json:"title"`
	Source    string   `json:"source"`
	Link      string   `json:"link"`
	Published string   `json:"published"`
	OneLiner  string   `json:"one_liner"`
	Bullets   []string `json:"bullets"`
	Labels    []string `json:"labels"`
	AutoTags  AutoTags `json:"auto_tags"`
}

// PrimaryLabel returns the article's first label, or LabelMisc when the
// label list is empty.
func (a ProcessedArticle) PrimaryLabel() string {
	if len(a.Labels) == 0 {
		return LabelMisc
	}
	return a.Labels[0]
}

// FeedRunSummary records the per-source outcome of a fetch run.
type FeedRunSummary struct {
	Name        string `json:"name"`
	ItemsOK     int    `json:"items_ok"`
	ItemsFailed int    `json:"items_failed"`
	Status      string `json:"status"`
}

// Feed run statuses.
const (
	FeedStatusSuccess = "success"
	FeedStatusFailed  = "failed"
)

// Classification labels. LabelOrder is the fixed section order used when
// rendering digests.
const (
	LabelPolicy   = "policy"
	LabelMarkets  = "markets"
	LabelStartups = "startups"
	LabelInfra    = "infra"
	LabelEnergy   = "energy"
	LabelMisc     = "misc"
)

// LabelOrder lists every valid label in digest section order.
var LabelOrder = []string{
	LabelPolicy,
	LabelMarkets,
	LabelStartups,
	LabelInfra,
	LabelEnergy,
	LabelMisc,
}

// ValidLabel reports whether s is part of the fixed label vocabulary.
func ValidLabel(s string) bool {
	switch s {
	case LabelPolicy, LabelMarkets, LabelStartups, LabelInfra, LabelEnergy, LabelMisc:
		return true
	}
	return false
}

// SectionName maps a label to the friendly section name used in the
// structured digest.
func SectionName(label string) string {
	switch label {
	case LabelPolicy:
		return "Policy & Regulation"
	case LabelMarkets:
		return "Markets"
	case LabelStartups:
		return "Startups & Innovation"
	case LabelInfra:
		return "Infrastructure & Real Estate"
	case LabelEnergy:
		return "Energy & Resources"
	case LabelMisc:
		return "Business News"
	}
	return label
}

// CategoryColor maps a label to the display color used by the cards endpoint.
func CategoryColor(label string) string {
	switch label {
	case LabelPolicy:
		return "#3B82F6"
	case LabelMarkets:
		return "#10B981"
	case LabelStartups:
		return "#8B5CF6"
	case LabelInfra:
		return "#F59E0B"
	case LabelEnergy:
		return "#EF4444"
	}
	return "#6B7280"
}

// CategoryDisplayName maps a label to the short name used by the cards endpoint.
func CategoryDisplayName(label string) string {
	switch label {
	case LabelPolicy:
		return "Policy"
	case LabelMarkets:
		return "Markets"
	case LabelStartups:
		return "Startups"
	case LabelInfra:
		return "Infrastructure"
	case LabelEnergy:
		return "Energy"
	}
	return "Other"
}

// CacheEntry is a single persisted cache record: the processed article
// plus the time it was written, as epoch seconds.
type CacheEntry struct {
	Timestamp float64          `json:"timestamp"`
	Data      ProcessedArticle `json:"data"`
}

// Expired reports whether the entry is older than ttl at time now.
func (e CacheEntry) Expired(now time.Time, ttl time.Duration) bool {
	written := time.Unix(0, int64(e.Timestamp*float64(time.Second)))
	return now.Sub(written) > ttl
}
