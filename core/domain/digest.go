// ABOUTME: Digest and run-status domain models
// ABOUTME: Defines the persisted digest, audit, and service status structures

package domain

// Digest is the structured output of a pipeline run, grouped by friendly
// section name for machine consumption.
type Digest struct {
	Date        string                        `json:"date"`
	LastUpdated string                        `json:"last_updated"`
	Categories  map[string][]ProcessedArticle `json:"categories"`
	TotalItems  int                           `json:"total_items"`
	FeedSummary []FeedRunSummary              `json:"feed_summary,omitempty"`
	Message     string                        `json:"message,omitempty"`
}

// Audit captures a full run's raw inputs and processed outputs for
// after-the-fact inspection.
type Audit struct {
	Date                string             `json:"date"`
	TotalRawItems       int                `json:"total_raw_items"`
	TotalProcessedItems int                `json:"total_processed_items"`
	RawItems            []RawArticle       `json:"raw_items"`
	LLMOutput           []ProcessedArticle `json:"llm_output"`
}

// RunStatus is the service status record written after every pipeline
// invocation.
type RunStatus struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	LastUpdate string `json:"last_update"`
	NextUpdate string `json:"next_update,omitempty"`
}

// Run statuses.
const (
	RunStatusStarting   = "starting"
	RunStatusProcessing = "processing"
	RunStatusIdle       = "idle"
	RunStatusError      = "error"
	RunStatusStopped    = "stopped"
)
