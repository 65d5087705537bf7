package interfaces

// Dependencies holds the external collaborators injected into the core
// pipeline services.
type Dependencies struct {
	// Store persists processed articles between runs.
	Store ArticleStore

	// HTTPClient fetches feed documents.
	HTTPClient HTTPClient

	// LLM is the summarization/classification service.
	LLM LLMClient

	// Logger provides structured logging.
	Logger Logger
}
