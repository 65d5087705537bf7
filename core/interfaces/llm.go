package interfaces

import "context"

// LLMClient is the boundary to the summarization/classification service.
// Complete sends a system and user prompt and returns the model's raw text
// response. The model is asked for strict JSON, but callers must tolerate
// arbitrary text coming back.
type LLMClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
