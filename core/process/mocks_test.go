package process

import "context"

// mockLLM is a scriptable implementation of the LLMClient interface
type mockLLM struct {
	completeFunc func(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	calls        int
	prompts      []string
}

func (m *mockLLM) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.calls++
	m.prompts = append(m.prompts, userPrompt)
	if m.completeFunc != nil {
		return m.completeFunc(ctx, systemPrompt, userPrompt)
	}
	return "[]", nil
}

// mockLogger is a no-op Logger
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, fields map[string]interface{}) {}
func (m *mockLogger) Info(msg string, fields map[string]interface{})  {}
func (m *mockLogger) Warn(msg string, fields map[string]interface{})  {}
func (m *mockLogger) Error(msg string, fields map[string]interface{}) {}
