package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"

	"business-digest-api/core/domain"
	"business-digest-api/core/interfaces"
)

// memStore is an in-memory ArticleStore keyed by link, with call counters
// so tests can assert on cache interactions.
type memStore struct {
	mu          sync.Mutex
	entries     map[string]domain.ProcessedArticle
	lookupErr   error
	updateErr   error
	updateCalls int
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]domain.ProcessedArticle)}
}

func (s *memStore) Lookup(ctx context.Context, items []domain.RawArticle) ([]domain.ProcessedArticle, error) {
	if s.lookupErr != nil {
		return nil, s.lookupErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	found := []domain.ProcessedArticle{}
	for _, item := range items {
		if article, ok := s.entries[item.Link]; ok {
			found = append(found, article)
		}
	}
	return found, nil
}

func (s *memStore) FilterUncached(ctx context.Context, items []domain.RawArticle) ([]domain.RawArticle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	uncached := []domain.RawArticle{}
	for _, item := range items {
		if _, ok := s.entries[item.Link]; !ok {
			uncached = append(uncached, item)
		}
	}
	return uncached, nil
}

func (s *memStore) Update(ctx context.Context, rawItems []domain.RawArticle, processed []domain.ProcessedArticle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateCalls++
	if s.updateErr != nil {
		return s.updateErr
	}
	for _, article := range processed {
		s.entries[article.Link] = article
	}
	return nil
}

func (s *memStore) CleanExpired(ctx context.Context) (int, error) {
	return 0, nil
}

func (s *memStore) Close() error { return nil }

// mockLLM echoes the batch items back as valid model output, recording
// how many completions it served. Setting err makes every call fail.
type mockLLM struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockLLM) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}

	items, err := itemsFromPrompt(userPrompt)
	if err != nil {
		return "", err
	}

	out := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		out = append(out, map[string]interface{}{
			"title":     item.Title,
			"source":    item.Source,
			"link":      item.Link,
			"published": item.Published,
			"one_liner": "Model summary of " + item.Title,
			"bullets":   []string{"What happened.", "Why it matters."},
			"labels":    []string{"markets"},
			"auto_tags": map[string][]string{
				"companies":       {"Acme Ltd"},
				"sectors":         {"banking"},
				"financial_terms": {"IPO"},
				"entities":        {"NSE"},
			},
		})
	}
	encoded, _ := json.Marshal(out)
	return string(encoded), nil
}

func (m *mockLLM) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// itemsFromPrompt recovers the batch input embedded in a user prompt.
func itemsFromPrompt(prompt string) ([]domain.RawArticle, error) {
	start := strings.Index(prompt, "[")
	end := strings.LastIndex(prompt, "]")
	if start < 0 || end < start {
		return nil, errors.New("no input JSON found in prompt")
	}
	// The prompt's trailing instructions also contain brackets, so try
	// shrinking suffixes until one decodes.
	for end > start {
		var items []domain.RawArticle
		if err := json.Unmarshal([]byte(prompt[start:end+1]), &items); err == nil {
			return items, nil
		}
		end = strings.LastIndex(prompt[:end], "]")
	}
	return nil, errors.New("unparseable input JSON in prompt")
}

// mockHTTPClient serves canned bodies per URL.
type mockHTTPClient struct {
	responses map[string]string
}

func (m *mockHTTPClient) Get(ctx context.Context, url string) (interfaces.Response, error) {
	body, ok := m.responses[url]
	if !ok {
		return nil, errors.New("connection refused")
	}
	return &mockResponse{statusCode: 200, body: body}, nil
}

type mockResponse struct {
	statusCode int
	body       string
}

func (m *mockResponse) StatusCode() int { return m.statusCode }

func (m *mockResponse) Body() io.ReadCloser {
	return io.NopCloser(strings.NewReader(m.body))
}

func (m *mockResponse) Header(key string) string { return "" }

type mockLogger struct {
	mu     sync.Mutex
	errors []string
}

func (m *mockLogger) Debug(msg string, fields map[string]interface{}) {}
func (m *mockLogger) Info(msg string, fields map[string]interface{})  {}
func (m *mockLogger) Warn(msg string, fields map[string]interface{})  {}
func (m *mockLogger) Error(msg string, fields map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}
