// ABOUTME: OpenAI chat completions client implementing the core LLMClient interface
// ABOUTME: Paces outbound requests with a rate limiter and surfaces API errors

package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	coreerrors "business-digest-api/core/errors"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client talks to the OpenAI chat completions API.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// Options configures a Client.
type Options struct {
	// APIKey authenticates requests. Required.
	APIKey string

	// Model is the completions model name.
	Model string

	// BaseURL overrides the API endpoint, mainly for tests.
	BaseURL string

	// RequestsPerMinute paces calls. Non-positive disables pacing.
	RequestsPerMinute int
}

// New creates a completions client.
func New(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60.0), 1)
	}

	return &Client{
		apiKey:  opts.APIKey,
		model:   opts.Model,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 2 * time.Minute},
		limiter: limiter,
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *formatSpec   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type formatSpec struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends a system and user prompt and returns the raw model
// output text. The caller owns parsing and retry semantics.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    0.2,
		ResponseFormat: &formatSpec{Type: "json_object"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", coreerrors.WrapError(err, "completions request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", coreerrors.WrapError(err, "reading completions response")
	}

	if resp.StatusCode != http.StatusOK {
		return "", &coreerrors.ExternalAPIError{
			API:        "openai",
			StatusCode: resp.StatusCode,
			Message:    apiErrorMessage(respBody),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", coreerrors.WrapError(err, "decoding completions response")
	}

	if len(parsed.Choices) == 0 {
		return "", &coreerrors.ExternalAPIError{
			API:        "openai",
			StatusCode: resp.StatusCode,
			Message:    "response contained no choices",
		}
	}

	return parsed.Choices[0].Message.Content, nil
}

// apiErrorMessage extracts the API error message from a failure body,
// falling back to a truncated raw body.
func apiErrorMessage(body []byte) string {
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil {
		return parsed.Error.Message
	}
	raw := string(body)
	if len(raw) > 200 {
		raw = raw[:200]
	}
	return fmt.Sprintf("unexpected response: %s", raw)
}
