package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"paperfetcher/internal/config"
	"paperfetcher/internal/ports"
)

// OpenAIClassifier implements RelevanceClassifier backed by OpenAI-compatible
// chat-completion APIs. The model is asked to answer exactly "1" or "0".
type OpenAIClassifier struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	httpClient   *http.Client
}

var _ ports.RelevanceClassifier = (*OpenAIClassifier)(nil)

// NewOpenAIClassifier builds a classifier from configuration. The underlying
// HTTP client is shared, so concurrent Classify calls are safe.
func NewOpenAIClassifier(cfg config.OpenAIConfig) *OpenAIClassifier {
	return &OpenAIClassifier{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Classify posts the title and abstract and maps the model's "1"/"0" answer to
// a boolean verdict.
func (c *OpenAIClassifier) Classify(ctx context.Context, title, abstract string) (bool, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return false, fmt.Errorf("openai classifier misconfigured")
	}

	prompt := fmt.Sprintf("Title: %s\n\nAbstract: %s", title, abstract)

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": c.systemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature": 0,
		"max_tokens":  1,
	})
	if err != nil {
		return false, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("classify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return false, fmt.Errorf("openai error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return false, fmt.Errorf("openai returned no choices")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content) == "1", nil
}
