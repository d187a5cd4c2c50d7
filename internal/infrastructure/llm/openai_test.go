package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"paperfetcher/internal/config"
)

func newTestClassifier(endpoint string) *OpenAIClassifier {
	return NewOpenAIClassifier(config.OpenAIConfig{
		Endpoint:     endpoint,
		Model:        "gpt-4o",
		APIKey:       "test-key",
		SystemPrompt: "answer 1 or 0",
	})
}

func chatReply(content string) string {
	return `{"choices":[{"message":{"content":"` + content + `"}}]}`
}

func TestClassifyMapsAnswerToVerdict(t *testing.T) {
	t.Parallel()

	var gotPayload map[string]any
	answer := "1"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(chatReply(answer)))
	}))
	defer server.Close()

	classifier := newTestClassifier(server.URL)

	relevant, err := classifier.Classify(context.Background(), "Bias in LLMs", "We study bias.")
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if !relevant {
		t.Fatalf("answer %q should mean relevant", answer)
	}

	if gotPayload["model"] != "gpt-4o" {
		t.Fatalf("unexpected model: %v", gotPayload["model"])
	}
	if gotPayload["temperature"] != float64(0) {
		t.Fatalf("temperature must be 0, got %v", gotPayload["temperature"])
	}
	if gotPayload["max_tokens"] != float64(1) {
		t.Fatalf("max_tokens must be 1, got %v", gotPayload["max_tokens"])
	}

	answer = "0"
	relevant, err = classifier.Classify(context.Background(), "Unrelated", "Graph theory.")
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if relevant {
		t.Fatalf("answer %q should mean not relevant", answer)
	}
}

func TestClassifyTrimsModelAnswer(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(chatReply(`1\n`)))
	}))
	defer server.Close()

	relevant, err := newTestClassifier(server.URL).Classify(context.Background(), "t", "a")
	if err != nil {
		t.Fatalf("Classify error: %v", err)
	}
	if !relevant {
		t.Fatalf("whitespace around the answer must be ignored")
	}
}

func TestClassifyReturnsAPIErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limit"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	if _, err := newTestClassifier(server.URL).Classify(context.Background(), "t", "a"); err == nil {
		t.Fatalf("expected an error for a 429 response")
	}
}

func TestClassifyRequiresConfiguration(t *testing.T) {
	t.Parallel()

	classifier := NewOpenAIClassifier(config.OpenAIConfig{})
	if _, err := classifier.Classify(context.Background(), "t", "a"); err == nil {
		t.Fatalf("expected a misconfiguration error")
	}
}
