package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	gogithub "github.com/google/go-github/v68/github"

	"paperfetcher/internal/config"
	"paperfetcher/internal/domain"
)

type updateRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha"`
	Branch  string `json:"branch"`
}

func newTestSink(t *testing.T, server *httptest.Server) *ReadmeSink {
	t.Helper()

	client := gogithub.NewClient(server.Client())
	base, err := url.Parse(server.URL + "/")
	if err != nil {
		t.Fatalf("parse base url: %v", err)
	}
	client.BaseURL = base

	sink, err := NewReadmeSinkWithClient(client, config.GitHubConfig{
		Repository: "acme/awesome-papers",
		Branch:     "main",
		ReadmePath: "README.md",
	}, nil)
	if err != nil {
		t.Fatalf("new sink: %v", err)
	}
	return sink
}

func TestAppendPapersCommitsAppendedSection(t *testing.T) {
	t.Parallel()

	const current = "# Awesome Papers\n"
	var update updateRequest

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/awesome-papers/contents/README.md", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if r.URL.Query().Get("ref") != "main" {
				t.Errorf("expected ref=main, got %q", r.URL.Query().Get("ref"))
			}
			fmt.Fprintf(w, `{"type":"file","encoding":"base64","path":"README.md","sha":"abc123","content":%q}`,
				base64.StdEncoding.EncodeToString([]byte(current)))
		case http.MethodPut:
			if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
				t.Errorf("decode update: %v", err)
			}
			_, _ = w.Write([]byte(`{"content":{"path":"README.md"}}`))
		default:
			http.NotFound(w, r)
		}
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	sink := newTestSink(t, server)
	papers := []domain.Paper{
		{
			ID:          "2401.00001",
			Title:       "Bias in LLMs",
			Abstract:    "We study bias.",
			URL:         "https://arxiv.org/abs/2401.00001",
			Authors:     []string{"A", "B", "C", "D"},
			Categories:  []string{"cs.AI", "cs.CL"},
			PublishedAt: time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	if err := sink.AppendPapers(context.Background(), papers, "New Papers"); err != nil {
		t.Fatalf("AppendPapers error: %v", err)
	}

	if update.SHA != "abc123" {
		t.Fatalf("commit must reuse the fetched sha, got %q", update.SHA)
	}
	if update.Branch != "main" {
		t.Fatalf("unexpected branch %q", update.Branch)
	}
	if !strings.Contains(update.Message, "Added 1 new papers") {
		t.Fatalf("unexpected commit message %q", update.Message)
	}

	decoded, err := base64.StdEncoding.DecodeString(update.Content)
	if err != nil {
		t.Fatalf("decode committed content: %v", err)
	}
	got := string(decoded)

	if !strings.HasPrefix(got, current) {
		t.Fatalf("existing content must be preserved, got %q", got)
	}
	for _, want := range []string{
		"## New Papers",
		"### Bias in LLMs",
		"**Authors:** A, B, C et al.",
		"**Categories:** cs.AI, cs.CL",
		"**Published:** 2024-01-10",
		"[arXiv:2401.00001](https://arxiv.org/abs/2401.00001)",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("committed content missing %q:\n%s", want, got)
		}
	}
}

func TestAppendPapersNoopsOnEmptyInput(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected, got %s %s", r.Method, r.URL.Path)
	}))
	defer server.Close()

	sink := newTestSink(t, server)
	if err := sink.AppendPapers(context.Background(), nil, ""); err != nil {
		t.Fatalf("AppendPapers error: %v", err)
	}
}

func TestNewReadmeSinkRejectsBadRepository(t *testing.T) {
	t.Parallel()

	if _, err := NewReadmeSink(config.GitHubConfig{Repository: "not-a-repo"}, nil); err == nil {
		t.Fatalf("expected an error for a repository without owner")
	}
}
