package arxiv

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const feedTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>ArXiv Query Results</title>
%s
</feed>`

func atomEntry(id, title, updated string) string {
	return fmt.Sprintf(`  <entry>
    <id>http://arxiv.org/abs/%s</id>
    <title>%s</title>
    <summary>
      An abstract with
      arXiv line breaks.
    </summary>
    <author><name>Ada Lovelace</name></author>
    <author><name>Alan Turing</name></author>
    <published>%s</published>
    <updated>%s</updated>
    <link href="http://arxiv.org/abs/%s" rel="alternate" type="text/html"/>
    <category term="cs.AI"/>
    <category term="cs.CL"/>
  </entry>`, id, title, updated, updated, id)
}

func TestFetchPageParsesEntries(t *testing.T) {
	t.Parallel()

	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprintf(w, feedTemplate, atomEntry("2401.00001v2", "Fresh  Paper", "2024-01-10T12:00:00Z"))
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	papers, err := client.FetchPage(context.Background(), "cs.AI", 100, 50)
	if err != nil {
		t.Fatalf("FetchPage error: %v", err)
	}

	if len(papers) != 1 {
		t.Fatalf("expected 1 paper, got %d", len(papers))
	}

	p := papers[0]
	if p.ID != "2401.00001" {
		t.Fatalf("version suffix should be stripped, got id %q", p.ID)
	}
	if p.Title != "Fresh Paper" {
		t.Fatalf("title should be whitespace-normalized, got %q", p.Title)
	}
	if p.Abstract != "An abstract with arXiv line breaks." {
		t.Fatalf("unexpected abstract: %q", p.Abstract)
	}
	if len(p.Authors) != 2 || p.Authors[0] != "Ada Lovelace" {
		t.Fatalf("unexpected authors: %v", p.Authors)
	}
	if len(p.Categories) != 2 || p.Categories[0] != "cs.AI" {
		t.Fatalf("unexpected categories: %v", p.Categories)
	}

	want := time.Date(2024, time.January, 10, 12, 0, 0, 0, time.UTC)
	if !p.UpdatedAt.Equal(want) {
		t.Fatalf("unexpected updated timestamp: %v", p.UpdatedAt)
	}

	req, err := http.NewRequest(http.MethodGet, "http://x/?"+gotQuery, nil)
	if err != nil {
		t.Fatalf("rebuild query: %v", err)
	}
	q := req.URL.Query()
	if q.Get("search_query") != "cat:cs.AI" {
		t.Fatalf("unexpected search_query: %s", q.Get("search_query"))
	}
	if q.Get("sortBy") != "submittedDate" || q.Get("sortOrder") != "descending" {
		t.Fatalf("unexpected sort params: %s", gotQuery)
	}
	if q.Get("start") != "100" || q.Get("max_results") != "50" {
		t.Fatalf("unexpected pagination params: %s", gotQuery)
	}
}

func TestFetchPageRejectsBadStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "throttled", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, server.Client())
	if _, err := client.FetchPage(context.Background(), "cs.AI", 0, 10); err == nil {
		t.Fatalf("expected an error for a 503 response")
	}
}

func TestExtractID(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"http://arxiv.org/abs/2401.00001v2":   "2401.00001",
		"http://arxiv.org/abs/2401.00001":     "2401.00001",
		"http://arxiv.org/abs/hep-th/9901001": "hep-th/9901001",
		"2401.00002v10":                       "2401.00002",
	}
	for input, want := range cases {
		if got := extractID(input); got != want {
			t.Fatalf("extractID(%q) = %q, want %q", input, got, want)
		}
	}
}
