package arxiv

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"paperfetcher/internal/domain"
	"paperfetcher/internal/fetch"
)

const defaultBaseURL = "https://export.arxiv.org/api/query"

// Client queries the arXiv export API with offset/limit pagination, sorted by
// descending submission date. One partition maps to one category query.
type Client struct {
	baseURL string
	client  *http.Client
	parser  *gofeed.Parser
}

var _ fetch.PageFetcher = (*Client)(nil)

// NewClient wires an HTTP client; baseURL defaults to the public export API.
func NewClient(baseURL string, client *http.Client) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: baseURL, client: client, parser: gofeed.NewParser()}
}

// FetchPage requests one page of papers for a category.
func (c *Client) FetchPage(ctx context.Context, category string, offset, limit int) ([]domain.Paper, error) {
	pageURL, err := c.buildQueryURL(category, offset, limit)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "paperfetcher/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arxiv returned %s", resp.Status)
	}

	feed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	papers := make([]domain.Paper, 0, len(feed.Items))
	for _, item := range feed.Items {
		paper, ok := paperFromItem(item)
		if !ok {
			continue
		}
		papers = append(papers, paper)
	}

	return papers, nil
}

func (c *Client) buildQueryURL(category string, offset, limit int) (string, error) {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url %s: %w", c.baseURL, err)
	}

	query := parsed.Query()
	query.Set("search_query", "cat:"+category)
	query.Set("sortBy", "submittedDate")
	query.Set("sortOrder", "descending")
	query.Set("start", strconv.Itoa(offset))
	query.Set("max_results", strconv.Itoa(limit))
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func paperFromItem(item *gofeed.Item) (domain.Paper, bool) {
	if item == nil || item.UpdatedParsed == nil {
		return domain.Paper{}, false
	}

	id := extractID(item.GUID)
	if id == "" {
		return domain.Paper{}, false
	}

	authors := make([]string, 0, len(item.Authors))
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			authors = append(authors, a.Name)
		}
	}

	published := *item.UpdatedParsed
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	}

	return domain.Paper{
		ID:          id,
		Title:       normalizeText(item.Title),
		Abstract:    normalizeText(item.Description),
		URL:         item.Link,
		Authors:     authors,
		Categories:  append([]string(nil), item.Categories...),
		PublishedAt: published.UTC(),
		UpdatedAt:   item.UpdatedParsed.UTC(),
	}, true
}

// extractID turns an entry id like http://arxiv.org/abs/2401.00001v2 into
// 2401.00001.
func extractID(entryID string) string {
	id := entryID
	if idx := strings.LastIndex(id, "/abs/"); idx >= 0 {
		id = id[idx+len("/abs/"):]
	}
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return strings.TrimSpace(id)
}

// normalizeText collapses the newlines and indentation arXiv inserts into
// titles and abstracts.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
