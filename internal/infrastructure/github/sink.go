package github

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	gogithub "github.com/google/go-github/v68/github"

	"paperfetcher/internal/config"
	"paperfetcher/internal/domain"
	"paperfetcher/internal/ports"
)

// ReadmeSink appends formatted paper sections to a repository README through
// the GitHub contents API. New sections always go to the end of the document.
type ReadmeSink struct {
	client *gogithub.Client
	owner  string
	repo   string
	branch string
	path   string
	logger *slog.Logger
}

var _ ports.Sink = (*ReadmeSink)(nil)

// NewReadmeSink builds a sink from configuration. Repository must be in
// owner/name form.
func NewReadmeSink(cfg config.GitHubConfig, logger *slog.Logger) (*ReadmeSink, error) {
	client := gogithub.NewClient(nil).WithAuthToken(cfg.Token)
	return NewReadmeSinkWithClient(client, cfg, logger)
}

// NewReadmeSinkWithClient accepts a preconfigured client, which tests use to
// point at a local server.
func NewReadmeSinkWithClient(client *gogithub.Client, cfg config.GitHubConfig, logger *slog.Logger) (*ReadmeSink, error) {
	owner, repo, ok := strings.Cut(cfg.Repository, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("github repository must be owner/name, got %q", cfg.Repository)
	}

	branch := cfg.Branch
	if branch == "" {
		branch = "main"
	}
	path := cfg.ReadmePath
	if path == "" {
		path = "README.md"
	}

	return &ReadmeSink{
		client: client,
		owner:  owner,
		repo:   repo,
		branch: branch,
		path:   path,
		logger: logger,
	}, nil
}

// AppendPapers reads the current README, appends one section with all papers,
// and commits the update.
func (s *ReadmeSink) AppendPapers(ctx context.Context, papers []domain.Paper, sectionTitle string) error {
	if len(papers) == 0 {
		return nil
	}

	if sectionTitle == "" {
		sectionTitle = fmt.Sprintf("Papers Updated on %s",
			time.Now().UTC().Format("2006-01-02 15:04 UTC"))
	}

	file, _, _, err := s.client.Repositories.GetContents(ctx, s.owner, s.repo, s.path,
		&gogithub.RepositoryContentGetOptions{Ref: s.branch})
	if err != nil {
		return fmt.Errorf("get %s: %w", s.path, err)
	}
	if file == nil {
		return fmt.Errorf("%s is not a file", s.path)
	}

	current, err := file.GetContent()
	if err != nil {
		return fmt.Errorf("decode %s: %w", s.path, err)
	}

	updated := current + formatSection(papers, sectionTitle)
	message := fmt.Sprintf("Auto-update: Added %d new papers on %s",
		len(papers), time.Now().UTC().Format("2006-01-02"))

	_, _, err = s.client.Repositories.UpdateFile(ctx, s.owner, s.repo, s.path,
		&gogithub.RepositoryContentFileOptions{
			Message: gogithub.String(message),
			Content: []byte(updated),
			SHA:     file.SHA,
			Branch:  gogithub.String(s.branch),
		})
	if err != nil {
		return fmt.Errorf("update %s: %w", s.path, err)
	}

	if s.logger != nil {
		s.logger.Info("readme updated", "repo", s.owner+"/"+s.repo, "papers", len(papers))
	}
	return nil
}

func formatSection(papers []domain.Paper, sectionTitle string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n\n## %s\n\n", sectionTitle)
	for _, paper := range papers {
		fmt.Fprintf(&b, "### %s\n\n", paper.Title)
		fmt.Fprintf(&b, "**Authors:** %s\n\n", formatAuthors(paper.Authors))
		fmt.Fprintf(&b, "**Categories:** %s\n\n", strings.Join(paper.Categories, ", "))
		fmt.Fprintf(&b, "**Published:** %s\n\n", paper.PublishedAt.UTC().Format("2006-01-02"))
		fmt.Fprintf(&b, "**Abstract:** %s\n\n", paper.Abstract)
		fmt.Fprintf(&b, "**Link:** [arXiv:%s](%s)\n\n", paper.ID, paper.URL)
		b.WriteString("---\n\n")
	}

	return b.String()
}

func formatAuthors(authors []string) string {
	if len(authors) <= 3 {
		return strings.Join(authors, ", ")
	}
	return strings.Join(authors[:3], ", ") + " et al."
}
