package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"paperfetcher/internal/classify"
	"paperfetcher/internal/domain"
	"paperfetcher/internal/fetch"
	"paperfetcher/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
// Repository, Sink, and Notifier are optional; a nil adapter disables that
// step.
type PipelineDeps struct {
	Source     ports.PaperSource
	Classifier ports.RelevanceClassifier
	Repository ports.PaperRepository
	Sink       ports.Sink
	Notifier   ports.Notifier
	Pool       *classify.Pool
	Logger     *slog.Logger
}

// Pipeline implements the fetch → dedup → classify → publish workflow.
type Pipeline struct {
	source     ports.PaperSource
	classifier ports.RelevanceClassifier
	repository ports.PaperRepository
	sink       ports.Sink
	notifier   ports.Notifier
	pool       *classify.Pool
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	pool := deps.Pool
	if pool == nil {
		pool = classify.NewPool(1, deps.Logger)
	}
	return &Pipeline{
		source:     deps.Source,
		classifier: deps.Classifier,
		repository: deps.Repository,
		sink:       deps.Sink,
		notifier:   deps.Notifier,
		pool:       pool,
		logger:     deps.Logger,
	}
}

// ProcessWindow runs one full pass over the window. Per-item and per-page
// failures shrink the result set; only a source or sink failure is returned.
func (p *Pipeline) ProcessWindow(ctx context.Context, window ports.FetchWindow, sectionTitle string) error {
	if p.source == nil || p.classifier == nil {
		return fmt.Errorf("pipeline misconfigured: source and classifier are required")
	}

	papers, err := p.source.FetchWindow(ctx, window)
	if err != nil {
		return fmt.Errorf("fetch window: %w", err)
	}
	p.info("papers fetched", "count", len(papers))

	fetch.SortByUpdatedDesc(papers)
	papers = p.dropProcessed(ctx, papers)
	if len(papers) == 0 {
		p.info("nothing new to classify")
		return nil
	}

	classified := p.pool.Run(ctx, papers, p.classifier)
	relevant := classify.Relevant(classified)
	p.info("classification done", "total", len(classified), "relevant", len(relevant))

	if len(relevant) == 0 {
		p.recordVerdicts(ctx, classified, nil)
		return nil
	}

	if p.sink != nil {
		if err := p.sink.AppendPapers(ctx, relevant, sectionTitle); err != nil {
			return fmt.Errorf("append papers: %w", err)
		}
	}

	p.recordVerdicts(ctx, classified, relevant)

	if p.notifier != nil {
		if err := p.notifier.PublishDigest(ctx, buildDigest(relevant)); err != nil {
			p.warn("digest notification failed", "error", err)
		}
	}

	return nil
}

// dropProcessed filters out papers already seen in earlier runs. A repository
// failure only disables the skip for this run.
func (p *Pipeline) dropProcessed(ctx context.Context, papers []domain.Paper) []domain.Paper {
	if p.repository == nil || len(papers) == 0 {
		return papers
	}

	ids := make([]string, len(papers))
	for i, paper := range papers {
		ids[i] = paper.ID
	}

	seen, err := p.repository.AlreadyProcessed(ctx, ids)
	if err != nil {
		p.warn("processed lookup failed, classifying everything", "error", err)
		return papers
	}

	fresh := papers[:0]
	for _, paper := range papers {
		if !seen[paper.ID] {
			fresh = append(fresh, paper)
		}
	}
	p.info("cross-run dedup", "skipped", len(papers)-len(fresh))
	return fresh
}

func (p *Pipeline) recordVerdicts(ctx context.Context, classified []domain.ClassifiedPaper, published []domain.Paper) {
	if p.repository == nil {
		return
	}

	publishedIDs := make(map[string]bool, len(published))
	for _, paper := range published {
		publishedIDs[paper.ID] = true
	}

	for _, c := range classified {
		status := domain.StatusRejected
		if publishedIDs[c.Paper.ID] {
			status = domain.StatusPublished
		} else if c.Verdict.Relevant {
			status = domain.StatusRelevant
		}

		err := p.repository.SaveProcessed(ctx, domain.ProcessedPaper{
			Paper:  c.Paper,
			Status: status,
		})
		if err != nil {
			p.warn("persist verdict failed", "paper", c.Paper.ID, "error", err)
		}
	}
}

func buildDigest(papers []domain.Paper) string {
	var formatted string
	formatted = fmt.Sprintf("Added %d papers on %s\n\n",
		len(papers), time.Now().UTC().Format("2006-01-02"))
	for _, paper := range papers {
		formatted += fmt.Sprintf("- %s\n%s\n\n", paper.Title, paper.URL)
	}
	return formatted
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
