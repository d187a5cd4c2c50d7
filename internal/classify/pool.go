package classify

import (
	"context"
	"log/slog"
	"sync"

	"paperfetcher/internal/domain"
	"paperfetcher/internal/ports"
)

// Pool runs relevance classification with a fixed ceiling on in-flight calls.
// The semaphore is a buffered channel, so there is no initialization that can
// fail; a limit of 1 is plain sequential dispatch through the same path.
type Pool struct {
	limit  int
	logger *slog.Logger
}

// NewPool builds a pool; limits below 1 are clamped to 1.
func NewPool(limit int, logger *slog.Logger) *Pool {
	if limit < 1 {
		limit = 1
	}
	return &Pool{limit: limit, logger: logger}
}

// Run classifies every paper and returns exactly one verdict per input paper,
// in input order. Calls are dispatched in input order with at most limit in
// flight. A failed call marks that paper not relevant with the error attached;
// it never blocks or cancels the others.
func (p *Pool) Run(ctx context.Context, papers []domain.Paper, classifier ports.RelevanceClassifier) []domain.ClassifiedPaper {
	results := make([]domain.ClassifiedPaper, len(papers))

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.limit)

	for i, paper := range papers {
		sem <- struct{}{}
		wg.Add(1)

		go func(idx int, paper domain.Paper) {
			defer wg.Done()
			defer func() { <-sem }()

			relevant, err := classifier.Classify(ctx, paper.Title, paper.Abstract)
			if err != nil {
				p.warn("classification failed", "paper", paper.ID, "error", err)
				relevant = false
			}
			results[idx] = domain.ClassifiedPaper{
				Paper:   paper,
				Verdict: domain.Verdict{PaperID: paper.ID, Relevant: relevant, Err: err},
			}
		}(i, paper)
	}

	wg.Wait()
	return results
}

// Relevant filters classified papers down to the ones with a positive verdict.
func Relevant(classified []domain.ClassifiedPaper) []domain.Paper {
	var relevant []domain.Paper
	for _, c := range classified {
		if c.Verdict.Relevant {
			relevant = append(relevant, c.Paper)
		}
	}
	return relevant
}

func (p *Pool) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
