package fetch

import (
	"context"
	"log/slog"

	"paperfetcher/internal/domain"
	"paperfetcher/internal/ports"
)

// Service implements ports.PaperSource by sweeping every configured partition
// sequentially and merging the results. Partial partition failures shrink the
// result set instead of failing the run.
type Service struct {
	reader     *Reader
	partitions []string
	logger     *slog.Logger
}

var _ ports.PaperSource = (*Service)(nil)

// NewService wires a page fetcher with the partition labels to sweep.
func NewService(fetcher PageFetcher, partitions []string, pageSize, maxPages int, logger *slog.Logger) *Service {
	return &Service{
		reader:     NewReader(fetcher, pageSize, maxPages, logger),
		partitions: partitions,
		logger:     logger,
	}
}

// FetchWindow sweeps each partition up to the window start and deduplicates
// across partitions, first-seen-wins. Output order is partition order then
// page order.
func (s *Service) FetchWindow(ctx context.Context, window ports.FetchWindow) ([]domain.Paper, error) {
	budget := window.MaxItems

	sequences := make([][]domain.Paper, 0, len(s.partitions))
	for _, partition := range s.partitions {
		if window.MaxItems > 0 && budget <= 0 {
			break
		}

		papers := s.reader.Sweep(ctx, partition, window.Start, budget)
		s.debug("partition swept", "partition", partition, "papers", len(papers))
		sequences = append(sequences, papers)

		if window.MaxItems > 0 {
			budget -= len(papers)
		}
	}

	merged := Merge(sequences...)
	s.debug("fetch window done", "partitions", len(s.partitions), "unique_papers", len(merged))
	return merged, nil
}

func (s *Service) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
