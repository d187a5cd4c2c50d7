package fetch

import (
	"context"
	"log/slog"
	"time"

	"paperfetcher/internal/domain"
)

// PageFetcher issues one bounded-size page request against the remote search
// endpoint for a partition. Results must be ordered by descending recency.
type PageFetcher interface {
	FetchPage(ctx context.Context, partition string, offset, limit int) ([]domain.Paper, error)
}

// Reader sweeps one partition at a time with sequential page requests.
type Reader struct {
	fetcher  PageFetcher
	pageSize int
	maxPages int
	logger   *slog.Logger
}

// NewReader builds a reader; pageSize defaults to 100 and maxPages to 50.
func NewReader(fetcher PageFetcher, pageSize, maxPages int, logger *slog.Logger) *Reader {
	if pageSize < 1 {
		pageSize = 100
	}
	if maxPages < 1 {
		maxPages = 50
	}
	return &Reader{fetcher: fetcher, pageSize: pageSize, maxPages: maxPages, logger: logger}
}

// Sweep pages through a partition until an empty page, a short page, an item
// older than cutoff, or one of the safety ceilings. A zero cutoff disables the
// lower bound. A failed page request ends the sweep; whatever was collected so
// far is returned as-is.
func (r *Reader) Sweep(ctx context.Context, partition string, cutoff time.Time, maxItems int) []domain.Paper {
	if maxItems < 1 {
		maxItems = r.pageSize * r.maxPages
	}

	var collected []domain.Paper
	offset := 0

	for page := 0; page < r.maxPages; page++ {
		items, err := r.fetcher.FetchPage(ctx, partition, offset, r.pageSize)
		if err != nil {
			r.warn("page request failed, keeping partial results",
				"partition", partition, "offset", offset, "error", err)
			return collected
		}
		if len(items) == 0 {
			break
		}

		for _, item := range items {
			if !cutoff.IsZero() && item.UpdatedAt.Before(cutoff) {
				// Results are sorted by recency: everything past this point
				// is older, so the whole sweep stops here.
				r.debug("reached cutoff", "partition", partition, "cutoff", cutoff)
				return collected
			}
			collected = append(collected, item)
			if len(collected) >= maxItems {
				return collected
			}
		}

		if len(items) < r.pageSize {
			break
		}
		offset += r.pageSize
	}

	return collected
}

func (r *Reader) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

func (r *Reader) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
