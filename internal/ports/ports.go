package ports

import (
	"context"
	"time"

	"paperfetcher/internal/domain"
)

// FetchWindow bounds a single fetch run: papers updated within [Start, End].
// MaxItems caps how many papers a source may return for the whole window.
type FetchWindow struct {
	Start    time.Time
	End      time.Time
	MaxItems int
}

// PaperSource pulls fresh papers from upstream providers.
type PaperSource interface {
	FetchWindow(ctx context.Context, window FetchWindow) ([]domain.Paper, error)
}

// RelevanceClassifier decides whether one paper belongs to the tracked topic.
// Implementations must be stateless and safe for concurrent calls.
type RelevanceClassifier interface {
	Classify(ctx context.Context, title, abstract string) (bool, error)
}

// Sink appends formatted papers to the destination document. Formatting,
// insertion position, and commit semantics are the sink's concern.
type Sink interface {
	AppendPapers(ctx context.Context, papers []domain.Paper, sectionTitle string) error
}

// PaperRepository persists processed papers for cross-run deduplication.
type PaperRepository interface {
	AlreadyProcessed(ctx context.Context, ids []string) (map[string]bool, error)
	SaveProcessed(ctx context.Context, paper domain.ProcessedPaper) error
}

// Notifier streams run digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
