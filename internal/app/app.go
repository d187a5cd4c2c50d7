package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"paperfetcher/internal/classify"
	"paperfetcher/internal/config"
	"paperfetcher/internal/fetch"
	"paperfetcher/internal/infrastructure/arxiv"
	githubsink "paperfetcher/internal/infrastructure/github"
	"paperfetcher/internal/infrastructure/keyword"
	"paperfetcher/internal/infrastructure/llm"
	"paperfetcher/internal/infrastructure/parser"
	"paperfetcher/internal/infrastructure/scheduler"
	"paperfetcher/internal/infrastructure/storage"
	"paperfetcher/internal/infrastructure/telegram"
	"paperfetcher/internal/logging"
	"paperfetcher/internal/ports"
	"paperfetcher/internal/scanner"
	"paperfetcher/internal/usecase"
)

// Application wires configuration to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	plan     usecase.WindowPlan
}

// New builds a runnable application instance from configuration.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	source, err := buildSource(cfg, baseLogger)
	if err != nil {
		return nil, err
	}

	classifier, err := buildClassifier(cfg)
	if err != nil {
		return nil, err
	}

	var sink ports.Sink
	if cfg.GitHub.Repository != "" {
		s, err := githubsink.NewReadmeSink(cfg.GitHub, logging.Component(baseLogger, "sink.github"))
		if err != nil {
			return nil, err
		}
		sink = s
	}

	var repository ports.PaperRepository
	if cfg.Database.DSN != "" {
		db, err := storage.Open(cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		repository = storage.NewPostgresRepository(db)
	}

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:     source,
		Classifier: classifier,
		Repository: repository,
		Sink:       sink,
		Notifier:   notifier,
		Pool:       classify.NewPool(cfg.Classifier.Concurrency, logging.Component(baseLogger, "classify")),
		Logger:     logging.Component(baseLogger, "pipeline"),
	})

	return &Application{
		cfg:      cfg,
		logger:   baseLogger,
		pipeline: pipeline,
		plan:     usecase.PlanFromConfig(cfg.Fetch),
	}, nil
}

// Run executes one pipeline pass, or keeps running on an interval when the
// scheduler is enabled.
func (a *Application) Run(ctx context.Context) error {
	if !a.cfg.Scheduler.Enabled {
		now := time.Now().In(a.cfg.Scheduler.Location())
		window, title := a.plan.At(now)
		return a.pipeline.ProcessWindow(ctx, window, title)
	}

	driver := scheduler.NewIntervalScheduler(a.cfg.Scheduler.IntervalDuration())
	runner := usecase.NewScheduler(driver, a.pipeline, a.plan, a.logger)
	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	return runner.Stop(context.Background())
}

func buildSource(cfg config.Config, baseLogger *slog.Logger) (ports.PaperSource, error) {
	switch cfg.Fetch.Source {
	case "", "api":
		client := arxiv.NewClient(cfg.Arxiv.BaseURL, nil)
		return fetch.NewService(
			client,
			cfg.Arxiv.Categories,
			cfg.Arxiv.PageSize,
			cfg.Arxiv.MaxPages,
			logging.Component(baseLogger, "source.arxiv"),
		), nil
	case "listing":
		registry := scanner.NewRegistry()
		registry.Register(parser.NewListingScanner(nil))
		return parser.NewStrategySource(registry, cfg.Sites, logging.Component(baseLogger, "source.listing")), nil
	default:
		return nil, fmt.Errorf("unknown fetch source %q", cfg.Fetch.Source)
	}
}

func buildClassifier(cfg config.Config) (ports.RelevanceClassifier, error) {
	switch cfg.Classifier.Strategy {
	case "", "openai":
		return llm.NewOpenAIClassifier(cfg.OpenAI), nil
	case "keyword":
		return keyword.New(), nil
	default:
		return nil, fmt.Errorf("unknown classifier strategy %q", cfg.Classifier.Strategy)
	}
}
