package parser

import (
	"context"
	"fmt"
	"log/slog"

	"paperfetcher/internal/config"
	"paperfetcher/internal/domain"
	"paperfetcher/internal/fetch"
	"paperfetcher/internal/ports"
	"paperfetcher/internal/scanner"
)

// StrategySource implements PaperSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sites    []config.SiteConfig
	logger   *slog.Logger
}

var _ ports.PaperSource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with config-defined sites.
func NewStrategySource(reg *scanner.Registry, sites []config.SiteConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sites:    sites,
		logger:   log,
	}
}

// FetchWindow iterates over configured sites, executes their scanners, and
// deduplicates across sites first-seen-wins.
func (s *StrategySource) FetchWindow(ctx context.Context, window ports.FetchWindow) ([]domain.Paper, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.debug("fetch window", "sites", len(s.sites), "start", window.Start.Format("2006-01-02"))

	sequences := make([][]domain.Paper, 0, len(s.sites))
	for _, site := range s.sites {
		strategy, err := s.registry.Resolve(site.Scanner)
		if err != nil {
			return nil, fmt.Errorf("site %s: %w", site.Name, err)
		}

		req := scanner.Request{
			Window:     window,
			SiteName:   site.Name,
			Categories: toScannerCategories(site.Categories),
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			s.debug("site scan failed, keeping partial results", "site", site.Name, "error", err)
			continue
		}

		s.debug("site produced papers", "site", site.Name, "count", len(results))
		sequences = append(sequences, results)
	}

	merged := fetch.Merge(sequences...)
	s.debug("strategy source done", "unique_papers", len(merged))
	return merged, nil
}

func toScannerCategories(cfg []config.CategoryConfig) []scanner.Category {
	categories := make([]scanner.Category, 0, len(cfg))
	for _, cat := range cfg {
		categories = append(categories, scanner.Category{
			Name: cat.Name,
			URL:  cat.URL,
		})
	}
	return categories
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
