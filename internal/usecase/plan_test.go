package usecase

import (
	"testing"
	"time"

	"paperfetcher/internal/config"
)

func TestPlanDailyWindow(t *testing.T) {
	t.Parallel()

	plan := PlanFromConfig(config.FetchConfig{Mode: config.ModeDaily, Days: 3, MaxItems: 500})
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

	window, title := plan.At(now)
	if title != "" {
		t.Fatalf("daily mode should leave the title to the sink, got %q", title)
	}
	if !window.Start.Equal(now.AddDate(0, 0, -3)) {
		t.Fatalf("unexpected window start: %v", window.Start)
	}
	if window.MaxItems != 500 {
		t.Fatalf("unexpected item cap: %d", window.MaxItems)
	}
}

func TestPlanHistoricalWindow(t *testing.T) {
	t.Parallel()

	plan := PlanFromConfig(config.FetchConfig{Mode: config.ModeHistorical, Years: 2, HistoricalMaxItems: 5000})
	now := time.Date(2024, time.June, 10, 12, 0, 0, 0, time.UTC)

	window, title := plan.At(now)
	if title != "Historical LLM Bias Papers (Past 2 Years)" {
		t.Fatalf("unexpected title: %q", title)
	}
	if !window.Start.Equal(now.AddDate(0, 0, -730)) {
		t.Fatalf("unexpected window start: %v", window.Start)
	}
	if window.MaxItems != 5000 {
		t.Fatalf("unexpected item cap: %d", window.MaxItems)
	}
}
