package usecase

import (
	"fmt"
	"time"

	"paperfetcher/internal/config"
	"paperfetcher/internal/ports"
)

// WindowPlan derives the fetch window and README section title for one run
// from the configured mode.
type WindowPlan struct {
	Mode               string
	Days               int
	Years              int
	MaxItems           int
	HistoricalMaxItems int
}

// PlanFromConfig maps fetch configuration onto a plan with sane minimums.
func PlanFromConfig(cfg config.FetchConfig) WindowPlan {
	plan := WindowPlan{
		Mode:               cfg.Mode,
		Days:               cfg.Days,
		Years:              cfg.Years,
		MaxItems:           cfg.MaxItems,
		HistoricalMaxItems: cfg.HistoricalMaxItems,
	}
	if plan.Days < 1 {
		plan.Days = 1
	}
	if plan.Years < 1 {
		plan.Years = 2
	}
	return plan
}

// At resolves the window for a given trigger time. Daily mode returns an
// empty title, which lets the sink pick its timestamp default.
func (p WindowPlan) At(now time.Time) (ports.FetchWindow, string) {
	now = now.UTC()

	if p.Mode == config.ModeHistorical {
		window := ports.FetchWindow{
			Start:    now.AddDate(0, 0, -p.Years*365),
			End:      now,
			MaxItems: p.HistoricalMaxItems,
		}
		title := fmt.Sprintf("Historical LLM Bias Papers (Past %d Years)", p.Years)
		return window, title
	}

	window := ports.FetchWindow{
		Start:    now.AddDate(0, 0, -p.Days),
		End:      now,
		MaxItems: p.MaxItems,
	}
	return window, ""
}
