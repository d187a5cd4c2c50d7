package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Arxiv.BaseURL != "https://export.arxiv.org/api/query" {
		t.Fatalf("unexpected base url: %s", cfg.Arxiv.BaseURL)
	}
	if cfg.Arxiv.PageSize != 100 || cfg.Arxiv.MaxPages != 50 {
		t.Fatalf("unexpected pagination defaults: %d/%d", cfg.Arxiv.PageSize, cfg.Arxiv.MaxPages)
	}
	if len(cfg.Arxiv.Categories) == 0 {
		t.Fatalf("default categories must not be empty")
	}
	if cfg.Fetch.Mode != ModeDaily || cfg.Fetch.Days != 1 {
		t.Fatalf("unexpected fetch defaults: %s/%d", cfg.Fetch.Mode, cfg.Fetch.Days)
	}
	if cfg.Classifier.Concurrency != 16 {
		t.Fatalf("unexpected default concurrency: %d", cfg.Classifier.Concurrency)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv(openAIAPIKeyEnv, "sk-test")
	t.Setenv(githubTokenEnv, "ghp-test")
	t.Setenv(githubRepoEnv, "acme/papers")
	t.Setenv(fetchModeEnv, ModeHistorical)
	t.Setenv(fetchDaysEnv, "7")

	cfg := Load()

	if cfg.OpenAI.APIKey != "sk-test" {
		t.Fatalf("OPENAI_API_KEY override not applied")
	}
	if cfg.GitHub.Token != "ghp-test" || cfg.GitHub.Repository != "acme/papers" {
		t.Fatalf("github overrides not applied: %+v", cfg.GitHub)
	}
	if cfg.Fetch.Mode != ModeHistorical || cfg.Fetch.Days != 7 {
		t.Fatalf("fetch overrides not applied: %+v", cfg.Fetch)
	}
}

func TestLoadMergesYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte(`
logging:
  level: debug
arxiv:
  categories: [cs.AI]
  pageSize: 25
classifier:
  strategy: keyword
  concurrency: 4
scheduler:
  enabled: true
  interval: 1h
  timezone: UTC
`)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()

	if cfg.Logging.Level != "debug" {
		t.Fatalf("logging level not merged: %s", cfg.Logging.Level)
	}
	if len(cfg.Arxiv.Categories) != 1 || cfg.Arxiv.Categories[0] != "cs.AI" {
		t.Fatalf("categories not merged: %v", cfg.Arxiv.Categories)
	}
	if cfg.Arxiv.PageSize != 25 {
		t.Fatalf("page size not merged: %d", cfg.Arxiv.PageSize)
	}
	if cfg.Arxiv.MaxPages != 50 {
		t.Fatalf("unset fields must keep defaults, got maxPages=%d", cfg.Arxiv.MaxPages)
	}
	if cfg.Classifier.Strategy != "keyword" || cfg.Classifier.Concurrency != 4 {
		t.Fatalf("classifier not merged: %+v", cfg.Classifier)
	}
	if !cfg.Scheduler.Enabled || cfg.Scheduler.IntervalDuration() != time.Hour {
		t.Fatalf("scheduler not merged: %+v", cfg.Scheduler)
	}
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()

	if err := cfg.Validate(); err == nil {
		t.Fatalf("openai strategy without a key must fail validation")
	}

	cfg.Classifier.Strategy = "keyword"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("keyword strategy needs no key: %v", err)
	}

	cfg.GitHub.Repository = "acme/papers"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("repository without a token must fail validation")
	}
	cfg.GitHub.Token = "ghp"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	cfg.Classifier.Concurrency = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("zero concurrency must fail validation")
	}
}
