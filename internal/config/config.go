package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"

	configPathEnv     = "PAPER_FETCHER_CONFIG"
	openAIAPIKeyEnv   = "OPENAI_API_KEY"
	openAIModelEnv    = "OPENAI_MODEL"
	githubTokenEnv    = "TARGET_REPO_TOKEN"
	githubRepoEnv     = "TARGET_REPO_NAME"
	fetchModeEnv      = "FETCH_MODE"
	fetchDaysEnv      = "FETCH_DAYS"
	databaseDSNEnv    = "DATABASE_DSN"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
)

// Fetch modes supported by the pipeline.
const (
	ModeDaily      = "daily"
	ModeHistorical = "historical"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Arxiv         ArxivConfig        `yaml:"arxiv"`
	Fetch         FetchConfig        `yaml:"fetch"`
	Classifier    ClassifierConfig   `yaml:"classifier"`
	OpenAI        OpenAIConfig       `yaml:"openai"`
	GitHub        GitHubConfig       `yaml:"github"`
	Database      DatabaseConfig     `yaml:"database"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Sites         []SiteConfig       `yaml:"sites"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ArxivConfig describes how to query the arXiv export API.
type ArxivConfig struct {
	BaseURL    string   `yaml:"baseUrl"`
	Categories []string `yaml:"categories"`
	PageSize   int      `yaml:"pageSize"`
	MaxPages   int      `yaml:"maxPages"`
}

// FetchConfig selects the fetch window and the source strategy.
type FetchConfig struct {
	Source             string `yaml:"source"`
	Mode               string `yaml:"mode"`
	Days               int    `yaml:"days"`
	Years              int    `yaml:"years"`
	MaxItems           int    `yaml:"maxItems"`
	HistoricalMaxItems int    `yaml:"historicalMaxItems"`
}

// ClassifierConfig picks the relevance strategy and its concurrency ceiling.
type ClassifierConfig struct {
	Strategy    string `yaml:"strategy"`
	Concurrency int    `yaml:"concurrency"`
}

// OpenAIConfig defines how to contact the chat-completions API.
type OpenAIConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// GitHubConfig identifies the destination repository document.
type GitHubConfig struct {
	Token      string `yaml:"token"`
	Repository string `yaml:"repository"`
	Branch     string `yaml:"branch"`
	ReadmePath string `yaml:"readmePath"`
}

// DatabaseConfig describes the optional Postgres dedup store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SchedulerConfig defines recurring-run behavior for daemon mode.
type SchedulerConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Interval string         `yaml:"interval"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// IntervalDuration parses the interval string, reverting to 24h when it is
// missing or invalid.
func (s SchedulerConfig) IntervalDuration() time.Duration {
	d, err := time.ParseDuration(s.Interval)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// SiteConfig describes a single site with its scanner strategy, used by the
// listing-page fallback source.
type SiteConfig struct {
	Name       string           `yaml:"name"`
	Scanner    string           `yaml:"scanner"`
	Categories []CategoryConfig `yaml:"categories"`
}

// CategoryConfig holds a concrete listing endpoint to scan.
type CategoryConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

// Validate reports precondition failures that should abort the run. Missing
// credentials are the only fatal class; everything else degrades at runtime.
func (c Config) Validate() error {
	if c.Classifier.Strategy == "openai" && c.OpenAI.APIKey == "" {
		return fmt.Errorf("config: %s is required for the openai classifier", openAIAPIKeyEnv)
	}
	if c.GitHub.Repository != "" && c.GitHub.Token == "" {
		return fmt.Errorf("config: %s is required to update %s", githubTokenEnv, c.GitHub.Repository)
	}
	if c.Classifier.Concurrency < 1 {
		return fmt.Errorf("config: classifier concurrency must be at least 1")
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(openAIAPIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv(openAIModelEnv); v != "" {
		c.OpenAI.Model = v
	}
	if v := os.Getenv(githubTokenEnv); v != "" {
		c.GitHub.Token = v
	}
	if v := os.Getenv(githubRepoEnv); v != "" {
		c.GitHub.Repository = v
	}
	if v := os.Getenv(fetchModeEnv); v != "" {
		c.Fetch.Mode = v
	}
	if v := os.Getenv(fetchDaysEnv); v != "" {
		if days, err := parsePositiveInt(v); err != nil {
			log.Printf("config: invalid %s=%q: %v", fetchDaysEnv, v, err)
		} else {
			c.Fetch.Days = days
		}
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func parsePositiveInt(value string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("must be positive")
	}
	return n, nil
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Arxiv.BaseURL != "" {
		base.Arxiv.BaseURL = override.Arxiv.BaseURL
	}
	if len(override.Arxiv.Categories) > 0 {
		base.Arxiv.Categories = override.Arxiv.Categories
	}
	if override.Arxiv.PageSize > 0 {
		base.Arxiv.PageSize = override.Arxiv.PageSize
	}
	if override.Arxiv.MaxPages > 0 {
		base.Arxiv.MaxPages = override.Arxiv.MaxPages
	}

	if override.Fetch.Source != "" {
		base.Fetch.Source = override.Fetch.Source
	}
	if override.Fetch.Mode != "" {
		base.Fetch.Mode = override.Fetch.Mode
	}
	if override.Fetch.Days > 0 {
		base.Fetch.Days = override.Fetch.Days
	}
	if override.Fetch.Years > 0 {
		base.Fetch.Years = override.Fetch.Years
	}
	if override.Fetch.MaxItems > 0 {
		base.Fetch.MaxItems = override.Fetch.MaxItems
	}
	if override.Fetch.HistoricalMaxItems > 0 {
		base.Fetch.HistoricalMaxItems = override.Fetch.HistoricalMaxItems
	}

	if override.Classifier.Strategy != "" {
		base.Classifier.Strategy = override.Classifier.Strategy
	}
	if override.Classifier.Concurrency > 0 {
		base.Classifier.Concurrency = override.Classifier.Concurrency
	}

	if override.OpenAI.Endpoint != "" {
		base.OpenAI.Endpoint = override.OpenAI.Endpoint
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}
	if override.OpenAI.SystemPrompt != "" {
		base.OpenAI.SystemPrompt = override.OpenAI.SystemPrompt
	}

	if override.GitHub.Token != "" {
		base.GitHub.Token = override.GitHub.Token
	}
	if override.GitHub.Repository != "" {
		base.GitHub.Repository = override.GitHub.Repository
	}
	if override.GitHub.Branch != "" {
		base.GitHub.Branch = override.GitHub.Branch
	}
	if override.GitHub.ReadmePath != "" {
		base.GitHub.ReadmePath = override.GitHub.ReadmePath
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Scheduler.Enabled {
		base.Scheduler.Enabled = true
	}
	if override.Scheduler.Interval != "" {
		base.Scheduler.Interval = override.Scheduler.Interval
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if len(override.Sites) > 0 {
		base.Sites = override.Sites
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Arxiv: ArxivConfig{
			BaseURL: "https://export.arxiv.org/api/query",
			Categories: []string{
				"cs.AI", "cs.CL", "cs.CV", "cs.LG", "cs.NE",
				"cs.RO", "cs.IR", "cs.HC", "stat.ML",
			},
			PageSize: 100,
			MaxPages: 50,
		},
		Fetch: FetchConfig{
			Source:             "api",
			Mode:               ModeDaily,
			Days:               1,
			Years:              2,
			MaxItems:           1000,
			HistoricalMaxItems: 5000,
		},
		Classifier: ClassifierConfig{Strategy: "openai", Concurrency: 16},
		OpenAI: OpenAIConfig{
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4o",
			SystemPrompt: defaultSystemPrompt,
		},
		GitHub: GitHubConfig{
			Branch:     "main",
			ReadmePath: "README.md",
		},
		Scheduler: SchedulerConfig{
			Interval: "24h",
			Timezone: defaultTimezone,
			location: tz,
		},
		Sites: []SiteConfig{
			{
				Name:    "arxiv-listing",
				Scanner: "arxiv-listing",
				Categories: []CategoryConfig{
					{Name: "cs.AI", URL: "https://arxiv.org/list/cs.AI/recent"},
				},
			},
		},
	}
}

const defaultSystemPrompt = `You are an expert researcher in AI/ML bias and fairness.

Your task is to analyze a paper's title and abstract to determine if it's relevant to LLM (Large Language Model) bias and fairness research.

A paper is relevant if it discusses:
- Bias in large language models, generative AI, or foundation models
- Fairness issues in NLP models or text generation
- Ethical concerns with language models
- Demographic bias in AI systems
- Alignment and safety of language models
- Bias evaluation or mitigation in NLP

Respond with exactly "1" if the paper is relevant, or "0" if it's not relevant.
Do not include any other text in your response.`
