package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone    = "UTC"
	configPathEnv      = "NEWSDESK_CONFIG"
	databaseDSNEnv     = "DATABASE_DSN"
	appAuthTokenEnv    = "APP_AUTH_TOKEN"
	slackBotTokenEnv   = "SLACK_BOT_TOKEN"
	slackSigningEnv    = "SLACK_SIGNING_SECRET"
	slackChannelEnv    = "SLACK_CHANNEL_ID"
	openAIKeyEnv       = "OPENAI_API_KEY"
	openAIModelEnv     = "OPENAI_MODEL"
	wixAPIKeyEnv       = "WIX_API_KEY"
	wixSiteIDEnv       = "WIX_SITE_ID"
	wixCollectionEnv   = "WIX_COLLECTION_ID"
	newsAPIKeyEnv      = "NEWSAPI_KEY"
	newscatcherKeyEnv  = "NEWSCATCHER_KEY"
	mediastackKeyEnv   = "MEDIASTACK_KEY"
	maxItemsPerDayEnv  = "MAX_ITEMS_PER_DAY"
	defaultReporterEnv = "DEFAULT_REPORTER_NAME"
	artifactsDirEnv    = "ARTIFACTS_DIR"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Slack     SlackConfig     `yaml:"slack"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Wix       WixConfig       `yaml:"wix"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Limits    LimitsConfig    `yaml:"limits"`
	Feeds     []FeedConfig    `yaml:"feeds"`
	Providers ProviderConfig  `yaml:"providers"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Reporter  ReporterConfig  `yaml:"reporter"`
}

// LoggingConfig controls the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// ServerConfig describes the HTTP listener and its protection.
type ServerConfig struct {
	Port           string  `yaml:"port"`
	AuthToken      string  `yaml:"authToken"`
	RateLimitRPS   float64 `yaml:"rateLimitRps"`
	RateLimitBurst int     `yaml:"rateLimitBurst"`
}

// DatabaseConfig describes Postgres connection details.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SlackConfig wires signing and posting credentials.
type SlackConfig struct {
	BotToken      string `yaml:"botToken"`
	SigningSecret string `yaml:"signingSecret"`
	ChannelID     string `yaml:"channelId"`
}

// OpenAIConfig defines how to contact the drafting model.
type OpenAIConfig struct {
	Endpoint      string `yaml:"endpoint"`
	Model         string `yaml:"model"`
	APIKey        string `yaml:"apiKey"`
	SummaryPrompt string `yaml:"summaryPrompt"`
	TitlesPrompt  string `yaml:"titlesPrompt"`
}

// WixConfig targets the CMS collection that receives published articles.
type WixConfig struct {
	APIBase      string `yaml:"apiBase"`
	APIKey       string `yaml:"apiKey"`
	SiteID       string `yaml:"siteId"`
	CollectionID string `yaml:"collectionId"`
}

// SchedulerConfig defines when the drafting pipeline should run.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// LimitsConfig bounds candidate selection and drafting volume.
type LimitsConfig struct {
	MaxItemsPerDay int `yaml:"maxItemsPerDay"`
	FreshnessHours int `yaml:"freshnessHours"`
	MinTitleLength int `yaml:"minTitleLength"`
}

// FeedConfig names a homepage whose RSS/Atom feeds are discovered at runtime.
type FeedConfig struct {
	Name     string `yaml:"name"`
	Homepage string `yaml:"homepage"`
}

// ProviderConfig groups the search-API backfills.
type ProviderConfig struct {
	NewsAPI     NewsAPIConfig     `yaml:"newsapi"`
	Newscatcher NewscatcherConfig `yaml:"newscatcher"`
	Mediastack  MediastackConfig  `yaml:"mediastack"`
}

// NewsAPIConfig drives the newsapi.org everything endpoint.
type NewsAPIConfig struct {
	Enabled  bool     `yaml:"enabled"`
	APIKey   string   `yaml:"apiKey"`
	Query    string   `yaml:"query"`
	Language string   `yaml:"language"`
	PageSize int      `yaml:"pageSize"`
	Domains  []string `yaml:"domains"`
}

// NewscatcherConfig drives the Newscatcher v3 search endpoint.
type NewscatcherConfig struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"apiKey"`
	Query   string `yaml:"query"`
	Lang    string `yaml:"lang"`
}

// MediastackConfig drives the mediastack news endpoint.
type MediastackConfig struct {
	Enabled    bool   `yaml:"enabled"`
	APIKey     string `yaml:"apiKey"`
	Keywords   string `yaml:"keywords"`
	Languages  string `yaml:"languages"`
	Categories string `yaml:"categories"`
}

// ArtifactsConfig points at the local sink for per-run audit artifacts.
type ArtifactsConfig struct {
	Dir string `yaml:"dir"`
}

// ReporterConfig sets the byline fallback for drafted articles.
type ReporterConfig struct {
	DefaultName string `yaml:"defaultName"`
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

	if len(cfg.Feeds) == 0 {
		cfg.Feeds = defaultConfig().Feeds
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(appAuthTokenEnv); v != "" {
		c.Server.AuthToken = v
	}

	if v := os.Getenv(slackBotTokenEnv); v != "" {
		c.Slack.BotToken = v
	}

	if v := os.Getenv(slackSigningEnv); v != "" {
		c.Slack.SigningSecret = v
	}

	if v := os.Getenv(slackChannelEnv); v != "" {
		c.Slack.ChannelID = v
	}

	if v := os.Getenv(openAIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}

	if v := os.Getenv(openAIModelEnv); v != "" {
		c.OpenAI.Model = v
	}

	if v := os.Getenv(wixAPIKeyEnv); v != "" {
		c.Wix.APIKey = v
	}

	if v := os.Getenv(wixSiteIDEnv); v != "" {
		c.Wix.SiteID = v
	}

	if v := os.Getenv(wixCollectionEnv); v != "" {
		c.Wix.CollectionID = v
	}

	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.Providers.NewsAPI.APIKey = v
	}

	if v := os.Getenv(newscatcherKeyEnv); v != "" {
		c.Providers.Newscatcher.APIKey = v
	}

	if v := os.Getenv(mediastackKeyEnv); v != "" {
		c.Providers.Mediastack.APIKey = v
	}

	if v := os.Getenv(maxItemsPerDayEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.Limits.MaxItemsPerDay = n
		}
	}

	if v := os.Getenv(defaultReporterEnv); v != "" {
		c.Reporter.DefaultName = v
	}

	if v := os.Getenv(artifactsDirEnv); v != "" {
		c.Artifacts.Dir = v
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

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Server.Port != "" {
		base.Server.Port = override.Server.Port
	}
	if override.Server.AuthToken != "" {
		base.Server.AuthToken = override.Server.AuthToken
	}
	if override.Server.RateLimitRPS > 0 {
		base.Server.RateLimitRPS = override.Server.RateLimitRPS
	}
	if override.Server.RateLimitBurst > 0 {
		base.Server.RateLimitBurst = override.Server.RateLimitBurst
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Slack.BotToken != "" {
		base.Slack.BotToken = override.Slack.BotToken
	}
	if override.Slack.SigningSecret != "" {
		base.Slack.SigningSecret = override.Slack.SigningSecret
	}
	if override.Slack.ChannelID != "" {
		base.Slack.ChannelID = override.Slack.ChannelID
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
	if override.OpenAI.SummaryPrompt != "" {
		base.OpenAI.SummaryPrompt = override.OpenAI.SummaryPrompt
	}
	if override.OpenAI.TitlesPrompt != "" {
		base.OpenAI.TitlesPrompt = override.OpenAI.TitlesPrompt
	}

	if override.Wix.APIBase != "" {
		base.Wix.APIBase = override.Wix.APIBase
	}
	if override.Wix.APIKey != "" {
		base.Wix.APIKey = override.Wix.APIKey
	}
	if override.Wix.SiteID != "" {
		base.Wix.SiteID = override.Wix.SiteID
	}
	if override.Wix.CollectionID != "" {
		base.Wix.CollectionID = override.Wix.CollectionID
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Limits.MaxItemsPerDay > 0 {
		base.Limits.MaxItemsPerDay = override.Limits.MaxItemsPerDay
	}
	if override.Limits.FreshnessHours > 0 {
		base.Limits.FreshnessHours = override.Limits.FreshnessHours
	}
	if override.Limits.MinTitleLength > 0 {
		base.Limits.MinTitleLength = override.Limits.MinTitleLength
	}

	if len(override.Feeds) > 0 {
		base.Feeds = override.Feeds
	}

	if override.Providers.NewsAPI.Enabled {
		base.Providers.NewsAPI = override.Providers.NewsAPI
	}
	if override.Providers.Newscatcher.Enabled {
		base.Providers.Newscatcher = override.Providers.Newscatcher
	}
	if override.Providers.Mediastack.Enabled {
		base.Providers.Mediastack = override.Providers.Mediastack
	}

	if override.Artifacts.Dir != "" {
		base.Artifacts = override.Artifacts
	}

	if override.Reporter.DefaultName != "" {
		base.Reporter = override.Reporter
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Server: ServerConfig{
			Port:           "8080",
			RateLimitRPS:   5,
			RateLimitBurst: 10,
		},
		Database:  DatabaseConfig{DSN: ""},
		Scheduler: SchedulerConfig{CronExpression: "0 6 * * *", Timezone: defaultTimezone, location: tz},
		OpenAI: OpenAIConfig{
			Endpoint:      "https://api.openai.com/v1/chat/completions",
			Model:         "gpt-4o-mini",
			SummaryPrompt: "You summarize AI industry news for a general audience.",
			TitlesPrompt:  "You propose exactly three short punchy headlines as a JSON array of strings.",
		},
		Wix: WixConfig{APIBase: "https://www.wixapis.com"},
		Limits: LimitsConfig{
			MaxItemsPerDay: 6,
			FreshnessHours: 72,
			MinTitleLength: 20,
		},
		Feeds: []FeedConfig{
			{Name: "openai", Homepage: "https://openai.com/blog"},
			{Name: "anthropic", Homepage: "https://www.anthropic.com/news"},
			{Name: "techcrunch", Homepage: "https://techcrunch.com"},
		},
		Providers: ProviderConfig{
			NewsAPI: NewsAPIConfig{
				Query:    "generative AI OR LLM",
				Language: "en",
				PageSize: 25,
			},
			Newscatcher: NewscatcherConfig{Query: "generative AI OR LLM", Lang: "en"},
			Mediastack: MediastackConfig{
				Keywords:   "generative AI OR LLM",
				Languages:  "en",
				Categories: "technology",
			},
		},
		Reporter: ReporterConfig{DefaultName: "AI-Generative News Desk"},
	}
}
