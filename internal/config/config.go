package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "TALENT_RADAR_CONFIG"

	notionTokenEnv       = "NOTION_TOKEN"
	registryDBEnv        = "NOTION_TALENT_RADAR_DB_ID"
	articlesDBEnv        = "NOTION_ARTICLES_DB_ID"
	podcastsDBEnv        = "NOTION_PODCASTS_DB_ID"
	clientsDBEnv         = "NOTION_CLIENTS_DB_ID"
	profilePageEnv       = "NOTION_PROFILE_PAGE_ID"
	llmProviderEnv       = "LLM_PROVIDER"
	llmModelEnv          = "LLM_MODEL"
	anthropicAPIKeyEnv   = "ANTHROPIC_API_KEY"
	openAIAPIKeyEnv      = "OPENAI_API_KEY"
	geminiAPIKeyEnv      = "GEMINI_API_KEY"
	databaseDSNEnv       = "DATABASE_DSN"
	registryBackendEnv   = "REGISTRY_BACKEND"
	redisAddrEnv         = "REDIS_ADDR"
	telegramTokenEnv     = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv    = "TELEGRAM_CHAT_ID"
	portEnv              = "PORT"
	logLevelEnv          = "LOG_LEVEL"
	articlesSourceName   = "articles"
	podcastsSourceName   = "podcasts"
	defaultNotionBaseURL = "https://api.notion.com/v1"
)

// Registry backends.
const (
	BackendNotion   = "notion"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// LLM providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

var defaultModels = map[string]string{
	ProviderAnthropic: "claude-sonnet-4-5",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderGemini:    "gemini-2.0-flash",
}

// Enrichment modes for body-less documents.
const (
	EnrichNone   = "none"
	EnrichNotion = "notion"
	EnrichWeb    = "web"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Server        ServerConfig       `yaml:"server"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Notion        NotionConfig       `yaml:"notion"`
	Registry      RegistryConfig     `yaml:"registry"`
	LLM           LLMConfig          `yaml:"llm"`
	Extraction    ExtractionConfig   `yaml:"extraction"`
	Lock          LockConfig         `yaml:"lock"`
	Notifications NotificationConfig `yaml:"notifications"`
	Sources       []SourceConfig     `yaml:"sources"`
}

// LoggingConfig selects slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string        `yaml:"addr"`
	RunTimeout  time.Duration `yaml:"runTimeout"`
	CORSOrigins []string      `yaml:"corsOrigins"`
}

// SchedulerConfig defines when the radar runs on its own.
type SchedulerConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Interval time.Duration  `yaml:"interval"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NotionConfig wires the content store and its well-known pages.
type NotionConfig struct {
	Token              string        `yaml:"token"`
	BaseURL            string        `yaml:"baseUrl"`
	Version            string        `yaml:"version"`
	MinRequestGap      time.Duration `yaml:"minRequestGap"`
	Timeout            time.Duration `yaml:"timeout"`
	ProfilePageID      string        `yaml:"profilePageId"`
	ClientsDatabaseID  string        `yaml:"clientsDatabaseId"`
	RegistryDatabaseID string        `yaml:"registryDatabaseId"`
}

// RegistryConfig picks where prospects are persisted.
type RegistryConfig struct {
	Backend     string `yaml:"backend"`
	DSN         string `yaml:"dsn"`
	UniqueNames bool   `yaml:"uniqueNames"`
}

// LLMConfig defines how to contact the extraction model. Endpoint overrides
// the API base URL for anthropic and gemini and the full chat URL for openai.
type LLMConfig struct {
	Provider     string        `yaml:"provider"`
	Model        string        `yaml:"model"`
	APIKey       string        `yaml:"apiKey"`
	Endpoint     string        `yaml:"endpoint"`
	MaxTokens    int           `yaml:"maxTokens"`
	Temperature  float64       `yaml:"temperature"`
	SystemPrompt string        `yaml:"systemPrompt"`
	Timeout      time.Duration `yaml:"timeout"`
}

// ExtractionConfig tunes a single radar run.
type ExtractionConfig struct {
	Window             time.Duration `yaml:"window"`
	PerItemCharCap     int           `yaml:"perItemCharCap"`
	MaxDocuments       int           `yaml:"maxDocuments"`
	MinMatchScore      int           `yaml:"minMatchScore"`
	DropBelowMinScore  bool          `yaml:"dropBelowMinScore"`
	MinCandidates      int           `yaml:"minCandidates"`
	MaxCandidates      int           `yaml:"maxCandidates"`
	RubricTemplatePath string        `yaml:"rubricTemplatePath"`
	FallbackProfile    string        `yaml:"fallbackProfile"`
	ProfileCacheTTL    time.Duration `yaml:"profileCacheTTL"`
	EnrichMode         string        `yaml:"enrichMode"`
	EnrichConcurrency  int           `yaml:"enrichConcurrency"`
	AppendConcurrency  int           `yaml:"appendConcurrency"`
	LookalikeSeeds     bool          `yaml:"lookalikeSeeds"`
}

// LockConfig enables the cross-process run lock when RedisAddr is set, or an
// in-process one when InProcess is true. Without either, runs are not serialized.
type LockConfig struct {
	InProcess bool          `yaml:"inProcess"`
	RedisAddr string        `yaml:"redisAddr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	TTL       time.Duration `yaml:"ttl"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
	BaseURL  string `yaml:"baseUrl"`
}

// SourceConfig describes one content collection and the scanner that reads it.
type SourceConfig struct {
	Name       string            `yaml:"name"`
	Scanner    string            `yaml:"scanner"`
	Collection string            `yaml:"collection"`
	Category   string            `yaml:"category"`
	Options    map[string]string `yaml:"options"`
}

// Load reads YAML configuration (if present) over the defaults and applies
// environment overrides. An explicit path wins over TALENT_RADAR_CONFIG.
func Load(path string) (Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaultModels[strings.ToLower(cfg.LLM.Provider)]
	}

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultSources()
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	setString(&c.Notion.Token, notionTokenEnv)
	setString(&c.Notion.RegistryDatabaseID, registryDBEnv)
	setString(&c.Notion.ClientsDatabaseID, clientsDBEnv)
	setString(&c.Notion.ProfilePageID, profilePageEnv)
	setString(&c.LLM.Provider, llmProviderEnv)
	setString(&c.LLM.Model, llmModelEnv)
	setString(&c.Registry.DSN, databaseDSNEnv)
	setString(&c.Registry.Backend, registryBackendEnv)
	setString(&c.Lock.RedisAddr, redisAddrEnv)
	setString(&c.Notifications.Telegram.BotToken, telegramTokenEnv)
	setString(&c.Notifications.Telegram.ChatID, telegramChatIDEnv)
	setString(&c.Logging.Level, logLevelEnv)

	if v := os.Getenv(portEnv); v != "" {
		c.Server.Addr = ":" + strings.TrimPrefix(v, ":")
	}

	if c.LLM.APIKey == "" {
		switch strings.ToLower(c.LLM.Provider) {
		case ProviderAnthropic:
			setString(&c.LLM.APIKey, anthropicAPIKeyEnv)
		case ProviderOpenAI:
			setString(&c.LLM.APIKey, openAIAPIKeyEnv)
		case ProviderGemini:
			setString(&c.LLM.APIKey, geminiAPIKeyEnv)
		}
	}

	if len(c.Sources) == 0 {
		c.Sources = defaultSources()
	}
	for i := range c.Sources {
		switch c.Sources[i].Name {
		case articlesSourceName:
			setString(&c.Sources[i].Collection, articlesDBEnv)
		case podcastsSourceName:
			setString(&c.Sources[i].Collection, podcastsDBEnv)
		}
	}
}

func setString(dst *string, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = v
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

func defaultSources() []SourceConfig {
	return []SourceConfig{
		{
			Name:     articlesSourceName,
			Scanner:  "notion",
			Category: "ARTICLE",
			Options:  map[string]string{"layout": "articles"},
		},
		{
			Name:     podcastsSourceName,
			Scanner:  "notion",
			Category: "PODCAST",
			Options:  map[string]string{"layout": "podcasts"},
		},
	}
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Server:  ServerConfig{Addr: ":8080", RunTimeout: 5 * time.Minute},
		Scheduler: SchedulerConfig{
			Interval: 24 * time.Hour,
			Timezone: defaultTimezone,
			location: tz,
		},
		Notion: NotionConfig{
			BaseURL:       defaultNotionBaseURL,
			Version:       "2022-06-28",
			MinRequestGap: 350 * time.Millisecond,
			Timeout:       30 * time.Second,
		},
		Registry: RegistryConfig{Backend: BackendNotion},
		LLM: LLMConfig{
			Provider:  ProviderAnthropic,
			MaxTokens: 4000,
			Timeout:   2 * time.Minute,
		},
		Extraction: ExtractionConfig{
			Window:            24 * time.Hour,
			PerItemCharCap:    500,
			MinMatchScore:     6,
			MinCandidates:     8,
			MaxCandidates:     12,
			ProfileCacheTTL:   10 * time.Minute,
			EnrichMode:        EnrichNone,
			EnrichConcurrency: 4,
			LookalikeSeeds:    true,
			FallbackProfile: "Multi-hyphenates above all. Digital creators who own their content. " +
				"Musicians transitioning to TV/Film. Earlier-stage talent with a clear upward trajectory. " +
				"Not pure influencers with no creative ownership.",
		},
		Lock: LockConfig{TTL: 10 * time.Minute},
		Notifications: NotificationConfig{
			Telegram: TelegramConfig{BaseURL: "https://api.telegram.org"},
		},
		Sources: defaultSources(),
	}
}
