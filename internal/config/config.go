package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"LaunchDigest/internal/domain"
)

const (
	configPathEnv     = "LAUNCHDIGEST_CONFIG"
	databaseDSNEnv    = "DATABASE_DSN"
	redisAddrEnv      = "REDIS_ADDR"
	chatGPTAPIKeyEnv  = "CHATGPT_API_KEY"
	chatGPTModelEnv   = "CHATGPT_MODEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"

	// DocsCatalog answers documentation and pricing lookups offline.
	DocsCatalog = "catalog"
	// DocsMCP talks to documentation and pricing MCP servers.
	DocsMCP = "mcp"
)

// Config holds high-level settings required across the application.
type Config struct {
	Run           RunConfig          `yaml:"run"`
	Timeouts      TimeoutConfig      `yaml:"timeouts"`
	Logging       LoggingConfig      `yaml:"logging"`
	Docs          DocsConfig         `yaml:"docs"`
	Browser       BrowserConfig      `yaml:"browser"`
	Database      DatabaseConfig     `yaml:"database"`
	Redis         RedisConfig        `yaml:"redis"`
	Metrics       MetricsConfig      `yaml:"metrics"`
	ChatGPT       ChatGPTConfig      `yaml:"chatgpt"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// RunConfig is what one run processes and where it writes.
type RunConfig struct {
	SourceURL       string            `yaml:"sourceUrl"`
	Scanner         string            `yaml:"scanner"`
	ScannerOptions  map[string]string `yaml:"scannerOptions"`
	MaxServices     int               `yaml:"maxServices"`
	MaxScreenshots  int               `yaml:"maxScreenshots"`
	SkipScreenshots bool              `yaml:"skipScreenshots"`
	Concurrency     int               `yaml:"concurrency"`
	OutputDir       string            `yaml:"outputDir"`
	Title           string            `yaml:"title"`
	Subtitle        string            `yaml:"subtitle"`
}

// TimeoutConfig bounds every external call.
type TimeoutConfig struct {
	Fetch    time.Duration `yaml:"fetch"`
	Research time.Duration `yaml:"research"`
	Capture  time.Duration `yaml:"capture"`
}

// LoggingConfig picks the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DocsConfig selects the documentation and pricing provider.
type DocsConfig struct {
	Provider       string   `yaml:"provider"`
	DocsCommand    []string `yaml:"docsCommand"`
	PricingCommand []string `yaml:"pricingCommand"`
	Region         string   `yaml:"region"`
	ReadMaxLength  int      `yaml:"readMaxLength"`
	SearchLimit    int      `yaml:"searchLimit"`
}

// BrowserConfig tunes the headless browser used for captures.
type BrowserConfig struct {
	ExecPath string        `yaml:"execPath"`
	Width    int           `yaml:"width"`
	Height   int           `yaml:"height"`
	Settle   time.Duration `yaml:"settle"`
}

// DatabaseConfig describes the optional Postgres run history.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig describes the optional cross-run research store.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// MetricsConfig places the prometheus textfile relative to the output dir.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Textfile string `yaml:"textfile"`
}

// ChatGPTConfig defines how to contact the ChatGPT API.
type ChatGPTConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Endpoint     string        `yaml:"endpoint"`
	Model        string        `yaml:"model"`
	APIKey       string        `yaml:"apiKey"`
	SystemPrompt string        `yaml:"systemPrompt"`
	Timeout      time.Duration `yaml:"timeout"`
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

// Overrides carries CLI flags; nil fields leave the loaded value alone.
type Overrides struct {
	SourceURL       *string
	MaxServices     *int
	MaxScreenshots  *int
	SkipScreenshots *bool
	OutputDir       *string
	Concurrency     *int
	Verbose         bool
}

// Load reads YAML configuration from path (or $LAUNCHDIGEST_CONFIG) on top of
// defaults and applies environment overrides. No path means defaults only.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("%w: read %s: %w", domain.ErrInvalidConfig, path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parse %s: %w", domain.ErrInvalidConfig, path, err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Redis.Addr = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(chatGPTAPIKeyEnv); v != "" {
		c.ChatGPT.APIKey = v
	}

	if v := os.Getenv(chatGPTModelEnv); v != "" {
		c.ChatGPT.Model = v
	}
}

// Apply layers CLI flags over the loaded configuration.
func (c *Config) Apply(o Overrides) {
	if o.SourceURL != nil {
		c.Run.SourceURL = *o.SourceURL
	}
	if o.MaxServices != nil {
		c.Run.MaxServices = *o.MaxServices
	}
	if o.MaxScreenshots != nil {
		c.Run.MaxScreenshots = *o.MaxScreenshots
	}
	if o.SkipScreenshots != nil {
		c.Run.SkipScreenshots = *o.SkipScreenshots
	}
	if o.OutputDir != nil {
		c.Run.OutputDir = *o.OutputDir
	}
	if o.Concurrency != nil {
		c.Run.Concurrency = *o.Concurrency
	}
	if o.Verbose {
		c.Logging.Level = "debug"
	}
}

// Validate rejects settings no run can proceed with.
func (c Config) Validate() error {
	var errs []error

	if u, err := url.Parse(c.Run.SourceURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("source url %q is not an absolute url", c.Run.SourceURL))
	}
	if strings.TrimSpace(c.Run.OutputDir) == "" {
		errs = append(errs, errors.New("output dir is empty"))
	}
	if c.Run.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("concurrency must be at least 1, got %d", c.Run.Concurrency))
	}
	if c.Timeouts.Fetch <= 0 || c.Timeouts.Research <= 0 || c.Timeouts.Capture <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}
	switch c.Docs.Provider {
	case DocsCatalog:
	case DocsMCP:
		if len(c.Docs.DocsCommand) == 0 {
			errs = append(errs, errors.New("docs provider mcp needs docsCommand"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown docs provider %q", c.Docs.Provider))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Run: RunConfig{
			SourceURL:      "https://aws.amazon.com/blogs/aws/top-announcements-of-aws-reinvent-2025/",
			Scanner:        "auto",
			MaxServices:    10,
			MaxScreenshots: 5,
			Concurrency:    4,
			OutputDir:      "outputs",
			Title:          "AWS re:Invent 2025",
			Subtitle:       "New Services and Features",
		},
		Timeouts: TimeoutConfig{
			Fetch:    30 * time.Second,
			Research: 60 * time.Second,
			Capture:  45 * time.Second,
		},
		Logging: LoggingConfig{Level: "info"},
		Docs: DocsConfig{
			Provider:      DocsCatalog,
			Region:        "us-east-1",
			ReadMaxLength: 5000,
			SearchLimit:   3,
		},
		Browser: BrowserConfig{Width: 1920, Height: 1080, Settle: 2 * time.Second},
		Redis:   RedisConfig{Prefix: "launchdigest:detail:", TTL: 7 * 24 * time.Hour},
		Metrics: MetricsConfig{Enabled: true, Textfile: "metrics/launchdigest.prom"},
		ChatGPT: ChatGPTConfig{
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4o-mini",
			SystemPrompt: "You summarize cloud service documentation for a technical presentation.",
			Timeout:      20 * time.Second,
		},
	}
}
