package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/bdnetwork/ordersbot/internal/storage"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token         string `yaml:"token" envconfig:"BOT_TOKEN"`
	AdminID       int64  `yaml:"admin_id" envconfig:"TELEGRAM_ADMIN_ID"`
	AdminUsername string `yaml:"admin_username" envconfig:"TELEGRAM_ADMIN_USERNAME"`
	ChannelURL    string `yaml:"channel_url" envconfig:"TELEGRAM_CHANNEL_URL"`
	RunMode       string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	Dir     string `yaml:"dir"`
	BotFile string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
)

// RateLimitConfig holds settings for rate limiting.
// ExcludeUpdates accepts update types to bypass limiting:
// - "callback": Telegram callback button presses
// - "message": standard text messages
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

const (
	// StorageMemory keeps the ledger in process memory (default).
	StorageMemory = "memory"
	// StoragePostgres persists the ledger in PostgreSQL.
	StoragePostgres = "postgres"
)

// StorageConfig selects and configures the ledger backing store.
type StorageConfig struct {
	Driver   string         `yaml:"driver" envconfig:"STORAGE_DRIVER"`
	Postgres storage.Config `yaml:"postgres"`
}

// ProductConfig describes one sellable catalog entry.
type ProductConfig struct {
	Slug  string `yaml:"slug"`
	Label string `yaml:"label"`
	Price int64  `yaml:"price"`
}

// WithdrawalConfig holds withdrawal flow settings.
type WithdrawalConfig struct {
	Minimum int64 `yaml:"minimum" envconfig:"WITHDRAWAL_MINIMUM"`
}

// Config aggregates the full bot configuration.
type Config struct {
	Telegram   TelegramConfig   `yaml:"telegram"`
	Webhook    WebhookConfig    `yaml:"webhook"`
	Logging    LoggingConfig    `yaml:"logging"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Storage    StorageConfig    `yaml:"storage"`
	Catalog    []ProductConfig  `yaml:"catalog"`
	Withdrawal WithdrawalConfig `yaml:"withdrawal"`
}

// DefaultCatalog reproduces the account types offered by the original shop.
func DefaultCatalog() []ProductConfig {
	return []ProductConfig{
		{Slug: "gmail", Label: "Fresh Gmail", Price: 9},
		{Slug: "talkatone", Label: "Talkatone", Price: 28},
		{Slug: "textnow", Label: "TextNow", Price: 25},
		{Slug: "gvoice", Label: "Google Voice", Price: 200},
	}
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required")
	}
	if cfg.Telegram.AdminID == 0 {
		return fmt.Errorf("telegram.admin_id is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	allowed := map[string]struct{}{
		UpdateCallback: {},
		UpdateMessage:  {},
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	if driver == "" {
		driver = StorageMemory
	}
	switch driver {
	case StorageMemory:
	case StoragePostgres:
		if strings.TrimSpace(cfg.Storage.Postgres.Host) == "" {
			return fmt.Errorf("storage.postgres.host is required when storage.driver is 'postgres'")
		}
		if strings.TrimSpace(cfg.Storage.Postgres.Name) == "" {
			return fmt.Errorf("storage.postgres.name is required when storage.driver is 'postgres'")
		}
	default:
		return fmt.Errorf("invalid storage.driver %q; allowed: memory, postgres", cfg.Storage.Driver)
	}
	cfg.Storage.Driver = driver

	if len(cfg.Catalog) == 0 {
		cfg.Catalog = DefaultCatalog()
	}
	seen := make(map[string]struct{}, len(cfg.Catalog))
	for i, p := range cfg.Catalog {
		slug := strings.ToLower(strings.TrimSpace(p.Slug))
		if slug == "" {
			return fmt.Errorf("catalog[%d].slug is required", i)
		}
		if _, dup := seen[slug]; dup {
			return fmt.Errorf("duplicate catalog slug %q", slug)
		}
		seen[slug] = struct{}{}
		if strings.TrimSpace(p.Label) == "" {
			return fmt.Errorf("catalog[%d].label is required", i)
		}
		if p.Price <= 0 {
			return fmt.Errorf("catalog[%d].price must be > 0", i)
		}
		cfg.Catalog[i].Slug = slug
	}

	if cfg.Withdrawal.Minimum <= 0 {
		cfg.Withdrawal.Minimum = 100
	}

	return nil
}
