package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			Token:   "123:abc",
			AdminID: 8300129370,
		},
	}
}

func TestNormalizeDefaults(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, Normalize(cfg))

	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.EqualValues(t, 100, cfg.Withdrawal.Minimum)
	require.Len(t, cfg.Catalog, 4)
	assert.Equal(t, "gmail", cfg.Catalog[0].Slug)
	assert.EqualValues(t, 200, cfg.Catalog[3].Price)
}

func TestNormalizeRequiresToken(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.Token = ""
	assert.Error(t, Normalize(cfg))
}

func TestNormalizeRequiresAdminID(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.AdminID = 0
	assert.Error(t, Normalize(cfg))
}

func TestNormalizeRunMode(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = "Polling"
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, RunModeLongpoll, cfg.Telegram.RunMode)

	cfg = validConfig()
	cfg.Telegram.RunMode = "carrier-pigeon"
	assert.Error(t, Normalize(cfg))
}

func TestNormalizeWebhookFields(t *testing.T) {
	cfg := validConfig()
	cfg.Telegram.RunMode = RunModeWebhook
	assert.Error(t, Normalize(cfg), "missing webhook url must fail")

	cfg.Webhook.URL = "https://bot.example.com/hook"
	cfg.Webhook.Listen = "0.0.0.0"
	cfg.Webhook.Port = 8443
	require.NoError(t, Normalize(cfg))
}

func TestNormalizeRateLimitExclusions(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.ExcludeUpdates = []string{" Callback ", "message"}
	require.NoError(t, Normalize(cfg))
	assert.Equal(t, []string{"callback", "message"}, cfg.RateLimit.ExcludeUpdates)

	cfg = validConfig()
	cfg.RateLimit.ExcludeUpdates = []string{"inline_query"}
	assert.Error(t, Normalize(cfg))
}

func TestNormalizeStorageDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Storage.Driver = "postgres"
	assert.Error(t, Normalize(cfg), "postgres without host must fail")

	cfg.Storage.Postgres.Host = "localhost"
	cfg.Storage.Postgres.Name = "ordersbot"
	require.NoError(t, Normalize(cfg))

	cfg = validConfig()
	cfg.Storage.Driver = "redis"
	assert.Error(t, Normalize(cfg))
}

func TestNormalizeCatalogValidation(t *testing.T) {
	cfg := validConfig()
	cfg.Catalog = []ProductConfig{
		{Slug: "Gmail", Label: "Fresh Gmail", Price: 9},
		{Slug: "gmail", Label: "Other Gmail", Price: 5},
	}
	assert.Error(t, Normalize(cfg), "duplicate slug after lowering must fail")

	cfg = validConfig()
	cfg.Catalog = []ProductConfig{{Slug: "gmail", Label: "", Price: 9}}
	assert.Error(t, Normalize(cfg))

	cfg = validConfig()
	cfg.Catalog = []ProductConfig{{Slug: "gmail", Label: "Fresh Gmail", Price: 0}}
	assert.Error(t, Normalize(cfg))
}
