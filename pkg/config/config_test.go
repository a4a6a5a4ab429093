package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("currencyd")
	require.NoError(t, err)

	assert.Equal(t, "currencyd", cfg.Server.ServiceName)
	assert.Equal(t, "usd", cfg.Currency.Default)
	assert.Equal(t, "database", cfg.Currency.Store)
	assert.True(t, cfg.Currency.Cache)
	assert.False(t, cfg.Currency.AutoUpdate)
	assert.Empty(t, cfg.Currency.AutoUpdateExclude)
	assert.Equal(t, "fixed", cfg.Quote.Format)
	assert.Equal(t, 30*time.Second, cfg.Quote.ConnectTimeoutDuration())
	assert.Equal(t, 30*time.Second, cfg.Quote.TimeoutDuration())
}

func TestLoad_CurrencyOverrides(t *testing.T) {
	t.Setenv("CURRENCY_DEFAULT", "EUR")
	t.Setenv("CURRENCY_STORE", "memory")
	t.Setenv("CURRENCY_CACHE", "false")
	t.Setenv("CURRENCY_AUTOUPDATE", "true")
	t.Setenv("CURRENCY_AUTOUPDATE_EXCLUDE", " RUB, ,uah ")
	t.Setenv("AUTOUPDATE_INTERVAL", "60")

	cfg, err := Load("currency")
	require.NoError(t, err)

	assert.Equal(t, "eur", cfg.Currency.Default)
	assert.Equal(t, "memory", cfg.Currency.Store)
	assert.False(t, cfg.Currency.Cache)
	assert.True(t, cfg.Currency.AutoUpdate)
	assert.Equal(t, []string{"rub", "uah"}, cfg.Currency.AutoUpdateExclude)
	assert.Equal(t, 60, cfg.Currency.AutoUpdateInterval)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("CURRENCY_CACHE", "maybe")
	t.Setenv("QUOTE_TIMEOUT", "soon")

	cfg, err := Load("currency")
	require.NoError(t, err)

	assert.True(t, cfg.Currency.Cache)
	assert.Equal(t, 30, cfg.Quote.Timeout)
}

func TestDatabaseConfig_DSNAndURL(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db",
		Port:     "5432",
		User:     "app",
		Password: "secret",
		DBName:   "currencies",
		SSLMode:  "disable",
	}

	assert.Equal(t, "host=db port=5432 user=app password=secret dbname=currencies sslmode=disable", cfg.DSN())
	assert.Equal(t, "postgres://app:secret@db:5432/currencies?sslmode=disable", cfg.URL())
}

func TestRedisConfig_Timeouts(t *testing.T) {
	tests := []struct {
		name          string
		cfg           RedisConfig
		expectedRead  time.Duration
		expectedWrite time.Duration
	}{
		{"zero falls back", RedisConfig{}, DefaultRedisReadTimeoutDuration(), DefaultRedisWriteTimeoutDuration()},
		{"negative falls back", RedisConfig{ReadTimeout: -1, WriteTimeout: -5}, DefaultRedisReadTimeoutDuration(), DefaultRedisWriteTimeoutDuration()},
		{"custom", RedisConfig{ReadTimeout: 7, WriteTimeout: 9}, 7 * time.Second, 9 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedRead, tt.cfg.RedisReadTimeoutDuration())
			assert.Equal(t, tt.expectedWrite, tt.cfg.RedisWriteTimeoutDuration())
		})
	}
}
