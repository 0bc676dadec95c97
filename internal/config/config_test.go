package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Providers.Timeout)
	assert.Equal(t, SourceYahoo, cfg.Providers.Equity.Source)
	assert.Equal(t, BackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 60*time.Second, cfg.Cache.StockTTL)
	assert.Equal(t, 30*time.Second, cfg.Cache.CryptoTTL)
	assert.Equal(t, []string{"binance", "binanceusdm", "gate"}, cfg.Providers.Exchanges)
	assert.Equal(t, 60, cfg.Dashboard.RefreshSeconds)
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  addr: ":9000"
providers:
  timeout: 5s
  exchanges: [gate]
cache:
  backend: sqlite
  stock_ttl: 2m
  sqlite_path: /tmp/pb.db
dashboard:
  ticker: MSFT
  auto_refresh: true
  refresh_seconds: 120
digest:
  cron: "0 0 9 * * 1-5"
  stocks: [AAPL, MSFT]
  cryptos:
    - pair: BTC/USDT
      exchange: binance
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Providers.Timeout)
	assert.Equal(t, []string{"gate"}, cfg.Providers.Exchanges)
	assert.Equal(t, BackendSQLite, cfg.Cache.Backend)
	assert.Equal(t, 2*time.Minute, cfg.Cache.StockTTL)
	assert.Equal(t, 30*time.Second, cfg.Cache.CryptoTTL)
	assert.Equal(t, "MSFT", cfg.Dashboard.Ticker)
	assert.True(t, cfg.Dashboard.AutoRefresh)
	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Digest.Stocks)
	assert.Equal(t, []CryptoWatch{{Pair: "BTC/USDT", Exchange: "binance"}}, cfg.Digest.Cryptos)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "config.yaml", "cache:\n  backend: sqlite\n")
	t.Setenv("CACHE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("PROVIDER_TIMEOUT", "3s")
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendRedis, cfg.Cache.Backend)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Addr)
	assert.Equal(t, 2, cfg.Cache.Redis.DB)
	assert.Equal(t, 3*time.Second, cfg.Providers.Timeout)
	assert.True(t, cfg.TelegramEnabled())
}

func TestLoad_EnvFile(t *testing.T) {
	envPath := writeFile(t, ".env", "EQUITY_SOURCE=rest\nEQUITY_BASE_URL=http://bars.local\n")
	t.Setenv("EQUITY_SOURCE", "")
	t.Setenv("EQUITY_BASE_URL", "")
	os.Unsetenv("EQUITY_SOURCE")
	os.Unsetenv("EQUITY_BASE_URL")

	cfg, err := Load("", envPath)
	require.NoError(t, err)
	assert.Equal(t, SourceREST, cfg.Providers.Equity.Source)
	assert.Equal(t, "http://bars.local", cfg.Providers.Equity.BaseURL)
	assert.NoError(t, cfg.Validate())

	_, err = Load("", filepath.Join(t.TempDir(), "nope.env"))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeFile(t, "config.yaml", "server: [unterminated"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"source", func(c *Config) { c.Providers.Equity.Source = "bloomberg" }},
		{"rest needs url", func(c *Config) { c.Providers.Equity.Source = SourceREST }},
		{"refresh low", func(c *Config) { c.Dashboard.RefreshSeconds = 10 }},
		{"refresh high", func(c *Config) { c.Dashboard.RefreshSeconds = 600 }},
		{"ttl", func(c *Config) { c.Cache.StockTTL = -time.Second }},
		{"chat without token", func(c *Config) { c.Telegram.ChatID = "1" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
