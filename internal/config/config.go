package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Equity sources.
const (
	SourceYahoo = "yahoo"
	SourceREST  = "rest"
)

// CryptoWatch is one pair on one exchange.
type CryptoWatch struct {
	Pair     string `yaml:"pair"`
	Exchange string `yaml:"exchange"`
}

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
	Providers struct {
		Timeout time.Duration `yaml:"timeout"`
		Proxy   string        `yaml:"proxy"`
		Equity  struct {
			Source  string `yaml:"source"`
			BaseURL string `yaml:"base_url"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"equity"`
		CryptoLimit int      `yaml:"crypto_limit"`
		Exchanges   []string `yaml:"exchanges"`
		Binance     struct {
			SpotBaseURL    string `yaml:"spot_base_url"`
			FuturesBaseURL string `yaml:"futures_base_url"`
		} `yaml:"binance"`
		Gate struct {
			BaseURL string `yaml:"base_url"`
		} `yaml:"gate"`
	} `yaml:"providers"`
	Cache struct {
		Backend    string        `yaml:"backend"`
		StockTTL   time.Duration `yaml:"stock_ttl"`
		CryptoTTL  time.Duration `yaml:"crypto_ttl"`
		SQLitePath string        `yaml:"sqlite_path"`
		Redis      struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Dashboard struct {
		Ticker         string `yaml:"ticker"`
		Period         string `yaml:"period"`
		Interval       string `yaml:"interval"`
		Pair           string `yaml:"pair"`
		Exchange       string `yaml:"exchange"`
		AutoRefresh    bool   `yaml:"auto_refresh"`
		RefreshSeconds int    `yaml:"refresh_seconds"`
	} `yaml:"dashboard"`
	Digest struct {
		Cron     string        `yaml:"cron"`
		Stocks   []string      `yaml:"stocks"`
		Period   string        `yaml:"period"`
		Interval string        `yaml:"interval"`
		Cryptos  []CryptoWatch `yaml:"cryptos"`
	} `yaml:"digest"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		Polling  bool   `yaml:"polling"`
	} `yaml:"telegram"`
}

// Load reads config from a YAML file, loads the given .env files into the
// environment, then applies environment variable overrides and defaults.
// A missing YAML file is not an error.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := &Config{}

	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, fmt.Errorf("load env file: %w", err)
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PRICEBOARD_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Providers.Proxy = v
	}
	if v := os.Getenv("PROVIDER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Providers.Timeout = d
		}
	}
	if v := os.Getenv("EQUITY_SOURCE"); v != "" {
		c.Providers.Equity.Source = v
	}
	if v := os.Getenv("EQUITY_BASE_URL"); v != "" {
		c.Providers.Equity.BaseURL = v
	}
	if v := os.Getenv("EQUITY_API_KEY"); v != "" {
		c.Providers.Equity.APIKey = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Cache.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Cache.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Cache.Redis.DB = db
		}
	}
	if v := os.Getenv("DIGEST_CRON"); v != "" {
		c.Digest.Cron = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Providers.Timeout == 0 {
		c.Providers.Timeout = 10 * time.Second
	}
	if c.Providers.Equity.Source == "" {
		c.Providers.Equity.Source = SourceYahoo
	}
	if c.Providers.CryptoLimit == 0 {
		c.Providers.CryptoLimit = 500
	}
	if len(c.Providers.Exchanges) == 0 {
		c.Providers.Exchanges = []string{"binance", "binanceusdm", "gate"}
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendMemory
	}
	if c.Cache.StockTTL == 0 {
		c.Cache.StockTTL = 60 * time.Second
	}
	if c.Cache.CryptoTTL == 0 {
		c.Cache.CryptoTTL = 30 * time.Second
	}
	if c.Cache.SQLitePath == "" {
		c.Cache.SQLitePath = "data/priceboard.db"
	}
	if c.Cache.Redis.Addr == "" {
		c.Cache.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Dashboard.Ticker == "" {
		c.Dashboard.Ticker = "AAPL"
	}
	if c.Dashboard.Period == "" {
		c.Dashboard.Period = "1d"
	}
	if c.Dashboard.Interval == "" {
		c.Dashboard.Interval = "1m"
	}
	if c.Dashboard.Pair == "" {
		c.Dashboard.Pair = "BTC/USDT"
	}
	if c.Dashboard.RefreshSeconds == 0 {
		c.Dashboard.RefreshSeconds = 60
	}
	if c.Digest.Period == "" {
		c.Digest.Period = "1d"
	}
	if c.Digest.Interval == "" {
		c.Digest.Interval = "1m"
	}
}

// Validate checks field combinations that cannot work.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendMemory, BackendSQLite, BackendRedis:
	default:
		return fmt.Errorf("cache.backend %q must be memory, sqlite or redis", c.Cache.Backend)
	}
	if c.Cache.StockTTL < 0 || c.Cache.CryptoTTL < 0 {
		return errors.New("cache TTLs must not be negative")
	}
	if c.Providers.Timeout < 0 {
		return errors.New("providers.timeout must not be negative")
	}
	switch c.Providers.Equity.Source {
	case SourceYahoo:
	case SourceREST:
		if c.Providers.Equity.BaseURL == "" {
			return errors.New("providers.equity.base_url is required for the rest source")
		}
	default:
		return fmt.Errorf("providers.equity.source %q must be yahoo or rest", c.Providers.Equity.Source)
	}
	if c.Providers.Proxy != "" {
		if _, err := url.Parse(c.Providers.Proxy); err != nil {
			return fmt.Errorf("invalid proxy %q: %w", c.Providers.Proxy, err)
		}
	}
	if c.Dashboard.RefreshSeconds < 30 || c.Dashboard.RefreshSeconds > 300 {
		return fmt.Errorf("dashboard.refresh_seconds %d must be within [30, 300]", c.Dashboard.RefreshSeconds)
	}
	if c.Telegram.ChatID != "" && c.Telegram.BotToken == "" {
		return errors.New("telegram.bot_token is required when telegram.chat_id is set")
	}
	return nil
}

// TelegramEnabled reports whether digests and commands go to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
