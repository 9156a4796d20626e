// Package config defines the top-level configuration for the botboard
// dashboard backend and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by BOTBOARD_* environment variables.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Auth     AuthConfig     `toml:"auth"`
	Redis    RedisConfig    `toml:"redis"`
	Postgres PostgresConfig `toml:"postgres"`
	S3       S3Config       `toml:"s3"`
	Bithumb  BithumbConfig  `toml:"bithumb"`
	Coinone  CoinoneConfig  `toml:"coinone"`
	KIS      KISConfig      `toml:"kis"`
	Notify   NotifyConfig   `toml:"notify"`
	Engine   EngineConfig   `toml:"engine"`
	Bots     []BotConfig    `toml:"bots"`
	LogLevel string         `toml:"log_level"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port          int      `toml:"port"`
	CORSOrigins   []string `toml:"cors_origins"`
	LoginAttempts int      `toml:"login_attempts"`
	LoginWindow   duration `toml:"login_window"`
}

// AuthConfig holds the session signing secret and the single shared site
// password. An empty password disables login entirely.
type AuthConfig struct {
	Secret       string `toml:"secret"`
	SitePassword string `toml:"site_password"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// PostgresConfig holds PostgreSQL connection parameters. When DSN is set it
// wins over the discrete host/port fields.
type PostgresConfig struct {
	Enabled       bool   `toml:"enabled"`
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// S3Config holds S3-compatible object storage parameters for the daily
// summary archive.
type S3Config struct {
	Enabled        bool   `toml:"enabled"`
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// BithumbConfig holds Bithumb API credentials.
type BithumbConfig struct {
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Market    string `toml:"market"`
	BaseURL   string `toml:"base_url"`
}

// CoinoneConfig holds Coinone API credentials.
type CoinoneConfig struct {
	AccessToken string `toml:"access_token"`
	SecretKey   string `toml:"secret_key"`
	Target      string `toml:"target"`
	Quote       string `toml:"quote"`
	BaseURL     string `toml:"base_url"`
}

// KISConfig holds Korea Investment & Securities open-API credentials.
type KISConfig struct {
	AppKey    string `toml:"app_key"`
	AppSecret string `toml:"app_secret"`
	AccountNo string `toml:"account_no"`
	ProductCd string `toml:"product_cd"`
	BaseURL   string `toml:"base_url"`
}

// NotifyConfig holds notification channel settings. Events filters which
// event names are dispatched; empty means all.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// EngineConfig holds refresh and analytics parameters.
type EngineConfig struct {
	RefreshInterval duration `toml:"refresh_interval"`
	SummaryCacheTTL duration `toml:"summary_cache_ttl"`
	AnnualRiskFree  float64  `toml:"annual_risk_free"`
	ArchivePrefix   string   `toml:"archive_prefix"`
}

// BotConfig describes one bot strategy tracked by the dashboard. Exchange
// selects which platform client serves the bot: "bithumb", "coinone" or
// "kis".
type BotConfig struct {
	ID              string  `toml:"id"`
	Name            string  `toml:"name"`
	Description     string  `toml:"description"`
	Asset           string  `toml:"asset"`
	Exchange        string  `toml:"exchange"`
	StartDate       string  `toml:"start_date"`
	InitialCapital  float64 `toml:"initial_capital"`
	EstimateCapital bool    `toml:"estimate_capital"`
	CapitalFloor    float64 `toml:"capital_floor"`
	QtyPrecision    int     `toml:"qty_precision"`
}

// duration wraps time.Duration so TOML files can use strings like "5m".
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns the built-in configuration, including the three bots the
// dashboard ships with. TOML and environment overrides are layered on top.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:          8000,
			CORSOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
			LoginAttempts: 5,
			LoginWindow:   duration{time.Minute},
		},
		Redis: RedisConfig{
			Enabled:  false,
			Addr:     "localhost:6379",
			PoolSize: 10,
		},
		Postgres: PostgresConfig{
			Enabled:       false,
			Host:          "localhost",
			Port:          5432,
			Database:      "botboard",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  4,
			PoolMinConns:  0,
			RunMigrations: true,
		},
		S3: S3Config{
			Enabled: false,
			Region:  "ap-northeast-2",
			UseSSL:  true,
		},
		Bithumb: BithumbConfig{
			Market: "KRW-BTC",
		},
		Coinone: CoinoneConfig{
			Target: "btc",
			Quote:  "krw",
		},
		KIS: KISConfig{
			ProductCd: "01",
		},
		Notify: NotifyConfig{
			Events: []string{"pipeline_failed", "archive_failed"},
		},
		Engine: EngineConfig{
			RefreshInterval: duration{5 * time.Minute},
			SummaryCacheTTL: duration{time.Minute},
			AnnualRiskFree:  3.5,
			ArchivePrefix:   "summaries",
		},
		Bots: []BotConfig{
			{
				ID:              "seykota-ema",
				Name:            "Seykota EMA Bot",
				Description:     "Trend following on EMA crossovers",
				Asset:           "BTC-KRW",
				Exchange:        "bithumb",
				StartDate:       "2025-06-01",
				EstimateCapital: true,
				CapitalFloor:    5_000_000,
				QtyPrecision:    6,
			},
			{
				ID:             "ptj-200ma",
				Name:           "PTJ 200MA Bot",
				Description:    "200-day moving average regime filter",
				Asset:          "BTC-KRW",
				Exchange:       "coinone",
				StartDate:      "2026-01-20",
				InitialCapital: 2_500_000,
				QtyPrecision:   6,
			},
			{
				ID:             "kis-rsi-macd",
				Name:           "KIS RSI/MACD Bot",
				Description:    "RSI and MACD swing trading on KOSPI",
				Asset:          "KOSPI",
				Exchange:       "kis",
				StartDate:      "2025-04-01",
				InitialCapital: 100_000_000,
				QtyPrecision:   0,
			},
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validExchanges enumerates the accepted values for BotConfig.Exchange.
var validExchanges = map[string]bool{
	"bithumb": true,
	"coinone": true,
	"kis":     true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.LoginAttempts < 0 {
		errs = append(errs, "server: login_attempts must be >= 0")
	}

	// Auth — a site password without a signing secret cannot issue cookies.
	if c.Auth.SitePassword != "" && c.Auth.Secret == "" {
		errs = append(errs, "auth: secret is required when site_password is set")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Postgres
	if c.Postgres.Enabled && strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.Enabled {
		if c.Postgres.PoolMaxConns < 1 {
			errs = append(errs, "postgres: pool_max_conns must be >= 1")
		}
		if c.Postgres.PoolMinConns < 0 {
			errs = append(errs, "postgres: pool_min_conns must be >= 0")
		}
		if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
			errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// S3
	if c.S3.Enabled && c.S3.Bucket == "" {
		errs = append(errs, "s3: bucket must not be empty when enabled")
	}

	// Engine
	if c.Engine.RefreshInterval.Duration <= 0 {
		errs = append(errs, "engine: refresh_interval must be > 0")
	}
	if c.Engine.SummaryCacheTTL.Duration < 0 {
		errs = append(errs, "engine: summary_cache_ttl must be >= 0")
	}

	// Bots
	if len(c.Bots) == 0 {
		errs = append(errs, "bots: at least one bot must be configured")
	}
	seen := make(map[string]bool, len(c.Bots))
	for i, b := range c.Bots {
		if b.ID == "" {
			errs = append(errs, fmt.Sprintf("bots[%d]: id must not be empty", i))
			continue
		}
		if seen[b.ID] {
			errs = append(errs, fmt.Sprintf("bots[%d]: duplicate id %q", i, b.ID))
		}
		seen[b.ID] = true
		if !validExchanges[strings.ToLower(b.Exchange)] {
			errs = append(errs, fmt.Sprintf("bots[%d]: unknown exchange %q (valid: bithumb, coinone, kis)", i, b.Exchange))
		}
		if b.InitialCapital <= 0 && !b.EstimateCapital {
			errs = append(errs, fmt.Sprintf("bots[%d]: initial_capital must be > 0 unless estimate_capital is set", i))
		}
		if b.QtyPrecision < 0 {
			errs = append(errs, fmt.Sprintf("bots[%d]: qty_precision must be >= 0", i))
		}
		if b.StartDate != "" {
			if _, err := time.Parse("2006-01-02", b.StartDate); err != nil {
				errs = append(errs, fmt.Sprintf("bots[%d]: start_date must be YYYY-MM-DD, got %q", i, b.StartDate))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
