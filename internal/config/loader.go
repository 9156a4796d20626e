package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies BOTBOARD_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load. An empty path skips the
// file and uses defaults plus environment overrides only.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known BOTBOARD_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Server ──
	setInt(&cfg.Server.Port, "BOTBOARD_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "BOTBOARD_SERVER_CORS_ORIGINS")
	setInt(&cfg.Server.LoginAttempts, "BOTBOARD_SERVER_LOGIN_ATTEMPTS")
	setDuration(&cfg.Server.LoginWindow, "BOTBOARD_SERVER_LOGIN_WINDOW")

	// ── Auth ──
	setStr(&cfg.Auth.Secret, "BOTBOARD_AUTH_SECRET")
	setStr(&cfg.Auth.SitePassword, "BOTBOARD_AUTH_SITE_PASSWORD")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "BOTBOARD_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "BOTBOARD_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "BOTBOARD_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "BOTBOARD_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "BOTBOARD_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "BOTBOARD_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "BOTBOARD_REDIS_TLS_ENABLED")

	// ── Postgres ──
	setBool(&cfg.Postgres.Enabled, "BOTBOARD_POSTGRES_ENABLED")
	setStr(&cfg.Postgres.DSN, "BOTBOARD_POSTGRES_DSN")
	setStr(&cfg.Postgres.Host, "BOTBOARD_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "BOTBOARD_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "BOTBOARD_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "BOTBOARD_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "BOTBOARD_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "BOTBOARD_POSTGRES_SSL_MODE")
	setBool(&cfg.Postgres.RunMigrations, "BOTBOARD_POSTGRES_RUN_MIGRATIONS")

	// ── S3 ──
	setBool(&cfg.S3.Enabled, "BOTBOARD_S3_ENABLED")
	setStr(&cfg.S3.Endpoint, "BOTBOARD_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "BOTBOARD_S3_REGION")
	setStr(&cfg.S3.Bucket, "BOTBOARD_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "BOTBOARD_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "BOTBOARD_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "BOTBOARD_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "BOTBOARD_S3_FORCE_PATH_STYLE")

	// ── Bithumb ──
	setStr(&cfg.Bithumb.AccessKey, "BOTBOARD_BITHUMB_ACCESS_KEY")
	setStr(&cfg.Bithumb.SecretKey, "BOTBOARD_BITHUMB_SECRET_KEY")
	setStr(&cfg.Bithumb.Market, "BOTBOARD_BITHUMB_MARKET")

	// ── Coinone ──
	setStr(&cfg.Coinone.AccessToken, "BOTBOARD_COINONE_ACCESS_TOKEN")
	setStr(&cfg.Coinone.SecretKey, "BOTBOARD_COINONE_SECRET_KEY")
	setStr(&cfg.Coinone.Target, "BOTBOARD_COINONE_TARGET")
	setStr(&cfg.Coinone.Quote, "BOTBOARD_COINONE_QUOTE")

	// ── KIS ──
	setStr(&cfg.KIS.AppKey, "BOTBOARD_KIS_APP_KEY")
	setStr(&cfg.KIS.AppSecret, "BOTBOARD_KIS_APP_SECRET")
	setStr(&cfg.KIS.AccountNo, "BOTBOARD_KIS_ACCOUNT_NO")
	setStr(&cfg.KIS.ProductCd, "BOTBOARD_KIS_PRODUCT_CD")
	setStr(&cfg.KIS.BaseURL, "BOTBOARD_KIS_BASE_URL")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "BOTBOARD_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "BOTBOARD_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "BOTBOARD_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "BOTBOARD_NOTIFY_EVENTS")

	// ── Engine ──
	setDuration(&cfg.Engine.RefreshInterval, "BOTBOARD_ENGINE_REFRESH_INTERVAL")
	setDuration(&cfg.Engine.SummaryCacheTTL, "BOTBOARD_ENGINE_SUMMARY_CACHE_TTL")
	setFloat64(&cfg.Engine.AnnualRiskFree, "BOTBOARD_ENGINE_ANNUAL_RISK_FREE")
	setStr(&cfg.Engine.ArchivePrefix, "BOTBOARD_ENGINE_ARCHIVE_PREFIX")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "BOTBOARD_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
