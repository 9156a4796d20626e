package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	assert.Len(t, cfg.Bots, 3)
	assert.Equal(t, "seykota-ema", cfg.Bots[0].ID)
	assert.Equal(t, "coinone", cfg.Bots[1].Exchange)
	assert.Equal(t, 100_000_000.0, cfg.Bots[2].InitialCapital)
	assert.Equal(t, 3.5, cfg.Engine.AnnualRiskFree)
	assert.Equal(t, 5*time.Minute, cfg.Engine.RefreshInterval.Duration)
}

func TestLoadTOMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	data := `
log_level = "debug"

[server]
port = 9000
login_window = "2m"

[auth]
secret = "s3cret"
site_password = "hunter2"

[redis]
enabled = true
addr = "redis:6379"

[[bots]]
id = "only-bot"
name = "Only Bot"
asset = "BTC-KRW"
exchange = "bithumb"
start_date = "2025-01-01"
initial_capital = 1000000.0
qty_precision = 6
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 2*time.Minute, cfg.Server.LoginWindow.Duration)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)

	// A [[bots]] block replaces the default fleet wholesale.
	require.Len(t, cfg.Bots, 1)
	assert.Equal(t, "only-bot", cfg.Bots[0].ID)

	// Untouched sections keep their defaults.
	assert.Equal(t, "KRW-BTC", cfg.Bithumb.Market)
	assert.Equal(t, "01", cfg.KIS.ProductCd)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BOTBOARD_SERVER_PORT", "7777")
	t.Setenv("BOTBOARD_AUTH_SITE_PASSWORD", "from-env")
	t.Setenv("BOTBOARD_ENGINE_REFRESH_INTERVAL", "90s")
	t.Setenv("BOTBOARD_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("BOTBOARD_REDIS_ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7777, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Auth.SitePassword)
	assert.Equal(t, 90*time.Second, cfg.Engine.RefreshInterval.Duration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
	assert.True(t, cfg.Redis.Enabled)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "port"},
		{"password without secret", func(c *Config) {
			c.Auth.SitePassword = "pw"
			c.Auth.Secret = ""
		}, "auth: secret"},
		{"redis enabled without addr", func(c *Config) {
			c.Redis.Enabled = true
			c.Redis.Addr = ""
		}, "redis: addr"},
		{"no bots", func(c *Config) { c.Bots = nil }, "at least one bot"},
		{"duplicate bot id", func(c *Config) {
			c.Bots = append(c.Bots, c.Bots[0])
		}, "duplicate id"},
		{"unknown exchange", func(c *Config) {
			c.Bots[0].Exchange = "mtgox"
		}, "unknown exchange"},
		{"bad start date", func(c *Config) {
			c.Bots[0].StartDate = "01/06/2025"
		}, "start_date"},
		{"no capital policy", func(c *Config) {
			c.Bots[1].InitialCapital = 0
		}, "initial_capital"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}
