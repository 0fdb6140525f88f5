package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/openfootprint/internal/config"
)

func TestDefault(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default(dir)

	assert.Equal(t, config.SchemaVersion, cfg.Version)
	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, filepath.Join(dir, "openfootprint.db"), cfg.Storage.Path)
	assert.Equal(t, "1/2/2006", cfg.Display.DateLayout)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.ConfigPath())
	require.NoError(t, cfg.Validate())
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("OPENFOOTPRINT_HOME", t.TempDir())
	t.Setenv("OPENFOOTPRINT_LOG_LEVEL", "debug")
	t.Setenv("OPENFOOTPRINT_LOG_FORMAT", "console")
	t.Setenv("OPENFOOTPRINT_ADDR", "127.0.0.1:9999")
	t.Setenv("OPENFOOTPRINT_DB", "/data/of.db")

	cfg := config.New()

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr)
	assert.Equal(t, "/data/of.db", cfg.Storage.Path)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default(dir)
	cfg.Storage.MockDelay = 750 * time.Millisecond
	cfg.Server.ShutdownTimeout = 4 * time.Second
	require.NoError(t, cfg.Save())

	loaded := config.Default(t.TempDir())
	loaded.SetConfigPath(cfg.ConfigPath())
	require.NoError(t, loaded.Load())

	assert.Equal(t, 750*time.Millisecond, loaded.Storage.MockDelay)
	assert.Equal(t, 4*time.Second, loaded.Server.ShutdownTimeout)
	assert.Equal(t, cfg.Storage.Path, loaded.Storage.Path)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	cfg := config.Default(t.TempDir())
	require.NoError(t, cfg.Load())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{"newer major schema", func(c *config.Config) { c.Version = "2.0.0" }, "newer than supported"},
		{"bad schema", func(c *config.Config) { c.Version = "one" }, "not a semantic version"},
		{"older minor schema ok", func(c *config.Config) { c.Version = "1.0.0" }, ""},
		{"empty addr", func(c *config.Config) { c.Server.Addr = "" }, "server.addr"},
		{"rate limit burst", func(c *config.Config) { c.Server.RateLimit.Burst = 0 }, "rate_limit"},
		{"rate limit disabled ignores burst", func(c *config.Config) {
			c.Server.RateLimit = config.RateLimitConfig{}
		}, ""},
		{"negative delay", func(c *config.Config) { c.Storage.MockDelay = -time.Second }, "mock_delay"},
		{"precision", func(c *config.Config) { c.Display.Precision = 11 }, "display.precision"},
		{"format", func(c *config.Config) { c.Output.DefaultFormat = "xml" }, "output.default_format"},
		{"cache ttl", func(c *config.Config) { c.Cache.TTLSeconds = 0 }, "cache.ttl_seconds"},
		{"log level", func(c *config.Config) { c.Logging.Level = "loud" }, "logging.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default(t.TempDir())
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetSet(t *testing.T) {
	cfg := config.Default(t.TempDir())

	require.NoError(t, cfg.Set("server.addr", ":9090"))
	require.NoError(t, cfg.Set("storage.mock_delay", "1s"))
	require.NoError(t, cfg.Set("server.allowed_origins", "http://a.example, http://b.example"))
	require.NoError(t, cfg.Set("server.rate_limit.requests_per_second", "2.5"))

	got, err := cfg.Get("server.addr")
	require.NoError(t, err)
	assert.Equal(t, ":9090", got)

	got, err = cfg.Get("storage.mock_delay")
	require.NoError(t, err)
	assert.Equal(t, "1s", got)

	got, err = cfg.Get("server.allowed_origins")
	require.NoError(t, err)
	assert.Equal(t, "http://a.example,http://b.example", got)

	got, err = cfg.Get("server.rate_limit.requests_per_second")
	require.NoError(t, err)
	assert.Equal(t, "2.5", got)
}

func TestGetSet_Errors(t *testing.T) {
	cfg := config.Default(t.TempDir())

	_, err := cfg.Get("nope")
	require.ErrorIs(t, err, config.ErrUnknownKey)

	require.ErrorIs(t, cfg.Set("nope", "x"), config.ErrUnknownKey)

	err = cfg.Set("display.precision", "many")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "display.precision")
}

func TestKeysAreGettable(t *testing.T) {
	cfg := config.Default(t.TempDir())
	for _, key := range config.Keys() {
		_, err := cfg.Get(key)
		require.NoError(t, err, key)
	}
	assert.NotContains(t, config.Keys(), "provider.password")
}
