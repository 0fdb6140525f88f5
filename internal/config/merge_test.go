package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/openfootprint/internal/config"
)

// newDefaultTarget returns a Config with known non-zero defaults so tests can
// verify that absent overlay keys leave the original values intact.
func newDefaultTarget() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Addr:           ":8000",
			AllowedOrigins: []string{"*"},
			RateLimit:      config.RateLimitConfig{Enabled: true, RequestsPerSecond: 20, Burst: 40},
		},
		Storage: config.StorageConfig{Path: "/var/lib/openfootprint.db", Seed: true},
		Display: config.DisplayConfig{DateLayout: "1/2/2006", Precision: 2},
		Output:  config.OutputConfig{DefaultFormat: "table"},
		Cache:   config.CacheConfig{Enabled: true, TTLSeconds: 3600, Directory: "/tmp/cache"},
		Logging: config.LoggingConfig{Level: "info", Format: "text"},
	}
}

func writeOverlay(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestShallowMergeYAML_SingleKeyOverride(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
display:
  date_layout: "2006-01-02"
  precision: 4
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))

	assert.Equal(t, "2006-01-02", target.Display.DateLayout)
	assert.Equal(t, 4, target.Display.Precision)

	assert.Equal(t, "info", target.Logging.Level)
	assert.True(t, target.Cache.Enabled)
	assert.Equal(t, 3600, target.Cache.TTLSeconds)
}

func TestShallowMergeYAML_SectionReplacedWholesale(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
server:
  addr: "127.0.0.1:9000"
  shutdown_timeout: 3s
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))

	assert.Equal(t, "127.0.0.1:9000", target.Server.Addr)
	assert.Equal(t, 3*time.Second, target.Server.ShutdownTimeout)
	// Fields absent from the overlay section are zeroed, not kept.
	assert.Empty(t, target.Server.AllowedOrigins)
	assert.False(t, target.Server.RateLimit.Enabled)
}

func TestShallowMergeYAML_ZeroValueFieldsReplaceDefaults(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
cache:
  enabled: false
  ttl_seconds: 0
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))

	assert.False(t, target.Cache.Enabled)
	assert.Equal(t, 0, target.Cache.TTLSeconds)
	assert.Empty(t, target.Cache.Directory)
}

func TestShallowMergeYAML_EmptyAndCommentOnly(t *testing.T) {
	for name, content := range map[string]string{
		"empty":   "",
		"comment": "# nothing here\n",
	} {
		t.Run(name, func(t *testing.T) {
			target := newDefaultTarget()
			original := *target
			require.NoError(t, config.ShallowMergeYAML(target, writeOverlay(t, content)))
			assert.Equal(t, original.Server, target.Server)
			assert.Equal(t, original.Logging, target.Logging)
		})
	}
}

func TestShallowMergeYAML_UnknownKeysIgnored(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
storage:
  path: /data/of.db
  mock_delay: 500ms
plugins:
  foo: bar
extra_key: 42
`)

	require.NoError(t, config.ShallowMergeYAML(target, overlay))

	assert.Equal(t, "/data/of.db", target.Storage.Path)
	assert.Equal(t, 500*time.Millisecond, target.Storage.MockDelay)
	assert.Equal(t, "info", target.Logging.Level)
}

func TestShallowMergeYAML_Errors(t *testing.T) {
	target := newDefaultTarget()

	err := config.ShallowMergeYAML(target, writeOverlay(t, "{{{{not valid yaml at all"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing overlay YAML")

	err = config.ShallowMergeYAML(target, "/nonexistent/path/overlay.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading overlay file")

	err = config.ShallowMergeYAML(nil, "/nonexistent/path/overlay.yaml")
	require.Error(t, err)
}

func TestShallowMergeYAML_TypeMismatch(t *testing.T) {
	target := newDefaultTarget()
	overlay := writeOverlay(t, `
display:
  precision: lots
`)

	err := config.ShallowMergeYAML(target, overlay)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `applying overlay section "display"`)
}
