package cli_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/openfootprint/internal/config"
)

func TestConfigInitGlobal(t *testing.T) {
	setupCLITest(t)
	home := os.Getenv("OPENFOOTPRINT_HOME")

	out, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration initialized successfully")
	_, err = os.Stat(filepath.Join(home, "config.yaml"))
	require.NoError(t, err)

	_, err = execute(t, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "use --force to overwrite")

	_, err = execute(t, "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigInitInsideProject(t *testing.T) {
	setupCLITest(t)
	project := t.TempDir()
	t.Setenv("OPENFOOTPRINT_PROJECT_DIR", project)

	out, err := execute(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration initialized at")
	assert.Contains(t, out, "Created .gitignore")

	dir := filepath.Join(project, config.ProjectDirName)
	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, config.GitignoreContent(), string(data))

	out, err = execute(t, "config", "get", "storage.path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "openfootprint.db"), strings.TrimSpace(out))

	// --global ignores the project.
	out, err = execute(t, "config", "init", "--global")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration initialized successfully")
}

func TestConfigSetGetList(t *testing.T) {
	setupCLITest(t)

	out, err := execute(t, "config", "set", "output.default_format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "Set output.default_format = json")

	out, err = execute(t, "config", "get", "output.default_format")
	require.NoError(t, err)
	assert.Equal(t, "json\n", out)

	out, err = execute(t, "config", "list")
	require.NoError(t, err)
	for _, key := range config.Keys() {
		assert.Contains(t, out, key)
	}
	assert.NotContains(t, out, "provider.password")

	_, err = execute(t, "config", "set", "output.default_format", "yaml")
	require.Error(t, err, "invalid values are not saved")

	_, err = execute(t, "config", "get", "no.such.key")
	require.ErrorIs(t, err, config.ErrUnknownKey)
}

func TestConfigSetDrivesOutputFormat(t *testing.T) {
	db := setupCLITest(t)

	_, err := execute(t, "config", "set", "output.default_format", "ndjson")
	require.NoError(t, err)

	out, err := execute(t, "water-activity-type", "list", "--db", db)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "{"), "ndjson is the configured default")
}

func TestConfigValidate(t *testing.T) {
	setupCLITest(t)

	out, err := execute(t, "config", "validate", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")
	assert.Contains(t, out, "Listen address:")
	assert.Contains(t, out, "Database:")

	t.Setenv("OPENFOOTPRINT_OUTPUT_FORMAT", "xml")
	_, err = execute(t, "config", "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}
