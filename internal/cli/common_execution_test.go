package cli

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/openfootprint/internal/config"
)

func TestEffectiveConfigAppliesFlagsToCopy(t *testing.T) {
	t.Setenv("OPENFOOTPRINT_HOME", t.TempDir())
	t.Setenv("OPENFOOTPRINT_DB", "")
	config.ResetGlobalConfigForTest()
	t.Cleanup(config.ResetGlobalConfigForTest)

	global := config.GetGlobalConfig()
	wantPath := global.Storage.Path
	wantDelay := global.Storage.MockDelay

	cmd := &cobra.Command{Use: "serve"}
	cmd.Flags().String("db", "", "")
	cmd.Flags().Duration("mock-delay", 0, "")
	db := filepath.Join(t.TempDir(), "records.db")
	require.NoError(t, cmd.ParseFlags([]string{"--db", db, "--mock-delay", "250ms"}))

	cfg := effectiveConfig(cmd)
	assert.Equal(t, db, cfg.Storage.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Storage.MockDelay)

	assert.Equal(t, wantPath, config.GetGlobalConfig().Storage.Path)
	assert.Equal(t, wantDelay, config.GetGlobalConfig().Storage.MockDelay)
}

func TestEffectiveConfigKeepsConfiguredDelay(t *testing.T) {
	t.Setenv("OPENFOOTPRINT_HOME", t.TempDir())
	config.ResetGlobalConfigForTest()
	t.Cleanup(config.ResetGlobalConfigForTest)
	config.GetGlobalConfig().Storage.MockDelay = time.Second

	cmd := &cobra.Command{Use: "serve"}
	cmd.Flags().Duration("mock-delay", 0, "")
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, time.Second, effectiveConfig(cmd).Storage.MockDelay)
}
