package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/openfootprint/internal/config"
	"github.com/rshade/openfootprint/internal/logging"
)

// Environment variables that override the logging section.
const (
	envLogLevel  = "OPENFOOTPRINT_LOG_LEVEL"
	envLogFormat = "OPENFOOTPRINT_LOG_FORMAT"
)

// setupLogging configures logging based on config file, environment, and CLI flags.
func setupLogging(cmd *cobra.Command) logging.Result {
	loggingCfg := config.GetLoggingConfig()

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = "console"
		loggingCfg.File = ""
	}

	if envLevel := os.Getenv(envLogLevel); envLevel != "" && !debug {
		loggingCfg.Level = envLevel
	}
	if envFormat := os.Getenv(envLogFormat); envFormat != "" {
		loggingCfg.Format = envFormat
	}

	// Ensure log directory exists after all overrides have been applied.
	if loggingCfg.File != "" {
		if err := config.EnsureLogDir(); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not create log directory: %v\n", err)
		}
	}

	result := logging.NewLogger(loggingCfg.ToLoggingConfig())
	logger = logging.ComponentLogger(result.Logger, "cli")

	if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	} else if result.UsingFile && announceLogPath(cmd) {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	}

	ctx, _ := logging.WithTrace(cmd.Context(), logger)
	cmd.SetContext(ctx)

	logging.FromContext(ctx).Info().Str("command", cmd.CommandPath()).Msg("command started")

	return result
}

// announceLogPath reports whether the log path is printed. Only serve does,
// so scripted output stays clean.
func announceLogPath(cmd *cobra.Command) bool {
	return cmd.Name() == "serve"
}

// cleanupLogging closes the log file handle.
func cleanupLogging(cmd *cobra.Command, logResult *logging.Result) error {
	if logResult == nil {
		return nil
	}
	logging.FromContext(cmd.Context()).Debug().Str("command", cmd.CommandPath()).Msg("command finished")
	return logResult.Close()
}
