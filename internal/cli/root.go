// Package cli implements the openfootprint command line: the API server, record
// listing and creation, CSRD validation and document generation, Excel export,
// the terminal browser and footprint calculations.
package cli

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/openfootprint/internal/config"
	"github.com/rshade/openfootprint/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the openfootprint CLI.
// It wires up configuration, logging and tracing before any subcommand runs.
func NewRootCmd(ver string) *cobra.Command {
	var (
		logResult  *logging.Result
		projectDir string
	)

	cmd := &cobra.Command{
		Use:           "openfootprint",
		Short:         "Carbon footprint and CSRD reporting",
		Long:          "OpenFootprint: record emissions, validate CSRD reports against ESRS and export the results",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			wd, _ := os.Getwd()
			dir := config.ResolveProjectDir(cmd.Context(), projectDir, wd)
			config.SetResolvedProjectDir(dir)
			config.InitGlobalConfigWithProject(cmd.Context(), dir)

			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&projectDir, "project-dir", "",
		"project directory holding .openfootprint/config.yaml (default: search upwards)")
	cmd.PersistentFlags().String("db", "", "record database path (overrides storage.path)")

	cmd.AddGroup(
		&cobra.Group{ID: groupRecords, Title: "Record Commands:"},
		&cobra.Group{ID: groupReporting, Title: "Reporting Commands:"},
	)
	for _, rc := range recordCommands() {
		c := rc.command()
		c.GroupID = groupRecords
		cmd.AddCommand(c)
	}
	for _, c := range []*cobra.Command{
		newDashboardCmd(), newExportCmd(), newBrowseCmd(), newFootprintCmd(),
	} {
		c.GroupID = groupReporting
		cmd.AddCommand(c)
	}
	cmd.AddCommand(newServeCmd(), newSeedCmd(), newConfigCmd())

	return cmd
}

const (
	groupRecords   = "records"
	groupReporting = "reporting"
)

const rootCmdExample = `  # Start the API and web UI on :8000
  openfootprint serve

  # Load the demo records
  openfootprint seed

  # List emission reports as JSON, second page of 20
  openfootprint emission-report list --page 2 --page-size 20 --output json

  # Create an organization
  openfootprint organization create --pk org:acme --name "Acme Manufacturing"

  # Validate a CSRD report and render it as a PDF
  openfootprint csrd-report validate csrd:2024
  openfootprint csrd-report generate csrd:2024 --format pdf --out csrd-2024.pdf

  # Export every record to an Excel workbook
  openfootprint export comprehensive --out openfootprint.xlsx

  # Browse facilities interactively
  openfootprint browse facilities

  # Footprint of a three night hotel stay
  openfootprint footprint hotel --nights 3

  # Set configuration values
  openfootprint config set output.default_format json`

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(
		NewConfigInitCmd(), NewConfigSetCmd(), NewConfigGetCmd(),
		NewConfigListCmd(), NewConfigValidateCmd(),
	)
	return cmd
}
