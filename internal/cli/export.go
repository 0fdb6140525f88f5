package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/openfootprint/internal/export"
	"github.com/rshade/openfootprint/internal/logging"
)

func newExportCmd() *cobra.Command {
	var out string
	names := make([]string, 0, len(export.Datasets()))
	for _, d := range export.Datasets() {
		names = append(names, string(d))
	}

	cmd := &cobra.Command{
		Use:   "export <dataset>",
		Short: "Export records to an Excel workbook",
		Long: fmt.Sprintf(`Writes a dataset as an .xlsx workbook. Datasets: %s.

The comprehensive report has one worksheet per record kind.`, strings.Join(names, ", ")),
		Example: `  openfootprint export organizations
  openfootprint export comprehensive-report --out all.xlsx`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if name == "comprehensive" {
				name = string(export.Comprehensive)
			}
			dataset, err := export.ParseDataset(name)
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				path = export.Filename(string(dataset))
			}
			return withSession(cmd, func(s *session) error {
				return writeExport(cmd, s, dataset, path)
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file (default: the dataset's download name)")
	return cmd
}

//nolint:nonamedreturns // the deferred Close reports through err.
func writeExport(cmd *cobra.Command, s *session, dataset export.Dataset, path string) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		err = errors.Join(err, f.Close())
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err = s.svc.Exporter().Write(cmd.Context(), f, dataset); err != nil {
		return fmt.Errorf("exporting %s: %w", dataset, err)
	}
	logging.FromContext(cmd.Context()).Info().Str("dataset", string(dataset)).Str("path", path).Msg("export written")
	cmd.Printf("Exported %s to %s\n", dataset.Title(), path)
	return nil
}
