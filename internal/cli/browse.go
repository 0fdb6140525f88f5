package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/openfootprint/internal/model"
	"github.com/rshade/openfootprint/internal/tui"
)

func newBrowseCmd() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "browse <kind>",
		Short: "Browse records in an interactive table",
		Long: `Opens a terminal table of every record of a kind. Use the arrow keys to move,
enter for details, / to filter, s to change the sort column, r to reload and q
to quit.

When standard output is not a terminal the records are printed as plain text.`,
		Example: `  openfootprint browse facilities
  openfootprint browse csrd-report --plain`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseKind(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, func(s *session) error {
				ctx := cmd.Context()
				layout := s.cfg.Display.DateLayout
				if plain || !interactive(cmd) {
					table, loadErr := tui.LoadTable(ctx, s.svc, kind, layout)
					if loadErr != nil {
						return loadErr
					}
					return writeTable(cmd.OutOrStdout(), table)
				}
				return tui.Browse(ctx, kind, tui.ServiceLoader(s.svc, kind, layout), cmd.InOrStdin(), cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "print a plain table instead of the interactive browser")
	return cmd
}

// interactive reports whether the command talks to a terminal on both ends.
func interactive(cmd *cobra.Command) bool {
	out, ok := cmd.OutOrStdout().(*os.File)
	if !ok || !isTerminal(out) {
		return false
	}
	in, ok := cmd.InOrStdin().(*os.File)
	return ok && isTerminal(in)
}
