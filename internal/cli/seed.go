package cli

import (
	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the demo organizations, facilities and reports",
		Long: `Inserts the demo records. Records that already exist are left untouched, so
seed can be run repeatedly.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd, false)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			res, err := seedStore(cmd.Context(), s.store)
			if err != nil {
				return err
			}
			cmd.Printf("Seeded %d records into %s (%d already present)\n", res.Created, s.cfg.Storage.Path, res.Skipped)
			return nil
		},
	}
}
