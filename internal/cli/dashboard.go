package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/openfootprint/internal/catalog"
	"github.com/rshade/openfootprint/internal/format"
	"github.com/rshade/openfootprint/internal/tui"
)

func newDashboardCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Summarise records, emissions and CSRD progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			outFormat, err := resolveOutputFormat(output)
			if err != nil {
				return err
			}
			return withSession(cmd, func(s *session) error {
				d, dashErr := s.svc.Dashboard(cmd.Context())
				if dashErr != nil {
					return dashErr
				}
				switch outFormat {
				case outputJSON:
					return writeJSON(cmd.OutOrStdout(), d)
				case outputNDJSON:
					return writeNDJSON(cmd.OutOrStdout(), []catalog.Dashboard{d})
				}
				return writeDashboard(cmd, d, s.cfg.Display.DateLayout)
			})
		},
	}
	addOutputFlag(cmd, &output)
	return cmd
}

func writeDashboard(cmd *cobra.Command, d catalog.Dashboard, layout string) error {
	out := cmd.OutOrStdout()
	emissions := d.TotalEmissionsText
	if !d.Equivalency.IsEmpty && d.Equivalency.DisplayText != "" {
		emissions += " (" + d.Equivalency.DisplayText + ")"
	}
	summary := []tui.Field{
		{Label: "Organizations", Value: fmt.Sprint(d.Counts.Organizations)},
		{Label: "Facilities", Value: fmt.Sprint(d.Counts.Facilities)},
		{Label: "Emission Reports", Value: fmt.Sprint(d.Counts.EmissionReports)},
		{Label: "Emission Statements", Value: fmt.Sprint(d.Counts.EmissionStatements)},
		{Label: "CSRD Reports", Value: fmt.Sprint(d.Counts.CSRDReports)},
		{Label: "Total Emissions", Value: emissions},
		{Label: "CSRD Compliance", Value: fmt.Sprintf("%d%% Complete", d.CompliancePercent)},
	}
	if err := writeFields(out, summary); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nCompliance Checklist")
	for _, item := range d.Checklist {
		fmt.Fprintf(out, "  %s %s\n", checklistMark(item.State), item.Label)
	}

	fmt.Fprintln(out, "\nRecent Activity")
	if len(d.RecentActivity) == 0 {
		_, err := fmt.Fprintln(out, "  No recent activity")
		return err
	}
	activity := make([]tui.Field, 0, len(d.RecentActivity))
	for _, a := range d.RecentActivity {
		activity = append(activity, tui.Field{
			Label: "  " + format.Date(a.CreatedAt, layout),
			Value: a.Description,
		})
	}
	return writeFields(out, activity)
}

func checklistMark(s catalog.ChecklistState) string {
	switch s {
	case catalog.StateComplete:
		return "[x]"
	case catalog.StateInProgress:
		return "[~]"
	}
	return "[ ]"
}

