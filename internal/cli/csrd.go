package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/openfootprint/internal/catalog"
	"github.com/rshade/openfootprint/internal/logging"
	"github.com/rshade/openfootprint/internal/model"
	"github.com/rshade/openfootprint/internal/tui"
)

// ExitCodeValidationFailed is returned by "csrd-report validate --strict"
// when a check fails.
const ExitCodeValidationFailed = 2

// ExitError asks main to exit with a specific code.
type ExitError struct {
	ExitCode int
	Reason   string
}

func (e *ExitError) Error() string {
	return e.Reason
}

func newCSRDValidateCmd() *cobra.Command {
	var (
		output string
		strict bool
	)
	cmd := &cobra.Command{
		Use:   "validate <pk>",
		Short: "Validate a CSRD report against the ESRS checks",
		Long: `Evaluates the report against ESRS E1 (climate change), E2 (pollution) and S1
(own workforce) and stores the result on the report.

Warnings do not fail the report. With --strict a failed report exits with code 2.`,
		Example: `  openfootprint csrd-report validate namespace:transactional-data--CSRDReport:12345
  openfootprint csrd-report validate csrd:2024 --strict --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveOutputFormat(output)
			if err != nil {
				return err
			}
			return withSession(cmd, func(s *session) error {
				res, valErr := s.svc.ValidateCSRDReport(cmd.Context(), args[0])
				if valErr != nil {
					return valErr
				}
				if err = writeValidation(cmd, format, res); err != nil {
					return err
				}
				if strict && res.OverallStatus == model.CheckFailed {
					return &ExitError{
						ExitCode: ExitCodeValidationFailed,
						Reason:   fmt.Sprintf("CSRD report %s failed ESRS validation", args[0]),
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with code 2 when the report fails validation")
	addOutputFlag(cmd, &output)
	return cmd
}

func writeValidation(cmd *cobra.Command, format string, res model.ValidationResult) error {
	out := cmd.OutOrStdout()
	switch format {
	case outputJSON:
		return writeJSON(out, res)
	case outputNDJSON:
		return writeNDJSON(out, []model.ValidationResult{res})
	}

	fields := []tui.Field{
		{Label: "Report", Value: res.CSRDReportID},
		{Label: "Overall Status", Value: strings.ToUpper(string(res.OverallStatus))},
		{Label: "Standards", Value: res.StandardsVersion},
		{Label: "Validated At", Value: res.ValidationDate.Format("2006-01-02 15:04:05 MST")},
	}
	for _, c := range res.Checks {
		fields = append(fields, tui.Field{
			Label: c.Standard,
			Value: fmt.Sprintf("%s - %s: %s", c.Status, c.Description, c.Details),
		})
	}
	return writeFields(out, fields)
}

func newCSRDGenerateCmd() *cobra.Command {
	var (
		format string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "generate <pk>",
		Short: "Render a CSRD report as a PDF or Excel document",
		Example: `  openfootprint csrd-report generate csrd:2024
  openfootprint csrd-report generate csrd:2024 --format xlsx --out report.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session) error {
				ctx := cmd.Context()
				doc, message, err := generateDocument(ctx, s, args[0], strings.ToLower(format))
				if err != nil {
					return err
				}
				path := out
				if path == "" {
					path = doc.Filename
				}
				if err = os.WriteFile(path, doc.Body, 0o600); err != nil {
					return fmt.Errorf("writing %s: %w", path, err)
				}
				logging.FromContext(ctx).Info().
					Str("csrd_report_pk", args[0]).
					Str("path", path).
					Msg("document written")
				cmd.Printf("%s: %s (%d bytes)\n", message, path, len(doc.Body))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", catalog.FormatPDF, "document format: pdf or xlsx")
	cmd.Flags().StringVar(&out, "out", "", "output file (default: the document's own file name)")
	return cmd
}

// generateDocument renders the report document once. With a document cache
// the result is stored there and read back, so later downloads reuse it.
func generateDocument(ctx context.Context, s *session, pk, format string) (catalog.Document, string, error) {
	if s.cache == nil {
		doc, err := s.svc.RenderCSRDDocument(ctx, pk, format)
		if err != nil {
			return catalog.Document{}, "", err
		}
		return doc, fmt.Sprintf("CSRD report document generated in %s format", format), nil
	}
	gen, err := s.svc.GenerateCSRDDocument(ctx, pk, format)
	if err != nil {
		return catalog.Document{}, "", err
	}
	doc, err := s.svc.DownloadCSRDDocument(ctx, gen.ReportID, gen.Format)
	if err != nil {
		return catalog.Document{}, "", err
	}
	logging.FromContext(ctx).Debug().Str("document_id", gen.DocumentID).Msg("document cached")
	return doc, gen.Message, nil
}
