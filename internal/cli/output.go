package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/openfootprint/internal/config"
	"github.com/rshade/openfootprint/internal/tui"
)

// Output formats accepted by --output.
const (
	outputTable  = "table"
	outputJSON   = "json"
	outputNDJSON = "ndjson"
)

// addOutputFlag registers --output on cmd.
func addOutputFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "output", "o", "",
		"output format: table, json or ndjson (default from output.default_format)")
}

// resolveOutputFormat picks the flag value or the configured default.
func resolveOutputFormat(flag string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(flag))
	if format == "" {
		format = config.GetDefaultOutputFormat()
	}
	switch format {
	case outputTable, outputJSON, outputNDJSON:
		return format, nil
	case "":
		return outputTable, nil
	}
	return "", fmt.Errorf("unsupported output format %q: use table, json or ndjson", flag)
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeNDJSON writes one compact JSON document per item.
func writeNDJSON[T any](w io.Writer, items []T) error {
	enc := json.NewEncoder(w)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}

// writeRecords renders recs in format, using table for the text form.
func writeRecords[T any](w io.Writer, format string, recs []T, table tui.Table) error {
	switch format {
	case outputJSON:
		return writeJSON(w, recs)
	case outputNDJSON:
		return writeNDJSON(w, recs)
	}
	return writeTable(w, table)
}

// writeTable prints table as aligned columns, or a notice when it is empty.
func writeTable(w io.Writer, table tui.Table) error {
	if len(table.Records) == 0 {
		_, err := fmt.Fprintf(w, "No %s found.\n", strings.ToLower(table.Kind.PluralTitle()))
		return err
	}
	return tui.WritePlain(w, table)
}

// writeFields renders label/value pairs as two aligned columns.
func writeFields(w io.Writer, fields []tui.Field) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) //nolint:mnd // column padding.
	for _, f := range fields {
		fmt.Fprintf(tw, "%s:\t%s\n", f.Label, f.Value)
	}
	return tw.Flush()
}
