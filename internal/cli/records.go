package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/openfootprint/internal/catalog"
	"github.com/rshade/openfootprint/internal/cli/pagination"
	"github.com/rshade/openfootprint/internal/logging"
	"github.com/rshade/openfootprint/internal/model"
	"github.com/rshade/openfootprint/internal/store"
	"github.com/rshade/openfootprint/internal/tui"
)

// recordCommand is a command group for one record kind.
type recordCommand interface {
	command() *cobra.Command
}

// kindCommands binds the list, get and create operations of one kind.
// T is the stored record and C its create payload.
type kindCommands[T, C any] struct {
	kind       model.Kind
	list       func(*catalog.Service, context.Context, store.Page) ([]T, error)
	get        func(*catalog.Service, context.Context, string) (T, error)
	create     func(*catalog.Service, context.Context, C) (T, error)
	collection func(store.Store) store.Collection[T]
	key        func(*T) string
	// input registers the create flags and returns a func that reads them.
	input func(*cobra.Command) func() (C, error)
	extra func() []*cobra.Command
}

// recordCommands lists the command group of every record kind.
func recordCommands() []recordCommand {
	return []recordCommand{
		kindCommands[model.Organization, model.OrganizationCreate]{
			kind:       model.KindOrganization,
			list:       (*catalog.Service).ListOrganizations,
			get:        (*catalog.Service).GetOrganization,
			create:     (*catalog.Service).CreateOrganization,
			collection: store.Store.Organizations,
			key:        (*model.Organization).Key,
			input:      organizationInput,
		},
		kindCommands[model.Facility, model.FacilityCreate]{
			kind:       model.KindFacility,
			list:       (*catalog.Service).ListFacilities,
			get:        (*catalog.Service).GetFacility,
			create:     (*catalog.Service).CreateFacility,
			collection: store.Store.Facilities,
			key:        (*model.Facility).Key,
			input:      facilityInput,
		},
		kindCommands[model.EmissionReport, model.EmissionReportCreate]{
			kind:       model.KindEmissionReport,
			list:       (*catalog.Service).ListEmissionReports,
			get:        (*catalog.Service).GetEmissionReport,
			create:     (*catalog.Service).CreateEmissionReport,
			collection: store.Store.EmissionReports,
			key:        (*model.EmissionReport).Key,
			input:      emissionReportInput,
		},
		kindCommands[model.EmissionStatement, model.EmissionStatementCreate]{
			kind:       model.KindEmissionStatement,
			list:       (*catalog.Service).ListEmissionStatements,
			get:        (*catalog.Service).GetEmissionStatement,
			create:     (*catalog.Service).CreateEmissionStatement,
			collection: store.Store.EmissionStatements,
			key:        (*model.EmissionStatement).Key,
			input:      emissionStatementInput,
		},
		kindCommands[model.CSRDReport, model.CSRDReportCreate]{
			kind:       model.KindCSRDReport,
			list:       (*catalog.Service).ListCSRDReports,
			get:        (*catalog.Service).GetCSRDReport,
			create:     (*catalog.Service).CreateCSRDReport,
			collection: store.Store.CSRDReports,
			key:        (*model.CSRDReport).Key,
			input:      csrdReportInput,
			extra: func() []*cobra.Command {
				return []*cobra.Command{newCSRDValidateCmd(), newCSRDGenerateCmd()}
			},
		},
		kindCommands[model.DataQuality, model.DataQualityCreate]{
			kind:       model.KindDataQuality,
			list:       (*catalog.Service).ListDataQuality,
			get:        (*catalog.Service).GetDataQuality,
			create:     (*catalog.Service).CreateDataQuality,
			collection: store.Store.DataQuality,
			key:        (*model.DataQuality).Key,
			input:      dataQualityInput,
		},
		kindCommands[model.WaterActivityType, model.WaterActivityTypeCreate]{
			kind:       model.KindWaterActivityType,
			list:       (*catalog.Service).ListWaterActivityTypes,
			get:        (*catalog.Service).GetWaterActivityType,
			create:     (*catalog.Service).CreateWaterActivityType,
			collection: store.Store.WaterActivityTypes,
			key:        (*model.WaterActivityType).Key,
			input:      waterActivityTypeInput,
		},
		kindCommands[model.EnvironmentalProductDeclaration, model.EnvironmentalProductDeclarationCreate]{
			kind:       model.KindEnvironmentalProductDeclaration,
			list:       (*catalog.Service).ListEnvironmentalProductDeclarations,
			get:        (*catalog.Service).GetEnvironmentalProductDeclaration,
			create:     (*catalog.Service).CreateEnvironmentalProductDeclaration,
			collection: store.Store.EnvironmentalProductDeclarations,
			key:        (*model.EnvironmentalProductDeclaration).Key,
			input:      epdInput,
		},
	}
}

func (k kindCommands[T, C]) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:     k.kind.Singular(),
		Aliases: []string{string(k.kind)},
		Short:   k.kind.Title() + " commands",
	}
	cmd.AddCommand(k.listCmd(), k.getCmd(), k.createCmd())
	if k.extra != nil {
		cmd.AddCommand(k.extra()...)
	}
	return cmd
}

func (k kindCommands[T, C]) listCmd() *cobra.Command {
	var output string
	params := pagination.NewParams()

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List " + strings.ToLower(k.kind.PluralTitle()),
		Example: fmt.Sprintf(`  openfootprint %[1]s list
  openfootprint %[1]s list --skip 10 --limit 5 --output json
  openfootprint %[1]s list --page 2 --page-size 20`, k.kind.Singular()),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := params.Validate(); err != nil {
				return err
			}
			format, err := resolveOutputFormat(output)
			if err != nil {
				return err
			}
			return withSession(cmd, func(s *session) error {
				return k.runList(cmd, s, *params, format)
			})
		},
	}
	params.Register(cmd)
	addOutputFlag(cmd, &output)
	return cmd
}

func (k kindCommands[T, C]) runList(cmd *cobra.Command, s *session, params pagination.Params, format string) error {
	ctx := cmd.Context()
	page := params.StorePage()

	recs, err := k.list(s.svc, ctx, page)
	if err != nil {
		return fmt.Errorf("listing %s: %w", k.kind, err)
	}
	table := tui.Table{Kind: k.kind}
	if format == outputTable || params.Sort != "" {
		if table, err = tui.LoadPage(ctx, s.svc, k.kind, s.cfg.Display.DateLayout, page); err != nil {
			return fmt.Errorf("listing %s: %w", k.kind, err)
		}
	}
	if params.Sort != "" {
		if recs, err = k.sortPage(params.Sort, recs, &table); err != nil {
			return err
		}
	}

	logging.FromContext(ctx).Debug().Str("kind", string(k.kind)).Int("count", len(recs)).Msg("records listed")

	out := cmd.OutOrStdout()
	if err = writeRecords(out, format, recs, table); err != nil {
		return err
	}
	if format != outputTable || len(recs) == 0 {
		return nil
	}
	total, err := k.collection(s.svc.Store()).Count(ctx)
	if err != nil {
		return fmt.Errorf("counting %s: %w", k.kind, err)
	}
	normalized, _ := page.Normalize()
	meta := pagination.NewMeta(normalized, total)
	_, err = fmt.Fprintf(out, "\nShowing %d-%d of %d %s (page %d of %d)\n",
		normalized.Skip+1, normalized.Skip+len(recs), meta.TotalItems, strings.ToLower(k.kind.PluralTitle()),
		meta.CurrentPage, meta.TotalPages)
	return err
}

// sortPage orders the table by a column and puts recs in the same order.
func (k kindCommands[T, C]) sortPage(sortExpr string, recs []T, table *tui.Table) ([]T, error) {
	field, order, err := pagination.ParseSort(sortExpr)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(table.Columns)+1)
	for _, c := range table.Columns {
		titles = append(titles, c.Title)
	}
	sorter := pagination.NewColumnSorter(titles)
	if err = pagination.Sort(sorter, table.Records, func(r tui.Record) []string { return r.Cells }, field, order); err != nil {
		return nil, err
	}

	byKey := make(map[string]T, len(recs))
	for i := range recs {
		byKey[k.key(&recs[i])] = recs[i]
	}
	sorted := make([]T, 0, len(recs))
	for _, r := range table.Records {
		if rec, ok := byKey[r.Key]; ok {
			sorted = append(sorted, rec)
		}
	}
	return sorted, nil
}

func (k kindCommands[T, C]) getCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "get <pk>",
		Short: "Show one " + strings.ToLower(k.kind.Title()),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveOutputFormat(output)
			if err != nil {
				return err
			}
			return withSession(cmd, func(s *session) error {
				ctx := cmd.Context()
				if format != outputTable {
					rec, getErr := k.get(s.svc, ctx, args[0])
					if getErr != nil {
						return getErr
					}
					if format == outputNDJSON {
						return writeNDJSON(cmd.OutOrStdout(), []T{rec})
					}
					return writeJSON(cmd.OutOrStdout(), rec)
				}
				rec, getErr := tui.LoadRecord(ctx, s.svc, k.kind, s.cfg.Display.DateLayout, args[0])
				if getErr != nil {
					return getErr
				}
				return writeFields(cmd.OutOrStdout(), rec.Fields)
			})
		},
	}
	addOutputFlag(cmd, &output)
	return cmd
}

func (k kindCommands[T, C]) createCmd() *cobra.Command {
	var (
		output string
		file   string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a " + strings.ToLower(k.kind.Title()),
		Long: fmt.Sprintf(`Creates a %s from flags, or from a JSON document with --file.

The JSON document uses the same field names as the HTTP API. Use --file - to
read it from standard input.`, strings.ToLower(k.kind.Title())),
		Args: cobra.NoArgs,
	}
	read := k.input(cmd)
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		format, err := resolveOutputFormat(output)
		if err != nil {
			return err
		}
		var in C
		if file != "" {
			in, err = decodeFile[C](cmd.InOrStdin(), file)
		} else {
			in, err = read()
		}
		if err != nil {
			return err
		}
		return withSession(cmd, func(s *session) error {
			ctx := cmd.Context()
			rec, createErr := k.create(s.svc, ctx, in)
			if createErr != nil {
				return createErr
			}
			logging.FromContext(ctx).Info().Str("kind", string(k.kind)).Str("pk", k.key(&rec)).Msg("record created")

			switch format {
			case outputJSON:
				return writeJSON(cmd.OutOrStdout(), rec)
			case outputNDJSON:
				return writeNDJSON(cmd.OutOrStdout(), []T{rec})
			}
			cmd.Printf("%s %s created.\n", k.kind.Title(), k.key(&rec))
			return nil
		})
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the record from a JSON file ('-' for stdin)")
	addOutputFlag(cmd, &output)
	return cmd
}

// decodeFile reads one JSON document from path, or from stdin when path is "-".
func decodeFile[C any](stdin io.Reader, path string) (C, error) {
	var in C
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return in, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		r = f
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return in, fmt.Errorf("decoding %s: %w", path, err)
	}
	return in, nil
}
