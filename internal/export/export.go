// Package export writes record collections as Excel workbooks.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/openfootprint/internal/format"
	"github.com/rshade/openfootprint/internal/model"
	"github.com/rshade/openfootprint/internal/store"
)

// ContentType is the media type of xlsx workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FallbackFilename names downloads of unrecognised datasets.
const FallbackFilename = "export.xlsx"

const (
	columnWidth  = 20
	headerFill   = "#D7E4BC"
	periodLayout = "2006-01-02"
)

// ErrUnknownDataset is returned for dataset names that cannot be exported.
var ErrUnknownDataset = errors.New("unknown export dataset")

// Dataset names an exportable workbook.
type Dataset string

// Exportable datasets.
const (
	Organizations      Dataset = "organizations"
	Facilities         Dataset = "facilities"
	EmissionReports    Dataset = "emission-reports"
	EmissionStatements Dataset = "emission-statements"
	CSRDReports        Dataset = "csrd-reports"
	Comprehensive      Dataset = "comprehensive-report"
)

// Datasets returns every dataset in the order the export page lists them.
func Datasets() []Dataset {
	return []Dataset{Organizations, Facilities, EmissionReports, EmissionStatements, CSRDReports, Comprehensive}
}

// ParseDataset validates a dataset name.
func ParseDataset(s string) (Dataset, error) {
	for _, d := range Datasets() {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDataset, s)
}

// Filename returns the download name for a dataset, or FallbackFilename.
func Filename(name string) string {
	switch Dataset(name) {
	case Organizations:
		return "organizations.xlsx"
	case Facilities:
		return "facilities.xlsx"
	case EmissionReports:
		return "emission_reports.xlsx"
	case EmissionStatements:
		return "emission_statements.xlsx"
	case CSRDReports:
		return "csrd_reports.xlsx"
	case Comprehensive:
		return "openfootprint_comprehensive_report.xlsx"
	}
	return FallbackFilename
}

// Title returns the label shown for a dataset on the export page.
func (d Dataset) Title() string {
	switch d {
	case Comprehensive:
		return "Comprehensive Report"
	case CSRDReports:
		return "CSRD Reports"
	}
	k, err := model.ParseKind(string(d))
	if err != nil {
		return string(d)
	}
	return k.PluralTitle()
}

// sheet is one worksheet worth of rows.
type sheet struct {
	name    string
	headers []string
	rows    [][]any
}

// Exporter builds workbooks from a Store.
type Exporter struct {
	store store.Store
}

// New returns an Exporter reading from s.
func New(s store.Store) *Exporter {
	return &Exporter{store: s}
}

// Write renders the workbook for d to w.
func (e *Exporter) Write(ctx context.Context, w io.Writer, d Dataset) error {
	var (
		sheets []sheet
		err    error
	)
	if d == Comprehensive {
		sheets, err = e.comprehensive(ctx)
	} else {
		var s sheet
		s, err = e.load(ctx, d)
		sheets = []sheet{s}
	}
	if err != nil {
		return err
	}
	return writeWorkbook(w, sheets)
}

// WriteCSRDReport renders a single CSRD report and its linked emission
// reports as a two-sheet workbook.
func (e *Exporter) WriteCSRDReport(ctx context.Context, w io.Writer, r model.CSRDReport) error {
	reports := make([]model.EmissionReport, 0, len(r.EmissionReportIDs))
	for _, id := range r.EmissionReportIDs {
		er, err := e.store.EmissionReports().Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		reports = append(reports, er)
	}
	return writeWorkbook(w, []sheet{csrdSheet([]model.CSRDReport{r}), emissionReportSheet(reports)})
}

func (e *Exporter) load(ctx context.Context, d Dataset) (sheet, error) {
	switch d {
	case Organizations:
		recs, err := store.ListAll(ctx, e.store.Organizations())
		return organizationSheet(recs), err
	case Facilities:
		recs, err := store.ListAll(ctx, e.store.Facilities())
		return facilitySheet(recs), err
	case EmissionReports:
		recs, err := store.ListAll(ctx, e.store.EmissionReports())
		return emissionReportSheet(recs), err
	case EmissionStatements:
		recs, err := store.ListAll(ctx, e.store.EmissionStatements())
		return emissionStatementSheet(recs), err
	case CSRDReports:
		recs, err := store.ListAll(ctx, e.store.CSRDReports())
		return csrdSheet(recs), err
	}
	return sheet{}, fmt.Errorf("%w: %q", ErrUnknownDataset, d)
}

// comprehensive loads every dataset concurrently, keeping sheet order stable.
func (e *Exporter) comprehensive(ctx context.Context) ([]sheet, error) {
	datasets := []Dataset{Organizations, Facilities, EmissionReports, EmissionStatements, CSRDReports}
	sheets := make([]sheet, len(datasets))

	g, gctx := errgroup.WithContext(ctx)
	for i, d := range datasets {
		g.Go(func() error {
			s, err := e.load(gctx, d)
			if err != nil {
				return fmt.Errorf("loading %s: %w", d, err)
			}
			sheets[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sheets, nil
}

func organizationSheet(recs []model.Organization) sheet {
	s := sheet{
		name:    "Organizations",
		headers: []string{"ID", "Name", "Description", "Parent Organization", "Created At", "Updated At"},
	}
	for _, r := range recs {
		s.rows = append(s.rows, []any{
			r.OrganizationPK, r.Name, r.Description, r.ParentOrganizationID,
			format.Timestamp(r.CreatedAt), format.OptionalTimestamp(r.UpdatedAt),
		})
	}
	return s
}

func facilitySheet(recs []model.Facility) sheet {
	s := sheet{
		name: "Facilities",
		headers: []string{
			"ID", "Name", "Description", "Address", "City", "Country",
			"Latitude", "Longitude", "Created At", "Updated At",
		},
	}
	for _, r := range recs {
		s.rows = append(s.rows, []any{
			r.FacilityPK, r.Name, r.Description, r.Address, r.City, r.Country,
			optional(r.Latitude), optional(r.Longitude),
			format.Timestamp(r.CreatedAt), format.OptionalTimestamp(r.UpdatedAt),
		})
	}
	return s
}

func emissionReportSheet(recs []model.EmissionReport) sheet {
	s := sheet{
		name: "Emission Reports",
		headers: []string{
			"ID", "Description", "Reporting Period", "Type", "Status",
			"Organization ID", "Created At", "Updated At",
		},
	}
	for _, r := range recs {
		s.rows = append(s.rows, []any{
			r.EmissionReportPK, r.Description,
			format.Period(r.ReportPeriodStart.Time, r.ReportPeriodEnd.Time, periodLayout),
			string(r.ReportType), string(r.Status), r.OrganizationID,
			format.Timestamp(r.CreatedAt), format.OptionalTimestamp(r.UpdatedAt),
		})
	}
	return s
}

func emissionStatementSheet(recs []model.EmissionStatement) sheet {
	s := sheet{
		name: "Emission Statements",
		headers: []string{
			"ID", "Activity ID", "Calculation Model ID", "Value", "Unit", "Reporting Period",
			"Organization ID", "Facility ID", "Created At", "Updated At",
		},
	}
	for _, r := range recs {
		s.rows = append(s.rows, []any{
			r.EmissionStatementPK, r.EmissionActivityID, r.EmissionCalculationModelID,
			r.Value, r.Unit,
			format.Period(r.ReportingPeriodStart.Time, r.ReportingPeriodEnd.Time, periodLayout),
			r.OrganizationID, r.FacilityID,
			format.Timestamp(r.CreatedAt), format.OptionalTimestamp(r.UpdatedAt),
		})
	}
	return s
}

func csrdSheet(recs []model.CSRDReport) sheet {
	s := sheet{
		name: "CSRD Reports",
		headers: []string{
			"ID", "Title", "Description", "Reporting Period", "Type", "Status", "Version",
			"Organization ID", "Prepared By", "Approved By", "Emission Reports",
			"ESRS Compliance", "Created At", "Updated At",
		},
	}
	for _, r := range recs {
		s.rows = append(s.rows, []any{
			r.CSRDReportPK, r.Title, r.Description,
			format.Period(r.ReportingPeriodStart.Time, r.ReportingPeriodEnd.Time, periodLayout),
			string(r.ReportType), string(r.Status), r.Version, r.OrganizationID,
			r.PreparedBy, r.ApprovedBy, strings.Join(r.EmissionReportIDs, "; "),
			sectionText(r.ESRSCompliance),
			format.Timestamp(r.CreatedAt), format.OptionalTimestamp(r.UpdatedAt),
		})
	}
	return s
}

// sectionText renders a JSON section compactly, or "" when it is empty.
func sectionText(s model.Section) string {
	if len(s) == 0 {
		return ""
	}
	b, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	return string(b)
}

func optional(f *float64) any {
	if f == nil {
		return ""
	}
	return *f
}

func writeWorkbook(w io.Writer, sheets []sheet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	const defaultSheet = "Sheet1"
	for i, s := range sheets {
		if i == 0 {
			if err = f.SetSheetName(defaultSheet, s.name); err != nil {
				return fmt.Errorf("naming sheet %q: %w", s.name, err)
			}
		} else if _, err = f.NewSheet(s.name); err != nil {
			return fmt.Errorf("adding sheet %q: %w", s.name, err)
		}
		if err = writeSheet(f, s, headerStyle); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err = f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	header := make([]any, len(s.headers))
	for i, h := range s.headers {
		header[i] = h
	}
	if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
		return fmt.Errorf("writing %s header: %w", s.name, err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(s.headers))
	if err != nil {
		return fmt.Errorf("sizing %s: %w", s.name, err)
	}
	if err = f.SetCellStyle(s.name, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("styling %s header: %w", s.name, err)
	}
	if err = f.SetColWidth(s.name, "A", lastCol, columnWidth); err != nil {
		return fmt.Errorf("sizing %s columns: %w", s.name, err)
	}

	for i, row := range s.rows {
		cell, cellErr := excelize.CoordinatesToCellName(1, i+2)
		if cellErr != nil {
			return fmt.Errorf("addressing %s row %d: %w", s.name, i+2, cellErr)
		}
		if err = f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", s.name, i+2, err)
		}
	}
	return nil
}
