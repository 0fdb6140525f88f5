package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rshade/openfootprint/internal/carbon"
	"github.com/rshade/openfootprint/internal/catalog"
	"github.com/rshade/openfootprint/internal/format"
	"github.com/rshade/openfootprint/internal/model"
	"github.com/rshade/openfootprint/internal/store"
)

// Column is one table column.
type Column struct {
	Title string
	Width int
}

// Field is one labelled value of the detail pane.
type Field struct {
	Label string
	Value string
}

// Record is one browsable row.
type Record struct {
	Key    string
	Cells  []string
	Fields []Field
}

// matches reports whether any cell contains the lowercase query.
func (r Record) matches(query string) bool {
	if query == "" {
		return true
	}
	if strings.Contains(strings.ToLower(r.Key), query) {
		return true
	}
	for _, c := range r.Cells {
		if strings.Contains(strings.ToLower(c), query) {
			return true
		}
	}
	return false
}

// Table is a kind's records prepared for display.
type Table struct {
	Kind    model.Kind
	Columns []Column
	Records []Record
}

// Loader fetches a table; the browser calls it on start and on reload.
type Loader func(ctx context.Context) (Table, error)

// ServiceLoader loads kind from svc, formatting dates with layout.
func ServiceLoader(svc *catalog.Service, kind model.Kind, layout string) Loader {
	return func(ctx context.Context) (Table, error) {
		return LoadTable(ctx, svc, kind, layout)
	}
}

// LoadTable reads every record of kind and resolves organization and
// facility names.
func LoadTable(ctx context.Context, svc *catalog.Service, kind model.Kind, layout string) (Table, error) {
	return loadTable(ctx, svc, kind, layout, selection{})
}

// LoadPage is LoadTable restricted to one page of records.
func LoadPage(ctx context.Context, svc *catalog.Service, kind model.Kind, layout string, page store.Page) (Table, error) {
	return loadTable(ctx, svc, kind, layout, selection{page: &page})
}

// LoadRecord loads the single record pk of kind.
func LoadRecord(ctx context.Context, svc *catalog.Service, kind model.Kind, layout, pk string) (Record, error) {
	t, err := loadTable(ctx, svc, kind, layout, selection{pk: pk})
	if err != nil {
		return Record{}, err
	}
	return t.Records[0], nil
}

// selection picks the records loadTable reads: one key, one page or all.
type selection struct {
	pk   string
	page *store.Page
}

func fetch[T any](ctx context.Context, c store.Collection[T], sel selection) ([]T, error) {
	switch {
	case sel.pk != "":
		rec, err := c.Get(ctx, sel.pk)
		if err != nil {
			return nil, err
		}
		return []T{rec}, nil
	case sel.page != nil:
		return c.List(ctx, *sel.page)
	}
	return store.ListAll(ctx, c)
}

//nolint:cyclop // one branch per record kind.
func loadTable(ctx context.Context, svc *catalog.Service, kind model.Kind, layout string, sel selection) (Table, error) {
	if layout == "" {
		layout = format.DefaultDateLayout
	}
	lookup, err := svc.Lookup(ctx)
	if err != nil {
		return Table{}, err
	}
	st := svc.Store()
	b := builder{lookup: lookup, layout: layout}

	switch kind {
	case model.KindOrganization:
		recs, err := fetch(ctx, st.Organizations(), sel)
		return b.organizations(recs), err
	case model.KindFacility:
		recs, err := fetch(ctx, st.Facilities(), sel)
		return b.facilities(recs), err
	case model.KindEmissionReport:
		recs, err := fetch(ctx, st.EmissionReports(), sel)
		return b.emissionReports(recs), err
	case model.KindEmissionStatement:
		recs, err := fetch(ctx, st.EmissionStatements(), sel)
		return b.emissionStatements(recs), err
	case model.KindCSRDReport:
		recs, err := fetch(ctx, st.CSRDReports(), sel)
		return b.csrdReports(recs), err
	case model.KindDataQuality:
		recs, err := fetch(ctx, st.DataQuality(), sel)
		return b.dataQuality(recs), err
	case model.KindWaterActivityType:
		recs, err := fetch(ctx, st.WaterActivityTypes(), sel)
		return b.waterActivityTypes(recs), err
	case model.KindEnvironmentalProductDeclaration:
		recs, err := fetch(ctx, st.EnvironmentalProductDeclarations(), sel)
		return b.epds(recs), err
	}
	return Table{}, fmt.Errorf("unknown record kind %q", kind)
}

// WritePlain writes t as aligned text columns, for non-terminal output.
func WritePlain(w io.Writer, t Table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0) //nolint:mnd // column padding.
	titles := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		titles[i] = strings.ToUpper(c.Title)
	}
	fmt.Fprintln(tw, strings.Join(titles, "\t"))
	for _, r := range t.Records {
		fmt.Fprintln(tw, strings.Join(r.Cells, "\t"))
	}
	return tw.Flush()
}

type builder struct {
	lookup *catalog.Lookup
	layout string
}

func (b builder) date(d model.DateTime) string { return format.Date(d.Time, b.layout) }

func (b builder) period(start, end model.DateTime) string {
	return format.Period(start.Time, end.Time, b.layout)
}

func stamps(ts model.Timestamps) []Field {
	return []Field{
		{"Created At", format.Timestamp(ts.CreatedAt)},
		{"Updated At", format.OrDash(format.OptionalTimestamp(ts.UpdatedAt))},
	}
}

func (b builder) organizations(recs []model.Organization) Table {
	t := Table{Kind: model.KindOrganization, Columns: []Column{
		{"Name", 30}, {"Description", 36}, {"Parent Organization", 26}, {"Created", 12},
	}}
	for _, o := range recs {
		parent := b.lookup.ParentName(o.ParentOrganizationID)
		t.Records = append(t.Records, Record{
			Key:   o.OrganizationPK,
			Cells: []string{o.Name, o.Description, parent, format.Date(o.CreatedAt, b.layout)},
			Fields: append([]Field{
				{"ID", o.OrganizationPK},
				{"Name", o.Name},
				{"Description", format.OrDash(o.Description)},
				{"Parent Organization", parent},
			}, stamps(o.Timestamps)...),
		})
	}
	return t
}

func (b builder) facilities(recs []model.Facility) Table {
	t := Table{Kind: model.KindFacility, Columns: []Column{
		{"Name", 28}, {"Description", 32}, {"Location", 26}, {"Coordinates", 22},
	}}
	for _, f := range recs {
		location := format.OrDash(strings.Trim(f.City+", "+f.Country, ", "))
		coords := "-"
		if f.Latitude != nil && f.Longitude != nil {
			coords = format.OptionalFloat(f.Latitude) + ", " + format.OptionalFloat(f.Longitude)
		}
		org := catalog.NotApplicable
		if f.OrganizationID != "" {
			org = b.lookup.OrganizationName(f.OrganizationID)
		}
		t.Records = append(t.Records, Record{
			Key:   f.FacilityPK,
			Cells: []string{f.Name, f.Description, location, coords},
			Fields: append([]Field{
				{"ID", f.FacilityPK},
				{"Name", f.Name},
				{"Description", format.OrDash(f.Description)},
				{"Address", format.OrDash(f.Address)},
				{"Location", location},
				{"Coordinates", coords},
				{"Organization", org},
			}, stamps(f.Timestamps)...),
		})
	}
	return t
}

func (b builder) emissionReports(recs []model.EmissionReport) Table {
	t := Table{Kind: model.KindEmissionReport, Columns: []Column{
		{"Description", 36}, {"Organization", 24}, {"Reporting Period", 24},
		{"Type", 10}, {"Status", 10}, {"Created", 12},
	}}
	for _, r := range recs {
		org := b.lookup.OrganizationName(r.OrganizationID)
		period := b.period(r.ReportPeriodStart, r.ReportPeriodEnd)
		t.Records = append(t.Records, Record{
			Key: r.EmissionReportPK,
			Cells: []string{
				r.Description, org, period, string(r.ReportType), string(r.Status),
				format.Date(r.CreatedAt, b.layout),
			},
			Fields: append([]Field{
				{"ID", r.EmissionReportPK},
				{"Description", format.OrDash(r.Description)},
				{"Organization", org},
				{"Reporting Period", period},
				{"Type", string(r.ReportType)},
				{"Status", string(r.Status)},
			}, stamps(r.Timestamps)...),
		})
	}
	return t
}

func (b builder) emissionStatements(recs []model.EmissionStatement) Table {
	t := Table{Kind: model.KindEmissionStatement, Columns: []Column{
		{"Activity ID", 34}, {"Value", 12}, {"Unit", 8}, {"Reporting Period", 24},
		{"Organization", 22}, {"Facility", 22}, {"Created", 12},
	}}
	for _, s := range recs {
		org := b.lookup.OrganizationName(s.OrganizationID)
		facility := catalog.NotApplicable
		if s.FacilityID != "" {
			facility = b.lookup.FacilityName(s.FacilityID)
		}
		period := b.period(s.ReportingPeriodStart, s.ReportingPeriodEnd)
		value := carbon.FormatFloat(s.Value, 2)
		kg := "-"
		if v, err := s.KgCO2e(); err == nil {
			kg = carbon.FormatKg(v)
		}
		t.Records = append(t.Records, Record{
			Key:   s.EmissionStatementPK,
			Cells: []string{s.EmissionActivityID, value, s.Unit, period, org, facility, format.Date(s.CreatedAt, b.layout)},
			Fields: append([]Field{
				{"ID", s.EmissionStatementPK},
				{"Activity ID", s.EmissionActivityID},
				{"Calculation Model ID", format.OrDash(s.EmissionCalculationModelID)},
				{"Value", value + " " + s.Unit},
				{"CO2 Equivalent", kg},
				{"Reporting Period", period},
				{"Organization", org},
				{"Facility", facility},
			}, stamps(s.Timestamps)...),
		})
	}
	return t
}

func (b builder) csrdReports(recs []model.CSRDReport) Table {
	t := Table{Kind: model.KindCSRDReport, Columns: []Column{
		{"Title", 36}, {"Organization", 24}, {"Reporting Period", 24},
		{"Type", 14}, {"Status", 10}, {"Version", 8},
	}}
	for _, r := range recs {
		org := b.lookup.OrganizationName(r.OrganizationID)
		period := b.period(r.ReportingPeriodStart, r.ReportingPeriodEnd)
		fields := []Field{
			{"ID", r.CSRDReportPK},
			{"Title", r.Title},
			{"Description", format.OrDash(r.Description)},
			{"Organization", org},
			{"Reporting Period", period},
			{"Type", string(r.ReportType)},
			{"Status", string(r.Status)},
			{"Version", r.Version},
			{"Prepared By", r.PreparedBy},
			{"Approved By", format.OrDash(r.ApprovedBy)},
			{"Emission Reports", format.OrDash(strings.Join(r.EmissionReportIDs, ", "))},
		}
		if res, ok := model.ValidationFromSection(r.CSRDReportPK, r.ESRSCompliance); ok {
			fields = append(fields, Field{"ESRS Validation", string(res.OverallStatus) + " (" + b.date(model.NewDateTime(res.ValidationDate)) + ")"})
			for _, c := range res.Checks {
				fields = append(fields, Field{"  " + c.Standard, string(c.Status) + ": " + c.Details})
			}
		}
		t.Records = append(t.Records, Record{
			Key:    r.CSRDReportPK,
			Cells:  []string{r.Title, org, period, string(r.ReportType), string(r.Status), r.Version},
			Fields: append(fields, stamps(r.Timestamps)...),
		})
	}
	return t
}

func (b builder) dataQuality(recs []model.DataQuality) Table {
	t := Table{Kind: model.KindDataQuality, Columns: []Column{
		{"Entity ID", 40}, {"Score", 8}, {"Status", 10}, {"Verified", 12}, {"Verified By", 24},
	}}
	for _, d := range recs {
		score := format.OrDash(format.OptionalFloat(d.QualityScore))
		verified := b.date(d.VerificationDate)
		t.Records = append(t.Records, Record{
			Key:   d.EntityID,
			Cells: []string{d.EntityID, score, string(d.VerificationStatus), verified, d.VerifiedBy},
			Fields: append([]Field{
				{"Entity ID", d.EntityID},
				{"Quality Score", score},
				{"Verification Status", format.OrDash(string(d.VerificationStatus))},
				{"Verification Date", format.OrDash(verified)},
				{"Verified By", format.OrDash(d.VerifiedBy)},
				{"Notes", format.OrDash(d.Notes)},
			}, stamps(d.Timestamps)...),
		})
	}
	return t
}

func (b builder) waterActivityTypes(recs []model.WaterActivityType) Table {
	t := Table{Kind: model.KindWaterActivityType, Columns: []Column{
		{"ID", 20}, {"Name", 28}, {"Description", 44},
	}}
	for _, w := range recs {
		t.Records = append(t.Records, Record{
			Key:   w.WaterActivityTypeID,
			Cells: []string{w.WaterActivityTypeID, w.WaterActivityTypeName, w.Description},
			Fields: append([]Field{
				{"ID", w.WaterActivityTypeID},
				{"Name", w.WaterActivityTypeName},
				{"Description", format.OrDash(w.Description)},
			}, stamps(w.Timestamps)...),
		})
	}
	return t
}

func (b builder) epds(recs []model.EnvironmentalProductDeclaration) Table {
	t := Table{Kind: model.KindEnvironmentalProductDeclaration, Columns: []Column{
		{"Product", 24}, {"Description", 30}, {"Organization", 24}, {"Valid", 24},
	}}
	for _, e := range recs {
		org := b.lookup.OrganizationName(e.OrganizationID)
		valid := b.period(e.ValidFrom, e.ValidTo)
		t.Records = append(t.Records, Record{
			Key:   e.EnvironmentalProductDeclarationPK,
			Cells: []string{e.ProductName, e.Description, org, valid},
			Fields: append([]Field{
				{"ID", e.EnvironmentalProductDeclarationPK},
				{"Product", e.ProductName},
				{"Description", format.OrDash(e.Description)},
				{"Organization", org},
				{"Valid", valid},
			}, stamps(e.Timestamps)...),
		})
	}
	return t
}
