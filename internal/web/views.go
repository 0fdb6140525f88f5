package web

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/rshade/openfootprint/internal/carbon"
	"github.com/rshade/openfootprint/internal/catalog"
	"github.com/rshade/openfootprint/internal/export"
	"github.com/rshade/openfootprint/internal/format"
	"github.com/rshade/openfootprint/internal/model"
)

// option is one entry of a select input.
type option struct {
	Value string
	Label string
}

type organizationRow struct {
	PK          string
	Name        string
	Description string
	Parent      string
	Created     time.Time
}

type facilityRow struct {
	PK           string
	Name         string
	Description  string
	Location     string
	Coordinates  string
	Organization string
}

type emissionReportRow struct {
	PK           string
	Description  string
	Organization string
	Period       string
	Type         model.ReportType
	Status       model.ReportStatus
	Created      time.Time
}

type emissionStatementRow struct {
	PK           string
	ActivityID   string
	Value        string
	Unit         string
	Period       string
	Organization string
	Facility     string
	Created      time.Time
}

type csrdReportRow struct {
	PK           string
	Title        string
	Organization string
	Period       string
	Type         model.CSRDReportType
	Status       model.CSRDStatus
	Version      string
	Validation   *model.ValidationResult
	Highlight    bool
	CreatedAt    time.Time
}

// recordPage is the Data of every record list page.
type recordPage struct {
	Rows          any
	Organizations []option
	Facilities    []option
	Reports       []option
	Types         []option
	Statuses      []option
	Units         []option
	Formats       []option
}

type exportLink struct {
	Title       string
	Description string
	URL         string
	Filename    string
}

type exportPage struct {
	Links []exportLink
	Notes []string
}

// date renders the supported time shapes with the configured layout.
func (h *Handler) date(v any) string {
	switch t := v.(type) {
	case time.Time:
		return format.Date(t, h.dateLayout)
	case *time.Time:
		if t == nil {
			return ""
		}
		return format.Date(*t, h.dateLayout)
	case model.DateTime:
		return format.Date(t.Time, h.dateLayout)
	case string:
		return format.DateString(t, h.dateLayout)
	}
	return ""
}

func (h *Handler) period(start, end model.DateTime) string {
	return format.Period(start.Time, end.Time, h.dateLayout)
}

func location(f model.Facility) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{f.City, f.Country} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return format.OrDash(strings.Join(parts, ", "))
}

func coordinates(f model.Facility) string {
	if f.Latitude == nil || f.Longitude == nil {
		return "-"
	}
	return format.OptionalFloat(f.Latitude) + ", " + format.OptionalFloat(f.Longitude)
}

// nameOptions turns an id to name map into options sorted by label.
func nameOptions(names map[string]string) []option {
	out := make([]option, 0, len(names))
	for id, name := range names {
		out = append(out, option{Value: id, Label: name})
	}
	slices.SortFunc(out, func(a, b option) int {
		return cmp.Or(cmp.Compare(a.Label, b.Label), cmp.Compare(a.Value, b.Value))
	})
	return out
}

func enumOptions[T ~string](values []T) []option {
	out := make([]option, len(values))
	for i, v := range values {
		out[i] = option{Value: string(v), Label: string(v)}
	}
	return out
}

func organizationRows(recs []model.Organization, lookup *catalog.Lookup) []organizationRow {
	rows := make([]organizationRow, len(recs))
	for i, o := range recs {
		rows[i] = organizationRow{
			PK:          o.OrganizationPK,
			Name:        o.Name,
			Description: o.Description,
			Parent:      lookup.ParentName(o.ParentOrganizationID),
			Created:     o.CreatedAt,
		}
	}
	return rows
}

func facilityRows(recs []model.Facility, lookup *catalog.Lookup) []facilityRow {
	rows := make([]facilityRow, len(recs))
	for i, f := range recs {
		org := ""
		if f.OrganizationID != "" {
			org = lookup.OrganizationName(f.OrganizationID)
		}
		rows[i] = facilityRow{
			PK:           f.FacilityPK,
			Name:         f.Name,
			Description:  f.Description,
			Location:     location(f),
			Coordinates:  coordinates(f),
			Organization: org,
		}
	}
	return rows
}

func (h *Handler) emissionReportRows(recs []model.EmissionReport, lookup *catalog.Lookup) []emissionReportRow {
	rows := make([]emissionReportRow, len(recs))
	for i, r := range recs {
		rows[i] = emissionReportRow{
			PK:           r.EmissionReportPK,
			Description:  r.Description,
			Organization: lookup.OrganizationName(r.OrganizationID),
			Period:       h.period(r.ReportPeriodStart, r.ReportPeriodEnd),
			Type:         r.ReportType,
			Status:       r.Status,
			Created:      r.CreatedAt,
		}
	}
	return rows
}

func (h *Handler) emissionStatementRows(recs []model.EmissionStatement, lookup *catalog.Lookup) []emissionStatementRow {
	rows := make([]emissionStatementRow, len(recs))
	for i, s := range recs {
		facility := catalog.NotApplicable
		if s.FacilityID != "" {
			facility = lookup.FacilityName(s.FacilityID)
		}
		rows[i] = emissionStatementRow{
			PK:           s.EmissionStatementPK,
			ActivityID:   s.EmissionActivityID,
			Value:        carbon.FormatFloat(s.Value, 2),
			Unit:         s.Unit,
			Period:       h.period(s.ReportingPeriodStart, s.ReportingPeriodEnd),
			Organization: lookup.OrganizationName(s.OrganizationID),
			Facility:     facility,
			Created:      s.CreatedAt,
		}
	}
	return rows
}

func (h *Handler) csrdReportRows(recs []model.CSRDReport, lookup *catalog.Lookup, validated string) []csrdReportRow {
	rows := make([]csrdReportRow, len(recs))
	for i, r := range recs {
		row := csrdReportRow{
			PK:           r.CSRDReportPK,
			Title:        r.Title,
			Organization: lookup.OrganizationName(r.OrganizationID),
			Period:       h.period(r.ReportingPeriodStart, r.ReportingPeriodEnd),
			Type:         r.ReportType,
			Status:       r.Status,
			Version:      r.Version,
			Highlight:    r.CSRDReportPK == validated,
			CreatedAt:    r.CreatedAt,
		}
		if res, ok := model.ValidationFromSection(r.CSRDReportPK, r.ESRSCompliance); ok {
			row.Validation = &res
		}
		rows[i] = row
	}
	return rows
}

func reportOptions(recs []model.EmissionReport) []option {
	out := make([]option, len(recs))
	for i, r := range recs {
		label := r.Description
		if label == "" {
			label = r.EmissionReportPK
		}
		out[i] = option{Value: r.EmissionReportPK, Label: label}
	}
	return out
}

// exportLinks mirrors the datasets offered for download, minus statements
// which are only exported inside the comprehensive workbook on this page.
func exportLinks() []exportLink {
	descriptions := map[export.Dataset]string{
		export.Organizations:   "Export all organization data including hierarchical structure.",
		export.Facilities:      "Export all facility data including locations and details.",
		export.EmissionReports: "Export all emission report data and their statuses.",
		export.CSRDReports:     "Export all CSRD compliance report data.",
		export.Comprehensive:   "Export all data in a single multi-sheet Excel workbook.",
	}
	var links []exportLink
	for _, d := range export.Datasets() {
		desc, ok := descriptions[d]
		if !ok {
			continue
		}
		links = append(links, exportLink{
			Title:       d.Title(),
			Description: desc,
			URL:         "/api/excel/" + string(d),
			Filename:    export.Filename(string(d)),
		})
	}
	return links
}

//nolint:gochecknoglobals // static page copy.
var exportNotes = []string{
	"Exported files are in Microsoft Excel (.xlsx) format",
	"All data is current as of the time of export",
	"Large datasets may take a few moments to generate",
	"For custom exports or specific data needs, please contact the administrator",
}
