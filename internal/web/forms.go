package web

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/rshade/openfootprint/internal/model"
)

// formReader converts posted form values, collecting a message per field
// that cannot be parsed.
type formReader struct {
	values url.Values
	errs   map[string]string
}

func newFormReader(v url.Values) *formReader {
	return &formReader{values: v, errs: map[string]string{}}
}

func (f *formReader) str(name string) string {
	return strings.TrimSpace(f.values.Get(name))
}

func (f *formReader) optionalFloat(name string) *float64 {
	s := f.str(name)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		f.errs[name] = "must be a number"
		return nil
	}
	return &v
}

func (f *formReader) float(name string) float64 {
	s := f.str(name)
	if s == "" {
		f.errs[name] = "is required"
		return 0
	}
	if v := f.optionalFloat(name); v != nil {
		return *v
	}
	return 0
}

func (f *formReader) date(name string) model.DateTime {
	s := f.str(name)
	if s == "" {
		return model.DateTime{}
	}
	d, err := model.ParseDateTime(s)
	if err != nil {
		f.errs[name] = "must be a date (YYYY-MM-DD)"
	}
	return d
}

// list returns the non-blank values of a multi-value field.
func (f *formReader) list(name string) []string {
	var out []string
	for _, v := range f.values[name] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (f *formReader) err() map[string]string {
	if len(f.errs) == 0 {
		return nil
	}
	return f.errs
}

func organizationForm(v url.Values) (model.OrganizationCreate, map[string]string) {
	f := newFormReader(v)
	return model.OrganizationCreate{
		OrganizationPK:       f.str("organization_pk"),
		Name:                 f.str("name"),
		Description:          f.str("description"),
		ParentOrganizationID: f.str("parent_organization_id"),
	}, f.err()
}

func facilityForm(v url.Values) (model.FacilityCreate, map[string]string) {
	f := newFormReader(v)
	return model.FacilityCreate{
		FacilityPK:     f.str("facility_pk"),
		Name:           f.str("name"),
		Description:    f.str("description"),
		Address:        f.str("address"),
		City:           f.str("city"),
		Country:        f.str("country"),
		Latitude:       f.optionalFloat("latitude"),
		Longitude:      f.optionalFloat("longitude"),
		OrganizationID: f.str("organization_id"),
	}, f.err()
}

func emissionReportForm(v url.Values) (model.EmissionReportCreate, map[string]string) {
	f := newFormReader(v)
	return model.EmissionReportCreate{
		EmissionReportPK:  f.str("emission_report_pk"),
		Description:       f.str("description"),
		ReportPeriodStart: f.date("report_period_start"),
		ReportPeriodEnd:   f.date("report_period_end"),
		OrganizationID:    f.str("organization_id"),
		ReportType:        model.ReportType(f.str("report_type")),
		Status:            model.ReportStatus(f.str("status")),
	}, f.err()
}

func emissionStatementForm(v url.Values) (model.EmissionStatementCreate, map[string]string) {
	f := newFormReader(v)
	return model.EmissionStatementCreate{
		EmissionStatementPK:        f.str("emission_statement_pk"),
		EmissionActivityID:         f.str("emission_activity_id"),
		EmissionCalculationModelID: f.str("emission_calculation_model_id"),
		Value:                      f.float("value"),
		Unit:                       f.str("unit"),
		ReportingPeriodStart:       f.date("reporting_period_start"),
		ReportingPeriodEnd:         f.date("reporting_period_end"),
		FacilityID:                 f.str("facility_id"),
		OrganizationID:             f.str("organization_id"),
	}, f.err()
}

func csrdReportForm(v url.Values) (model.CSRDReportCreate, map[string]string) {
	f := newFormReader(v)
	return model.CSRDReportCreate{
		CSRDReportPK:         f.str("csrd_report_pk"),
		Title:                f.str("title"),
		Description:          f.str("description"),
		ReportingPeriodStart: f.date("reporting_period_start"),
		ReportingPeriodEnd:   f.date("reporting_period_end"),
		OrganizationID:       f.str("organization_id"),
		ReportType:           model.CSRDReportType(f.str("report_type")),
		Status:               model.CSRDStatus(f.str("status")),
		Version:              f.str("version"),
		PreparedBy:           f.str("prepared_by"),
		ApprovedBy:           f.str("approved_by"),
		EmissionReportIDs:    f.list("emission_report_ids"),
	}, f.err()
}
