package model_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/openfootprint/internal/model"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr), "want *ValidationError, got %v", err)
	return verr.Fields
}

func TestOrganizationCreate_Validate(t *testing.T) {
	require.NoError(t, model.OrganizationCreate{OrganizationPK: "org:1", Name: "Acme"}.Validate())

	fields := fieldErrors(t, model.OrganizationCreate{}.Validate())
	assert.Equal(t, "is required", fields["organization_pk"])
	assert.Equal(t, "is required", fields["name"])

	fields = fieldErrors(t, model.OrganizationCreate{
		OrganizationPK: "org:1", Name: "Acme", ParentOrganizationID: "org:1",
	}.Validate())
	assert.Contains(t, fields, "parent_organization_id")
}

func TestFacilityCreate_ValidateCoordinates(t *testing.T) {
	lat, lon := 91.0, -181.0
	fields := fieldErrors(t, model.FacilityCreate{
		FacilityPK: "fac:1", Name: "Plant", Latitude: &lat, Longitude: &lon,
	}.Validate())
	assert.Len(t, fields, 2)

	lat, lon = 37.7749, -122.4194
	require.NoError(t, model.FacilityCreate{
		FacilityPK: "fac:1", Name: "Plant", Latitude: &lat, Longitude: &lon,
	}.Validate())
}

func TestEmissionReportCreate_Validate(t *testing.T) {
	valid := model.EmissionReportCreate{
		EmissionReportPK:  "er:1",
		ReportPeriodStart: model.MustDate("2024-01-01"),
		ReportPeriodEnd:   model.MustDate("2024-12-31"),
		OrganizationID:    "org:1",
		ReportType:        model.ReportTypeGHG,
		Status:            model.ReportStatusDraft,
	}
	require.NoError(t, valid.Validate())

	bad := valid
	bad.ReportPeriodEnd = model.MustDate("2023-12-31")
	bad.ReportType = "Weekly"
	bad.Status = ""
	fields := fieldErrors(t, bad.Validate())
	assert.Equal(t, "must not be before report_period_start", fields["report_period_end"])
	assert.Contains(t, fields["report_type"], "must be one of")
	assert.Equal(t, "is required", fields["status"])
}

func TestEmissionStatementCreate_ValidateUnit(t *testing.T) {
	base := model.EmissionStatementCreate{EmissionStatementPK: "es:1", EmissionActivityID: "act:1", Value: 10}

	for _, unit := range append(model.StatementUnits(), "", "tCO2e", "lb") {
		s := base
		s.Unit = unit
		assert.NoError(t, s.Validate(), unit)
	}

	s := base
	s.Unit = "furlongs"
	s.Value = -1
	fields := fieldErrors(t, s.Validate())
	assert.Contains(t, fields, "unit")
	assert.Contains(t, fields, "value")
}

func TestValidateRejectsNonFiniteNumbers(t *testing.T) {
	for _, f := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		fields := fieldErrors(t, model.EmissionStatementCreate{
			EmissionStatementPK: "es:1", EmissionActivityID: "act:1", Value: f, Unit: model.UnitKgCO2e,
		}.Validate())
		assert.Equal(t, "must be a finite number", fields["value"], f)

		lat, lon := f, f
		fields = fieldErrors(t, model.FacilityCreate{
			FacilityPK: "fac:1", Name: "Plant", Latitude: &lat, Longitude: &lon,
		}.Validate())
		assert.Equal(t, "must be a finite number", fields["latitude"], f)
		assert.Equal(t, "must be a finite number", fields["longitude"], f)

		score := f
		fields = fieldErrors(t, model.DataQualityCreate{EntityID: "fac:1", QualityScore: &score}.Validate())
		assert.Equal(t, "must be a finite number", fields["quality_score"], f)
	}
}

func TestEmissionStatement_KgCO2e(t *testing.T) {
	s := model.EmissionStatement{EmissionStatementCreate: model.EmissionStatementCreate{Value: 2, Unit: model.UnitTCO2e}}
	kg, err := s.KgCO2e()
	require.NoError(t, err)
	assert.InDelta(t, 2000.0, kg, 1e-9)

	s.Unit = ""
	kg, err = s.KgCO2e()
	require.NoError(t, err)
	assert.InDelta(t, 2.0, kg, 1e-9)
}

func TestCSRDReportCreate_Validate(t *testing.T) {
	fields := fieldErrors(t, model.CSRDReportCreate{}.Validate())
	for _, f := range []string{
		"csrd_report_pk", "title", "reporting_period_start", "reporting_period_end",
		"organization_id", "report_type", "status", "version", "prepared_by", "emission_report_ids",
	} {
		assert.Contains(t, fields, f)
	}
	assert.NotContains(t, fields, "approved_by")
	assert.NotContains(t, fields, "description")
}

func TestNewCSRDReport_SectionsInitialised(t *testing.T) {
	r := model.NewCSRDReport(model.CSRDReportCreate{CSRDReportPK: "csrd:1"})

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{"esrs_compliance", "materiality_assessment", "double_materiality",
		"sustainability_targets", "value_chain_assessment"} {
		assert.Equal(t, map[string]any{}, decoded[key], key)
	}
	assert.Nil(t, decoded["updated_at"])
	assert.Equal(t, "csrd:1", decoded["csrd_report_pk"])
}

func TestDataQualityCreate_Validate(t *testing.T) {
	score := 101.0
	fields := fieldErrors(t, model.DataQualityCreate{
		EntityID: "es:1", QualityScore: &score, VerificationStatus: "Maybe",
	}.Validate())
	assert.Contains(t, fields, "quality_score")
	assert.Contains(t, fields, "verification_status")
}

func TestEPDCreate_Validate(t *testing.T) {
	fields := fieldErrors(t, model.EnvironmentalProductDeclarationCreate{
		EnvironmentalProductDeclarationPK: "epd:1",
		ProductName:                       "Widget",
		OrganizationID:                    "org:1",
		ValidFrom:                         model.MustDate("2025-01-01"),
		ValidTo:                           model.MustDate("2024-01-01"),
	}.Validate())
	assert.Equal(t, map[string]string{"valid_to": "must not be before valid_from"}, fields)
}

func TestValidationError_Message(t *testing.T) {
	err := model.WaterActivityTypeCreate{}.Validate()
	require.Error(t, err)
	assert.Equal(t,
		"invalid water activity type: water_activity_type_id: is required; water_activity_type_name: is required",
		err.Error())
}

func TestDateTime_JSON(t *testing.T) {
	var d model.DateTime
	require.NoError(t, json.Unmarshal([]byte(`"2024-03-05"`), &d))
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), d.Time)

	require.NoError(t, json.Unmarshal([]byte(`"2024-12-31T23:59:59Z"`), &d))
	assert.Equal(t, "2024-12-31", d.DateString())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-12-31T23:59:59Z"`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())
	out, err = json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &d))
}

func TestParseKind(t *testing.T) {
	for _, k := range model.AllKinds() {
		got, err := model.ParseKind(string(k))
		require.NoError(t, err)
		assert.Equal(t, k, got)

		got, err = model.ParseKind(k.Singular())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := model.ParseKind("invoices")
	require.Error(t, err)
	assert.Equal(t, "Facilities", model.KindFacility.PluralTitle())
	assert.Equal(t, "CSRD Reports", model.KindCSRDReport.PluralTitle())
}

func TestOverall(t *testing.T) {
	assert.Equal(t, model.CheckPassed, model.Overall([]model.ESRSCheck{
		{Status: model.CheckPassed}, {Status: model.CheckWarning},
	}))
	assert.Equal(t, model.CheckFailed, model.Overall([]model.ESRSCheck{
		{Status: model.CheckPassed}, {Status: model.CheckFailed},
	}))
	assert.Equal(t, model.CheckPassed, model.Overall(nil))
}

func TestValidationFromSection(t *testing.T) {
	_, ok := model.ValidationFromSection("csrd:1", model.Section{})
	assert.False(t, ok)

	when := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	in := model.ValidationResult{
		CSRDReportID:     "csrd:1",
		OverallStatus:    model.CheckPassed,
		ValidationDate:   when,
		StandardsVersion: model.ESRSStandardsVersion,
		Checks: []model.ESRSCheck{
			{Standard: "ESRS E2", Description: "Pollution", Status: model.CheckWarning, Details: "needs context"},
		},
	}
	out, ok := model.ValidationFromSection("csrd:1", in.Section())
	require.True(t, ok)
	assert.Equal(t, in, out)

	// Sections decoded from JSON carry the same shapes.
	raw, err := json.Marshal(in.Section())
	require.NoError(t, err)
	var decoded model.Section
	require.NoError(t, json.Unmarshal(raw, &decoded))
	out, ok = model.ValidationFromSection("csrd:1", decoded)
	require.True(t, ok)
	assert.Equal(t, in, out)
}
