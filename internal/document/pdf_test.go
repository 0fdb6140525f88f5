package document

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/openfootprint/internal/carbon"
	"github.com/rshade/openfootprint/internal/model"
)

func sampleData(t *testing.T) DocumentData {
	t.Helper()
	rep := model.NewCSRDReport(model.CSRDReportCreate{
		CSRDReportPK:         "csrd:1",
		Title:                "Annual CSRD Compliance Report 2024",
		Description:          "Covers the Münich site",
		ReportingPeriodStart: model.MustDate("2024-01-01"),
		ReportingPeriodEnd:   model.MustDate("2024-12-31"),
		Status:               model.CSRDStatusDraft,
		Version:              "1.0",
		PreparedBy:           "Sustainability Department",
	})
	eq, err := carbon.Equivalencies(2125.7)
	require.NoError(t, err)
	return DocumentData{
		Report:           rep,
		OrganizationName: "Example Corporation",
		EmissionReports: []EmissionReportRow{{
			Report: model.EmissionReport{EmissionReportCreate: model.EmissionReportCreate{
				Description: "Annual GHG emissions report for 2024",
				ReportType:  model.ReportTypeCSRD,
				Status:      model.ReportStatusFinal,
			}},
			OrganizationName: "Example Corporation",
			StatementCount:   2,
			TotalKgCO2e:      2125.7,
		}},
		TotalKgCO2e: 2125.7,
		Equivalency: eq,
		GeneratedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestRenderCSRDPDF(t *testing.T) {
	data := sampleData(t)
	data.Report.ESRSCompliance = model.ValidationResult{
		OverallStatus:  model.CheckPassed,
		ValidationDate: data.GeneratedAt,
		Checks: []model.ESRSCheck{
			{Standard: "ESRS E1", Description: "Climate change", Status: model.CheckPassed, Details: "ok"},
			{Standard: "ESRS E2", Description: "Pollution", Status: model.CheckWarning, Details: "no CH4 or N2O data"},
		},
	}.Section()

	var buf bytes.Buffer
	require.NoError(t, RenderCSRDPDF(&buf, data))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestRenderCSRDPDFWithoutLinks(t *testing.T) {
	data := sampleData(t)
	data.EmissionReports = nil
	data.TotalKgCO2e = 0
	data.Equivalency = carbon.EquivalencyOutput{IsEmpty: true}

	var buf bytes.Buffer
	require.NoError(t, RenderCSRDPDF(&buf, data))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
