package model

import "time"

// ESRSStandardsVersion is the ESRS release validation results refer to.
const ESRSStandardsVersion = "ESRS 2023"

// Section is a free-form JSON document attached to a CSRD report.
type Section map[string]any

// CSRDReportCreate is the payload for creating a CSRD report.
type CSRDReportCreate struct {
	CSRDReportPK         string         `json:"csrd_report_pk"`
	Title                string         `json:"title"`
	Description          string         `json:"description"`
	ReportingPeriodStart DateTime       `json:"reporting_period_start"`
	ReportingPeriodEnd   DateTime       `json:"reporting_period_end"`
	OrganizationID       string         `json:"organization_id"`
	ReportType           CSRDReportType `json:"report_type"`
	Status               CSRDStatus     `json:"status"`
	Version              string         `json:"version"`
	PreparedBy           string         `json:"prepared_by"`
	ApprovedBy           string         `json:"approved_by"`
	EmissionReportIDs    []string       `json:"emission_report_ids"`
}

// Validate checks required fields, enumerations, the period and that at
// least one emission report is referenced.
func (c CSRDReportCreate) Validate() error {
	v := newValidator(KindCSRDReport)
	v.required("csrd_report_pk", c.CSRDReportPK)
	v.required("title", c.Title)
	v.requiredTime("reporting_period_start", c.ReportingPeriodStart)
	v.requiredTime("reporting_period_end", c.ReportingPeriodEnd)
	v.period("reporting_period_start", c.ReportingPeriodStart, "reporting_period_end", c.ReportingPeriodEnd)
	v.required("organization_id", c.OrganizationID)
	v.required("report_type", string(c.ReportType))
	v.check(c.ReportType == "" || c.ReportType.Valid(), "report_type", "must be one of Annual, Interim, Supplementary")
	v.required("status", string(c.Status))
	v.check(c.Status == "" || c.Status.Valid(), "status",
		"must be one of Draft, In Review, Approved, Published, Submitted")
	v.required("version", c.Version)
	v.required("prepared_by", c.PreparedBy)
	v.check(len(c.EmissionReportIDs) > 0, "emission_report_ids", "must reference at least one emission report")
	return v.err()
}

// CSRDReport is a Corporate Sustainability Reporting Directive report.
type CSRDReport struct {
	CSRDReportCreate
	ESRSCompliance        Section `json:"esrs_compliance"`
	MaterialityAssessment Section `json:"materiality_assessment"`
	DoubleMateriality     Section `json:"double_materiality"`
	SustainabilityTargets Section `json:"sustainability_targets"`
	ValueChainAssessment  Section `json:"value_chain_assessment"`
	Timestamps
}

// NewCSRDReport builds a report from c with every JSON section set to {}.
func NewCSRDReport(c CSRDReportCreate) CSRDReport {
	return CSRDReport{
		CSRDReportCreate:      c,
		ESRSCompliance:        Section{},
		MaterialityAssessment: Section{},
		DoubleMateriality:     Section{},
		SustainabilityTargets: Section{},
		ValueChainAssessment:  Section{},
	}
}

func (r *CSRDReport) Kind() Kind          { return KindCSRDReport }
func (r *CSRDReport) Key() string         { return r.CSRDReportPK }
func (r *CSRDReport) Stamps() *Timestamps { return &r.Timestamps }

// CheckStatus is the outcome of a single ESRS check.
type CheckStatus string

// Check outcomes.
const (
	CheckPassed  CheckStatus = "passed"
	CheckWarning CheckStatus = "warning"
	CheckFailed  CheckStatus = "failed"
)

// ESRSCheck is one ESRS standard evaluated against a report.
type ESRSCheck struct {
	Standard    string      `json:"standard"`
	Description string      `json:"description"`
	Status      CheckStatus `json:"status"`
	Details     string      `json:"details"`
}

// ValidationResult is the outcome of validating a CSRD report against ESRS.
type ValidationResult struct {
	CSRDReportID     string      `json:"csrd_report_id"`
	OverallStatus    CheckStatus `json:"overall_status"`
	ValidationDate   time.Time   `json:"validation_date"`
	StandardsVersion string      `json:"standards_version"`
	Checks           []ESRSCheck `json:"checks"`
}

// Overall returns failed when any check failed and passed otherwise.
func Overall(checks []ESRSCheck) CheckStatus {
	for _, c := range checks {
		if c.Status == CheckFailed {
			return CheckFailed
		}
	}
	return CheckPassed
}

// Section converts the result into the JSON section stored on the report.
func (r ValidationResult) Section() Section {
	checks := make([]any, 0, len(r.Checks))
	for _, c := range r.Checks {
		checks = append(checks, map[string]any{
			"standard":    c.Standard,
			"description": c.Description,
			"status":      string(c.Status),
			"details":     c.Details,
		})
	}
	return Section{
		"overall_status":    string(r.OverallStatus),
		"validation_date":   r.ValidationDate.UTC().Format(time.RFC3339),
		"standards_version": r.StandardsVersion,
		"checks":            checks,
	}
}

// ValidationFromSection reads a stored esrs_compliance section back into a
// ValidationResult. ok is false when the section holds no checks.
func ValidationFromSection(reportID string, s Section) (res ValidationResult, ok bool) {
	raw, _ := s["checks"].([]any)
	if len(raw) == 0 {
		return ValidationResult{}, false
	}
	res = ValidationResult{
		CSRDReportID:     reportID,
		OverallStatus:    CheckStatus(sectionString(s, "overall_status")),
		StandardsVersion: sectionString(s, "standards_version"),
	}
	if t, err := time.Parse(time.RFC3339, sectionString(s, "validation_date")); err == nil {
		res.ValidationDate = t
	}
	for _, item := range raw {
		m, isMap := item.(map[string]any)
		if !isMap {
			continue
		}
		res.Checks = append(res.Checks, ESRSCheck{
			Standard:    sectionString(m, "standard"),
			Description: sectionString(m, "description"),
			Status:      CheckStatus(sectionString(m, "status")),
			Details:     sectionString(m, "details"),
		})
	}
	return res, len(res.Checks) > 0
}

func sectionString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
