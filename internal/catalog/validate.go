package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/rshade/openfootprint/internal/carbon"
	"github.com/rshade/openfootprint/internal/model"
	"github.com/rshade/openfootprint/internal/store"
)

// reportScope is a CSRD report together with the records it covers.
type reportScope struct {
	report     model.CSRDReport
	emissions  []model.EmissionReport
	statements []model.EmissionStatement
}

// loadScope resolves a CSRD report's linked emission reports and the
// statements of their organizations that fall inside the reporting period.
func (s *Service) loadScope(ctx context.Context, pk string) (reportScope, error) {
	r, err := s.store.CSRDReports().Get(ctx, pk)
	if err != nil {
		return reportScope{}, err
	}
	scope := reportScope{report: r}

	orgs := make(map[string]bool)
	for _, id := range r.EmissionReportIDs {
		er, getErr := s.store.EmissionReports().Get(ctx, id)
		if store.IsNotFound(getErr) {
			continue
		}
		if getErr != nil {
			return reportScope{}, getErr
		}
		scope.emissions = append(scope.emissions, er)
		orgs[er.OrganizationID] = true
	}
	if len(orgs) == 0 {
		return scope, nil
	}

	all, err := store.ListAll(ctx, s.store.EmissionStatements())
	if err != nil {
		return reportScope{}, fmt.Errorf("loading emission statements: %w", err)
	}
	for _, st := range all {
		if orgs[st.OrganizationID] && inPeriod(st, r) {
			scope.statements = append(scope.statements, st)
		}
	}
	return scope, nil
}

// inPeriod reports whether a statement overlaps the report's period.
// Statements without a period are always in scope.
func inPeriod(st model.EmissionStatement, r model.CSRDReport) bool {
	start, end := st.ReportingPeriodStart.Time, st.ReportingPeriodEnd.Time
	if start.IsZero() && end.IsZero() {
		return true
	}
	if !end.IsZero() && end.Before(r.ReportingPeriodStart.Time) {
		return false
	}
	if !start.IsZero() && !r.ReportingPeriodEnd.IsZero() && start.After(r.ReportingPeriodEnd.Time) {
		return false
	}
	return true
}

// ValidateCSRDReport evaluates the report against the ESRS check set and
// stores the result in its esrs_compliance section.
func (s *Service) ValidateCSRDReport(ctx context.Context, pk string) (model.ValidationResult, error) {
	scope, err := s.loadScope(ctx, pk)
	if err != nil {
		return model.ValidationResult{}, err
	}

	checks := []model.ESRSCheck{
		checkClimate(scope),
		checkPollution(scope),
		checkWorkforce(scope.report),
	}
	res := model.ValidationResult{
		CSRDReportID:     pk,
		OverallStatus:    model.Overall(checks),
		ValidationDate:   s.now().UTC(),
		StandardsVersion: model.ESRSStandardsVersion,
		Checks:           checks,
	}

	report := scope.report
	report.ESRSCompliance = res.Section()
	if _, err = s.store.CSRDReports().Update(ctx, report); err != nil {
		return model.ValidationResult{}, fmt.Errorf("saving validation of %q: %w", pk, err)
	}

	s.log(ctx).Info().
		Str("csrd_report_pk", pk).
		Str("overall_status", string(res.OverallStatus)).
		Msg("validated CSRD report")
	return res, nil
}

// checkClimate is ESRS E1: linked emission reports must exist and be past draft.
func checkClimate(scope reportScope) model.ESRSCheck {
	c := model.ESRSCheck{Standard: "ESRS E1", Description: "Climate change"}
	if len(scope.emissions) == 0 {
		c.Status = model.CheckFailed
		c.Details = "No emission reports are linked to this report"
		return c
	}

	var drafts []string
	for _, er := range scope.emissions {
		if er.Status == model.ReportStatusDraft {
			drafts = append(drafts, er.EmissionReportPK)
		}
	}
	if len(drafts) > 0 {
		c.Status = model.CheckWarning
		c.Details = fmt.Sprintf("%d of %d linked emission reports are still drafts: %s",
			len(drafts), len(scope.emissions), strings.Join(drafts, ", "))
		return c
	}

	c.Status = model.CheckPassed
	c.Details = fmt.Sprintf("All %d linked emission reports are final", len(scope.emissions))
	return c
}

// checkPollution is ESRS E2: statements should cover non-CO2 gases.
func checkPollution(scope reportScope) model.ESRSCheck {
	c := model.ESRSCheck{Standard: "ESRS E2", Description: "Pollution"}
	for _, st := range scope.statements {
		if carbon.IsNonCO2Unit(st.Unit) {
			c.Status = model.CheckPassed
			c.Details = "Emission statements include non-CO2 pollutants"
			return c
		}
	}
	c.Status = model.CheckWarning
	c.Details = "No CH4 or N2O emission statements in scope; pollution metrics may need additional context"
	return c
}

// checkWorkforce is ESRS S1: preparer always, approver once past review.
func checkWorkforce(r model.CSRDReport) model.ESRSCheck {
	c := model.ESRSCheck{Standard: "ESRS S1", Description: "Own workforce"}
	switch {
	case strings.TrimSpace(r.PreparedBy) == "":
		c.Status = model.CheckWarning
		c.Details = "The report does not name who prepared it"
	case r.Status.RequiresApprover() && strings.TrimSpace(r.ApprovedBy) == "":
		c.Status = model.CheckWarning
		c.Details = fmt.Sprintf("Reports in status %s must name an approver", r.Status)
	default:
		c.Status = model.CheckPassed
		c.Details = "Preparation and approval responsibilities are disclosed"
	}
	return c
}
