package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rshade/openfootprint/internal/model"
)

// flagValues collects parse errors for create flags that need conversion.
type flagValues struct {
	errs []error
}

func (v *flagValues) date(name, s string) model.DateTime {
	if strings.TrimSpace(s) == "" {
		return model.DateTime{}
	}
	d, err := model.ParseDateTime(s)
	if err != nil {
		v.errs = append(v.errs, fmt.Errorf("--%s: %w", name, err))
	}
	return d
}

func (v *flagValues) optionalFloat(name, s string) *float64 {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		v.errs = append(v.errs, fmt.Errorf("--%s: %q is not a number", name, s))
		return nil
	}
	return &f
}

func (v *flagValues) err() error { return errors.Join(v.errs...) }

func organizationInput(cmd *cobra.Command) func() (model.OrganizationCreate, error) {
	var in model.OrganizationCreate
	f := cmd.Flags()
	f.StringVar(&in.OrganizationPK, "pk", "", "organization primary key (required)")
	f.StringVar(&in.Name, "name", "", "organization name (required)")
	f.StringVar(&in.Description, "description", "", "description")
	f.StringVar(&in.ParentOrganizationID, "parent", "", "parent organization primary key")
	return func() (model.OrganizationCreate, error) { return in, nil }
}

func facilityInput(cmd *cobra.Command) func() (model.FacilityCreate, error) {
	var (
		in       model.FacilityCreate
		lat, lng string
	)
	f := cmd.Flags()
	f.StringVar(&in.FacilityPK, "pk", "", "facility primary key (required)")
	f.StringVar(&in.Name, "name", "", "facility name (required)")
	f.StringVar(&in.Description, "description", "", "description")
	f.StringVar(&in.Address, "address", "", "street address")
	f.StringVar(&in.City, "city", "", "city")
	f.StringVar(&in.Country, "country", "", "country")
	f.StringVar(&lat, "latitude", "", "latitude in decimal degrees")
	f.StringVar(&lng, "longitude", "", "longitude in decimal degrees")
	f.StringVar(&in.OrganizationID, "organization", "", "owning organization primary key")
	return func() (model.FacilityCreate, error) {
		var v flagValues
		in.Latitude = v.optionalFloat("latitude", lat)
		in.Longitude = v.optionalFloat("longitude", lng)
		return in, v.err()
	}
}

func emissionReportInput(cmd *cobra.Command) func() (model.EmissionReportCreate, error) {
	var (
		in             model.EmissionReportCreate
		start, end     string
		kind, statusIn string
	)
	f := cmd.Flags()
	f.StringVar(&in.EmissionReportPK, "pk", "", "emission report primary key (required)")
	f.StringVar(&in.Description, "description", "", "description")
	f.StringVar(&start, "start", "", "reporting period start, YYYY-MM-DD (required)")
	f.StringVar(&end, "end", "", "reporting period end, YYYY-MM-DD (required)")
	f.StringVar(&in.OrganizationID, "organization", "", "organization primary key (required)")
	f.StringVar(&kind, "type", string(model.ReportTypeCSRD), "report type: CSRD, GHG, Annual or Quarterly")
	f.StringVar(&statusIn, "status", string(model.ReportStatusDraft), "status: Draft, Final, Submitted or Verified")
	return func() (model.EmissionReportCreate, error) {
		var v flagValues
		in.ReportPeriodStart = v.date("start", start)
		in.ReportPeriodEnd = v.date("end", end)
		in.ReportType = model.ReportType(kind)
		in.Status = model.ReportStatus(statusIn)
		return in, v.err()
	}
}

func emissionStatementInput(cmd *cobra.Command) func() (model.EmissionStatementCreate, error) {
	var (
		in         model.EmissionStatementCreate
		start, end string
	)
	f := cmd.Flags()
	f.StringVar(&in.EmissionStatementPK, "pk", "", "emission statement primary key (required)")
	f.StringVar(&in.EmissionActivityID, "activity", "", "emission activity id (required)")
	f.StringVar(&in.EmissionCalculationModelID, "calculation-model", "", "emission calculation model id")
	f.Float64Var(&in.Value, "value", 0, "emitted amount (required)")
	f.StringVar(&in.Unit, "unit", model.UnitKgCO2e, "unit: "+strings.Join(model.StatementUnits(), ", "))
	f.StringVar(&start, "start", "", "reporting period start, YYYY-MM-DD (required)")
	f.StringVar(&end, "end", "", "reporting period end, YYYY-MM-DD (required)")
	f.StringVar(&in.FacilityID, "facility", "", "facility primary key")
	f.StringVar(&in.OrganizationID, "organization", "", "organization primary key")
	return func() (model.EmissionStatementCreate, error) {
		var v flagValues
		in.ReportingPeriodStart = v.date("start", start)
		in.ReportingPeriodEnd = v.date("end", end)
		return in, v.err()
	}
}

func csrdReportInput(cmd *cobra.Command) func() (model.CSRDReportCreate, error) {
	var (
		in             model.CSRDReportCreate
		start, end     string
		kind, statusIn string
	)
	f := cmd.Flags()
	f.StringVar(&in.CSRDReportPK, "pk", "", "CSRD report primary key (required)")
	f.StringVar(&in.Title, "title", "", "report title (required)")
	f.StringVar(&in.Description, "description", "", "description")
	f.StringVar(&start, "start", "", "reporting period start, YYYY-MM-DD (required)")
	f.StringVar(&end, "end", "", "reporting period end, YYYY-MM-DD (required)")
	f.StringVar(&in.OrganizationID, "organization", "", "organization primary key (required)")
	f.StringVar(&kind, "type", string(model.CSRDReportTypeAnnual), "report type: Annual, Interim or Supplementary")
	f.StringVar(&statusIn, "status", string(model.CSRDStatusDraft),
		"status: Draft, In Review, Approved, Published or Submitted")
	f.StringVar(&in.Version, "version", "1.0", "report version")
	f.StringVar(&in.PreparedBy, "prepared-by", "", "who prepared the report")
	f.StringVar(&in.ApprovedBy, "approved-by", "", "who approved the report")
	f.StringSliceVar(&in.EmissionReportIDs, "emission-report", nil, "linked emission report primary key (repeatable)")
	return func() (model.CSRDReportCreate, error) {
		var v flagValues
		in.ReportingPeriodStart = v.date("start", start)
		in.ReportingPeriodEnd = v.date("end", end)
		in.ReportType = model.CSRDReportType(kind)
		in.Status = model.CSRDStatus(statusIn)
		return in, v.err()
	}
}

func dataQualityInput(cmd *cobra.Command) func() (model.DataQualityCreate, error) {
	var (
		in             model.DataQualityCreate
		score, date    string
		verificationIn string
	)
	f := cmd.Flags()
	f.StringVar(&in.EntityID, "entity", "", "primary key of the assessed record (required)")
	f.StringVar(&score, "score", "", "quality score between 0 and 100")
	f.StringVar(&verificationIn, "verification", string(model.VerificationPending),
		"verification status: Verified, Pending or Rejected")
	f.StringVar(&date, "verified-on", "", "verification date, YYYY-MM-DD")
	f.StringVar(&in.VerifiedBy, "verified-by", "", "verifier")
	f.StringVar(&in.Notes, "notes", "", "notes")
	return func() (model.DataQualityCreate, error) {
		var v flagValues
		in.QualityScore = v.optionalFloat("score", score)
		in.VerificationDate = v.date("verified-on", date)
		in.VerificationStatus = model.VerificationStatus(verificationIn)
		return in, v.err()
	}
}

func waterActivityTypeInput(cmd *cobra.Command) func() (model.WaterActivityTypeCreate, error) {
	var in model.WaterActivityTypeCreate
	f := cmd.Flags()
	f.StringVar(&in.WaterActivityTypeID, "pk", "", "water activity type id (required)")
	f.StringVar(&in.WaterActivityTypeName, "name", "", "name (required)")
	f.StringVar(&in.Description, "description", "", "description")
	return func() (model.WaterActivityTypeCreate, error) { return in, nil }
}

func epdInput(cmd *cobra.Command) func() (model.EnvironmentalProductDeclarationCreate, error) {
	var (
		in       model.EnvironmentalProductDeclarationCreate
		from, to string
	)
	f := cmd.Flags()
	f.StringVar(&in.EnvironmentalProductDeclarationPK, "pk", "", "declaration primary key (required)")
	f.StringVar(&in.ProductName, "product", "", "product name (required)")
	f.StringVar(&in.Description, "description", "", "description")
	f.StringVar(&in.OrganizationID, "organization", "", "organization primary key")
	f.StringVar(&from, "valid-from", "", "start of validity, YYYY-MM-DD")
	f.StringVar(&to, "valid-to", "", "end of validity, YYYY-MM-DD")
	return func() (model.EnvironmentalProductDeclarationCreate, error) {
		var v flagValues
		in.ValidFrom = v.date("valid-from", from)
		in.ValidTo = v.date("valid-to", to)
		return in, v.err()
	}
}
