package model

import (
	"time"

	"github.com/rshade/openfootprint/internal/carbon"
)

// Record is implemented by pointers to every stored record type.
type Record interface {
	Kind() Kind
	Key() string
	Stamps() *Timestamps
}

// Timestamps are maintained by the store. UpdatedAt stays nil until the
// record is first updated.
type Timestamps struct {
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// OrganizationCreate is the payload for creating an organization.
type OrganizationCreate struct {
	OrganizationPK       string `json:"organization_pk"`
	Name                 string `json:"name"`
	Description          string `json:"description"`
	ParentOrganizationID string `json:"parent_organization_id"`
}

// Validate checks required fields.
func (c OrganizationCreate) Validate() error {
	v := newValidator(KindOrganization)
	v.required("organization_pk", c.OrganizationPK)
	v.required("name", c.Name)
	v.check(c.ParentOrganizationID == "" || c.ParentOrganizationID != c.OrganizationPK,
		"parent_organization_id", "must not reference the organization itself")
	return v.err()
}

// Organization is a legal or administrative body, or one of its divisions.
type Organization struct {
	OrganizationCreate
	Timestamps
}

func (o *Organization) Kind() Kind          { return KindOrganization }
func (o *Organization) Key() string         { return o.OrganizationPK }
func (o *Organization) Stamps() *Timestamps { return &o.Timestamps }

// FacilityCreate is the payload for creating a facility.
type FacilityCreate struct {
	FacilityPK     string   `json:"facility_pk"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Address        string   `json:"address"`
	City           string   `json:"city"`
	Country        string   `json:"country"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	OrganizationID string   `json:"organization_id"`
}

// Validate checks required fields and coordinate ranges.
func (c FacilityCreate) Validate() error {
	v := newValidator(KindFacility)
	v.required("facility_pk", c.FacilityPK)
	v.required("name", c.Name)
	if c.Latitude != nil && v.finite("latitude", *c.Latitude) {
		v.check(*c.Latitude >= -90 && *c.Latitude <= 90, "latitude", "must be between -90 and 90")
	}
	if c.Longitude != nil && v.finite("longitude", *c.Longitude) {
		v.check(*c.Longitude >= -180 && *c.Longitude <= 180, "longitude", "must be between -180 and 180")
	}
	return v.err()
}

// Facility is a physical location where emissions occur.
type Facility struct {
	FacilityCreate
	Timestamps
}

func (f *Facility) Kind() Kind          { return KindFacility }
func (f *Facility) Key() string         { return f.FacilityPK }
func (f *Facility) Stamps() *Timestamps { return &f.Timestamps }

// EmissionReportCreate is the payload for creating an emission report.
type EmissionReportCreate struct {
	EmissionReportPK  string       `json:"emission_report_pk"`
	Description       string       `json:"description"`
	ReportPeriodStart DateTime     `json:"report_period_start"`
	ReportPeriodEnd   DateTime     `json:"report_period_end"`
	OrganizationID    string       `json:"organization_id"`
	ReportType        ReportType   `json:"report_type"`
	Status            ReportStatus `json:"status"`
}

// Validate checks required fields, enumerations and the reporting period.
func (c EmissionReportCreate) Validate() error {
	v := newValidator(KindEmissionReport)
	v.required("emission_report_pk", c.EmissionReportPK)
	v.requiredTime("report_period_start", c.ReportPeriodStart)
	v.requiredTime("report_period_end", c.ReportPeriodEnd)
	v.period("report_period_start", c.ReportPeriodStart, "report_period_end", c.ReportPeriodEnd)
	v.required("organization_id", c.OrganizationID)
	v.required("report_type", string(c.ReportType))
	v.check(c.ReportType == "" || c.ReportType.Valid(), "report_type", "must be one of CSRD, GHG, Annual, Quarterly")
	v.required("status", string(c.Status))
	v.check(c.Status == "" || c.Status.Valid(), "status", "must be one of Draft, Final, Submitted, Verified")
	return v.err()
}

// EmissionReport describes an organization's emission inventory over a period.
type EmissionReport struct {
	EmissionReportCreate
	Timestamps
}

func (r *EmissionReport) Kind() Kind          { return KindEmissionReport }
func (r *EmissionReport) Key() string         { return r.EmissionReportPK }
func (r *EmissionReport) Stamps() *Timestamps { return &r.Timestamps }

// EmissionStatementCreate is the payload for creating an emission statement.
type EmissionStatementCreate struct {
	EmissionStatementPK        string   `json:"emission_statement_pk"`
	EmissionActivityID         string   `json:"emission_activity_id"`
	EmissionCalculationModelID string   `json:"emission_calculation_model_id"`
	Value                      float64  `json:"value"`
	Unit                       string   `json:"unit"`
	ReportingPeriodStart       DateTime `json:"reporting_period_start"`
	ReportingPeriodEnd         DateTime `json:"reporting_period_end"`
	FacilityID                 string   `json:"facility_id"`
	OrganizationID             string   `json:"organization_id"`
}

// Validate checks required fields, the unit and the value.
func (c EmissionStatementCreate) Validate() error {
	v := newValidator(KindEmissionStatement)
	v.required("emission_statement_pk", c.EmissionStatementPK)
	v.required("emission_activity_id", c.EmissionActivityID)
	if v.finite("value", c.Value) {
		v.check(c.Value >= 0, "value", "must not be negative")
	}
	if c.Unit != "" {
		v.check(carbon.IsKnownUnit(c.Unit), "unit", "is not a recognised emission unit")
	}
	v.period("reporting_period_start", c.ReportingPeriodStart, "reporting_period_end", c.ReportingPeriodEnd)
	return v.err()
}

// EmissionStatement is a quantified release or removal of an emission.
type EmissionStatement struct {
	EmissionStatementCreate
	Timestamps
}

func (s *EmissionStatement) Kind() Kind          { return KindEmissionStatement }
func (s *EmissionStatement) Key() string         { return s.EmissionStatementPK }
func (s *EmissionStatement) Stamps() *Timestamps { return &s.Timestamps }

// KgCO2e returns the statement value normalised to kilograms of CO2 equivalent.
// An empty unit is read as kg CO2e.
func (s *EmissionStatement) KgCO2e() (float64, error) {
	unit := s.Unit
	if unit == "" {
		unit = UnitKgCO2e
	}
	return carbon.NormalizeToKgCO2e(s.Value, unit)
}

// DataQualityCreate is the payload for recording a data quality assessment.
type DataQualityCreate struct {
	EntityID           string             `json:"entity_id"`
	QualityScore       *float64           `json:"quality_score"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	VerificationDate   DateTime           `json:"verification_date"`
	VerifiedBy         string             `json:"verified_by"`
	Notes              string             `json:"notes"`
}

// Validate checks the entity id, the score range and the status.
func (c DataQualityCreate) Validate() error {
	v := newValidator(KindDataQuality)
	v.required("entity_id", c.EntityID)
	if c.QualityScore != nil && v.finite("quality_score", *c.QualityScore) {
		v.check(*c.QualityScore >= 0 && *c.QualityScore <= 100, "quality_score", "must be between 0 and 100")
	}
	v.check(c.VerificationStatus == "" || c.VerificationStatus.Valid(),
		"verification_status", "must be one of Verified, Pending, Rejected")
	return v.err()
}

// DataQuality records how trustworthy another record's data is.
type DataQuality struct {
	DataQualityCreate
	Timestamps
}

func (d *DataQuality) Kind() Kind          { return KindDataQuality }
func (d *DataQuality) Key() string         { return d.EntityID }
func (d *DataQuality) Stamps() *Timestamps { return &d.Timestamps }

// WaterActivityTypeCreate is the payload for creating a water activity type.
type WaterActivityTypeCreate struct {
	WaterActivityTypeID   string `json:"water_activity_type_id"`
	WaterActivityTypeName string `json:"water_activity_type_name"`
	Description           string `json:"description"`
}

// Validate checks required fields.
func (c WaterActivityTypeCreate) Validate() error {
	v := newValidator(KindWaterActivityType)
	v.required("water_activity_type_id", c.WaterActivityTypeID)
	v.required("water_activity_type_name", c.WaterActivityTypeName)
	return v.err()
}

// WaterActivityType categorises water related activities.
type WaterActivityType struct {
	WaterActivityTypeCreate
	Timestamps
}

func (w *WaterActivityType) Kind() Kind          { return KindWaterActivityType }
func (w *WaterActivityType) Key() string         { return w.WaterActivityTypeID }
func (w *WaterActivityType) Stamps() *Timestamps { return &w.Timestamps }

// EnvironmentalProductDeclarationCreate is the payload for creating an EPD.
type EnvironmentalProductDeclarationCreate struct {
	EnvironmentalProductDeclarationPK string   `json:"environmental_product_declaration_pk"`
	Description                       string   `json:"description"`
	ProductName                       string   `json:"product_name"`
	OrganizationID                    string   `json:"organization_id"`
	ValidFrom                         DateTime `json:"valid_from"`
	ValidTo                           DateTime `json:"valid_to"`
}

// Validate checks required fields and the validity window.
func (c EnvironmentalProductDeclarationCreate) Validate() error {
	v := newValidator(KindEnvironmentalProductDeclaration)
	v.required("environmental_product_declaration_pk", c.EnvironmentalProductDeclarationPK)
	v.required("product_name", c.ProductName)
	v.required("organization_id", c.OrganizationID)
	v.requiredTime("valid_from", c.ValidFrom)
	v.period("valid_from", c.ValidFrom, "valid_to", c.ValidTo)
	return v.err()
}

// EnvironmentalProductDeclaration (EPD) states a product's environmental impact.
type EnvironmentalProductDeclaration struct {
	EnvironmentalProductDeclarationCreate
	Timestamps
}

func (e *EnvironmentalProductDeclaration) Kind() Kind {
	return KindEnvironmentalProductDeclaration
}
func (e *EnvironmentalProductDeclaration) Key() string {
	return e.EnvironmentalProductDeclarationPK
}
func (e *EnvironmentalProductDeclaration) Stamps() *Timestamps { return &e.Timestamps }
