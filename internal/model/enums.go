package model

import "slices"

// ReportType classifies an emission report.
type ReportType string

// Emission report types.
const (
	ReportTypeCSRD      ReportType = "CSRD"
	ReportTypeGHG       ReportType = "GHG"
	ReportTypeAnnual    ReportType = "Annual"
	ReportTypeQuarterly ReportType = "Quarterly"
)

// AllReportTypes lists the emission report types in form order.
func AllReportTypes() []ReportType {
	return []ReportType{ReportTypeCSRD, ReportTypeGHG, ReportTypeAnnual, ReportTypeQuarterly}
}

// Valid reports whether t is a known report type.
func (t ReportType) Valid() bool { return slices.Contains(AllReportTypes(), t) }

// ReportStatus is the lifecycle state of an emission report.
type ReportStatus string

// Emission report statuses.
const (
	ReportStatusDraft     ReportStatus = "Draft"
	ReportStatusFinal     ReportStatus = "Final"
	ReportStatusSubmitted ReportStatus = "Submitted"
	ReportStatusVerified  ReportStatus = "Verified"
)

// AllReportStatuses lists the emission report statuses in form order.
func AllReportStatuses() []ReportStatus {
	return []ReportStatus{ReportStatusDraft, ReportStatusFinal, ReportStatusSubmitted, ReportStatusVerified}
}

// Valid reports whether s is a known status.
func (s ReportStatus) Valid() bool { return slices.Contains(AllReportStatuses(), s) }

// CSRDReportType classifies a CSRD report.
type CSRDReportType string

// CSRD report types.
const (
	CSRDReportTypeAnnual        CSRDReportType = "Annual"
	CSRDReportTypeInterim       CSRDReportType = "Interim"
	CSRDReportTypeSupplementary CSRDReportType = "Supplementary"
)

// AllCSRDReportTypes lists the CSRD report types in form order.
func AllCSRDReportTypes() []CSRDReportType {
	return []CSRDReportType{CSRDReportTypeAnnual, CSRDReportTypeInterim, CSRDReportTypeSupplementary}
}

// Valid reports whether t is a known CSRD report type.
func (t CSRDReportType) Valid() bool { return slices.Contains(AllCSRDReportTypes(), t) }

// CSRDStatus is the lifecycle state of a CSRD report.
type CSRDStatus string

// CSRD report statuses.
const (
	CSRDStatusDraft     CSRDStatus = "Draft"
	CSRDStatusInReview  CSRDStatus = "In Review"
	CSRDStatusApproved  CSRDStatus = "Approved"
	CSRDStatusPublished CSRDStatus = "Published"
	CSRDStatusSubmitted CSRDStatus = "Submitted"
)

// AllCSRDStatuses lists the CSRD report statuses in form order.
func AllCSRDStatuses() []CSRDStatus {
	return []CSRDStatus{CSRDStatusDraft, CSRDStatusInReview, CSRDStatusApproved, CSRDStatusPublished, CSRDStatusSubmitted}
}

// Valid reports whether s is a known CSRD status.
func (s CSRDStatus) Valid() bool { return slices.Contains(AllCSRDStatuses(), s) }

// RequiresApprover reports whether a report in this status must name an approver.
func (s CSRDStatus) RequiresApprover() bool {
	return s == CSRDStatusApproved || s == CSRDStatusPublished || s == CSRDStatusSubmitted
}

// VerificationStatus is the outcome of a data quality verification.
type VerificationStatus string

// Verification statuses.
const (
	VerificationVerified VerificationStatus = "Verified"
	VerificationPending  VerificationStatus = "Pending"
	VerificationRejected VerificationStatus = "Rejected"
)

// AllVerificationStatuses lists the verification statuses in form order.
func AllVerificationStatuses() []VerificationStatus {
	return []VerificationStatus{VerificationVerified, VerificationPending, VerificationRejected}
}

// Valid reports whether s is a known verification status.
func (s VerificationStatus) Valid() bool { return slices.Contains(AllVerificationStatuses(), s) }

// Units offered by the emission statement form.
const (
	UnitKgCO2e = "kg CO2e"
	UnitTCO2e  = "t CO2e"
	UnitKgCH4  = "kg CH4"
	UnitKgN2O  = "kg N2O"
)

// StatementUnits lists the units offered by the emission statement form.
func StatementUnits() []string {
	return []string{UnitKgCO2e, UnitTCO2e, UnitKgCH4, UnitKgN2O}
}
