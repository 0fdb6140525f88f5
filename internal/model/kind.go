// Package model defines the sustainability reporting records managed by
// openfootprint: organizations, facilities, emission reports and statements,
// CSRD reports, and the supporting data-quality, water activity and EPD records.
package model

import "fmt"

// Kind identifies a record collection. The value doubles as the URL segment.
type Kind string

// Record kinds.
const (
	KindOrganization                    Kind = "organizations"
	KindFacility                        Kind = "facilities"
	KindEmissionReport                  Kind = "emission-reports"
	KindEmissionStatement               Kind = "emission-statements"
	KindCSRDReport                      Kind = "csrd-reports"
	KindDataQuality                     Kind = "data-quality"
	KindWaterActivityType               Kind = "water-activity-types"
	KindEnvironmentalProductDeclaration Kind = "environmental-product-declarations"
)

// AllKinds returns every record kind in display order.
func AllKinds() []Kind {
	return []Kind{
		KindOrganization,
		KindFacility,
		KindEmissionReport,
		KindEmissionStatement,
		KindCSRDReport,
		KindDataQuality,
		KindWaterActivityType,
		KindEnvironmentalProductDeclaration,
	}
}

// ParseKind accepts the plural URL form or the singular CLI form
// ("organization", "emission-report").
func ParseKind(s string) (Kind, error) {
	for _, k := range AllKinds() {
		if string(k) == s || k.Singular() == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown record kind %q", s)
}

// Singular returns the CLI noun for the kind.
func (k Kind) Singular() string {
	switch k {
	case KindOrganization:
		return "organization"
	case KindFacility:
		return "facility"
	case KindEmissionReport:
		return "emission-report"
	case KindEmissionStatement:
		return "emission-statement"
	case KindCSRDReport:
		return "csrd-report"
	case KindDataQuality:
		return "data-quality"
	case KindWaterActivityType:
		return "water-activity-type"
	case KindEnvironmentalProductDeclaration:
		return "environmental-product-declaration"
	}
	return string(k)
}

// Title returns the human readable name used in headings and error details.
func (k Kind) Title() string {
	switch k {
	case KindOrganization:
		return "Organization"
	case KindFacility:
		return "Facility"
	case KindEmissionReport:
		return "Emission Report"
	case KindEmissionStatement:
		return "Emission Statement"
	case KindCSRDReport:
		return "CSRD Report"
	case KindDataQuality:
		return "Data Quality"
	case KindWaterActivityType:
		return "Water Activity Type"
	case KindEnvironmentalProductDeclaration:
		return "Environmental Product Declaration"
	}
	return string(k)
}

// PluralTitle returns the heading used for lists of the kind.
func (k Kind) PluralTitle() string {
	switch k {
	case KindFacility:
		return "Facilities"
	case KindDataQuality:
		return "Data Quality"
	}
	return k.Title() + "s"
}
