package carbon

import (
	"math"
	"strings"
)

// parseUnit splits a unit such as "kg CO2e", "tCO2e" or "kg CH4" into its mass
// factor and global warming potential.
func parseUnit(unit string) (massFactor, gwp float64, ok bool) {
	u := strings.ToLower(strings.Join(strings.Fields(unit), ""))

	gwp = GWPCarbonDioxide
	switch {
	case strings.HasSuffix(u, "co2e"):
		u = strings.TrimSuffix(u, "co2e")
	case strings.HasSuffix(u, "co2"):
		u = strings.TrimSuffix(u, "co2")
	case strings.HasSuffix(u, "ch4"):
		u = strings.TrimSuffix(u, "ch4")
		gwp = GWPMethane
	case strings.HasSuffix(u, "n2o"):
		u = strings.TrimSuffix(u, "n2o")
		gwp = GWPNitrousOxide
	}

	switch u {
	case "g":
		return GramsToKg, gwp, true
	case "kg":
		return KgToKg, gwp, true
	case "t":
		return TonsToKg, gwp, true
	case "lb":
		return PoundsToKg, gwp, true
	default:
		return 0, 0, false
	}
}

// NormalizeToKgCO2e converts an emission amount to kilograms of CO2 equivalent.
//
// Recognized units are g, kg, t and lb, bare or followed by CO2e, CO2, CH4 or
// N2O, with or without a separating space and in any case ("kg CO2e",
// "tCO2e", "kg CH4"). Methane and nitrous oxide are weighted by their GWP.
func NormalizeToKgCO2e(value float64, unit string) (float64, error) {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, ErrCalculationOverflow
	}

	if value < 0 {
		return 0, ErrNegativeValue
	}

	factor, gwp, ok := parseUnit(unit)
	if !ok {
		return 0, ErrInvalidUnit
	}

	result := value * factor * gwp
	if math.IsInf(result, 0) {
		return 0, ErrCalculationOverflow
	}

	return result, nil
}

// IsKnownUnit reports whether NormalizeToKgCO2e accepts unit.
func IsKnownUnit(unit string) bool {
	_, _, ok := parseUnit(unit)
	return ok
}

// IsNonCO2Unit reports whether unit measures methane or nitrous oxide.
func IsNonCO2Unit(unit string) bool {
	_, gwp, ok := parseUnit(unit)
	return ok && gwp != GWPCarbonDioxide
}
