package carbon

// EPA Formula Constants (2024 Edition)
// Source: https://www.epa.gov/energy/greenhouse-gas-equivalencies-calculator
//
// Each factor is the kg CO2e attributed to one unit of the activity:
//
//	equivalency = kg_CO2e / factor
const (
	// EPAMilesDrivenFactor is kg CO2e per mile for an average passenger vehicle.
	EPAMilesDrivenFactor = 0.192

	// EPASmartphoneChargeFactor is kg CO2e per smartphone charge.
	EPASmartphoneChargeFactor = 0.00822
)

// Mass conversion factors to kilograms.
const (
	GramsToKg  = 0.001
	KgToKg     = 1.0
	TonsToKg   = 1000.0
	PoundsToKg = 0.453592
)

// Global warming potentials over 100 years (IPCC AR5), used to express
// methane and nitrous oxide masses as CO2 equivalent.
const (
	GWPMethane       = 28.0
	GWPNitrousOxide  = 265.0
	GWPCarbonDioxide = 1.0
)

// Display thresholds.
const (
	// MinEquivalencyThresholdKg is the smallest total for which equivalencies are shown.
	MinEquivalencyThresholdKg = 1.0

	// LargeNumberThreshold switches display to "~X.X million".
	LargeNumberThreshold = 1_000_000

	// BillionThreshold switches display to "~X.X billion".
	BillionThreshold = 1_000_000_000
)

// Static footprint factors.
const (
	// HotelNightKgCO2e is the CarbonKit generic hotel figure per room night.
	HotelNightKgCO2e = 36.63

	// MealKgCO2ePerKg assumes cheese, the most carbon intensive common food.
	MealKgCO2ePerKg = 13.5
)
