package carbon

import (
	"fmt"
	"math"
)

// Calculate normalizes value in unit to kg CO2e and computes equivalencies.
func Calculate(value float64, unit string) (EquivalencyOutput, error) {
	kg, err := NormalizeToKgCO2e(value, unit)
	if err != nil {
		return EquivalencyOutput{IsEmpty: true}, err
	}
	return Equivalencies(kg)
}

// Equivalencies expresses kg CO2e as miles driven and smartphones charged.
// Totals below MinEquivalencyThresholdKg produce an empty output.
func Equivalencies(kg float64) (EquivalencyOutput, error) {
	if math.IsInf(kg, 0) || math.IsNaN(kg) {
		return EquivalencyOutput{IsEmpty: true}, ErrCalculationOverflow
	}
	if kg < 0 {
		return EquivalencyOutput{IsEmpty: true}, ErrNegativeValue
	}
	if kg < MinEquivalencyThresholdKg {
		return EquivalencyOutput{InputKg: kg, IsEmpty: true}, nil
	}

	miles := kg / EPAMilesDrivenFactor
	phones := kg / EPASmartphoneChargeFactor
	if math.IsInf(miles, 0) || math.IsInf(phones, 0) {
		return EquivalencyOutput{IsEmpty: true}, ErrCalculationOverflow
	}

	milesFormatted := formatEquivalencyValue(miles)
	phonesFormatted := formatEquivalencyValue(phones)

	return EquivalencyOutput{
		InputKg: kg,
		Results: []EquivalencyResult{
			{
				Type:           EquivalencyMilesDriven,
				Value:          miles,
				FormattedValue: milesFormatted,
				Label:          "miles driven",
			},
			{
				Type:           EquivalencySmartphonesCharged,
				Value:          phones,
				FormattedValue: phonesFormatted,
				Label:          "smartphones charged",
			},
		},
		DisplayText: fmt.Sprintf("Equivalent to driving ~%s miles or charging ~%s smartphones",
			milesFormatted, phonesFormatted),
		CompactText: fmt.Sprintf("(≈ %s mi, %s phones)", milesFormatted, phonesFormatted),
	}, nil
}

func formatEquivalencyValue(v float64) string {
	if v >= LargeNumberThreshold {
		return FormatLarge(v)
	}
	return FormatNumber(int64(math.Round(v)))
}
