package carbon

import (
	"context"
	"fmt"
)

// SourceKind names what caused an emission.
type SourceKind string

// Footprint source kinds.
const (
	SourceFlight SourceKind = "flight"
	SourceHotel  SourceKind = "hotel"
	SourceMeal   SourceKind = "meal"
	SourceCO2e   SourceKind = "co2e"
)

// Coordinates is a WGS84 position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Source describes one emitting activity. Weight scales the result, for
// example to split a shared hotel room. A zero weight yields zero.
type Source struct {
	Kind   SourceKind  `json:"kind"`
	Weight float64     `json:"weight"`
	Nights float64     `json:"nights,omitempty"`
	MassKg float64     `json:"mass_kg,omitempty"`
	From   Coordinates `json:"from"`
	To     Coordinates `json:"to"`
	KgCO2e float64     `json:"kg_co2e,omitempty"`
}

// FlightProvider estimates the CO2e of a one-way single-passenger flight.
type FlightProvider interface {
	FlightKgCO2e(ctx context.Context, from, to Coordinates) (float64, error)
}

// Calculator computes footprints in kg CO2e.
type Calculator struct {
	flights FlightProvider
}

// NewCalculator returns a calculator. flights may be nil, in which case
// flight sources fail with ErrProviderUnavailable.
func NewCalculator(flights FlightProvider) *Calculator {
	return &Calculator{flights: flights}
}

// Compute returns the footprint of src in kg CO2e.
func (c *Calculator) Compute(ctx context.Context, src Source) (float64, error) {
	weight := src.Weight
	if weight < 0 || src.Nights < 0 || src.MassKg < 0 || src.KgCO2e < 0 {
		return 0, ErrNegativeValue
	}

	switch src.Kind {
	case SourceHotel:
		return HotelNightKgCO2e * src.Nights * weight, nil
	case SourceMeal:
		return MealKgCO2ePerKg * src.MassKg * weight, nil
	case SourceCO2e:
		return src.KgCO2e * weight, nil
	case SourceFlight:
		if c.flights == nil {
			return 0, fmt.Errorf("%w: no flight provider configured", ErrProviderUnavailable)
		}
		kg, err := c.flights.FlightKgCO2e(ctx, src.From, src.To)
		if err != nil {
			return 0, err
		}
		return kg * weight, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedSource, src.Kind)
	}
}
