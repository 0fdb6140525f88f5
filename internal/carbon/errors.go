package carbon

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors, comparable with errors.Is.
var (
	// ErrInvalidUnit indicates an unrecognized emission unit.
	ErrInvalidUnit = constError("invalid carbon unit")

	// ErrNegativeValue indicates a negative emission amount.
	ErrNegativeValue = constError("negative carbon value")

	// ErrCalculationOverflow indicates a value too large to calculate safely.
	ErrCalculationOverflow = constError("calculation overflow")

	// ErrProviderUnavailable indicates the remote footprint provider failed
	// or returned a response without a usable CO2e amount.
	ErrProviderUnavailable = constError("footprint provider unavailable")

	// ErrUnsupportedSource indicates a footprint source kind with no calculation.
	ErrUnsupportedSource = constError("unsupported footprint source")
)
