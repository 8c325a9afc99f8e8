package domain

import "errors"

// Validation failures surfaced when building a PhotoLocationRecord.
var (
	ErrInvalidCoordinate   = errors.New("invalid coordinate")
	ErrInvalidDerivedValue = errors.New("invalid derived value")
	ErrInvalidIdentifier   = errors.New("invalid identifier")
)

// Request-level failures for batch projection.
var (
	ErrUnknownProjection = errors.New("unknown projection")
	ErrUnknownReference  = errors.New("unknown reference policy")
	ErrMissingOrigin     = errors.New("reference policy requires an origin")
)

// Failure kinds reported per photo in a RecordBatch.
const (
	FailureInvalidCoordinate   = "invalid_coordinate"
	FailureInvalidDerivedValue = "invalid_derived_value"
	FailureInvalidIdentifier   = "invalid_identifier"
	FailureExtract             = "extract"
)

// FailureKind maps an error to the failure kind reported for a photo.
// Anything that is not a record validation error counts as an extraction failure.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, ErrInvalidIdentifier):
		return FailureInvalidIdentifier
	case errors.Is(err, ErrInvalidCoordinate):
		return FailureInvalidCoordinate
	case errors.Is(err, ErrInvalidDerivedValue):
		return FailureInvalidDerivedValue
	default:
		return FailureExtract
	}
}
