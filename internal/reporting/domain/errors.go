package reporting

import "errors"

var (
	// ErrIndexOutOfRange signals a month index position outside [0, Len).
	ErrIndexOutOfRange = errors.New("reporting: month index out of range")
	// ErrRangeOutOfBounds signals a range endpoint outside the month index.
	ErrRangeOutOfBounds = errors.New("reporting: range endpoint out of bounds")
	// ErrEmptyMonthIndex signals a domain configured without month columns.
	ErrEmptyMonthIndex = errors.New("reporting: month index must not be empty")
	// ErrNegativeUnitRate signals an invalid unit cost rate.
	ErrNegativeUnitRate = errors.New("reporting: unit rate must not be negative")
)
