package reporting

// MonthRange is a closed interval [Start, End] of positions into a month
// index. End < Start denotes the empty interval: every aggregate over it is
// zero, by contract, not an error.
type MonthRange struct {
	Start int
	End   int
}

// NewMonthRange validates both endpoints against the index bounds. An
// inverted pair (end < start) is accepted as the empty range; an endpoint
// outside [0, Len) is a caller contract violation and fails fast rather
// than being clamped, so off-by-one defects surface instead of hiding.
func NewMonthRange(start, end int, index MonthIndex) (MonthRange, error) {
	if start < 0 || start >= index.Len() {
		return MonthRange{}, ErrRangeOutOfBounds
	}
	if end < 0 || end >= index.Len() {
		return MonthRange{}, ErrRangeOutOfBounds
	}
	return MonthRange{Start: start, End: end}, nil
}

// IsEmpty reports whether the interval contains no months.
func (r MonthRange) IsEmpty() bool { return r.End < r.Start }

// Months returns the positions covered by the range, in index order.
func (r MonthRange) Months() []int {
	if r.IsEmpty() {
		return nil
	}
	months := make([]int, 0, r.End-r.Start+1)
	for i := r.Start; i <= r.End; i++ {
		months = append(months, i)
	}
	return months
}
