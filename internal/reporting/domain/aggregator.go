package reporting

// Aggregator sums month columns over records for one domain. It is pure:
// fixed inputs always produce the same totals and no record is ever mutated.
//
// Two aggregation scopes coexist and stay distinct call sites: the
// range-scoped methods sum over positions of the display index, while the
// full-history methods sum over the entire month-key superset regardless of
// any selected range.
type Aggregator struct {
	index    MonthIndex
	history  MonthIndex
	unitRate float64
}

// AggregatorOption configures the aggregator.
type AggregatorOption func(*Aggregator)

// WithHistoryIndex sets the month-key superset behind the full-history
// scope. Without it the display index doubles as the superset.
func WithHistoryIndex(history MonthIndex) AggregatorOption {
	return func(a *Aggregator) {
		if history.Len() > 0 {
			a.history = history
		}
	}
}

// NewAggregator builds an aggregator for a domain's month index and unit
// cost rate.
func NewAggregator(index MonthIndex, unitRate float64, opts ...AggregatorOption) (Aggregator, error) {
	if index.Len() == 0 {
		return Aggregator{}, ErrEmptyMonthIndex
	}
	if unitRate < 0 {
		return Aggregator{}, ErrNegativeUnitRate
	}
	agg := Aggregator{index: index, history: index, unitRate: unitRate}
	for _, opt := range opts {
		opt(&agg)
	}
	return agg, nil
}

// Index returns the month index the aggregator sums over.
func (a Aggregator) Index() MonthIndex { return a.index }

// UnitRate returns the domain's fixed cost rate.
func (a Aggregator) UnitRate() float64 { return a.unitRate }

// RecordTotal sums one record's values at positions Start..End inclusive.
// Missing month fields contribute zero.
func (a Aggregator) RecordTotal(record MeterRecord, rng MonthRange) float64 {
	if rng.IsEmpty() {
		return 0
	}
	var total float64
	for i := rng.Start; i <= rng.End; i++ {
		key, err := a.index.KeyAt(i)
		if err != nil {
			continue
		}
		total += record.ValueAt(key)
	}
	return total
}

// TotalConsumption sums RecordTotal across all records. The result does not
// depend on record order and decomposes per record: the total over a set
// equals the sum of totals over singletons.
func (a Aggregator) TotalConsumption(records []MeterRecord, rng MonthRange) float64 {
	var total float64
	for _, record := range records {
		total += a.RecordTotal(record, rng)
	}
	return total
}

// Cost converts consumption to currency at the domain's fixed unit rate.
// The transform is linear, so costing a summed total equals summing
// per-record costs up to floating-point rounding.
func (a Aggregator) Cost(consumption float64) float64 {
	return consumption * a.unitRate
}

// MonthPoint is one entry of a per-month series.
type MonthPoint struct {
	Key   string  `json:"key"`
	Label string  `json:"label"`
	Total float64 `json:"total"`
}

// MonthlySeries returns the per-month totals across all records for each
// month inside the range, in index order. An empty range yields a nil
// series.
func (a Aggregator) MonthlySeries(records []MeterRecord, rng MonthRange) []MonthPoint {
	if rng.IsEmpty() {
		return nil
	}
	series := make([]MonthPoint, 0, rng.End-rng.Start+1)
	for i := rng.Start; i <= rng.End; i++ {
		key, err := a.index.KeyAt(i)
		if err != nil {
			continue
		}
		label, _ := a.index.LabelAt(i)
		var total float64
		for _, record := range records {
			total += record.ValueAt(key)
		}
		series = append(series, MonthPoint{Key: key, Label: label, Total: total})
	}
	return series
}

// TypeTotal is one entry of a per-category series.
type TypeTotal struct {
	Type  string  `json:"type"`
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// TypeTotals groups records by Type and sums each group over the range.
// Group order follows first appearance in the input.
func (a Aggregator) TypeTotals(records []MeterRecord, rng MonthRange) []TypeTotal {
	order := make([]string, 0)
	byType := make(map[string]*TypeTotal)
	for _, record := range records {
		entry, ok := byType[record.Type]
		if !ok {
			order = append(order, record.Type)
			entry = &TypeTotal{Type: record.Type}
			byType[record.Type] = entry
		}
		entry.Count++
		entry.Total += a.RecordTotal(record, rng)
	}
	totals := make([]TypeTotal, 0, len(order))
	for _, typeValue := range order {
		totals = append(totals, *byType[typeValue])
	}
	return totals
}

// FullHistoryTotal sums one record over the entire month-key superset,
// ignoring any selected range. This is the wider aggregation scope behind
// the table and export views; it must stay a distinct call site from
// TotalConsumption and is never cached into the range-scoped figures.
func (a Aggregator) FullHistoryTotal(record MeterRecord) float64 {
	var total float64
	for _, key := range a.history.Keys() {
		total += record.ValueAt(key)
	}
	return total
}

// HistoryIndex returns the month-key superset behind the full-history scope.
func (a Aggregator) HistoryIndex() MonthIndex { return a.history }

// FullHistoryTotals sums FullHistoryTotal across records.
func (a Aggregator) FullHistoryTotals(records []MeterRecord) float64 {
	var total float64
	for _, record := range records {
		total += a.FullHistoryTotal(record)
	}
	return total
}
