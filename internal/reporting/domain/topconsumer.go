package reporting

// TopConsumer returns the record with the strictly highest range total, and
// whether any qualified. The scan uses strict greater-than, so on a tie the
// record seen first in the input keeps the lead.
//
// A snapshot whose maximum total is exactly zero reports found=false: an
// all-zero range is read as "no data" rather than crowning a meter that
// consumed nothing. The scan tracks the best candidate separately from that
// rule, so the zero cutoff is an explicit decision, not an artifact of
// seeding the maximum at zero.
func (a Aggregator) TopConsumer(records []MeterRecord, rng MonthRange) (MeterRecord, bool) {
	var (
		best      MeterRecord
		bestTotal float64
		seen      bool
	)
	for _, record := range records {
		total := a.RecordTotal(record, rng)
		if !seen || total > bestTotal {
			best = record
			bestTotal = total
			seen = true
		}
	}
	if !seen || bestTotal <= 0 {
		return MeterRecord{}, false
	}
	return best, true
}
