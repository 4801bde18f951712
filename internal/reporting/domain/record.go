package reporting

// MeterRecord is one immutable row per physical or logical meter, as fetched
// from the record store. Values holds one non-negative consumption figure per
// month key; an absent key reads as zero. The engine only derives aggregates
// from records and never writes back.
type MeterRecord struct {
	Name    string
	Account string
	Type    string
	Values  map[string]float64
}

// ValueAt returns the consumption recorded under the month key, or zero when
// the field is absent.
func (r MeterRecord) ValueAt(key string) float64 {
	if r.Values == nil {
		return 0
	}
	return r.Values[key]
}

// FilterByType returns the records whose Type matches typeValue, preserving
// input order. Range selection never filters records; it only scopes which
// columns are summed, so a record with zero consumption across the active
// range still counts toward the record count.
func FilterByType(records []MeterRecord, typeValue string) []MeterRecord {
	if typeValue == "" {
		return records
	}
	filtered := make([]MeterRecord, 0, len(records))
	for _, record := range records {
		if record.Type == typeValue {
			filtered = append(filtered, record)
		}
	}
	return filtered
}
