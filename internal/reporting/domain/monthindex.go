package reporting

// MonthColumn maps a display label to the storage key of one billing period.
type MonthColumn struct {
	Key   string
	Label string
}

// MonthIndex is the ordered, fixed sequence of calendar-month columns for a
// domain. It is static configuration: built once at startup and never
// mutated afterwards.
type MonthIndex struct {
	columns []MonthColumn
}

// NewMonthIndex builds a month index from ordered columns.
func NewMonthIndex(columns []MonthColumn) (MonthIndex, error) {
	if len(columns) == 0 {
		return MonthIndex{}, ErrEmptyMonthIndex
	}
	owned := make([]MonthColumn, len(columns))
	copy(owned, columns)
	return MonthIndex{columns: owned}, nil
}

// Len returns the number of month columns.
func (m MonthIndex) Len() int { return len(m.columns) }

// KeyAt returns the storage key at position i.
func (m MonthIndex) KeyAt(i int) (string, error) {
	if i < 0 || i >= len(m.columns) {
		return "", ErrIndexOutOfRange
	}
	return m.columns[i].Key, nil
}

// LabelAt returns the display label at position i.
func (m MonthIndex) LabelAt(i int) (string, error) {
	if i < 0 || i >= len(m.columns) {
		return "", ErrIndexOutOfRange
	}
	return m.columns[i].Label, nil
}

// Keys returns all storage keys in index order.
func (m MonthIndex) Keys() []string {
	keys := make([]string, len(m.columns))
	for i, col := range m.columns {
		keys[i] = col.Key
	}
	return keys
}

// HasKey reports whether key belongs to this index.
func (m MonthIndex) HasKey(key string) bool {
	for _, col := range m.columns {
		if col.Key == key {
			return true
		}
	}
	return false
}
