package memory

import (
	"context"
	"fmt"
	"sync"

	reporting "meterdash/internal/reporting/domain"
)

// RecordRepository is an in-memory record source for tests and local runs.
type RecordRepository struct {
	mu      sync.RWMutex
	records map[string][]reporting.MeterRecord
}

// NewRecordRepository constructs an empty in-memory repository.
func NewRecordRepository() *RecordRepository {
	return &RecordRepository{records: make(map[string][]reporting.MeterRecord)}
}

// Seed replaces the record set for a domain.
func (r *RecordRepository) Seed(domain string, records []reporting.MeterRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	owned := make([]reporting.MeterRecord, len(records))
	copy(owned, records)
	r.records[domain] = owned
}

// FetchRecords returns the seeded records for a domain in insertion order.
func (r *RecordRepository) FetchRecords(_ context.Context, domain string) ([]reporting.MeterRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records, ok := r.records[domain]
	if !ok {
		return nil, fmt.Errorf("memory repo: unknown domain %q", domain)
	}
	out := make([]reporting.MeterRecord, len(records))
	copy(out, records)
	return out, nil
}
