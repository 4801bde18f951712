package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	reporting "meterdash/internal/reporting/domain"
)

const (
	defaultRecordsTable  = "meter_records"
	defaultReadingsTable = "meter_readings"
)

// RecordRepository reads meter records and their month readings from
// Postgres and assembles the in-memory snapshot the engine consumes.
type RecordRepository struct {
	db            *sql.DB
	recordsTable  string
	readingsTable string
	indexes       map[string]reporting.MonthIndex
}

// RepositoryOption configures the repository.
type RepositoryOption func(*RecordRepository)

// WithRecordsTable overrides the records table name.
func WithRecordsTable(table string) RepositoryOption {
	return func(repo *RecordRepository) {
		if table != "" {
			repo.recordsTable = table
		}
	}
}

// WithReadingsTable overrides the readings table name.
func WithReadingsTable(table string) RepositoryOption {
	return func(repo *RecordRepository) {
		if table != "" {
			repo.readingsTable = table
		}
	}
}

// NewRecordRepository constructs a repository. indexes maps each domain name
// to its month-key superset; readings under keys outside the domain's index
// are rejected rather than silently aggregated.
func NewRecordRepository(db *sql.DB, indexes map[string]reporting.MonthIndex, opts ...RepositoryOption) *RecordRepository {
	repo := &RecordRepository{
		db:            db,
		recordsTable:  defaultRecordsTable,
		readingsTable: defaultReadingsTable,
		indexes:       indexes,
	}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// FetchRecords loads the full record set for a domain in insertion order.
func (r *RecordRepository) FetchRecords(ctx context.Context, domain string) ([]reporting.MeterRecord, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("record repo: nil db")
	}
	index, ok := r.indexes[domain]
	if !ok {
		return nil, fmt.Errorf("record repo: unknown domain %q", domain)
	}

	query := fmt.Sprintf(`
SELECT
	rec.id,
	rec.name,
	rec.account,
	rec.meter_type,
	rd.month_key,
	rd.consumption
FROM %s rec
LEFT JOIN %s rd ON rd.record_id = rec.id
WHERE rec.domain = $1
ORDER BY rec.id, rd.month_key`, r.recordsTable, r.readingsTable)

	rows, err := r.db.QueryContext(ctx, query, domain)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		records []reporting.MeterRecord
		lastID  int64 = -1
	)
	for rows.Next() {
		var (
			id          int64
			name        string
			account     string
			meterType   string
			monthKey    sql.NullString
			consumption sql.NullFloat64
		)
		if err := rows.Scan(&id, &name, &account, &meterType, &monthKey, &consumption); err != nil {
			return nil, err
		}
		if id != lastID {
			records = append(records, reporting.MeterRecord{
				Name:    name,
				Account: account,
				Type:    meterType,
				Values:  make(map[string]float64),
			})
			lastID = id
		}
		if !monthKey.Valid {
			continue
		}
		if !index.HasKey(monthKey.String) {
			return nil, fmt.Errorf("record repo: month key %q outside %s index", monthKey.String, domain)
		}
		if consumption.Valid {
			records[len(records)-1].Values[monthKey.String] = consumption.Float64
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// CountRecords reports the record count per domain, used by the DB-backed
// gauges.
func (r *RecordRepository) CountRecords(ctx context.Context, domain string) (int, error) {
	if r == nil || r.db == nil {
		return 0, errors.New("record repo: nil db")
	}
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE domain = $1`, r.recordsTable)
	var count int
	if err := r.db.QueryRowContext(ctx, query, domain).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
