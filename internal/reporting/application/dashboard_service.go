package application

import (
	"context"
	"errors"
	"sync"

	reporting "meterdash/internal/reporting/domain"
	"meterdash/internal/reporting/domain/hierarchy"
)

var (
	// ErrNilRepository signals construction without a record source.
	ErrNilRepository = errors.New("reporting app: nil record repository")
	// ErrNoSnapshot signals a read before the first record fetch.
	ErrNoSnapshot = errors.New("reporting app: no record snapshot loaded")
)

// RecordRepository fetches the full record set for a domain from the remote
// tabular store.
type RecordRepository interface {
	FetchRecords(ctx context.Context, domain string) ([]reporting.MeterRecord, error)
}

// Snapshot is the plain aggregate structure recomputed on every range or
// filter change. It is ephemeral: derived wholesale from the record
// snapshot, never persisted.
type Snapshot struct {
	Domain      string                 `json:"domain"`
	Range       reporting.MonthRange   `json:"range"`
	Type        string                 `json:"type,omitempty"`
	Total       float64                `json:"total"`
	Cost        float64                `json:"cost"`
	RecordCount int                    `json:"record_count"`
	Monthly     []reporting.MonthPoint `json:"monthly"`
	ByType      []reporting.TypeTotal  `json:"by_type"`
	TopConsumer *reporting.MeterRecord `json:"top_consumer,omitempty"`
	Hierarchy   *HierarchyView         `json:"hierarchy,omitempty"`
}

// HierarchyView is the water-only block of a snapshot.
type HierarchyView struct {
	Levels  hierarchy.LevelTotals   `json:"levels"`
	Losses  hierarchy.StageLosses   `json:"losses"`
	Monthly []hierarchy.MonthLosses `json:"monthly"`
}

// DashboardService owns one domain's record snapshot and its derived
// aggregates. Range changes follow a stage/commit split: StageRange records
// the pending selection (debouncing is the caller's concern) and
// CommitRange is the single writer that swaps in a freshly recomputed
// snapshot. Every recompute is a cheap full pass over the in-memory records;
// there is no incremental update and no cancellation.
type DashboardService struct {
	domain   string
	agg      reporting.Aggregator
	resolver *hierarchy.Resolver
	repo     RecordRepository

	mu          sync.RWMutex
	records     []reporting.MeterRecord
	loaded      bool
	committed   reporting.MonthRange
	pending     reporting.MonthRange
	typeFilter  string
	recomputing bool
	current     Snapshot
}

// Option configures the service.
type Option func(*DashboardService)

// WithHierarchy attaches the water level resolver.
func WithHierarchy(resolver hierarchy.Resolver) Option {
	return func(s *DashboardService) {
		s.resolver = &resolver
	}
}

// NewDashboardService constructs a service for one domain. The initial
// committed range spans the whole month index.
func NewDashboardService(domain string, agg reporting.Aggregator, repo RecordRepository, opts ...Option) (*DashboardService, error) {
	if repo == nil {
		return nil, ErrNilRepository
	}
	full := reporting.MonthRange{Start: 0, End: agg.Index().Len() - 1}
	service := &DashboardService{
		domain:    domain,
		agg:       agg,
		repo:      repo,
		committed: full,
		pending:   full,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Domain returns the domain name the service reports on.
func (s *DashboardService) Domain() string { return s.domain }

// Refresh fetches a new record snapshot from the store and recomputes all
// aggregates against the committed range.
func (s *DashboardService) Refresh(ctx context.Context) error {
	records, err := s.repo.FetchRecords(ctx, s.domain)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.loaded = true
	s.recompute()
	return nil
}

// StageRange validates and records a pending range selection without
// recomputing. Rapid successive selections simply overwrite each other; the
// last one staged is what CommitRange applies.
func (s *DashboardService) StageRange(start, end int) error {
	rng, err := reporting.NewMonthRange(start, end, s.agg.Index())
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.pending = rng
	s.mu.Unlock()
	return nil
}

// CommitRange promotes the pending range to committed and recomputes the
// snapshot. The transient recomputing flag lets a consumer suppress stale
// values; it carries no correctness obligation over the aggregates.
func (s *DashboardService) CommitRange() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return Snapshot{}, ErrNoSnapshot
	}
	s.committed = s.pending
	s.recomputing = true
	s.recompute()
	s.recomputing = false
	return s.current, nil
}

// SelectType sets the category filter and recomputes.
func (s *DashboardService) SelectType(typeValue string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return Snapshot{}, ErrNoSnapshot
	}
	s.typeFilter = typeValue
	s.recomputing = true
	s.recompute()
	s.recomputing = false
	return s.current, nil
}

// Compute derives a snapshot for an explicit range and type filter without
// touching the committed selection. Read requests that carry their own range
// go through here so they cannot race a staged commit.
func (s *DashboardService) Compute(start, end int, typeValue string) (Snapshot, error) {
	rng, err := reporting.NewMonthRange(start, end, s.agg.Index())
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return Snapshot{}, ErrNoSnapshot
	}
	return s.buildSnapshot(rng, typeValue), nil
}

// Current returns the latest snapshot.
func (s *DashboardService) Current() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return Snapshot{}, ErrNoSnapshot
	}
	return s.current, nil
}

// Recomputing reports whether a recompute is in flight.
func (s *DashboardService) Recomputing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recomputing
}

// Records returns the raw snapshot records for the full-history views.
func (s *DashboardService) Records() ([]reporting.MeterRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		return nil, ErrNoSnapshot
	}
	return s.records, nil
}

// Aggregator exposes the domain aggregator for the full-history call sites
// (table and export views), which sum the entire month superset and must
// not reuse the range-scoped snapshot figures.
func (s *DashboardService) Aggregator() reporting.Aggregator { return s.agg }

// recompute rebuilds the committed snapshot under s.mu.
func (s *DashboardService) recompute() {
	s.current = s.buildSnapshot(s.committed, s.typeFilter)
}

// buildSnapshot derives every aggregate from the record snapshot in one
// synchronous pass. Callers hold s.mu.
func (s *DashboardService) buildSnapshot(rng reporting.MonthRange, typeFilter string) Snapshot {
	scoped := reporting.FilterByType(s.records, typeFilter)

	total := s.agg.TotalConsumption(scoped, rng)
	snapshot := Snapshot{
		Domain:      s.domain,
		Range:       rng,
		Type:        typeFilter,
		Total:       total,
		Cost:        s.agg.Cost(total),
		RecordCount: len(scoped),
		Monthly:     s.agg.MonthlySeries(scoped, rng),
		ByType:      s.agg.TypeTotals(s.records, rng),
	}
	if top, ok := s.agg.TopConsumer(scoped, rng); ok {
		snapshot.TopConsumer = &top
	}
	if s.resolver != nil {
		levels, losses := s.resolver.Resolve(s.records, rng)
		snapshot.Hierarchy = &HierarchyView{
			Levels:  levels,
			Losses:  losses,
			Monthly: s.resolver.MonthlyBreakdown(s.records, rng),
		}
	}
	return snapshot
}
