package hierarchy

import (
	"errors"

	reporting "meterdash/internal/reporting/domain"
)

// ErrNegativeLossRate signals an invalid building-slack rate.
var ErrNegativeLossRate = errors.New("hierarchy: loss rate must not be negative")

// LevelTotals holds the aggregated consumption per hierarchy tier over one
// scope (a range or a single month).
type LevelTotals struct {
	A1 float64 `json:"a1"`
	A2 float64 `json:"a2"`
	A3 float64 `json:"a3"`
	A4 float64 `json:"a4"`
}

// StageLosses holds inter-level losses and their percentages.
// Stage losses 1 and 2 compare adjacent level totals, clamped at zero
// because metering error can otherwise produce a spurious negative loss.
// Stage 3 models building-level metering slack as a fixed rate applied to
// A3; it is not a comparison against A4.
type StageLosses struct {
	Stage1 float64 `json:"stage1"`
	Stage2 float64 `json:"stage2"`
	Stage3 float64 `json:"stage3"`
	Total  float64 `json:"total"`

	Stage1Pct float64 `json:"stage1_pct"`
	Stage2Pct float64 `json:"stage2_pct"`
	Stage3Pct float64 `json:"stage3_pct"`
	TotalPct  float64 `json:"total_pct"`
}

// MonthLosses is the per-month breakdown entry for the loss trend view.
type MonthLosses struct {
	Key    string      `json:"key"`
	Label  string      `json:"label"`
	Levels LevelTotals `json:"levels"`
	Losses StageLosses `json:"losses"`
}

// Resolver classifies water records into levels and computes level totals
// and stage losses over a range.
type Resolver struct {
	agg      reporting.Aggregator
	lossRate float64
}

// NewResolver builds a resolver on top of the water domain's aggregator.
// lossRate is the fixed stage-3 building slack rate (e.g. 0.003).
func NewResolver(agg reporting.Aggregator, lossRate float64) (Resolver, error) {
	if lossRate < 0 {
		return Resolver{}, ErrNegativeLossRate
	}
	return Resolver{agg: agg, lossRate: lossRate}, nil
}

// LevelRecords returns the records tagged with the given level, preserving
// input order.
func LevelRecords(records []reporting.MeterRecord, level Level) []reporting.MeterRecord {
	return reporting.FilterByType(records, string(level))
}

// Resolve computes level totals and stage losses over the selected range.
func (r Resolver) Resolve(records []reporting.MeterRecord, rng reporting.MonthRange) (LevelTotals, StageLosses) {
	totals := LevelTotals{
		A1: r.agg.TotalConsumption(LevelRecords(records, LevelL1), rng),
		A2: r.agg.TotalConsumption(LevelRecords(records, LevelL2), rng),
		A3: r.agg.TotalConsumption(LevelRecords(records, LevelL3), rng),
		A4: r.agg.TotalConsumption(LevelRecords(records, LevelL4), rng),
	}
	return totals, r.losses(totals)
}

// MonthlyBreakdown applies the loss formulas independently per month inside
// the range. The result is a trend series, not a second aggregation: the
// headline figures come from Resolve over the whole range, and because every
// stage formula is linear in the level totals the two paths agree exactly.
func (r Resolver) MonthlyBreakdown(records []reporting.MeterRecord, rng reporting.MonthRange) []MonthLosses {
	if rng.IsEmpty() {
		return nil
	}
	index := r.agg.Index()
	breakdown := make([]MonthLosses, 0, rng.End-rng.Start+1)
	for i := rng.Start; i <= rng.End; i++ {
		key, err := index.KeyAt(i)
		if err != nil {
			continue
		}
		label, _ := index.LabelAt(i)
		month := reporting.MonthRange{Start: i, End: i}
		totals, losses := r.Resolve(records, month)
		breakdown = append(breakdown, MonthLosses{
			Key:    key,
			Label:  label,
			Levels: totals,
			Losses: losses,
		})
	}
	return breakdown
}

func (r Resolver) losses(totals LevelTotals) StageLosses {
	losses := StageLosses{
		Stage1: clampLoss(totals.A1 - totals.A2),
		Stage2: clampLoss(totals.A2 - totals.A3),
		Stage3: totals.A3 * r.lossRate,
	}
	losses.Total = losses.Stage1 + losses.Stage2 + losses.Stage3

	losses.Stage1Pct = percentage(losses.Stage1, totals.A1)
	losses.Stage2Pct = percentage(losses.Stage2, totals.A2)
	losses.Stage3Pct = percentage(losses.Stage3, totals.A3)
	losses.TotalPct = percentage(losses.Total, totals.A1)
	return losses
}

func clampLoss(diff float64) float64 {
	if diff < 0 {
		return 0
	}
	return diff
}

// percentage guards the zero denominator explicitly so a dry level reports
// 0%, never NaN or Inf.
func percentage(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
