package reporting

import (
	"math"
	"testing"
)

func testIndex(t *testing.T, keys ...string) MonthIndex {
	t.Helper()
	columns := make([]MonthColumn, len(keys))
	for i, key := range keys {
		columns[i] = MonthColumn{Key: key, Label: key}
	}
	index, err := NewMonthIndex(columns)
	if err != nil {
		t.Fatalf("new month index: %v", err)
	}
	return index
}

func testAggregator(t *testing.T, rate float64, keys ...string) Aggregator {
	t.Helper()
	agg, err := NewAggregator(testIndex(t, keys...), rate)
	if err != nil {
		t.Fatalf("new aggregator: %v", err)
	}
	return agg
}

func TestTotalConsumption_SpecScenario(t *testing.T) {
	agg := testAggregator(t, 0.025, "jan", "feb")
	records := []MeterRecord{
		{Name: "A", Values: map[string]float64{"jan": 100, "feb": 200}},
		{Name: "B", Values: map[string]float64{"jan": 150, "feb": 150}},
	}
	rng := MonthRange{Start: 0, End: 1}

	total := agg.TotalConsumption(records, rng)
	if total != 600 {
		t.Fatalf("expected total 600, got %v", total)
	}

	top, ok := agg.TopConsumer(records, rng)
	if !ok {
		t.Fatal("expected a top consumer")
	}
	if top.Name != "A" {
		t.Fatalf("expected first-seen record A to win the tie, got %s", top.Name)
	}
}

func TestTotalConsumption_Decomposability(t *testing.T) {
	agg := testAggregator(t, 0.025, "jan", "feb", "mar")
	records := []MeterRecord{
		{Name: "A", Values: map[string]float64{"jan": 12.5, "feb": 0.1}},
		{Name: "B", Values: map[string]float64{"feb": 99.9, "mar": 3}},
		{Name: "C", Values: map[string]float64{"jan": 7}},
	}
	rng := MonthRange{Start: 0, End: 2}

	whole := agg.TotalConsumption(records, rng)
	var parts float64
	for _, record := range records {
		parts += agg.TotalConsumption([]MeterRecord{record}, rng)
	}
	if whole != parts {
		t.Fatalf("expected set total %v to equal sum of singleton totals %v", whole, parts)
	}
}

func TestTotalConsumption_OrderIndependent(t *testing.T) {
	agg := testAggregator(t, 0, "jan", "feb")
	forward := []MeterRecord{
		{Name: "A", Values: map[string]float64{"jan": 1.25}},
		{Name: "B", Values: map[string]float64{"feb": 2.5}},
		{Name: "C", Values: map[string]float64{"jan": 4, "feb": 8}},
	}
	reversed := []MeterRecord{forward[2], forward[1], forward[0]}
	rng := MonthRange{Start: 0, End: 1}

	if got, want := agg.TotalConsumption(reversed, rng), agg.TotalConsumption(forward, rng); got != want {
		t.Fatalf("expected order independence, got %v vs %v", got, want)
	}
}

func TestCost_Linearity(t *testing.T) {
	agg := testAggregator(t, 0.025, "jan", "feb")
	records := []MeterRecord{
		{Name: "A", Values: map[string]float64{"jan": 100.7, "feb": 200.3}},
		{Name: "B", Values: map[string]float64{"jan": 151.1}},
		{Name: "C", Values: map[string]float64{"feb": 0.009}},
	}
	rng := MonthRange{Start: 0, End: 1}

	costOfTotal := agg.Cost(agg.TotalConsumption(records, rng))
	var summedCosts float64
	for _, record := range records {
		summedCosts += agg.Cost(agg.TotalConsumption([]MeterRecord{record}, rng))
	}
	if math.Abs(costOfTotal-summedCosts) > 1e-9 {
		t.Fatalf("expected cost linearity, got %v vs %v", costOfTotal, summedCosts)
	}
}

func TestTotalConsumption_EmptyRange(t *testing.T) {
	agg := testAggregator(t, 0.025, "jan", "feb")
	records := []MeterRecord{
		{Name: "A", Values: map[string]float64{"jan": 100}},
	}
	rng := MonthRange{Start: 1, End: 0}

	if total := agg.TotalConsumption(records, rng); total != 0 {
		t.Fatalf("expected 0 over empty range, got %v", total)
	}
	if _, ok := agg.TopConsumer(records, rng); ok {
		t.Fatal("expected no top consumer over an empty range")
	}
	if series := agg.MonthlySeries(records, rng); series != nil {
		t.Fatalf("expected nil series over empty range, got %v", series)
	}
}

func TestTotalConsumption_MissingMonthIsZero(t *testing.T) {
	agg := testAggregator(t, 0.025, "jan", "feb")
	records := []MeterRecord{
		{Name: "A", Values: map[string]float64{"jan": 100}},
		{Name: "B", Values: nil},
	}
	rng := MonthRange{Start: 0, End: 1}

	if total := agg.TotalConsumption(records, rng); total != 100 {
		t.Fatalf("expected missing fields to read as zero, got %v", total)
	}
}

func TestMonthlySeries(t *testing.T) {
	agg := testAggregator(t, 0, "jan", "feb", "mar")
	records := []MeterRecord{
		{Name: "A", Values: map[string]float64{"jan": 10, "feb": 20, "mar": 30}},
		{Name: "B", Values: map[string]float64{"feb": 5}},
	}
	series := agg.MonthlySeries(records, MonthRange{Start: 1, End: 2})
	if len(series) != 2 {
		t.Fatalf("expected 2 points, got %d", len(series))
	}
	if series[0].Key != "feb" || series[0].Total != 25 {
		t.Fatalf("expected feb=25, got %s=%v", series[0].Key, series[0].Total)
	}
	if series[1].Key != "mar" || series[1].Total != 30 {
		t.Fatalf("expected mar=30, got %s=%v", series[1].Key, series[1].Total)
	}
}

func TestTypeTotals_CountsZeroConsumptionRecords(t *testing.T) {
	agg := testAggregator(t, 0, "jan", "feb")
	records := []MeterRecord{
		{Name: "A", Type: "Residential", Values: map[string]float64{"jan": 10}},
		{Name: "B", Type: "Residential", Values: nil},
		{Name: "C", Type: "Commercial", Values: map[string]float64{"feb": 4}},
	}
	totals := agg.TypeTotals(records, MonthRange{Start: 0, End: 1})
	if len(totals) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(totals))
	}
	if totals[0].Type != "Residential" || totals[0].Count != 2 || totals[0].Total != 10 {
		t.Fatalf("unexpected residential group: %+v", totals[0])
	}
	if totals[1].Type != "Commercial" || totals[1].Count != 1 || totals[1].Total != 4 {
		t.Fatalf("unexpected commercial group: %+v", totals[1])
	}
}

func TestFullHistoryTotal_UsesSuperset(t *testing.T) {
	history := testIndex(t, "jan", "feb", "mar", "apr")
	display := testIndex(t, "mar", "apr")
	agg, err := NewAggregator(display, 0.025, WithHistoryIndex(history))
	if err != nil {
		t.Fatalf("new aggregator: %v", err)
	}
	record := MeterRecord{Name: "A", Values: map[string]float64{
		"jan": 1, "feb": 2, "mar": 4, "apr": 8,
	}}

	if total := agg.FullHistoryTotal(record); total != 15 {
		t.Fatalf("expected full-history total 15, got %v", total)
	}
	if total := agg.TotalConsumption([]MeterRecord{record}, MonthRange{Start: 0, End: 1}); total != 12 {
		t.Fatalf("expected range total 12 over the display window, got %v", total)
	}
}

func TestFilterByType_PreservesOrder(t *testing.T) {
	records := []MeterRecord{
		{Name: "A", Type: "L1"},
		{Name: "B", Type: "L2"},
		{Name: "C", Type: "L1"},
	}
	filtered := FilterByType(records, "L1")
	if len(filtered) != 2 || filtered[0].Name != "A" || filtered[1].Name != "C" {
		t.Fatalf("expected [A C], got %+v", filtered)
	}
	if all := FilterByType(records, ""); len(all) != 3 {
		t.Fatalf("expected empty filter to keep all records, got %d", len(all))
	}
}
