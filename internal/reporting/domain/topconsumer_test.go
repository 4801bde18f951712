package reporting

import "testing"

func TestTopConsumer_FirstSeenWinsTie(t *testing.T) {
	agg := testAggregator(t, 0, "jan", "feb")
	records := []MeterRecord{
		{Name: "first", Values: map[string]float64{"jan": 150, "feb": 150}},
		{Name: "second", Values: map[string]float64{"jan": 100, "feb": 200}},
	}
	top, ok := agg.TopConsumer(records, MonthRange{Start: 0, End: 1})
	if !ok {
		t.Fatal("expected a top consumer")
	}
	if top.Name != "first" {
		t.Fatalf("expected earlier record to keep the lead on a tie, got %s", top.Name)
	}
}

func TestTopConsumer_StrictMaximum(t *testing.T) {
	agg := testAggregator(t, 0, "jan")
	records := []MeterRecord{
		{Name: "small", Values: map[string]float64{"jan": 5}},
		{Name: "big", Values: map[string]float64{"jan": 50}},
		{Name: "mid", Values: map[string]float64{"jan": 20}},
	}
	top, ok := agg.TopConsumer(records, MonthRange{Start: 0, End: 0})
	if !ok || top.Name != "big" {
		t.Fatalf("expected big, got %v ok=%v", top.Name, ok)
	}
}

func TestTopConsumer_EmptyInput(t *testing.T) {
	agg := testAggregator(t, 0, "jan")
	if _, ok := agg.TopConsumer(nil, MonthRange{Start: 0, End: 0}); ok {
		t.Fatal("expected no top consumer for empty input")
	}
}

func TestTopConsumer_AllZeroReadsAsNoData(t *testing.T) {
	agg := testAggregator(t, 0, "jan", "feb")
	records := []MeterRecord{
		{Name: "A", Values: map[string]float64{}},
		{Name: "B", Values: map[string]float64{"jan": 0}},
	}
	if _, ok := agg.TopConsumer(records, MonthRange{Start: 0, End: 1}); ok {
		t.Fatal("expected an all-zero snapshot to report no top consumer")
	}
}
