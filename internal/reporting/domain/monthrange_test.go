package reporting

import (
	"errors"
	"testing"
)

func TestNewMonthRange_Bounds(t *testing.T) {
	index := testIndex(t, "jan", "feb", "mar")

	if _, err := NewMonthRange(0, 2, index); err != nil {
		t.Fatalf("expected valid range, got %v", err)
	}
	if _, err := NewMonthRange(-1, 2, index); !errors.Is(err, ErrRangeOutOfBounds) {
		t.Fatalf("expected ErrRangeOutOfBounds for negative start, got %v", err)
	}
	if _, err := NewMonthRange(0, 3, index); !errors.Is(err, ErrRangeOutOfBounds) {
		t.Fatalf("expected ErrRangeOutOfBounds for end past index, got %v", err)
	}
}

func TestNewMonthRange_InvertedIsEmptyNotError(t *testing.T) {
	index := testIndex(t, "jan", "feb", "mar")
	rng, err := NewMonthRange(2, 0, index)
	if err != nil {
		t.Fatalf("expected inverted range to be accepted, got %v", err)
	}
	if !rng.IsEmpty() {
		t.Fatal("expected inverted range to be empty")
	}
	if months := rng.Months(); months != nil {
		t.Fatalf("expected no months, got %v", months)
	}
}

func TestMonthRange_Months(t *testing.T) {
	rng := MonthRange{Start: 1, End: 3}
	months := rng.Months()
	if len(months) != 3 || months[0] != 1 || months[2] != 3 {
		t.Fatalf("expected [1 2 3], got %v", months)
	}
}

func TestMonthIndex_Access(t *testing.T) {
	index := testIndex(t, "jan", "feb")

	key, err := index.KeyAt(1)
	if err != nil || key != "feb" {
		t.Fatalf("expected feb, got %q err=%v", key, err)
	}
	if _, err := index.KeyAt(2); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if _, err := index.LabelAt(-1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if !index.HasKey("jan") || index.HasKey("mar") {
		t.Fatal("unexpected HasKey results")
	}
}

func TestNewMonthIndex_Empty(t *testing.T) {
	if _, err := NewMonthIndex(nil); !errors.Is(err, ErrEmptyMonthIndex) {
		t.Fatalf("expected ErrEmptyMonthIndex, got %v", err)
	}
}
