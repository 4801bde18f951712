package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("METERDASH_CONFIG", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	electricity, ok := cfg.Domains[DomainElectricity]
	if !ok {
		t.Fatal("expected electricity domain")
	}
	if electricity.UnitRate != 0.025 {
		t.Fatalf("expected electricity unit rate 0.025, got %v", electricity.UnitRate)
	}
	index, err := electricity.DisplayIndex()
	if err != nil {
		t.Fatalf("display index: %v", err)
	}
	if index.Len() != 3 {
		t.Fatalf("expected 3 electricity display slots, got %d", index.Len())
	}

	water, ok := cfg.Domains[DomainWater]
	if !ok {
		t.Fatal("expected water domain")
	}
	if water.LossRate != 0.003 {
		t.Fatalf("expected water loss rate 0.003, got %v", water.LossRate)
	}
	display, err := water.DisplayIndex()
	if err != nil {
		t.Fatalf("water display index: %v", err)
	}
	if display.Len() != 7 {
		t.Fatalf("expected 7 water display slots, got %d", display.Len())
	}
	history, err := water.HistoryIndex()
	if err != nil {
		t.Fatalf("water history index: %v", err)
	}
	if history.Len() <= display.Len() {
		t.Fatalf("expected water superset wider than display window, got %d vs %d", history.Len(), display.Len())
	}
}

func TestLoadConfig_YAMLOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reporting.yaml")
	data := []byte(`
domains:
  electricity:
    unit_rate: 0.05
    months:
      - {key: jul_2025, label: "Jul 2025"}
      - {key: aug_2025, label: "Aug 2025"}
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("METERDASH_CONFIG", path)
	t.Setenv("ELECTRICITY_UNIT_RATE", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	electricity := cfg.Domains[DomainElectricity]
	if electricity.UnitRate != 0.05 {
		t.Fatalf("expected overridden rate 0.05, got %v", electricity.UnitRate)
	}
	index, err := electricity.HistoryIndex()
	if err != nil {
		t.Fatalf("history index: %v", err)
	}
	if index.Len() != 2 {
		t.Fatalf("expected 2 months from yaml, got %d", index.Len())
	}
}

func TestLoadConfig_EnvRateOverride(t *testing.T) {
	t.Setenv("METERDASH_CONFIG", "")
	t.Setenv("WATER_LOSS_RATE", "0.01")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if got := cfg.Domains[DomainWater].LossRate; got != 0.01 {
		t.Fatalf("expected env override 0.01, got %v", got)
	}
}

func TestDisplayIndex_RejectsUnknownKey(t *testing.T) {
	domain := DomainConfig{
		Months:  []MonthColumn{{Key: "jan", Label: "Jan"}},
		Display: []string{"feb"},
	}
	if _, err := domain.DisplayIndex(); err == nil {
		t.Fatal("expected error for display key outside superset")
	}
}
