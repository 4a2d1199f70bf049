package status

import (
	"strings"
	"testing"
	"time"

	"HeatPilot/internal/engine"
	"HeatPilot/internal/model"
)

func TestFormatStatus_NoTicksYet(t *testing.T) {
	got := FormatStatus(engine.Status{}, time.Now())
	if !strings.Contains(got, "No ticks yet") {
		t.Errorf("report = %q", got)
	}
}

func TestFormatStatus_FreshData(t *testing.T) {
	now := time.Date(2026, 1, 15, 3, 0, 0, 0, time.UTC)
	s := engine.Status{
		LastTick:          now.Add(-10 * time.Minute),
		LastGoodData:      now.Add(-10 * time.Minute),
		LastAction:        "temperature_adjusted",
		LastReason:        "price VERY_CHEAP (p5, +1.00°C)",
		ZoneTarget:        22.0,
		TankTarget:        52.0,
		ThermalK:          0.55,
		ThermalConfidence: 0.8,
		UsageConfidence:   45,
		LearningCycles:    3,
	}
	got := FormatStatus(s, now)
	if !strings.Contains(got, "temperature_adjusted") {
		t.Errorf("missing action in %q", got)
	}
	if !strings.Contains(got, "Zone target:    22.0°C") {
		t.Errorf("missing zone target in %q", got)
	}
	if strings.Contains(got, "stale data") {
		t.Errorf("fresh data flagged stale: %q", got)
	}
}

func TestFormatStatus_StaleDataWarning(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	s := engine.Status{
		LastTick:     now.Add(-5 * time.Minute),
		LastGoodData: now.Add(-6 * time.Hour),
		StaleTicks:   6,
		LastAction:   "no_change",
	}
	got := FormatStatus(s, now)
	if !strings.Contains(got, "stale data for 6 hours") {
		t.Errorf("missing staleness warning in %q", got)
	}
}

func TestFormatDecision(t *testing.T) {
	d := &model.OptimizationDecision{
		ID:             "dec-1",
		Timestamp:      time.Date(2026, 1, 15, 2, 0, 0, 0, time.UTC),
		Action:         model.ActionAdjusted,
		Reason:         "price VERY_CHEAP (p5, +1.00°C)",
		TargetTemp:     22.0,
		TargetOriginal: 21.0,
		IndoorTemp:     20.8,
		Price: model.PriceSnapshot{
			Current: 0.10, Average: 0.60, Level: model.PriceVeryCheap, Percentile: 5,
		},
		Factors: []model.Factor{
			{Kind: model.FactorPrice, Magnitude: 1.0, Detail: "price VERY_CHEAP (p5, +1.00°C)"},
		},
		Tank:             model.TankDecision{FromTemp: 48, ToTemp: 52, Reason: "price VERY_CHEAP"},
		EstimatedSavings: 0.75,
	}
	got := FormatDecision(d)
	for _, want := range []string{
		"Decision dec-1",
		"temperature_adjusted",
		"20.8°C -> 22.0°C",
		"VERY_CHEAP",
		"[price] +1.00°C",
		"Tank: 48.0°C -> 52.0°C",
		"Estimated savings: 0.750",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q:\n%s", want, got)
		}
	}
}
