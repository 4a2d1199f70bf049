package optimizer

import (
	"strings"
	"testing"
	"time"

	"HeatPilot/internal/cop"
	"HeatPilot/internal/model"
)

func zoneState() model.ZoneState {
	return model.ZoneState{
		IndoorTemp:     20.8,
		OutdoorTemp:    2.0,
		TargetTemp:     21.0,
		TargetOriginal: 21.0,
		Comfort:        model.ComfortBand{Min: 19.5, Max: 22.5},
		Deadband:       0.3,
		StepSize:       0.5,
	}
}

func baseZoneInputs(now time.Time) ZoneInputs {
	return ZoneInputs{
		State:   zoneState(),
		PriceOK: true,
		Price:   model.PriceSnapshot{Current: 0.50, Average: 0.50, Level: model.PriceNormal, Percentile: 50},
		COP:     cop.Estimate{COP: 2.5, Mode: cop.ModeHeating},
		Thermal: model.DefaultThermalModel(),
		Params:  model.DefaultAdaptiveParameters(),
		Season:  model.SeasonWinter,
		Now:     now,
	}
}

func TestRecommendZone_VeryCheapWinterRaisesTarget(t *testing.T) {
	now := time.Date(2026, 1, 15, 2, 0, 0, 0, time.UTC)
	in := baseZoneInputs(now)
	in.Price = model.PriceSnapshot{Current: 0.10, Average: 0.60, Level: model.PriceVeryCheap, Percentile: 5}

	rec := RecommendZone(in)
	if rec.Action != model.ActionAdjusted {
		t.Fatalf("action = %s (%s), want adjusted", rec.Action, rec.GateReason)
	}
	if rec.Target != 22.0 {
		t.Errorf("target = %.1f, want 22.0 (baseline +1.0 at winter weight)", rec.Target)
	}
	if rec.EstimatedSavings <= 0 {
		t.Errorf("savings = %.3f, want positive when buying below average", rec.EstimatedSavings)
	}
	if len(rec.Factors) == 0 || rec.Factors[0].Kind != model.FactorPrice {
		t.Fatalf("expected leading price factor, got %+v", rec.Factors)
	}
	if !strings.Contains(rec.Factors[0].Detail, "VERY_CHEAP") {
		t.Errorf("price factor detail = %q", rec.Factors[0].Detail)
	}
}

func TestRecommendZone_SummerWeightMutesPriceSignal(t *testing.T) {
	now := time.Date(2026, 7, 15, 2, 0, 0, 0, time.UTC)
	in := baseZoneInputs(now)
	in.Season = model.SeasonSummer
	in.Price = model.PriceSnapshot{Current: 0.10, Average: 0.60, Level: model.PriceVeryCheap, Percentile: 5}

	rec := RecommendZone(in)
	// +1.0 * 0.3 = +0.3 rounds to +0.5, barely clearing the deadband.
	if rec.Action != model.ActionAdjusted {
		t.Fatalf("action = %s (%s), want adjusted", rec.Action, rec.GateReason)
	}
	if rec.Target != 21.5 {
		t.Errorf("target = %.1f, want 21.5", rec.Target)
	}
	if rec.Raw >= 1.0 {
		t.Errorf("raw = %.2f, want muted below the winter signal", rec.Raw)
	}
}

func TestRecommendZone_ExpensiveStretchEngagesCoasting(t *testing.T) {
	now := time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC)
	in := baseZoneInputs(now)
	in.Price = model.PriceSnapshot{Current: 1.20, Average: 0.60, Level: model.PriceExpensive, Percentile: 80}
	in.State.IndoorTemp = 21.5
	in.ExpensiveHoursAhead = 2

	rec := RecommendZone(in)
	if rec.Action != model.ActionAdjusted {
		t.Fatalf("action = %s (%s), want adjusted", rec.Action, rec.GateReason)
	}
	// price -0.5 plus coasting -0.5.
	if rec.Target != 20.0 {
		t.Errorf("target = %.1f, want 20.0", rec.Target)
	}
	found := false
	for _, f := range rec.Factors {
		if f.Kind == model.FactorCoasting {
			found = true
			if !strings.Contains(f.Detail, "can coast for") {
				t.Errorf("coasting detail = %q", f.Detail)
			}
		}
	}
	if !found {
		t.Error("expected coasting factor in decision")
	}
}

func TestRecommendZone_CoastingNeedsEnoughThermalMargin(t *testing.T) {
	now := time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC)
	in := baseZoneInputs(now)
	in.Price = model.PriceSnapshot{Current: 1.20, Average: 0.60, Level: model.PriceExpensive, Percentile: 80}
	// Barely above the comfort floor in deep cold: cannot outlast 6 hours.
	in.State.IndoorTemp = 19.7
	in.State.OutdoorTemp = -15
	in.ExpensiveHoursAhead = 6

	rec := RecommendZone(in)
	for _, f := range rec.Factors {
		if f.Kind == model.FactorCoasting && f.Magnitude != 0 {
			t.Fatalf("coasting fired with insufficient margin: %+v", f)
		}
	}
}

func TestRecommendZone_DuplicateTargetBlocked(t *testing.T) {
	now := time.Date(2026, 1, 15, 2, 0, 0, 0, time.UTC)
	in := baseZoneInputs(now)
	in.Price = model.PriceSnapshot{Current: 0.10, Average: 0.60, Level: model.PriceVeryCheap, Percentile: 5}
	// The +1.0 candidate was already applied five minutes ago.
	in.State.TargetTemp = 22.0
	in.State.LastChange = now.Add(-5 * time.Minute)

	rec := RecommendZone(in)
	if rec.Action != model.ActionNoChange {
		t.Fatalf("action = %s, want no_change", rec.Action)
	}
	if !strings.Contains(rec.GateReason, "Duplicate target") {
		t.Errorf("gate reason = %q, want duplicate explanation", rec.GateReason)
	}
	if rec.Target != 22.0 {
		t.Errorf("target = %.1f, want last applied retained", rec.Target)
	}
}

func TestRecommendZone_LockoutBlocksFreshChange(t *testing.T) {
	now := time.Date(2026, 1, 15, 2, 0, 0, 0, time.UTC)
	in := baseZoneInputs(now)
	in.Price = model.PriceSnapshot{Current: 0.10, Average: 0.60, Level: model.PriceVeryCheap, Percentile: 5}
	in.State.TargetTemp = 21.0
	in.State.LastChange = now.Add(-4 * time.Minute)

	rec := RecommendZone(in)
	if rec.Action != model.ActionNoChange {
		t.Fatalf("action = %s, want no_change inside lockout", rec.Action)
	}
	if !strings.Contains(rec.GateReason, "lockout") {
		t.Errorf("gate reason = %q, want lockout explanation", rec.GateReason)
	}
}

func TestRecommendZone_ComfortBandClampsTarget(t *testing.T) {
	now := time.Date(2026, 1, 15, 2, 0, 0, 0, time.UTC)
	in := baseZoneInputs(now)
	in.Price = model.PriceSnapshot{Current: 0.10, Average: 0.60, Level: model.PriceVeryCheap, Percentile: 5}
	in.State.Comfort.Max = 21.5
	in.COP = cop.Estimate{COP: 4.5, Mode: cop.ModeHeating} // adds +0.3 on top of +1.0

	rec := RecommendZone(in)
	if rec.Target > 21.5 {
		t.Fatalf("target = %.1f, breached comfort max 21.5", rec.Target)
	}
	found := false
	for _, f := range rec.Factors {
		if f.Kind == model.FactorClamp {
			found = true
		}
	}
	if !found {
		t.Error("expected clamp factor in decision")
	}
}

func TestRecommendZone_CombinedAnticipatoryAdjustIsBounded(t *testing.T) {
	now := time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC)
	in := baseZoneInputs(now)
	in.Price = model.PriceSnapshot{Current: 1.20, Average: 0.60, Level: model.PriceExpensive, Percentile: 80}
	in.State.IndoorTemp = 21.5
	in.ExpensiveHoursAhead = 2
	in.Adjustment = model.WeatherAdjustment{Offset: -0.7, Reason: "weather warming: -0.70°C offset"}
	in.Params.CoastingReductionFactor = 2.0 // coasting alone would give -1.0

	rec := RecommendZone(in)
	clamped := false
	for _, f := range rec.Factors {
		if f.Kind == model.FactorClamp && strings.Contains(f.Detail, "weather/coasting") {
			clamped = true
		}
	}
	if !clamped {
		t.Fatal("expected combined weather/coasting clamp factor")
	}
	// price -0.5 plus bounded -1.2 anticipatory: 21 - 1.7 = 19.3, clamped to
	// the 19.5 comfort floor and rounded to the grid.
	if rec.Target < in.State.Comfort.Min {
		t.Errorf("target = %.1f, breached comfort min", rec.Target)
	}
}

func TestRecommendZone_NearResistiveCOPTrimsTarget(t *testing.T) {
	now := time.Date(2026, 1, 15, 2, 0, 0, 0, time.UTC)
	in := baseZoneInputs(now)
	// Deep cold clamps the estimate well below the 1.8 minimum.
	in.COP = cop.Estimate{COP: 1.2, Mode: cop.ModeHeating}

	rec := RecommendZone(in)
	var cf *model.Factor
	for i, f := range rec.Factors {
		if f.Kind == model.FactorCOP {
			cf = &rec.Factors[i]
		}
	}
	if cf == nil {
		t.Fatalf("expected a COP factor, got %+v", rec.Factors)
	}
	if cf.Magnitude != -0.15 {
		t.Errorf("COP factor magnitude = %.2f, want -0.15 trim", cf.Magnitude)
	}
	if !strings.Contains(cf.Detail, "below minimum") {
		t.Errorf("COP factor detail = %q, want below-minimum explanation", cf.Detail)
	}
}

func TestRecommendZone_MissingPriceDropsPriceFactor(t *testing.T) {
	now := time.Date(2026, 1, 15, 2, 0, 0, 0, time.UTC)
	in := baseZoneInputs(now)
	in.PriceOK = false
	in.Price = model.PriceSnapshot{Level: model.PriceNormal, Percentile: 50}

	rec := RecommendZone(in)
	for _, f := range rec.Factors {
		if f.Kind == model.FactorPrice {
			t.Fatalf("price factor present without price data: %+v", f)
		}
	}
	if rec.EstimatedSavings != 0 {
		t.Errorf("savings = %.3f, want 0 without price data", rec.EstimatedSavings)
	}
}
