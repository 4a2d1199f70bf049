package tuner

import (
	"testing"
	"time"

	"HeatPilot/internal/model"
)

func decisionsWith(n int, mutate func(i int, d *model.OptimizationDecision)) []model.OptimizationDecision {
	base := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	out := make([]model.OptimizationDecision, n)
	for i := range out {
		d := model.OptimizationDecision{
			Timestamp:      base.Add(time.Duration(i) * time.Hour),
			Action:         model.ActionNoChange,
			TargetOriginal: 21.0,
			IndoorTemp:     21.0,
			Season:         model.SeasonWinter,
			Price:          model.PriceSnapshot{Level: model.PriceNormal},
		}
		if mutate != nil {
			mutate(i, &d)
		}
		out[i] = d
	}
	return out
}

func TestRunCycle_TooFewDecisionsSkips(t *testing.T) {
	params := model.DefaultAdaptiveParameters()
	next, applied := RunCycle(params, decisionsWith(7, nil), time.Now())
	if applied {
		t.Fatal("expected skip below the decision minimum")
	}
	if next.LearningCycles != 0 {
		t.Errorf("learning cycles = %d, want untouched 0", next.LearningCycles)
	}
}

func TestRunCycle_PersistentlyColdLeansIntoComfort(t *testing.T) {
	params := model.DefaultAdaptiveParameters()
	decisions := decisionsWith(24, func(_ int, d *model.OptimizationDecision) {
		d.IndoorTemp = d.TargetOriginal - 0.6
	})

	next, applied := RunCycle(params, decisions, time.Now())
	if !applied {
		t.Fatal("expected cycle applied")
	}
	if next.CoastingReductionFactor >= params.CoastingReductionFactor {
		t.Errorf("coasting factor %.2f should drop from %.2f when persistently cold",
			next.CoastingReductionFactor, params.CoastingReductionFactor)
	}
	if next.PreheatAggressiveness <= params.PreheatAggressiveness {
		t.Errorf("preheat %.2f should rise from %.2f when persistently cold",
			next.PreheatAggressiveness, params.PreheatAggressiveness)
	}
	if next.BoostIncrease <= params.BoostIncrease {
		t.Errorf("boost %.2f should rise from %.2f when persistently cold",
			next.BoostIncrease, params.BoostIncrease)
	}
}

func TestRunCycle_UnexploitedCheapHoursRaisePriceWeight(t *testing.T) {
	params := model.DefaultAdaptiveParameters()
	params.PriceWeightWinter = 0.5
	decisions := decisionsWith(24, func(_ int, d *model.OptimizationDecision) {
		d.Price.Level = model.PriceCheap
		// No tick turned the cheap hour into a raise.
		d.Action = model.ActionNoChange
		d.TargetTemp = d.TargetOriginal
	})

	next, applied := RunCycle(params, decisions, time.Now())
	if !applied {
		t.Fatal("expected cycle applied")
	}
	if next.PriceWeightWinter <= params.PriceWeightWinter {
		t.Errorf("winter price weight %.2f should rise from %.2f", next.PriceWeightWinter, params.PriceWeightWinter)
	}
}

func TestRunCycle_OverfiringCOPBonusRaisesThresholds(t *testing.T) {
	params := model.DefaultAdaptiveParameters()
	decisions := decisionsWith(20, func(_ int, d *model.OptimizationDecision) {
		d.Factors = []model.Factor{{Kind: model.FactorCOP, Magnitude: 0.3}}
	})

	next, applied := RunCycle(params, decisions, time.Now())
	if !applied {
		t.Fatal("expected cycle applied")
	}
	if next.GoodCOPThreshold <= params.GoodCOPThreshold {
		t.Errorf("good COP threshold %.2f should rise from %.2f", next.GoodCOPThreshold, params.GoodCOPThreshold)
	}
	if next.ExcellentCOPThreshold < next.GoodCOPThreshold+0.5 {
		t.Errorf("excellent threshold %.2f must stay >= good %.2f + 0.5",
			next.ExcellentCOPThreshold, next.GoodCOPThreshold)
	}
}

func TestRunCycle_LearningCountersAdvanceOnlyWhenApplied(t *testing.T) {
	params := model.DefaultAdaptiveParameters()

	next, applied := RunCycle(params, decisionsWith(24, nil), time.Now())
	if !applied {
		t.Fatal("expected cycle applied")
	}
	if next.LearningCycles != 1 {
		t.Errorf("learning cycles = %d, want 1", next.LearningCycles)
	}
	if next.Confidence <= params.Confidence {
		t.Errorf("confidence %.2f should rise from %.2f", next.Confidence, params.Confidence)
	}

	again, applied := RunCycle(next, decisionsWith(3, nil), time.Now())
	if applied {
		t.Fatal("expected skip")
	}
	if again.LearningCycles != 1 {
		t.Errorf("learning cycles = %d, want unchanged 1 after skip", again.LearningCycles)
	}
}

func TestRunCycle_NudgesStayWithinBounds(t *testing.T) {
	params := model.DefaultAdaptiveParameters()
	params.CoastingReductionFactor = 0.2 // already at the floor
	decisions := decisionsWith(24, func(_ int, d *model.OptimizationDecision) {
		d.IndoorTemp = d.TargetOriginal - 2.0
	})

	next, applied := RunCycle(params, decisions, time.Now())
	if !applied {
		t.Fatal("expected cycle applied")
	}
	if next.CoastingReductionFactor != 0.2 {
		t.Errorf("coasting factor %.2f, want held at floor 0.2", next.CoastingReductionFactor)
	}
}
