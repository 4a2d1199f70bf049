package optimizer

import (
	"fmt"
	"time"

	"HeatPilot/internal/model"
	"HeatPilot/internal/usage"
)

// Tank targets move on a coarser grid than zones, so the price nudges are
// scaled up to survive the 2°C step rounding.
var tankPriceNudge = map[model.PriceLevel]float64{
	model.PriceVeryCheap:     3.0,
	model.PriceCheap:         1.5,
	model.PriceNormal:        0,
	model.PriceExpensive:     -1.5,
	model.PriceVeryExpensive: -3.0,
}

// Usage multipliers beyond these bounds mark a predicted high or low draw
// hour.
const (
	highDrawMultiplier = 1.3
	lowDrawMultiplier  = 0.7
)

// TankInputs carries everything the tank optimizer needs for one tick.
type TankInputs struct {
	State model.TankState
	// Baseline is the configured normal tank setpoint the nudges apply to,
	// so successive ticks never compound off each other's output.
	Baseline float64
	Price    model.PriceSnapshot
	PriceOK  bool
	Profile  model.UsageProfile
	Params   model.AdaptiveParameters
	Now      time.Time
	Lockout  time.Duration
}

// tankPriceFactor scores the price contribution on the tank's coarser scale.
func tankPriceFactor(snap model.PriceSnapshot) model.Factor {
	nudge := tankPriceNudge[snap.Level]
	if nudge == 0 {
		return model.Factor{Kind: model.FactorPrice}
	}
	return model.Factor{
		Kind:      model.FactorPrice,
		Magnitude: nudge,
		Detail:    fmt.Sprintf("price %s (p%.0f, %+.1f°C)", snap.Level, snap.Percentile, nudge),
	}
}

// usageFactor pre-heats ahead of a predicted high-draw hour and conserves
// through predicted low-draw expensive hours. Reads the learned profile only
// above the usable confidence threshold; below it tank control degrades to
// price only.
func usageFactor(in TankInputs) model.Factor {
	if in.Profile.Confidence < usage.MinUsableConfidence {
		return model.Factor{Kind: model.FactorUsage, Detail: "Tibber/price-level based"}
	}

	next := in.Now.Add(time.Hour)
	mult := in.Profile.HourlyByDay[int(next.Weekday())][next.Hour()]

	switch {
	case mult >= highDrawMultiplier && !in.Price.Level.Expensive():
		// BoostIncrease is the full pre-heat boost in °C at a 2x predicted
		// draw; aggressiveness and the multiplier scale it down from there.
		nudge := in.Params.PreheatAggressiveness * (mult - 1) * in.Params.BoostIncrease
		return model.Factor{
			Kind:      model.FactorUsage,
			Magnitude: nudge,
			Detail:    fmt.Sprintf("pre-heating for predicted draw at %02d:00 (x%.1f usage, %+.1f°C)", next.Hour(), mult, nudge),
		}
	case mult <= lowDrawMultiplier && in.Price.Level.Expensive():
		nudge := -in.State.StepSize
		return model.Factor{
			Kind:      model.FactorUsage,
			Magnitude: nudge,
			Detail:    fmt.Sprintf("conserving through low-draw expensive hour (x%.1f usage, %+.1f°C)", mult, nudge),
		}
	default:
		return model.Factor{Kind: model.FactorUsage}
	}
}

// RecommendTank combines price and learned usage into a tank target and runs
// the shared anti-oscillation gate.
func RecommendTank(in TankInputs) Recommendation {
	if in.Lockout <= 0 {
		in.Lockout = DefaultLockout
	}

	var factors []model.Factor

	pf := model.Factor{Kind: model.FactorPrice}
	if in.PriceOK {
		pf = tankPriceFactor(in.Price)
	}
	uf := usageFactor(in)

	for _, f := range []model.Factor{pf, uf} {
		if f.Magnitude != 0 || f.Detail != "" {
			factors = append(factors, f)
		}
	}

	raw := pf.Magnitude + uf.Magnitude
	candidate := RoundStep(in.Baseline+raw, in.State.StepSize, raw)

	rec := Recommendation{Target: candidate, Raw: raw, Factors: factors}

	gate := evaluateGate(candidate, in.State.TargetTemp, in.State.Deadband, in.State.LastChange, in.Now, in.Lockout)
	if !gate.Apply {
		rec.Action = model.ActionNoChange
		rec.Target = in.State.TargetTemp
		rec.GateReason = gate.Reason
		rec.Factors = append(rec.Factors, model.Factor{Kind: model.FactorGate, Detail: gate.Reason})
		return rec
	}

	rec.Action = model.ActionAdjusted
	return rec
}
