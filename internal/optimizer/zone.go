package optimizer

import (
	"fmt"
	"math"
	"time"

	"HeatPilot/internal/cop"
	"HeatPilot/internal/model"
	"HeatPilot/internal/thermal"
)

// maxCombinedAdjust bounds the sum of the weather offset and the coasting
// reduction when both fire in the same tick, so compounding anticipatory
// moves cannot swing the zone a full band at once.
const maxCombinedAdjust = 1.2

// kwhPerDegreeHour approximates the energy a 1°C setpoint move is worth over
// an hour for an average zone; used only for the reported savings figure.
const kwhPerDegreeHour = 1.5

// ZoneInputs carries everything the zone optimizer needs for one tick.
type ZoneInputs struct {
	State   model.ZoneState
	Price   model.PriceSnapshot
	PriceOK bool

	Adjustment model.WeatherAdjustment
	Trend      model.WeatherTrend

	COP     cop.Estimate
	Thermal model.ThermalModel
	Params  model.AdaptiveParameters
	Season  model.Season

	// ExpensiveHoursAhead is how long the current expensive-price stretch
	// still lasts; coasting only engages when the zone can outlast it.
	ExpensiveHoursAhead float64

	Now     time.Time
	Lockout time.Duration
}

// Recommendation is the optimizer verdict for one tick.
type Recommendation struct {
	Action           model.Action
	Target           float64
	Raw              float64
	Factors          []model.Factor
	GateReason       string
	EstimatedSavings float64
}

// priceLevelNudge maps price levels to the base setpoint nudge before the
// seasonal weight is applied. Cheap raises, expensive lowers.
var priceLevelNudge = map[model.PriceLevel]float64{
	model.PriceVeryCheap:     1.0,
	model.PriceCheap:         0.5,
	model.PriceNormal:        0,
	model.PriceExpensive:     -0.5,
	model.PriceVeryExpensive: -1.0,
}

// priceFactor scores the electricity price contribution.
func priceFactor(snap model.PriceSnapshot, weight float64) model.Factor {
	nudge := priceLevelNudge[snap.Level] * weight
	if nudge == 0 {
		return model.Factor{Kind: model.FactorPrice}
	}
	return model.Factor{
		Kind:      model.FactorPrice,
		Magnitude: nudge,
		Detail:    fmt.Sprintf("price %s (p%.0f, %+.2f°C)", snap.Level, snap.Percentile, nudge),
	}
}

// weatherFactor carries the adjuster's bounded offset through unchanged.
func weatherFactor(adj model.WeatherAdjustment) model.Factor {
	if adj.Offset == 0 {
		return model.Factor{Kind: model.FactorWeather}
	}
	return model.Factor{Kind: model.FactorWeather, Magnitude: adj.Offset, Detail: adj.Reason}
}

// copFactor adds a small upward nudge when the operating point is efficient,
// since a slight raise at high COP is close to free. Below the minimum
// threshold the nudge inverts: extra degrees at near-resistive efficiency
// cost the most, so the target is trimmed instead.
func copFactor(est cop.Estimate, params model.AdaptiveParameters) model.Factor {
	switch {
	case est.COP < params.MinimumCOPThreshold:
		return model.Factor{
			Kind:      model.FactorCOP,
			Magnitude: -params.COPBonusMedium,
			Detail:    fmt.Sprintf("%s below minimum %.1f, trimming %+.2f°C", est.Describe(), params.MinimumCOPThreshold, -params.COPBonusMedium),
		}
	case est.COP >= params.ExcellentCOPThreshold:
		return model.Factor{
			Kind:      model.FactorCOP,
			Magnitude: params.COPBonusHigh,
			Detail:    fmt.Sprintf("%s, efficiency bonus %+.2f°C", est.Describe(), params.COPBonusHigh),
		}
	case est.COP >= params.GoodCOPThreshold:
		return model.Factor{
			Kind:      model.FactorCOP,
			Magnitude: params.COPBonusMedium,
			Detail:    fmt.Sprintf("%s, efficiency bonus %+.2f°C", est.Describe(), params.COPBonusMedium),
		}
	default:
		return model.Factor{Kind: model.FactorCOP}
	}
}

// coastingFactor lowers the target during an expensive stretch the zone can
// ride out on stored thermal mass alone.
func coastingFactor(in ZoneInputs) model.Factor {
	if !in.Price.Level.Expensive() || in.ExpensiveHoursAhead <= 0 {
		return model.Factor{Kind: model.FactorCoasting}
	}
	hours := thermal.CoastingHours(in.Thermal, in.State.IndoorTemp, in.State.Comfort.Min, in.State.OutdoorTemp)
	if hours < in.ExpensiveHoursAhead {
		return model.Factor{Kind: model.FactorCoasting}
	}
	nudge := -0.5 * in.Params.CoastingReductionFactor
	return model.Factor{
		Kind:      model.FactorCoasting,
		Magnitude: nudge,
		Detail:    fmt.Sprintf("thermal mass coast %+.2f°C, can coast for %.1f hours", nudge, hours),
	}
}

// RecommendZone combines the scored factors into one candidate target and
// runs it through clamping, step rounding, and the anti-oscillation gate.
func RecommendZone(in ZoneInputs) Recommendation {
	if in.Lockout <= 0 {
		in.Lockout = DefaultLockout
	}

	var factors []model.Factor

	pf := model.Factor{Kind: model.FactorPrice}
	if in.PriceOK {
		pf = priceFactor(in.Price, in.Params.PriceWeight(in.Season))
	}
	wf := weatherFactor(in.Adjustment)
	cf := copFactor(in.COP, in.Params)
	coast := coastingFactor(in)

	// Weather and coasting are additive but their combined magnitude is
	// bounded; both anticipate the same future and compound otherwise.
	combined := wf.Magnitude + coast.Magnitude
	clampedCombined := clamp(combined, -maxCombinedAdjust, maxCombinedAdjust)

	for _, f := range []model.Factor{pf, wf, cf, coast} {
		if f.Magnitude != 0 {
			factors = append(factors, f)
		}
	}
	if clampedCombined != combined {
		factors = append(factors, model.Factor{
			Kind:      model.FactorClamp,
			Magnitude: clampedCombined - combined,
			Detail:    fmt.Sprintf("combined weather/coasting adjustment clamped to %+.1f°C", clampedCombined),
		})
	}

	raw := pf.Magnitude + cf.Magnitude + clampedCombined
	candidate := in.State.TargetOriginal + raw

	lo, hi := in.State.Comfort.Min, in.State.Comfort.Max
	clamped := clamp(candidate, lo, hi)
	if clamped != candidate {
		bound := lo
		if candidate > hi {
			bound = hi
		}
		factors = append(factors, model.Factor{
			Kind:      model.FactorClamp,
			Magnitude: clamped - candidate,
			Detail:    fmt.Sprintf("clamped to %.1f°C", bound),
		})
		candidate = clamped
	}

	candidate = RoundStep(candidate, in.State.StepSize, raw)
	// Step rounding can push the candidate back over the band edge.
	candidate = clamp(candidate, lo, hi)

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
	if in.PriceOK && pf.Magnitude != 0 {
		energyDelta := math.Abs(candidate-in.State.TargetOriginal) * kwhPerDegreeHour
		rec.EstimatedSavings = math.Abs(pf.Magnitude) * energyDelta * (in.Price.Average - in.Price.Current)
	}
	return rec
}
