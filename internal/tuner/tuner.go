package tuner

import (
	"time"

	"HeatPilot/internal/model"
)

const (
	// minDecisions is the smallest window a tuning cycle will learn from.
	minDecisions = 8
	// maxNudge bounds every per-cycle parameter step.
	maxNudge = 0.05
	// comfortSlack is the mean indoor-vs-baseline error beyond which the
	// cycle considers the zone persistently under- or over-heated.
	comfortSlack = 0.3
)

// bounds are the safe operating ranges the nudged parameters are clamped to.
type bounds struct{ lo, hi float64 }

var (
	priceWeightBounds = bounds{0.1, 1.5}
	copGoodBounds     = bounds{2.0, 4.0}
	copExcelBounds    = bounds{3.0, 5.0}
	preheatBounds     = bounds{0.2, 2.0}
	coastingBounds    = bounds{0.2, 2.0}
	boostBounds       = bounds{0.5, 4.0}
)

// RunCycle nudges the adaptive parameters from the accumulated decision
// window. Returns the updated parameters and whether the cycle applied; a
// skipped cycle leaves the learning counter untouched.
func RunCycle(params model.AdaptiveParameters, decisions []model.OptimizationDecision, now time.Time) (model.AdaptiveParameters, bool) {
	if len(decisions) < minDecisions {
		return params, false
	}

	var (
		comfortErr   float64
		cheapTicks   int
		cheapRaised  int
		copFired     int
		coastEngaged int
	)
	seasonCount := map[model.Season]int{}

	for _, d := range decisions {
		comfortErr += d.IndoorTemp - d.TargetOriginal
		seasonCount[d.Season]++

		if d.Price.Level.Cheap() {
			cheapTicks++
			if d.Action == model.ActionAdjusted && d.TargetTemp > d.TargetOriginal {
				cheapRaised++
			}
		}
		for _, f := range d.Factors {
			switch f.Kind {
			case model.FactorCOP:
				if f.Magnitude != 0 {
					copFired++
				}
			case model.FactorCoasting:
				if f.Magnitude != 0 {
					coastEngaged++
				}
			}
		}
	}
	n := float64(len(decisions))
	comfortErr /= n

	next := params

	// Persistently cold: back off coasting, lean harder into pre-heating.
	// Persistently warm: the opposite.
	if comfortErr < -comfortSlack {
		next.CoastingReductionFactor = clampTo(next.CoastingReductionFactor-maxNudge, coastingBounds)
		next.PreheatAggressiveness = clampTo(next.PreheatAggressiveness+maxNudge, preheatBounds)
		next.BoostIncrease = clampTo(next.BoostIncrease+maxNudge, boostBounds)
	} else if comfortErr > comfortSlack {
		next.CoastingReductionFactor = clampTo(next.CoastingReductionFactor+maxNudge, coastingBounds)
		next.PreheatAggressiveness = clampTo(next.PreheatAggressiveness-maxNudge, preheatBounds)
		next.BoostIncrease = clampTo(next.BoostIncrease-maxNudge, boostBounds)
	}

	// Cheap hours that produced no upward move mean the price weight is too
	// small to clear the deadband for the season we are in.
	if cheapTicks > 0 {
		exploit := float64(cheapRaised) / float64(cheapTicks)
		dominant := dominantSeason(seasonCount)
		if exploit < 0.3 {
			nudgeSeasonWeight(&next, dominant, maxNudge)
		} else if exploit > 0.9 && comfortErr > comfortSlack {
			nudgeSeasonWeight(&next, dominant, -maxNudge)
		}
	}

	// COP bonus firing on nearly every tick makes it noise, never firing
	// makes it dead weight.
	copShare := float64(copFired) / n
	if copShare > 0.7 {
		next.GoodCOPThreshold = clampTo(next.GoodCOPThreshold+maxNudge, copGoodBounds)
		next.ExcellentCOPThreshold = clampTo(next.ExcellentCOPThreshold+maxNudge, copExcelBounds)
	} else if copShare < 0.1 {
		next.GoodCOPThreshold = clampTo(next.GoodCOPThreshold-maxNudge, copGoodBounds)
		next.ExcellentCOPThreshold = clampTo(next.ExcellentCOPThreshold-maxNudge, copExcelBounds)
	}
	if next.ExcellentCOPThreshold < next.GoodCOPThreshold+0.5 {
		next.ExcellentCOPThreshold = next.GoodCOPThreshold + 0.5
	}

	next.LearningCycles++
	next.Confidence += 0.02
	if next.Confidence > 1 {
		next.Confidence = 1
	}
	next.LastUpdated = now
	return next, true
}

func dominantSeason(counts map[model.Season]int) model.Season {
	best := model.SeasonTransition
	bestN := -1
	for s, c := range counts {
		if c > bestN {
			best, bestN = s, c
		}
	}
	return best
}

func nudgeSeasonWeight(p *model.AdaptiveParameters, s model.Season, delta float64) {
	switch s {
	case model.SeasonWinter:
		p.PriceWeightWinter = clampTo(p.PriceWeightWinter+delta, priceWeightBounds)
	case model.SeasonSummer:
		p.PriceWeightSummer = clampTo(p.PriceWeightSummer+delta, priceWeightBounds)
	default:
		p.PriceWeightTransition = clampTo(p.PriceWeightTransition+delta, priceWeightBounds)
	}
}

func clampTo(v float64, b bounds) float64 {
	if v < b.lo {
		return b.lo
	}
	if v > b.hi {
		return b.hi
	}
	return v
}
