package model

import "time"

// Season selects which price weight applies. Derived once per tick from the
// date and site latitude, never inside the optimizer.
type Season string

const (
	SeasonWinter     Season = "winter"
	SeasonSummer     Season = "summer"
	SeasonTransition Season = "transition"
)

// AdaptiveParameters are the slow-learned optimizer weights. Mutated only by
// the tuning cycle, at most once per cycle.
type AdaptiveParameters struct {
	PriceWeightWinter     float64 `json:"price_weight_winter"`
	PriceWeightSummer     float64 `json:"price_weight_summer"`
	PriceWeightTransition float64 `json:"price_weight_transition"`

	ExcellentCOPThreshold float64 `json:"excellent_cop_threshold"`
	GoodCOPThreshold      float64 `json:"good_cop_threshold"`
	MinimumCOPThreshold   float64 `json:"minimum_cop_threshold"`
	COPBonusHigh          float64 `json:"cop_bonus_high"`   // °C
	COPBonusMedium        float64 `json:"cop_bonus_medium"` // °C

	PreheatAggressiveness   float64 `json:"preheat_aggressiveness"`
	CoastingReductionFactor float64 `json:"coasting_reduction_factor"`
	BoostIncrease           float64 `json:"boost_increase"`

	Confidence     float64   `json:"confidence"` // 0-1
	LearningCycles int       `json:"learning_cycles"`
	LastUpdated    time.Time `json:"last_updated"`
}

// DefaultAdaptiveParameters returns the factory weights used before any
// tuning cycle has completed.
func DefaultAdaptiveParameters() AdaptiveParameters {
	return AdaptiveParameters{
		PriceWeightWinter:     1.0,
		PriceWeightSummer:     0.3,
		PriceWeightTransition: 0.7,

		ExcellentCOPThreshold: 4.0,
		GoodCOPThreshold:      3.0,
		MinimumCOPThreshold:   1.8,
		COPBonusHigh:          0.3,
		COPBonusMedium:        0.15,

		PreheatAggressiveness:   1.0,
		CoastingReductionFactor: 1.0,
		BoostIncrease:           2.0,

		Confidence: 0.3,
	}
}

// PriceWeight returns the weight for the given season.
func (p AdaptiveParameters) PriceWeight(s Season) float64 {
	switch s {
	case SeasonWinter:
		return p.PriceWeightWinter
	case SeasonSummer:
		return p.PriceWeightSummer
	default:
		return p.PriceWeightTransition
	}
}
