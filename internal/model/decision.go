package model

import (
	"strings"
	"time"
)

// Action is the terminal state of one optimization tick.
type Action string

const (
	ActionAdjusted Action = "temperature_adjusted"
	ActionNoChange Action = "no_change"
)

// FactorKind tags a single contribution to the raw setpoint adjustment.
type FactorKind string

const (
	FactorPrice    FactorKind = "price"
	FactorWeather  FactorKind = "weather"
	FactorCOP      FactorKind = "cop"
	FactorCoasting FactorKind = "coasting"
	FactorUsage    FactorKind = "usage"
	FactorClamp    FactorKind = "clamp"
	FactorGate     FactorKind = "gate"
)

// Factor is one scored contribution with its magnitude in °C and a short
// human-readable commentary. The optimizers work over these structured
// values; text rendering happens only at the recorder/status boundary.
type Factor struct {
	Kind      FactorKind `json:"kind"`
	Magnitude float64    `json:"magnitude"`
	Detail    string     `json:"detail"`
}

// ReasonFromFactors joins the factor commentaries into the decision reason
// string, in factor order.
func ReasonFromFactors(factors []Factor) string {
	parts := make([]string, 0, len(factors))
	for _, f := range factors {
		if f.Detail != "" {
			parts = append(parts, f.Detail)
		}
	}
	if len(parts) == 0 {
		return "no adjustment factors active"
	}
	return strings.Join(parts, ", ")
}

// TankDecision is the tank optimizer's slice of the combined decision.
type TankDecision struct {
	FromTemp float64 `json:"from_temp"`
	ToTemp   float64 `json:"to_temp"`
	Reason   string  `json:"reason"`
	Success  bool    `json:"success"`
	Changed  bool    `json:"changed"`
}

// OptimizationDecision is the immutable record of one tick. Appended to an
// ordered history, never mutated afterwards.
type OptimizationDecision struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	DeviceID  string    `json:"device_id"`

	Action Action `json:"action"`
	Reason string `json:"reason"`

	TargetTemp     float64 `json:"target_temp"`
	TargetOriginal float64 `json:"target_original"`
	IndoorTemp     float64 `json:"indoor_temp"`
	OutdoorTemp    float64 `json:"outdoor_temp"`

	Factors []Factor `json:"factors"`

	Price      PriceSnapshot     `json:"price"`
	Weather    WeatherSnapshot   `json:"weather"`
	Adjustment WeatherAdjustment `json:"adjustment"`
	Trend      WeatherTrend      `json:"trend"`
	Season     Season            `json:"season"`

	Tank TankDecision `json:"tank"`

	EstimatedSavings float64 `json:"estimated_savings"`
}
