package model

import "time"

// ThermalModel holds the learned building response gains. Mutated only by the
// recalibration routine; everything else reads a copy.
type ThermalModel struct {
	HeatingRate   float64   `json:"heating_rate"`   // °C/h per °C of lift
	CoolingRate   float64   `json:"cooling_rate"`   // °C/h per °C indoor/outdoor delta
	OutdoorImpact float64   `json:"outdoor_impact"` // extra loss per °C below reference
	WindImpact    float64   `json:"wind_impact"`    // loss per m/s
	ThermalMass   float64   `json:"thermal_mass"`   // time constant, hours
	K             float64   `json:"k"`              // price/comfort balance, 0-1
	S             float64   `json:"s"`              // complement of K
	Confidence    float64   `json:"confidence"`     // 0-1
	LastUpdated   time.Time `json:"last_updated"`
}

// DefaultThermalModel returns conservative starting gains for an average
// insulated house before any calibration has run.
func DefaultThermalModel() ThermalModel {
	return ThermalModel{
		HeatingRate:   0.45,
		CoolingRate:   0.025,
		OutdoorImpact: 0.010,
		WindImpact:    0.005,
		ThermalMass:   6.0,
		K:             0.5,
		S:             0.5,
		Confidence:    0.3,
	}
}

// Valid reports whether the gains are inside their safe operating ranges.
func (m ThermalModel) Valid() bool {
	if m.HeatingRate <= 0 || m.HeatingRate > 5 {
		return false
	}
	if m.CoolingRate <= 0 || m.CoolingRate > 1 {
		return false
	}
	if m.OutdoorImpact < 0 || m.WindImpact < 0 || m.ThermalMass <= 0 {
		return false
	}
	if m.K < 0.1 || m.K > 0.9 {
		return false
	}
	if m.Confidence < 0 || m.Confidence > 1 {
		return false
	}
	return true
}
