package model

import "time"

// ComfortBand is the acceptable indoor temperature range for the active
// occupancy mode.
type ComfortBand struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// ZoneState mirrors device-reported zone values plus the engine-owned
// last-applied target used for deadband comparisons.
type ZoneState struct {
	IndoorTemp     float64     `json:"indoor_temp"`
	OutdoorTemp    float64     `json:"outdoor_temp"`
	TargetTemp     float64     `json:"target_temp"`     // last applied
	TargetOriginal float64     `json:"target_original"` // pre-adjustment baseline
	Comfort        ComfortBand `json:"comfort"`
	Deadband       float64     `json:"deadband"`
	StepSize       float64     `json:"step_size"`
	LastChange     time.Time   `json:"last_change"`
}

// TankState mirrors the hot-water tank plus the engine-owned last-applied
// target.
type TankState struct {
	CurrentTemp float64   `json:"current_temp"`
	TargetTemp  float64   `json:"target_temp"`
	Deadband    float64   `json:"deadband"`
	StepSize    float64   `json:"step_size"`
	LastChange  time.Time `json:"last_change"`
}

// TankSample is one observation of tank temperature and hot-water energy,
// used to learn the usage profile.
type TankSample struct {
	Time          time.Time `json:"time" db:"sample_time"`
	TankTemp      float64   `json:"tank_temp" db:"tank_temp"`
	TargetTemp    float64   `json:"target_temp" db:"target_temp"`
	EnergyKWh     float64   `json:"energy_kwh" db:"energy_kwh"` // consumed since previous sample
	HeatingActive bool      `json:"heating_active" db:"heating_active"`
}
