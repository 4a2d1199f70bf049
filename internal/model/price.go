package model

import "time"

// PriceLevel categorizes the current hour's price within the rolling window.
type PriceLevel string

const (
	PriceVeryCheap     PriceLevel = "VERY_CHEAP"
	PriceCheap         PriceLevel = "CHEAP"
	PriceNormal        PriceLevel = "NORMAL"
	PriceExpensive     PriceLevel = "EXPENSIVE"
	PriceVeryExpensive PriceLevel = "VERY_EXPENSIVE"
)

// Expensive reports whether the level is in the expensive half.
func (l PriceLevel) Expensive() bool {
	return l == PriceExpensive || l == PriceVeryExpensive
}

// Cheap reports whether the level is in the cheap half.
func (l PriceLevel) Cheap() bool {
	return l == PriceVeryCheap || l == PriceCheap
}

// HourPrice is a single hour of the electricity price series.
type HourPrice struct {
	Hour  time.Time `json:"hour"`
	Price float64   `json:"price"`
}

// PriceSnapshot summarizes the rolling price window for one tick.
type PriceSnapshot struct {
	Current    float64    `json:"current"`
	Average    float64    `json:"average"`
	Min        float64    `json:"min"`
	Max        float64    `json:"max"`
	NextHour   float64    `json:"next_hour"`
	Level      PriceLevel `json:"level"`
	Percentile float64    `json:"percentile"` // 0-100
}
