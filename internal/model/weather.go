package model

// WeatherSnapshot holds current outdoor conditions.
type WeatherSnapshot struct {
	OutdoorTemp float64 `json:"outdoor_temp"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"` // m/s
	CloudCover  float64 `json:"cloud_cover"`
	Symbol      string  `json:"symbol"`
}

// TrendDirection is the qualitative short-range temperature trend.
type TrendDirection string

const (
	TrendStable  TrendDirection = "stable"
	TrendWarming TrendDirection = "warming"
	TrendCooling TrendDirection = "cooling"
)

// WeatherTrend describes the forecast trend over the next hours.
type WeatherTrend struct {
	Direction TrendDirection `json:"direction"`
	Detail    string         `json:"detail"`
}

// WeatherAdjustment is a small signed setpoint correction derived from the
// forecast. Offset is zero whenever the trend is stable.
type WeatherAdjustment struct {
	Offset float64 `json:"offset"` // °C
	Reason string  `json:"reason"`
}
