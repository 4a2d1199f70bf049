package weather

import (
	"fmt"
	"math"
	"time"

	"HeatPilot/internal/model"
)

const (
	// minorDelta is the forecast temperature change below which the trend is
	// considered stable.
	minorDelta = 1.0
	// maxOffset bounds the corrective offset in either direction.
	maxOffset = 0.7
	// offsetGain converts forecast delta into a setpoint correction.
	offsetGain = 0.15
	// lookahead is how far into the forecast the trend is measured.
	lookahead = 6 * time.Hour
	// cloudVeto is the opposing cloud-cover change (percentage points) that
	// stops a temperature trend from being trusted.
	cloudVeto = 25.0
)

// ForecastPoint is one hourly step of the short-range forecast.
type ForecastPoint struct {
	Time       time.Time `json:"time"`
	Temp       float64   `json:"temp"`
	CloudCover float64   `json:"cloud_cover"`
	WindSpeed  float64   `json:"wind_speed"`
	Symbol     string    `json:"symbol"`
}

// Forecast is the provider's short-range window.
type Forecast struct {
	Current model.WeatherSnapshot `json:"current"`
	Hourly  []ForecastPoint       `json:"hourly"`
}

// Adjust derives the trend and a bounded corrective offset from the forecast.
// priceScale in (0,1] shrinks the offset when the contemporaneous price is
// expensive, favoring cost over anticipatory comfort.
func Adjust(fc Forecast, now time.Time, priceScale float64) (model.WeatherAdjustment, model.WeatherTrend) {
	stable := model.WeatherTrend{Direction: model.TrendStable, Detail: "outdoor temperature stable"}
	none := model.WeatherAdjustment{}

	ahead, ok := pointNear(fc.Hourly, now.Add(lookahead))
	if !ok {
		return none, stable
	}

	delta := ahead.Temp - fc.Current.OutdoorTemp
	if math.Abs(delta) < minorDelta {
		return none, stable
	}

	cloudDelta := ahead.CloudCover - fc.Current.CloudCover
	if delta > 0 && cloudDelta > cloudVeto {
		// Skies closing in while temperature nominally rises; don't trust it.
		return none, model.WeatherTrend{Direction: model.TrendStable, Detail: "warming not corroborated by cloud cover"}
	}
	if delta < 0 && cloudDelta < -cloudVeto {
		return none, model.WeatherTrend{Direction: model.TrendStable, Detail: "cooling not corroborated by cloud cover"}
	}

	if priceScale <= 0 || priceScale > 1 {
		priceScale = 1
	}

	// Negative when warming (preempt overheating), positive when cooling.
	offset := clamp(-delta*offsetGain, -maxOffset, maxOffset) * priceScale

	trend := model.WeatherTrend{Direction: model.TrendWarming}
	verb := "rising"
	if delta < 0 {
		trend.Direction = model.TrendCooling
		verb = "falling"
	}
	trend.Detail = fmt.Sprintf("outdoor temp %s %.1f°C over next %dh", verb, math.Abs(delta), int(lookahead.Hours()))

	adj := model.WeatherAdjustment{
		Offset: offset,
		Reason: fmt.Sprintf("weather %s: %+.2f°C offset", trend.Direction, offset),
	}
	return adj, trend
}

// pointNear returns the forecast point closest to the wanted time, requiring
// it to be within one hour of it.
func pointNear(points []ForecastPoint, want time.Time) (ForecastPoint, bool) {
	var best ForecastPoint
	bestDiff := time.Duration(math.MaxInt64)
	for _, p := range points {
		d := p.Time.Sub(want)
		if d < 0 {
			d = -d
		}
		if d < bestDiff {
			bestDiff = d
			best = p
		}
	}
	if bestDiff > time.Hour {
		return ForecastPoint{}, false
	}
	return best, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
