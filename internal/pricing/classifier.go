package pricing

import (
	"math"
	"time"

	"HeatPilot/internal/model"
)

// minWindowPoints is the smallest window the classifier will rank against.
// Below this the snapshot falls back to NORMAL/50 instead of failing the tick.
const minWindowPoints = 4

// Level breakpoints on the percentile rank, quintile-like.
const (
	veryCheapMax = 12.5
	cheapMax     = 37.5
	normalMax    = 62.5
	expensiveMax = 87.5
)

// LevelForPercentile maps a 0-100 percentile rank to a price level.
func LevelForPercentile(p float64) model.PriceLevel {
	switch {
	case p <= veryCheapMax:
		return model.PriceVeryCheap
	case p <= cheapMax:
		return model.PriceCheap
	case p <= normalMax:
		return model.PriceNormal
	case p <= expensiveMax:
		return model.PriceExpensive
	default:
		return model.PriceVeryExpensive
	}
}

// Classify builds a PriceSnapshot from the rolling price window. The current
// hour is located by now; ties in the percentile rank are broken by insertion
// order.
func Classify(series []model.HourPrice, now time.Time) model.PriceSnapshot {
	snap := model.PriceSnapshot{Level: model.PriceNormal, Percentile: 50}
	if len(series) == 0 {
		return snap
	}

	currentIdx := indexForHour(series, now)
	snap.Current = series[currentIdx].Price
	if currentIdx+1 < len(series) {
		snap.NextHour = series[currentIdx+1].Price
	} else {
		snap.NextHour = snap.Current
	}

	sum := 0.0
	snap.Min = math.Inf(1)
	snap.Max = math.Inf(-1)
	for _, hp := range series {
		sum += hp.Price
		if hp.Price < snap.Min {
			snap.Min = hp.Price
		}
		if hp.Price > snap.Max {
			snap.Max = hp.Price
		}
	}
	snap.Average = sum / float64(len(series))

	if len(series) < minWindowPoints {
		// Too thin to rank reliably; keep the safe NORMAL/50 default.
		return snap
	}

	below := 0
	for i, hp := range series {
		if hp.Price < snap.Current || (hp.Price == snap.Current && i < currentIdx) {
			below++
		}
	}
	snap.Percentile = 100 * float64(below) / float64(len(series)-1)
	if snap.Percentile > 100 {
		snap.Percentile = 100
	}
	snap.Level = LevelForPercentile(snap.Percentile)
	return snap
}

// ExpensiveHoursAhead counts how many consecutive upcoming hours, starting at
// now, rank in the expensive part of the window. Used to size coasting.
func ExpensiveHoursAhead(series []model.HourPrice, now time.Time) float64 {
	if len(series) < minWindowPoints {
		return 0
	}
	threshold := percentileValue(series, normalMax)
	hours := 0.0
	for i := indexForHour(series, now); i < len(series); i++ {
		if series[i].Price <= threshold {
			break
		}
		hours++
	}
	return hours
}

// indexForHour returns the index of the hour containing now, or the last
// index when now is past the window end.
func indexForHour(series []model.HourPrice, now time.Time) int {
	for i := len(series) - 1; i >= 0; i-- {
		if !series[i].Hour.After(now) {
			return i
		}
	}
	return 0
}

// percentileValue returns the price at the given percentile of the window.
func percentileValue(series []model.HourPrice, pct float64) float64 {
	prices := make([]float64, len(series))
	for i, hp := range series {
		prices[i] = hp.Price
	}
	// insertion sort, windows are at most ~48 points
	for i := 1; i < len(prices); i++ {
		for j := i; j > 0 && prices[j] < prices[j-1]; j-- {
			prices[j], prices[j-1] = prices[j-1], prices[j]
		}
	}
	idx := int(pct / 100 * float64(len(prices)-1))
	return prices[idx]
}
