package pricing

import (
	"testing"
	"time"

	"HeatPilot/internal/model"
)

func hourlySeries(start time.Time, prices []float64) []model.HourPrice {
	series := make([]model.HourPrice, len(prices))
	for i, p := range prices {
		series[i] = model.HourPrice{Hour: start.Add(time.Duration(i) * time.Hour), Price: p}
	}
	return series
}

func TestLevelForPercentile_Breakpoints(t *testing.T) {
	cases := []struct {
		pct  float64
		want model.PriceLevel
	}{
		{0, model.PriceVeryCheap},
		{12.5, model.PriceVeryCheap},
		{12.6, model.PriceCheap},
		{37.5, model.PriceCheap},
		{50, model.PriceNormal},
		{62.5, model.PriceNormal},
		{80, model.PriceExpensive},
		{87.5, model.PriceExpensive},
		{87.6, model.PriceVeryExpensive},
		{100, model.PriceVeryExpensive},
	}
	for _, c := range cases {
		if got := LevelForPercentile(c.pct); got != c.want {
			t.Errorf("LevelForPercentile(%.1f) = %s, want %s", c.pct, got, c.want)
		}
	}
}

func TestClassify_CheapestAndMostExpensiveHour(t *testing.T) {
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	series := hourlySeries(start, []float64{0.10, 0.20, 0.30, 0.40, 0.50, 0.60, 0.70, 0.80, 0.90})

	snap := Classify(series, start)
	if snap.Percentile != 0 {
		t.Errorf("cheapest hour percentile = %.1f, want 0", snap.Percentile)
	}
	if snap.Level != model.PriceVeryCheap {
		t.Errorf("cheapest hour level = %s, want VERY_CHEAP", snap.Level)
	}
	if snap.Current != 0.10 || snap.NextHour != 0.20 {
		t.Errorf("current/next = %.2f/%.2f, want 0.10/0.20", snap.Current, snap.NextHour)
	}

	snap = Classify(series, start.Add(8*time.Hour))
	if snap.Percentile != 100 {
		t.Errorf("most expensive hour percentile = %.1f, want 100", snap.Percentile)
	}
	if snap.Level != model.PriceVeryExpensive {
		t.Errorf("most expensive hour level = %s, want VERY_EXPENSIVE", snap.Level)
	}
	// Last hour has no successor; next repeats current.
	if snap.NextHour != snap.Current {
		t.Errorf("next at window end = %.2f, want %.2f", snap.NextHour, snap.Current)
	}
}

func TestClassify_WindowStats(t *testing.T) {
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	series := hourlySeries(start, []float64{0.50, 0.10, 0.90, 0.50})

	snap := Classify(series, start)
	if snap.Min != 0.10 || snap.Max != 0.90 {
		t.Errorf("min/max = %.2f/%.2f, want 0.10/0.90", snap.Min, snap.Max)
	}
	if snap.Average != 0.50 {
		t.Errorf("average = %.2f, want 0.50", snap.Average)
	}
}

func TestClassify_EqualPricesBreakTiesByInsertionOrder(t *testing.T) {
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	series := hourlySeries(start, []float64{0.40, 0.40, 0.40, 0.40, 0.40})

	first := Classify(series, start)
	if first.Percentile != 0 {
		t.Errorf("first equal hour percentile = %.1f, want 0", first.Percentile)
	}
	last := Classify(series, start.Add(4*time.Hour))
	if last.Percentile != 100 {
		t.Errorf("last equal hour percentile = %.1f, want 100", last.Percentile)
	}
}

func TestClassify_ThinWindowFallsBackToNormal(t *testing.T) {
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	series := hourlySeries(start, []float64{0.10, 5.00, 0.20})

	snap := Classify(series, start.Add(time.Hour))
	if snap.Level != model.PriceNormal {
		t.Errorf("thin window level = %s, want NORMAL", snap.Level)
	}
	if snap.Percentile != 50 {
		t.Errorf("thin window percentile = %.1f, want 50", snap.Percentile)
	}
	// Stats are still populated.
	if snap.Current != 5.00 || snap.Max != 5.00 {
		t.Errorf("thin window current/max = %.2f/%.2f, want 5.00/5.00", snap.Current, snap.Max)
	}
}

func TestClassify_EmptySeries(t *testing.T) {
	snap := Classify(nil, time.Now())
	if snap.Level != model.PriceNormal || snap.Percentile != 50 {
		t.Errorf("empty series = %s/p%.0f, want NORMAL/p50", snap.Level, snap.Percentile)
	}
}

func TestExpensiveHoursAhead(t *testing.T) {
	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	// Sorted: 0.10 0.10 0.20 0.30 0.40 0.50 0.80 0.90; p62.5 value is 0.40.
	series := hourlySeries(start, []float64{0.10, 0.20, 0.30, 0.40, 0.50, 0.90, 0.80, 0.10})

	got := ExpensiveHoursAhead(series, start.Add(5*time.Hour))
	if got != 2 {
		t.Errorf("ExpensiveHoursAhead from peak = %.0f, want 2", got)
	}

	if got := ExpensiveHoursAhead(series, start); got != 0 {
		t.Errorf("ExpensiveHoursAhead from cheap hour = %.0f, want 0", got)
	}

	if got := ExpensiveHoursAhead(series[:2], start); got != 0 {
		t.Errorf("ExpensiveHoursAhead on thin window = %.0f, want 0", got)
	}
}
