package optimizer

import (
	"testing"
	"time"

	"HeatPilot/internal/model"
)

func TestSeasonOf(t *testing.T) {
	stockholm := 59.3
	madrid := 40.4
	melbourne := -37.8

	cases := []struct {
		month    time.Month
		latitude float64
		want     model.Season
	}{
		{time.January, madrid, model.SeasonWinter},
		{time.July, madrid, model.SeasonSummer},
		{time.April, madrid, model.SeasonTransition},
		// High latitude stretches winter into November and March.
		{time.November, stockholm, model.SeasonWinter},
		{time.March, stockholm, model.SeasonWinter},
		{time.November, madrid, model.SeasonTransition},
		// Southern hemisphere is shifted by six months.
		{time.July, melbourne, model.SeasonWinter},
		{time.January, melbourne, model.SeasonSummer},
	}
	for _, c := range cases {
		d := time.Date(2026, c.month, 15, 12, 0, 0, 0, time.UTC)
		if got := SeasonOf(d, c.latitude); got != c.want {
			t.Errorf("SeasonOf(%s, %.1f) = %s, want %s", c.month, c.latitude, got, c.want)
		}
	}
}
