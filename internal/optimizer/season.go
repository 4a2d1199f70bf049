package optimizer

import (
	"math"
	"time"

	"HeatPilot/internal/model"
)

// SeasonOf derives the heating season from the date and site latitude.
// Southern-hemisphere sites are shifted by six months, and high latitudes get
// a longer winter since day length collapses earlier there.
func SeasonOf(t time.Time, latitude float64) model.Season {
	m := int(t.Month())
	if latitude < 0 {
		m = (m+5)%12 + 1
	}

	highLat := math.Abs(latitude) > 55

	switch m {
	case 12, 1, 2:
		return model.SeasonWinter
	case 11, 3:
		if highLat {
			return model.SeasonWinter
		}
		return model.SeasonTransition
	case 6, 7, 8:
		return model.SeasonSummer
	default:
		return model.SeasonTransition
	}
}
