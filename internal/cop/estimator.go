package cop

import "fmt"

// Mode selects the operating point the estimate is for.
type Mode string

const (
	ModeHeating  Mode = "heating"
	ModeHotWater Mode = "hot_water"
)

const (
	maxCOP = 5.5
	minCOP = 1.2
	// copSlope is the efficiency loss per °C of lift between the heat source
	// (outdoor air) and the flow temperature.
	copSlope = 0.09
	// flowOffsetHeating approximates the flow temperature above the zone
	// target for radiator/floor circuits.
	flowOffsetHeating = 12.0
)

// Estimate is the efficiency score for one operating point.
type Estimate struct {
	COP        float64
	Efficiency float64 // 0-1, COP position between minCOP and maxCOP
	Mode       Mode
}

// Estimate computes the COP for the candidate operating point. Pure function
// of conditions; bonus thresholds live in the adaptive parameters so callers
// decide what counts as good.
func EstimateFor(outdoorTemp, targetTemp float64, mode Mode) Estimate {
	flow := targetTemp
	if mode == ModeHeating {
		flow = targetTemp + flowOffsetHeating
	}
	lift := flow - outdoorTemp
	if lift < 0 {
		lift = 0
	}
	c := maxCOP - copSlope*lift
	if c < minCOP {
		c = minCOP
	}
	if c > maxCOP {
		c = maxCOP
	}
	return Estimate{
		COP:        c,
		Efficiency: (c - minCOP) / (maxCOP - minCOP),
		Mode:       mode,
	}
}

// Describe renders the user-facing efficiency string.
func (e Estimate) Describe() string {
	label := "Heating"
	if e.Mode == ModeHotWater {
		label = "Hot water"
	}
	return fmt.Sprintf("%s COP %.2f (%.0f%% efficiency)", label, e.COP, e.Efficiency*100)
}
