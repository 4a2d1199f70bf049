package optimizer

import (
	"fmt"
	"math"
	"time"
)

// DefaultLockout is the setpoint change cool-down that protects the
// compressor from rapid cycling.
const DefaultLockout = 10 * time.Minute

// GateOutcome is the anti-oscillation gate verdict for one candidate target.
type GateOutcome struct {
	Apply  bool
	Reason string
}

// evaluateGate runs the anti-oscillation rules in order, first match wins:
// an exact repeat of a recent target, a difference below the deadband, the
// change lockout, and finally apply.
func evaluateGate(candidate, lastApplied, deadband float64, lastChange, now time.Time, lockout time.Duration) GateOutcome {
	diff := math.Abs(candidate - lastApplied)
	inLockout := !lastChange.IsZero() && now.Sub(lastChange) < lockout

	if diff == 0 && inLockout {
		return GateOutcome{Apply: false, Reason: "Duplicate target – already applied recently"}
	}
	if diff < deadband {
		return GateOutcome{
			Apply:  false,
			Reason: fmt.Sprintf("Temperature difference %.2f°C below deadband %.2f°C", diff, deadband),
		}
	}
	if inLockout {
		return GateOutcome{
			Apply:  false,
			Reason: fmt.Sprintf("Setpoint change lockout (%s) to prevent cycling", lockout),
		}
	}
	return GateOutcome{Apply: true}
}

// RoundStep rounds value to the nearest step multiple. Ties round in the
// direction of the adjustment sign so small beneficial moves are not
// systematically discarded. A value already on the grid is returned as is.
func RoundStep(value, step, direction float64) float64 {
	if step <= 0 {
		return value
	}
	q := value / step
	var r float64
	if direction >= 0 {
		r = math.Floor(q + 0.5)
	} else {
		r = math.Ceil(q - 0.5)
	}
	return r * step
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
