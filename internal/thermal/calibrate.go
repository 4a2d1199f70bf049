package thermal

import (
	"math"
	"time"

	"HeatPilot/internal/model"
)

const (
	// minObservations is how many valid drift observations a calibration
	// cycle needs before it will touch the model.
	minObservations = 6
	// maxKStep bounds the per-cycle movement of K to keep recalibration from
	// oscillating.
	maxKStep = 0.05
	// kGain converts mean residual bias into a K adjustment.
	kGain = 0.1
	// residualScale is the residual (°C/h) at which confidence reaches zero.
	residualScale = 1.0
)

// Observation pairs one predicted drift with what was actually measured.
type Observation struct {
	At        time.Time `json:"at"`
	Predicted float64   `json:"predicted"` // °C/h
	Observed  float64   `json:"observed"`  // °C/h
}

// CalibrationResult reports what a recalibration cycle did.
type CalibrationResult struct {
	Applied      bool    `json:"applied"`
	Observations int     `json:"observations"`
	MeanResidual float64 `json:"mean_residual"`
	Confidence   float64 `json:"confidence"`
	Note         string  `json:"note"`
}

// Recalibrate adjusts K/S and confidence from the accumulated observations.
// It computes into a staged copy and returns the input model untouched unless
// the staged result validates, so a degenerate window can never corrupt the
// live model.
func Recalibrate(m model.ThermalModel, obs []Observation, now time.Time) (model.ThermalModel, CalibrationResult) {
	valid := obs[:0:0]
	for _, o := range obs {
		if !math.IsNaN(o.Predicted) && !math.IsNaN(o.Observed) &&
			math.Abs(o.Predicted) < 10 && math.Abs(o.Observed) < 10 {
			valid = append(valid, o)
		}
	}

	if len(valid) < minObservations {
		return m, CalibrationResult{
			Applied:      false,
			Observations: len(valid),
			Confidence:   m.Confidence,
			Note:         "insufficient data",
		}
	}

	var bias, absErr float64
	for _, o := range valid {
		r := o.Observed - o.Predicted
		bias += r
		absErr += math.Abs(r)
	}
	n := float64(len(valid))
	bias /= n
	absErr /= n

	confidence := 1 - absErr/residualScale
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	// Persistent positive bias means the building responds faster than priced
	// in, so the balance can lean further toward price; negative bias leans
	// back toward comfort.
	step := bias * kGain
	if step > maxKStep {
		step = maxKStep
	}
	if step < -maxKStep {
		step = -maxKStep
	}

	staged := m
	staged.K = clampK(m.K + step)
	staged.S = 1 - staged.K
	staged.Confidence = confidence
	staged.LastUpdated = now

	if !staged.Valid() {
		return m, CalibrationResult{
			Applied:      false,
			Observations: len(valid),
			MeanResidual: absErr,
			Confidence:   m.Confidence,
			Note:         "staged model out of range, keeping previous",
		}
	}

	return staged, CalibrationResult{
		Applied:      true,
		Observations: len(valid),
		MeanResidual: absErr,
		Confidence:   confidence,
		Note:         "recalibrated",
	}
}

func clampK(k float64) float64 {
	if k < 0.1 {
		return 0.1
	}
	if k > 0.9 {
		return 0.9
	}
	return k
}
