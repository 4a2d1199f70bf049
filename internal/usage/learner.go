package usage

import (
	"math"
	"sync"
	"time"

	"HeatPilot/internal/model"
)

const (
	// noiseFloor is the minimum energy delta (kWh) that counts as a draw
	// event rather than standing loss.
	noiseFloor = 0.05
	// halfLife controls the exponential decay so recent weeks dominate.
	halfLife = 14 * 24 * time.Hour
	// priorWeight pulls sparse cells toward the uniform 1.0 multiplier.
	priorWeight = 0.5
	// confidenceKnee is the decayed event count at which confidence is 50.
	confidenceKnee = 40.0
	// MinUsableConfidence is the threshold below which consumers skip
	// usage-based adjustment and fall back to pure price control.
	MinUsableConfidence = 30.0
)

// State is the serializable learner internals, persisted across restarts.
type State struct {
	Cells     [7][24]float64 `json:"cells"`  // decayed energy-weighted draw
	Counts    [7][24]float64 `json:"counts"` // decayed event counts
	Events    float64        `json:"events"`
	LastDecay time.Time      `json:"last_decay"`
}

// Learner maintains the hot-water usage profile from tank samples.
// Concurrency-safe; the engine calls Record per tick and Profile per read.
type Learner struct {
	mu    sync.Mutex
	state State
}

// NewLearner returns an empty learner.
func NewLearner() *Learner {
	return &Learner{}
}

// NewLearnerFromState restores a learner from persisted state.
func NewLearnerFromState(s State) *Learner {
	return &Learner{state: s}
}

// Snapshot returns a copy of the internal state for persistence.
func (l *Learner) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Record folds one tank sample into the profile. Samples at or below the
// noise floor still advance the decay clock but add no draw weight.
func (l *Learner) Record(sample model.TankSample) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.decayTo(sample.Time)

	if sample.EnergyKWh < noiseFloor {
		return
	}
	wd := int(sample.Time.Weekday())
	h := sample.Time.Hour()
	l.state.Cells[wd][h] += sample.EnergyKWh
	l.state.Counts[wd][h]++
	l.state.Events++
}

func (l *Learner) decayTo(t time.Time) {
	if l.state.LastDecay.IsZero() {
		l.state.LastDecay = t
		return
	}
	dt := t.Sub(l.state.LastDecay)
	if dt <= 0 {
		return
	}
	f := math.Pow(0.5, dt.Hours()/halfLife.Hours())
	for d := 0; d < 7; d++ {
		for h := 0; h < 24; h++ {
			l.state.Cells[d][h] *= f
			l.state.Counts[d][h] *= f
		}
	}
	l.state.Events *= f
	l.state.LastDecay = t
}

// Profile rebuilds the normalized multiplier arrays and confidence from the
// current accumulators.
func (l *Learner) Profile() model.UsageProfile {
	l.mu.Lock()
	defer l.mu.Unlock()

	p := model.UniformUsageProfile()
	p.LastUpdated = l.state.LastDecay

	total := 0.0
	for d := 0; d < 7; d++ {
		for h := 0; h < 24; h++ {
			total += l.state.Cells[d][h]
		}
	}
	if total <= 0 {
		return p
	}
	cellMean := total / (7 * 24)

	for d := 0; d < 7; d++ {
		for h := 0; h < 24; h++ {
			// Sparse cells decay toward the uniform 1.0 multiplier.
			p.HourlyByDay[d][h] = (l.state.Cells[d][h] + priorWeight*cellMean) / (cellMean * (1 + priorWeight))
		}
	}

	for h := 0; h < 24; h++ {
		sum := 0.0
		for d := 0; d < 7; d++ {
			sum += p.HourlyByDay[d][h]
		}
		p.Hourly[h] = sum / 7
	}
	for d := 0; d < 7; d++ {
		sum := 0.0
		for h := 0; h < 24; h++ {
			sum += p.HourlyByDay[d][h]
		}
		p.Daily[d] = sum / 24
	}

	normalize(p.Hourly[:])
	normalize(p.Daily[:])

	p.Confidence = l.confidence()
	return p
}

// confidence rises with decayed event count and falls when the observed
// draw pattern is contradictory (high spread of per-cell counts against
// their weight).
func (l *Learner) confidence() float64 {
	base := 100 * l.state.Events / (l.state.Events + confidenceKnee)

	// Variance penalty: compare per-cell mean draw where we have events.
	var mean, m2, n float64
	for d := 0; d < 7; d++ {
		for h := 0; h < 24; h++ {
			if l.state.Counts[d][h] < 0.25 {
				continue
			}
			v := l.state.Cells[d][h] / l.state.Counts[d][h]
			n++
			delta := v - mean
			mean += delta / n
			m2 += delta * (v - mean)
		}
	}
	if n > 1 && mean > 0 {
		cv := math.Sqrt(m2/(n-1)) / mean
		penalty := cv / 4
		if penalty > 0.5 {
			penalty = 0.5
		}
		base *= 1 - penalty
	}
	return base
}

// normalize scales the slice to mean 1.0 in place.
func normalize(vals []float64) {
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	if sum <= 0 {
		return
	}
	mean := sum / float64(len(vals))
	for i := range vals {
		vals[i] /= mean
	}
}
