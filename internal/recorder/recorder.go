package recorder

import (
	"time"

	"HeatPilot/internal/model"
	"HeatPilot/internal/thermal"
)

// CalibrationEvent records one thermal recalibration cycle.
type CalibrationEvent struct {
	At     time.Time
	Result thermal.CalibrationResult
	K      float64
	S      float64
}

// TuningEvent records one adaptive parameter tuning cycle.
type TuningEvent struct {
	At             time.Time
	Applied        bool
	LearningCycles int
	Confidence     float64
	Decisions      int
}

// Recorder persists the decision history and slow-cycle events for audit and
// for the tuner's training window.
type Recorder interface {
	RecordDecision(d *model.OptimizationDecision) error
	RecordCalibration(evt *CalibrationEvent) error
	RecordTuning(evt *TuningEvent) error
	RecordTankSample(s *model.TankSample) error

	Decisions(since time.Time) ([]model.OptimizationDecision, error)
	TankSamples(since time.Time) ([]model.TankSample, error)

	Close() error
}
