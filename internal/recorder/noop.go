package recorder

import (
	"time"

	"HeatPilot/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordDecision(_ *model.OptimizationDecision) error { return nil }
func (n *NoopRecorder) RecordCalibration(_ *CalibrationEvent) error        { return nil }
func (n *NoopRecorder) RecordTuning(_ *TuningEvent) error                  { return nil }
func (n *NoopRecorder) RecordTankSample(_ *model.TankSample) error         { return nil }

func (n *NoopRecorder) Decisions(_ time.Time) ([]model.OptimizationDecision, error) {
	return nil, nil
}
func (n *NoopRecorder) TankSamples(_ time.Time) ([]model.TankSample, error) { return nil, nil }

func (n *NoopRecorder) Close() error { return nil }
