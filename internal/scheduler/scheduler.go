package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"HeatPilot/internal/config"
	"HeatPilot/internal/engine"
)

// Scheduler drives the engine's fast tick and the two slow learning cycles
// on cron schedules with seconds precision.
type Scheduler struct {
	cron   *cron.Cron
	engine *engine.Engine
	cfg    *config.Config
}

// New creates a scheduler bound to the engine.
func New(cfg *config.Config, eng *engine.Engine) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		engine: eng,
		cfg:    cfg,
	}
}

// Start registers the cron jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Schedule.TickCron, func() {
		s.RunTickNow()
	}); err != nil {
		return fmt.Errorf("add tick job: %w", err)
	}

	if _, err := s.cron.AddFunc(s.cfg.Schedule.CalibrationCron, func() {
		log.Println("[INFO] starting thermal calibration cycle...")
		s.engine.RunCalibrationCycle(time.Now())
	}); err != nil {
		return fmt.Errorf("add calibration job: %w", err)
	}

	if _, err := s.cron.AddFunc(s.cfg.Schedule.TuningCron, func() {
		log.Println("[INFO] starting adaptive tuning cycle...")
		s.engine.RunTuningCycle(time.Now())
	}); err != nil {
		return fmt.Errorf("add tuning job: %w", err)
	}

	s.cron.Start()
	log.Printf("[INFO] scheduler started: tick %q, calibration %q, tuning %q",
		s.cfg.Schedule.TickCron, s.cfg.Schedule.CalibrationCron, s.cfg.Schedule.TuningCron)
	return nil
}

// RunTickNow executes one optimization tick immediately.
func (s *Scheduler) RunTickNow() {
	log.Println("[INFO] starting optimization tick...")
	d := s.engine.RunTick(context.Background(), time.Now())
	log.Printf("[INFO] tick complete: action=%s target=%.1f°C reason=%q", d.Action, d.TargetTemp, d.Reason)
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("[INFO] scheduler stopped")
}
