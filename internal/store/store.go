package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"HeatPilot/internal/model"
	"HeatPilot/internal/usage"
)

// Store persists the long-lived learned state as JSON files in one
// directory. Writes go through a temp file and rename so a crash mid-save
// never leaves a torn file behind.
type Store struct {
	dir string
}

// New creates a store, making the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

const (
	thermalFile = "thermal_model.json"
	usageFile   = "usage_state.json"
	paramsFile  = "adaptive_params.json"
)

// LoadThermalModel reads the persisted model, or returns the default when no
// file exists yet. An invalid persisted model is replaced by the default with
// confidence zeroed, never returned as is.
func (s *Store) LoadThermalModel() (model.ThermalModel, error) {
	var m model.ThermalModel
	ok, err := s.load(thermalFile, &m)
	if err != nil {
		return model.DefaultThermalModel(), err
	}
	if !ok {
		return model.DefaultThermalModel(), nil
	}
	if !m.Valid() {
		d := model.DefaultThermalModel()
		d.Confidence = 0
		return d, nil
	}
	return m, nil
}

// SaveThermalModel persists the model, stamping LastUpdated.
func (s *Store) SaveThermalModel(m model.ThermalModel) error {
	if m.LastUpdated.IsZero() {
		m.LastUpdated = time.Now()
	}
	return s.save(thermalFile, m)
}

// LoadUsageState reads the persisted learner accumulators, zero when absent.
func (s *Store) LoadUsageState() (usage.State, error) {
	var st usage.State
	if _, err := s.load(usageFile, &st); err != nil {
		return usage.State{}, err
	}
	return st, nil
}

// SaveUsageState persists the learner accumulators.
func (s *Store) SaveUsageState(st usage.State) error {
	return s.save(usageFile, st)
}

// LoadAdaptiveParameters reads the persisted parameters, or the defaults when
// no file exists yet.
func (s *Store) LoadAdaptiveParameters() (model.AdaptiveParameters, error) {
	var p model.AdaptiveParameters
	ok, err := s.load(paramsFile, &p)
	if err != nil || !ok {
		return model.DefaultAdaptiveParameters(), err
	}
	return p, nil
}

// SaveAdaptiveParameters persists the parameters.
func (s *Store) SaveAdaptiveParameters(p model.AdaptiveParameters) error {
	return s.save(paramsFile, p)
}

// load reads name into v; the bool reports whether the file existed.
func (s *Store) load(name string, v any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", name, err)
	}
	return true, nil
}

// save writes v to name atomically.
func (s *Store) save(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
