package recorder

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"HeatPilot/internal/model"
)

// SQLiteRecorder persists the decision history to a SQLite database.
type SQLiteRecorder struct {
	db *sqlx.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs
// migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for better concurrent read performance (status endpoint and
	// Grafana read while the engine writes).
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS decisions (
			id                TEXT PRIMARY KEY,
			timestamp         INTEGER NOT NULL,
			device_id         TEXT,
			action            TEXT,
			reason            TEXT,
			target_temp       REAL,
			target_original   REAL,
			indoor_temp       REAL,
			outdoor_temp      REAL,
			price_current     REAL,
			price_average     REAL,
			price_min         REAL,
			price_max         REAL,
			price_next_hour   REAL,
			price_level       TEXT,
			price_percentile  REAL,
			season            TEXT,
			trend_direction   TEXT,
			adjustment_offset REAL,
			tank_from         REAL,
			tank_to           REAL,
			tank_reason       TEXT,
			tank_success      INTEGER,
			tank_changed      INTEGER,
			estimated_savings REAL,
			factors           TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_ts ON decisions(timestamp)`,

		`CREATE TABLE IF NOT EXISTS calibrations (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			applied       INTEGER,
			observations  INTEGER,
			mean_residual REAL,
			confidence    REAL,
			note          TEXT,
			k             REAL,
			s             REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_calibrations_ts ON calibrations(timestamp)`,

		`CREATE TABLE IF NOT EXISTS tuning_cycles (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp       INTEGER NOT NULL,
			applied         INTEGER,
			learning_cycles INTEGER,
			confidence      REAL,
			decisions       INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tuning_ts ON tuning_cycles(timestamp)`,

		`CREATE TABLE IF NOT EXISTS tank_samples (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			sample_time    INTEGER NOT NULL,
			tank_temp      REAL,
			target_temp    REAL,
			energy_kwh     REAL,
			heating_active INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tank_samples_ts ON tank_samples(sample_time)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// decisionRow is the flat SQL shape of one decision.
type decisionRow struct {
	ID               string  `db:"id"`
	Timestamp        int64   `db:"timestamp"`
	DeviceID         string  `db:"device_id"`
	Action           string  `db:"action"`
	Reason           string  `db:"reason"`
	TargetTemp       float64 `db:"target_temp"`
	TargetOriginal   float64 `db:"target_original"`
	IndoorTemp       float64 `db:"indoor_temp"`
	OutdoorTemp      float64 `db:"outdoor_temp"`
	PriceCurrent     float64 `db:"price_current"`
	PriceAverage     float64 `db:"price_average"`
	PriceMin         float64 `db:"price_min"`
	PriceMax         float64 `db:"price_max"`
	PriceNextHour    float64 `db:"price_next_hour"`
	PriceLevel       string  `db:"price_level"`
	PricePercentile  float64 `db:"price_percentile"`
	Season           string  `db:"season"`
	TrendDirection   string  `db:"trend_direction"`
	AdjustmentOffset float64 `db:"adjustment_offset"`
	TankFrom         float64 `db:"tank_from"`
	TankTo           float64 `db:"tank_to"`
	TankReason       string  `db:"tank_reason"`
	TankSuccess      bool    `db:"tank_success"`
	TankChanged      bool    `db:"tank_changed"`
	EstimatedSavings float64 `db:"estimated_savings"`
	Factors          string  `db:"factors"`
}

func (r *SQLiteRecorder) RecordDecision(d *model.OptimizationDecision) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	factors, err := json.Marshal(d.Factors)
	if err != nil {
		return fmt.Errorf("marshal factors: %w", err)
	}

	row := decisionRow{
		ID:               d.ID,
		Timestamp:        d.Timestamp.Unix(),
		DeviceID:         d.DeviceID,
		Action:           string(d.Action),
		Reason:           d.Reason,
		TargetTemp:       d.TargetTemp,
		TargetOriginal:   d.TargetOriginal,
		IndoorTemp:       d.IndoorTemp,
		OutdoorTemp:      d.OutdoorTemp,
		PriceCurrent:     d.Price.Current,
		PriceAverage:     d.Price.Average,
		PriceMin:         d.Price.Min,
		PriceMax:         d.Price.Max,
		PriceNextHour:    d.Price.NextHour,
		PriceLevel:       string(d.Price.Level),
		PricePercentile:  d.Price.Percentile,
		Season:           string(d.Season),
		TrendDirection:   string(d.Trend.Direction),
		AdjustmentOffset: d.Adjustment.Offset,
		TankFrom:         d.Tank.FromTemp,
		TankTo:           d.Tank.ToTemp,
		TankReason:       d.Tank.Reason,
		TankSuccess:      d.Tank.Success,
		TankChanged:      d.Tank.Changed,
		EstimatedSavings: d.EstimatedSavings,
		Factors:          string(factors),
	}

	_, err = r.db.NamedExec(`INSERT INTO decisions
		(id, timestamp, device_id, action, reason,
		 target_temp, target_original, indoor_temp, outdoor_temp,
		 price_current, price_average, price_min, price_max, price_next_hour,
		 price_level, price_percentile, season, trend_direction, adjustment_offset,
		 tank_from, tank_to, tank_reason, tank_success, tank_changed,
		 estimated_savings, factors)
		VALUES
		(:id, :timestamp, :device_id, :action, :reason,
		 :target_temp, :target_original, :indoor_temp, :outdoor_temp,
		 :price_current, :price_average, :price_min, :price_max, :price_next_hour,
		 :price_level, :price_percentile, :season, :trend_direction, :adjustment_offset,
		 :tank_from, :tank_to, :tank_reason, :tank_success, :tank_changed,
		 :estimated_savings, :factors)`, row)
	return err
}

func (r *SQLiteRecorder) RecordCalibration(evt *CalibrationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO calibrations
		(timestamp, applied, observations, mean_residual, confidence, note, k, s)
		VALUES (?,?,?,?,?,?,?,?)`,
		evt.At.Unix(), evt.Result.Applied, evt.Result.Observations,
		evt.Result.MeanResidual, evt.Result.Confidence, evt.Result.Note,
		evt.K, evt.S,
	)
	return err
}

func (r *SQLiteRecorder) RecordTuning(evt *TuningEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO tuning_cycles
		(timestamp, applied, learning_cycles, confidence, decisions)
		VALUES (?,?,?,?,?)`,
		evt.At.Unix(), evt.Applied, evt.LearningCycles, evt.Confidence, evt.Decisions,
	)
	return err
}

func (r *SQLiteRecorder) RecordTankSample(s *model.TankSample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO tank_samples
		(sample_time, tank_temp, target_temp, energy_kwh, heating_active)
		VALUES (?,?,?,?,?)`,
		s.Time.Unix(), s.TankTemp, s.TargetTemp, s.EnergyKWh, s.HeatingActive,
	)
	return err
}

func (r *SQLiteRecorder) Decisions(since time.Time) ([]model.OptimizationDecision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rows []decisionRow
	err := r.db.Select(&rows, `SELECT * FROM decisions WHERE timestamp >= ? ORDER BY timestamp ASC`, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}

	out := make([]model.OptimizationDecision, 0, len(rows))
	for _, row := range rows {
		d := model.OptimizationDecision{
			ID:             row.ID,
			Timestamp:      time.Unix(row.Timestamp, 0),
			DeviceID:       row.DeviceID,
			Action:         model.Action(row.Action),
			Reason:         row.Reason,
			TargetTemp:     row.TargetTemp,
			TargetOriginal: row.TargetOriginal,
			IndoorTemp:     row.IndoorTemp,
			OutdoorTemp:    row.OutdoorTemp,
			Price: model.PriceSnapshot{
				Current:    row.PriceCurrent,
				Average:    row.PriceAverage,
				Min:        row.PriceMin,
				Max:        row.PriceMax,
				NextHour:   row.PriceNextHour,
				Level:      model.PriceLevel(row.PriceLevel),
				Percentile: row.PricePercentile,
			},
			Season:     model.Season(row.Season),
			Trend:      model.WeatherTrend{Direction: model.TrendDirection(row.TrendDirection)},
			Adjustment: model.WeatherAdjustment{Offset: row.AdjustmentOffset},
			Tank: model.TankDecision{
				FromTemp: row.TankFrom,
				ToTemp:   row.TankTo,
				Reason:   row.TankReason,
				Success:  row.TankSuccess,
				Changed:  row.TankChanged,
			},
			EstimatedSavings: row.EstimatedSavings,
		}
		if row.Factors != "" {
			if err := json.Unmarshal([]byte(row.Factors), &d.Factors); err != nil {
				log.Printf("[WARN] decode factors for decision %s: %v", row.ID, err)
			}
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *SQLiteRecorder) TankSamples(since time.Time) ([]model.TankSample, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var rows []struct {
		SampleTime    int64   `db:"sample_time"`
		TankTemp      float64 `db:"tank_temp"`
		TargetTemp    float64 `db:"target_temp"`
		EnergyKWh     float64 `db:"energy_kwh"`
		HeatingActive bool    `db:"heating_active"`
	}
	err := r.db.Select(&rows, `SELECT sample_time, tank_temp, target_temp, energy_kwh, heating_active
		FROM tank_samples WHERE sample_time >= ? ORDER BY sample_time ASC`, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("query tank samples: %w", err)
	}

	out := make([]model.TankSample, len(rows))
	for i, row := range rows {
		out[i] = model.TankSample{
			Time:          time.Unix(row.SampleTime, 0),
			TankTemp:      row.TankTemp,
			TargetTemp:    row.TargetTemp,
			EnergyKWh:     row.EnergyKWh,
			HeatingActive: row.HeatingActive,
		}
	}
	return out, nil
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
