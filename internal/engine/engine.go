package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"HeatPilot/internal/config"
	"HeatPilot/internal/cop"
	"HeatPilot/internal/device"
	"HeatPilot/internal/metrics"
	"HeatPilot/internal/model"
	"HeatPilot/internal/optimizer"
	"HeatPilot/internal/pricefeed"
	"HeatPilot/internal/pricing"
	"HeatPilot/internal/recorder"
	"HeatPilot/internal/store"
	"HeatPilot/internal/thermal"
	"HeatPilot/internal/tuner"
	"HeatPilot/internal/usage"
	"HeatPilot/internal/weather"
)

// maxObservations bounds the in-memory drift observation window feeding the
// daily recalibration.
const maxObservations = 200

// minObservationGap is the shortest spacing between two ticks that still
// yields a usable drift observation.
const minObservationGap = 20 * time.Minute

// Engine is the heating and hot-water optimization core. One logical unit of
// work per tick; learned state is committed only under the slow-cycle lock.
type Engine struct {
	cfg      *config.Config
	device   device.Client
	prices   pricefeed.Provider
	forecast weather.Provider
	state    *store.Store
	rec      recorder.Recorder
	met      *metrics.Collector

	// deviceLocks serializes ticks per device; both optimizers read and then
	// write lastApplied/lastChange, and a concurrent tick would corrupt the
	// anti-oscillation gate.
	deviceLocks sync.Map

	// learnedMu guards the thermal model and adaptive parameters across the
	// slow cycles and the per-tick snapshot reads.
	learnedMu sync.Mutex
	thermal   model.ThermalModel
	params    model.AdaptiveParameters
	usage     *usage.Learner

	// mu guards the engine-owned fast state below.
	mu           sync.Mutex
	zone         model.ZoneState
	tank         model.TankState
	lastDecision *model.OptimizationDecision
	lastGoodTick time.Time
	staleTicks   int

	observations  []thermal.Observation
	prevIndoor    float64
	prevAt        time.Time
	prevPredicted float64
	havePrev      bool

	energyCounter float64
	haveEnergy    bool

	lastTuning time.Time
}

// New builds an engine, loading persisted learned state and warming the
// usage learner from stored tank samples.
func New(cfg *config.Config, dev device.Client, prices pricefeed.Provider, forecast weather.Provider,
	st *store.Store, rec recorder.Recorder, met *metrics.Collector) (*Engine, error) {

	tm, err := st.LoadThermalModel()
	if err != nil {
		return nil, fmt.Errorf("load thermal model: %w", err)
	}
	params, err := st.LoadAdaptiveParameters()
	if err != nil {
		return nil, fmt.Errorf("load adaptive parameters: %w", err)
	}
	us, err := st.LoadUsageState()
	if err != nil {
		return nil, fmt.Errorf("load usage state: %w", err)
	}
	learner := usage.NewLearnerFromState(us)

	// Warm the learner from history the persisted accumulators may predate.
	if samples, err := rec.TankSamples(time.Now().AddDate(0, 0, -30)); err != nil {
		log.Printf("[WARN] load tank samples: %v", err)
	} else {
		for _, s := range samples {
			if s.Time.After(us.LastDecay) {
				learner.Record(s)
			}
		}
	}

	e := &Engine{
		cfg:      cfg,
		device:   dev,
		prices:   prices,
		forecast: forecast,
		state:    st,
		rec:      rec,
		met:      met,
		thermal:  tm,
		params:   params,
		usage:    learner,
		zone: model.ZoneState{
			TargetOriginal: cfg.Zone.BaselineTarget,
			Deadband:       cfg.Zone.Deadband,
			StepSize:       cfg.Zone.StepSize,
		},
		tank: model.TankState{
			TargetTemp: cfg.Tank.BaselineTarget,
			Deadband:   cfg.Tank.Deadband,
			StepSize:   cfg.Tank.StepSize,
		},
	}
	e.met.ThermalConfidence.Set(tm.Confidence)
	e.met.LearningCycles.Set(float64(params.LearningCycles))
	return e, nil
}

func (e *Engine) lockDevice(deviceID string) *sync.Mutex {
	v, _ := e.deviceLocks.LoadOrStore(deviceID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// RunTick executes one optimization tick. It always produces exactly one
// decision record; every failure path degrades to a no_change decision
// instead of an error escaping.
func (e *Engine) RunTick(ctx context.Context, now time.Time) *model.OptimizationDecision {
	lock := e.lockDevice(e.cfg.Device.DeviceID)
	lock.Lock()
	defer lock.Unlock()

	start := time.Now()
	defer func() {
		e.met.TickDuration.Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, time.Duration(e.cfg.Engine.TickTimeoutSeconds)*time.Second)
	defer cancel()

	st, err := e.device.ReadState(ctx, e.cfg.Device.DeviceID)
	if err != nil {
		log.Printf("[ERROR] read device state: %v", err)
		return e.failTick(now, fmt.Sprintf("data unavailable: device state (%v)", err))
	}

	// Price and weather fetches are independent; run them concurrently.
	var (
		wg         sync.WaitGroup
		series     []model.HourPrice
		priceErr   error
		fc         *weather.Forecast
		weatherErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		from := now.Add(-time.Duration(e.cfg.Prices.WindowHours/2) * time.Hour)
		to := now.Add(time.Duration(e.cfg.Prices.WindowHours/2) * time.Hour)
		series, priceErr = e.prices.GetPriceWindow(ctx, e.cfg.Prices.Area, from, to)
	}()
	go func() {
		defer wg.Done()
		fc, weatherErr = e.forecast.GetForecast(ctx, e.cfg.Weather.Latitude, e.cfg.Weather.Longitude)
	}()
	wg.Wait()

	priceOK := priceErr == nil && len(series) > 0
	if !priceOK && priceErr != nil {
		log.Printf("[WARN] price fetch failed, degrading to NORMAL level: %v", priceErr)
		e.met.DataUnavailableTotal.Inc()
	}
	snap := pricing.Classify(series, now)

	var (
		adj   model.WeatherAdjustment
		trend = model.WeatherTrend{Direction: model.TrendStable}
		wsnap model.WeatherSnapshot
	)
	if weatherErr != nil || fc == nil {
		// Missing weather drops its factor; the tick proceeds price-only.
		log.Printf("[WARN] weather fetch failed, skipping weather factor: %v", weatherErr)
		e.met.DataUnavailableTotal.Inc()
		wsnap.OutdoorTemp = st.OutdoorTemp
	} else {
		wsnap = fc.Current
		adj, trend = weather.Adjust(*fc, now, priceScaleFor(snap.Level))
	}

	season := optimizer.SeasonOf(now, e.cfg.Weather.Latitude)

	e.learnedMu.Lock()
	tm := e.thermal
	params := e.params
	e.learnedMu.Unlock()
	profile := e.usage.Profile()
	e.met.UsageConfidence.Set(profile.Confidence)

	e.mu.Lock()
	zone := e.zone
	tank := e.tank
	e.mu.Unlock()

	zone.IndoorTemp = st.IndoorTemp
	zone.OutdoorTemp = st.OutdoorTemp
	zone.TargetOriginal = e.cfg.Zone.BaselineTarget
	zone.Comfort = e.comfortBand(st.Mode)
	if zone.TargetTemp == 0 {
		zone.TargetTemp = st.ZoneTarget
	}
	tank.CurrentTemp = st.TankTemp
	if tank.TargetTemp == 0 {
		tank.TargetTemp = st.TankTarget
	}

	lockout := time.Duration(e.cfg.Engine.LockoutMinutes) * time.Minute
	copEst := cop.EstimateFor(st.OutdoorTemp, zone.TargetOriginal, cop.ModeHeating)

	expensiveAhead := 0.0
	if priceOK {
		expensiveAhead = pricing.ExpensiveHoursAhead(series, now)
	}

	zoneRec := optimizer.RecommendZone(optimizer.ZoneInputs{
		State:               zone,
		Price:               snap,
		PriceOK:             priceOK,
		Adjustment:          adj,
		Trend:               trend,
		COP:                 copEst,
		Thermal:             tm,
		Params:              params,
		Season:              season,
		ExpensiveHoursAhead: expensiveAhead,
		Now:                 now,
		Lockout:             lockout,
	})

	tankRec := optimizer.RecommendTank(optimizer.TankInputs{
		State:    tank,
		Baseline: e.cfg.Tank.BaselineTarget,
		Price:    snap,
		PriceOK:  priceOK,
		Profile:  profile,
		Params:   params,
		Now:      now,
		Lockout:  lockout,
	})

	// The deadline is checked once more before touching the device; a tick
	// that ran out of time must not actuate anything.
	if ctx.Err() != nil {
		log.Printf("[ERROR] tick deadline exceeded before device writes")
		return e.failTick(now, "data unavailable: tick deadline exceeded")
	}

	d := &model.OptimizationDecision{
		ID:             uuid.NewString(),
		Timestamp:      now,
		DeviceID:       e.cfg.Device.DeviceID,
		Action:         zoneRec.Action,
		TargetTemp:     zoneRec.Target,
		TargetOriginal: zone.TargetOriginal,
		IndoorTemp:     st.IndoorTemp,
		OutdoorTemp:    st.OutdoorTemp,
		Factors:        zoneRec.Factors,
		Price:          snap,
		Weather:        wsnap,
		Adjustment:     adj,
		Trend:          trend,
		Season:         season,
	}

	if zoneRec.Action == model.ActionAdjusted {
		res, werr := e.device.WriteZoneTarget(ctx, e.cfg.Device.DeviceID, zoneRec.Target)
		if werr != nil || !res.Success {
			if werr != nil {
				log.Printf("[ERROR] write zone target: %v", werr)
			}
			e.met.WriteRejectedTotal.WithLabelValues("zone").Inc()
			d.Factors = append(d.Factors, model.Factor{
				Kind:   model.FactorGate,
				Detail: "write failed, retained previous target",
			})
			d.TargetTemp = zone.TargetTemp
		} else {
			zone.TargetTemp = zoneRec.Target
			zone.LastChange = now
			d.EstimatedSavings = zoneRec.EstimatedSavings
			e.met.EstimatedSavingsTotal.Add(max(zoneRec.EstimatedSavings, 0))
		}
		d.Reason = model.ReasonFromFactors(d.Factors)
	} else {
		d.TargetTemp = zone.TargetTemp
		d.Reason = zoneRec.GateReason
	}

	td := model.TankDecision{FromTemp: tank.TargetTemp, ToTemp: tankRec.Target}
	if tankRec.Action == model.ActionAdjusted {
		res, werr := e.device.WriteTankTarget(ctx, e.cfg.Device.DeviceID, tankRec.Target)
		if werr != nil || !res.Success {
			if werr != nil {
				log.Printf("[ERROR] write tank target: %v", werr)
			}
			e.met.WriteRejectedTotal.WithLabelValues("tank").Inc()
			td.Success = false
			td.Changed = false
			td.Reason = model.ReasonFromFactors(tankRec.Factors) + ", write failed, retained previous target"
			td.ToTemp = tank.TargetTemp
		} else {
			tank.TargetTemp = tankRec.Target
			tank.LastChange = now
			td.Success = true
			td.Changed = res.Changed
			td.Reason = model.ReasonFromFactors(tankRec.Factors)
		}
	} else {
		td.Success = true
		td.Changed = false
		td.ToTemp = tank.TargetTemp
		td.Reason = tankRec.GateReason
	}
	d.Tank = td

	e.recordTankSample(st, now)
	e.observeDrift(st, now, tm, zone.TargetTemp, wsnap.WindSpeed)

	e.mu.Lock()
	e.zone = zone
	e.tank = tank
	e.lastDecision = d
	e.lastGoodTick = now
	e.staleTicks = 0
	e.mu.Unlock()

	e.commitDecision(d)
	return d
}

// comfortBand resolves the occupancy-dependent indoor range.
func (e *Engine) comfortBand(mode string) model.ComfortBand {
	if mode == "away" {
		return model.ComfortBand{Min: e.cfg.Zone.AwayMin, Max: e.cfg.Zone.AwayMax}
	}
	return model.ComfortBand{Min: e.cfg.Zone.OccupiedMin, Max: e.cfg.Zone.OccupiedMax}
}

// failTick produces the degenerate no_change decision for a tick that could
// not gather its core inputs. The device is never touched on this path.
func (e *Engine) failTick(now time.Time, reason string) *model.OptimizationDecision {
	e.met.DataUnavailableTotal.Inc()

	e.mu.Lock()
	zone := e.zone
	tank := e.tank
	e.staleTicks++
	e.mu.Unlock()

	d := &model.OptimizationDecision{
		ID:             uuid.NewString(),
		Timestamp:      now,
		DeviceID:       e.cfg.Device.DeviceID,
		Action:         model.ActionNoChange,
		Reason:         reason,
		TargetTemp:     zone.TargetTemp,
		TargetOriginal: e.cfg.Zone.BaselineTarget,
		Season:         optimizer.SeasonOf(now, e.cfg.Weather.Latitude),
		Tank: model.TankDecision{
			FromTemp: tank.TargetTemp,
			ToTemp:   tank.TargetTemp,
			Reason:   reason,
			Success:  true,
			Changed:  false,
		},
	}

	e.mu.Lock()
	e.lastDecision = d
	e.mu.Unlock()

	e.commitDecision(d)
	return d
}

func (e *Engine) commitDecision(d *model.OptimizationDecision) {
	e.met.TicksTotal.WithLabelValues(string(d.Action)).Inc()
	if err := e.rec.RecordDecision(d); err != nil {
		log.Printf("[ERROR] record decision: %v", err)
	}
}

// recordTankSample derives the hot-water draw since the previous tick from
// the device's cumulative energy counter and feeds the usage learner.
func (e *Engine) recordTankSample(st *device.State, now time.Time) {
	e.mu.Lock()
	prev := e.energyCounter
	have := e.haveEnergy
	e.energyCounter = st.HotWaterEnergy
	e.haveEnergy = true
	e.mu.Unlock()

	if !have {
		return
	}
	consumed := st.HotWaterEnergy - prev
	if consumed < 0 {
		// Counter reset on the device side.
		consumed = 0
	}
	sample := model.TankSample{
		Time:          now,
		TankTemp:      st.TankTemp,
		TargetTemp:    st.TankTarget,
		EnergyKWh:     consumed,
		HeatingActive: st.HeatingActive,
	}
	e.usage.Record(sample)
	if err := e.rec.RecordTankSample(&sample); err != nil {
		log.Printf("[ERROR] record tank sample: %v", err)
	}
	if err := e.state.SaveUsageState(e.usage.Snapshot()); err != nil {
		log.Printf("[ERROR] save usage state: %v", err)
	}
}

// observeDrift pairs the previous tick's predicted drift with the indoor
// change actually measured since then, building the calibration window.
// windSpeed comes from the forecast and is zero when the weather fetch
// failed, so the wind term degrades with its data source.
func (e *Engine) observeDrift(st *device.State, now time.Time, tm model.ThermalModel, appliedTarget, windSpeed float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.havePrev {
		dt := now.Sub(e.prevAt)
		if dt >= minObservationGap {
			observed := (st.IndoorTemp - e.prevIndoor) / dt.Hours()
			e.observations = append(e.observations, thermal.Observation{
				At:        now,
				Predicted: e.prevPredicted,
				Observed:  observed,
			})
			if len(e.observations) > maxObservations {
				e.observations = e.observations[len(e.observations)-maxObservations:]
			}
		}
	}

	e.prevIndoor = st.IndoorTemp
	e.prevAt = now
	e.prevPredicted = thermal.PredictDrift(tm, st.IndoorTemp, st.OutdoorTemp, appliedTarget, windSpeed)
	e.havePrev = true
}

// RunCalibrationCycle recalibrates the thermal model from the accumulated
// drift observations. Stage-then-swap: the live model is replaced only by a
// validated staged copy.
func (e *Engine) RunCalibrationCycle(now time.Time) model.ThermalModel {
	e.learnedMu.Lock()
	defer e.learnedMu.Unlock()

	e.mu.Lock()
	obs := make([]thermal.Observation, len(e.observations))
	copy(obs, e.observations)
	e.mu.Unlock()

	next, result := thermal.Recalibrate(e.thermal, obs, now)
	if result.Applied {
		e.thermal = next
		if err := e.state.SaveThermalModel(next); err != nil {
			log.Printf("[ERROR] save thermal model: %v", err)
		}
		e.mu.Lock()
		e.observations = e.observations[:0]
		e.mu.Unlock()
		log.Printf("[INFO] thermal model recalibrated: K=%.3f confidence=%.2f (%d observations)",
			next.K, next.Confidence, result.Observations)
	} else {
		log.Printf("[INFO] calibration skipped: %s (%d observations)", result.Note, result.Observations)
	}
	e.met.ThermalConfidence.Set(e.thermal.Confidence)

	if err := e.rec.RecordCalibration(&recorder.CalibrationEvent{
		At:     now,
		Result: result,
		K:      e.thermal.K,
		S:      e.thermal.S,
	}); err != nil {
		log.Printf("[ERROR] record calibration: %v", err)
	}
	return e.thermal
}

// RunTuningCycle nudges the adaptive parameters from the decision window
// since the previous cycle.
func (e *Engine) RunTuningCycle(now time.Time) model.AdaptiveParameters {
	e.learnedMu.Lock()
	defer e.learnedMu.Unlock()

	since := e.lastTuning
	if since.IsZero() {
		since = now.Add(-24 * time.Hour)
	}
	decisions, err := e.rec.Decisions(since)
	if err != nil {
		log.Printf("[ERROR] load decision window: %v", err)
		return e.params
	}

	next, applied := tuner.RunCycle(e.params, decisions, now)
	if applied {
		e.params = next
		e.lastTuning = now
		if err := e.state.SaveAdaptiveParameters(next); err != nil {
			log.Printf("[ERROR] save adaptive parameters: %v", err)
		}
		e.met.LearningCycles.Set(float64(next.LearningCycles))
		log.Printf("[INFO] tuning cycle %d applied over %d decisions", next.LearningCycles, len(decisions))
	} else {
		log.Printf("[INFO] tuning cycle skipped: %d decisions available", len(decisions))
	}

	if err := e.rec.RecordTuning(&recorder.TuningEvent{
		At:             now,
		Applied:        applied,
		LearningCycles: e.params.LearningCycles,
		Confidence:     e.params.Confidence,
		Decisions:      len(decisions),
	}); err != nil {
		log.Printf("[ERROR] record tuning: %v", err)
	}
	return e.params
}

// LastDecision returns the most recent decision, or nil before the first
// tick.
func (e *Engine) LastDecision() *model.OptimizationDecision {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.lastDecision == nil {
		return nil
	}
	d := *e.lastDecision
	return &d
}

// Status summarizes engine health for the status endpoint.
type Status struct {
	LastTick          time.Time `json:"last_tick"`
	LastGoodData      time.Time `json:"last_good_data"`
	StaleTicks        int       `json:"stale_ticks"`
	LastAction        string    `json:"last_action"`
	LastReason        string    `json:"last_reason"`
	ZoneTarget        float64   `json:"zone_target"`
	TankTarget        float64   `json:"tank_target"`
	ThermalConfidence float64   `json:"thermal_confidence"`
	ThermalK          float64   `json:"thermal_k"`
	UsageConfidence   float64   `json:"usage_confidence"`
	LearningCycles    int       `json:"learning_cycles"`
}

// CurrentStatus snapshots engine health.
func (e *Engine) CurrentStatus() Status {
	e.learnedMu.Lock()
	tm := e.thermal
	params := e.params
	e.learnedMu.Unlock()
	profile := e.usage.Profile()

	e.mu.Lock()
	defer e.mu.Unlock()

	s := Status{
		LastGoodData:      e.lastGoodTick,
		StaleTicks:        e.staleTicks,
		ZoneTarget:        e.zone.TargetTemp,
		TankTarget:        e.tank.TargetTemp,
		ThermalConfidence: tm.Confidence,
		ThermalK:          tm.K,
		UsageConfidence:   profile.Confidence,
		LearningCycles:    params.LearningCycles,
	}
	if e.lastDecision != nil {
		s.LastTick = e.lastDecision.Timestamp
		s.LastAction = string(e.lastDecision.Action)
		s.LastReason = e.lastDecision.Reason
	}
	return s
}

// priceScaleFor shrinks the whole weather offset while prices are high, so
// the engine does not buy expensive comfort ahead of a cold front.
func priceScaleFor(level model.PriceLevel) float64 {
	switch level {
	case model.PriceVeryExpensive:
		return 0.25
	case model.PriceExpensive:
		return 0.5
	default:
		return 1.0
	}
}
