package device

import "context"

// State is a point-in-time read of the heat pump.
type State struct {
	IndoorTemp     float64 `json:"indoor_temp"`
	OutdoorTemp    float64 `json:"outdoor_temp"`
	TankTemp       float64 `json:"tank_temp"`
	ZoneTarget     float64 `json:"zone_target"`
	TankTarget     float64 `json:"tank_target"`
	Mode           string  `json:"mode"`
	HotWaterEnergy float64 `json:"hot_water_energy"` // cumulative kWh counter
	HeatingActive  bool    `json:"heating_active"`
}

// WriteResult reports whether the device accepted a setpoint write and
// whether the value actually changed.
type WriteResult struct {
	Success bool `json:"success"`
	Changed bool `json:"changed"`
}

// Client is the device communication seam. Implementations own their retry
// and timeout policy; the engine never retries within a tick.
type Client interface {
	ReadState(ctx context.Context, deviceID string) (*State, error)
	WriteZoneTarget(ctx context.Context, deviceID string, value float64) (WriteResult, error)
	WriteTankTarget(ctx context.Context, deviceID string, value float64) (WriteResult, error)
	Name() string
}
