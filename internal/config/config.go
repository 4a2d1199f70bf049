package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Device struct {
		BaseURL  string `yaml:"base_url"`
		APIKey   string `yaml:"api_key"`
		DeviceID string `yaml:"device_id"`
	} `yaml:"device"`
	Prices struct {
		BaseURL     string `yaml:"base_url"`
		APIKey      string `yaml:"api_key"`
		Area        string `yaml:"area"`
		WindowHours int    `yaml:"window_hours"`
	} `yaml:"prices"`
	Weather struct {
		BaseURL   string  `yaml:"base_url"`
		APIKey    string  `yaml:"api_key"`
		Latitude  float64 `yaml:"latitude"`
		Longitude float64 `yaml:"longitude"`
	} `yaml:"weather"`
	Zone struct {
		BaselineTarget float64 `yaml:"baseline_target"`
		OccupiedMin    float64 `yaml:"occupied_min"`
		OccupiedMax    float64 `yaml:"occupied_max"`
		AwayMin        float64 `yaml:"away_min"`
		AwayMax        float64 `yaml:"away_max"`
		Deadband       float64 `yaml:"deadband"`
		StepSize       float64 `yaml:"step_size"`
	} `yaml:"zone"`
	Tank struct {
		BaselineTarget float64 `yaml:"baseline_target"`
		Deadband       float64 `yaml:"deadband"`
		StepSize       float64 `yaml:"step_size"`
	} `yaml:"tank"`
	Engine struct {
		TickTimeoutSeconds int `yaml:"tick_timeout_seconds"`
		LockoutMinutes     int `yaml:"lockout_minutes"`
	} `yaml:"engine"`
	Schedule struct {
		TickCron        string `yaml:"tick_cron"`
		CalibrationCron string `yaml:"calibration_cron"`
		TuningCron      string `yaml:"tuning_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	State struct {
		Dir string `yaml:"dir"`
	} `yaml:"state"`
	Server struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"server"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("DEVICE_BASE_URL"); v != "" {
		cfg.Device.BaseURL = v
	}
	if v := os.Getenv("DEVICE_API_KEY"); v != "" {
		cfg.Device.APIKey = v
	}
	if v := os.Getenv("DEVICE_ID"); v != "" {
		cfg.Device.DeviceID = v
	}
	if v := os.Getenv("PRICES_BASE_URL"); v != "" {
		cfg.Prices.BaseURL = v
	}
	if v := os.Getenv("PRICES_API_KEY"); v != "" {
		cfg.Prices.APIKey = v
	}
	if v := os.Getenv("PRICES_AREA"); v != "" {
		cfg.Prices.Area = v
	}
	if v := os.Getenv("WEATHER_BASE_URL"); v != "" {
		cfg.Weather.BaseURL = v
	}
	if v := os.Getenv("WEATHER_API_KEY"); v != "" {
		cfg.Weather.APIKey = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("STATE_DIR"); v != "" {
		cfg.State.Dir = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("CRON_TICK"); v != "" {
		cfg.Schedule.TickCron = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Device.DeviceID == "" {
		cfg.Device.DeviceID = "default"
	}
	if cfg.Prices.Area == "" {
		cfg.Prices.Area = "SE3"
	}
	if cfg.Prices.WindowHours == 0 {
		cfg.Prices.WindowHours = 36
	}
	if cfg.Weather.Latitude == 0 && cfg.Weather.Longitude == 0 {
		cfg.Weather.Latitude = 59.33
		cfg.Weather.Longitude = 18.07
	}
	if cfg.Zone.BaselineTarget == 0 {
		cfg.Zone.BaselineTarget = 21.0
	}
	if cfg.Zone.OccupiedMin == 0 {
		cfg.Zone.OccupiedMin = 19.5
	}
	if cfg.Zone.OccupiedMax == 0 {
		cfg.Zone.OccupiedMax = 22.5
	}
	if cfg.Zone.AwayMin == 0 {
		cfg.Zone.AwayMin = 16.0
	}
	if cfg.Zone.AwayMax == 0 {
		cfg.Zone.AwayMax = 20.0
	}
	if cfg.Zone.Deadband == 0 {
		cfg.Zone.Deadband = 0.3
	}
	if cfg.Zone.StepSize == 0 {
		cfg.Zone.StepSize = 0.5
	}
	if cfg.Tank.BaselineTarget == 0 {
		cfg.Tank.BaselineTarget = 48.0
	}
	if cfg.Tank.Deadband == 0 {
		cfg.Tank.Deadband = 1.0
	}
	if cfg.Tank.StepSize == 0 {
		cfg.Tank.StepSize = 2.0
	}
	if cfg.Engine.TickTimeoutSeconds == 0 {
		cfg.Engine.TickTimeoutSeconds = 5
	}
	if cfg.Engine.LockoutMinutes == 0 {
		cfg.Engine.LockoutMinutes = 10
	}
	if cfg.Schedule.TickCron == "" {
		cfg.Schedule.TickCron = "0 0 * * * *"
	}
	if cfg.Schedule.CalibrationCron == "" {
		cfg.Schedule.CalibrationCron = "0 0 3 * * *"
	}
	if cfg.Schedule.TuningCron == "" {
		cfg.Schedule.TuningCron = "0 30 3 * * *"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/heatpilot.db"
	}
	if cfg.State.Dir == "" {
		cfg.State.Dir = "data/state"
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Device.BaseURL == "" {
		return fmt.Errorf("device.base_url is required")
	}
	if c.Prices.BaseURL == "" {
		return fmt.Errorf("prices.base_url is required")
	}
	if c.Zone.OccupiedMin >= c.Zone.OccupiedMax {
		return fmt.Errorf("zone.occupied_min must be below zone.occupied_max")
	}
	if c.Zone.AwayMin >= c.Zone.AwayMax {
		return fmt.Errorf("zone.away_min must be below zone.away_max")
	}
	if c.Zone.Deadband <= 0 || c.Zone.StepSize <= 0 {
		return fmt.Errorf("zone.deadband and zone.step_size must be positive")
	}
	if c.Tank.Deadband <= 0 || c.Tank.StepSize <= 0 {
		return fmt.Errorf("tank.deadband and tank.step_size must be positive")
	}
	return nil
}
