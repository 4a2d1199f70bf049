package model

import "time"

// UsageProfile holds learned hot-water draw likelihood multipliers. All
// arrays are normalized to mean 1.0; cells with insufficient data decay
// toward 1.0.
type UsageProfile struct {
	Hourly      [24]float64     `json:"hourly"`
	Daily       [7]float64      `json:"daily"`
	HourlyByDay [7][24]float64  `json:"hourly_by_day"`
	Confidence  float64         `json:"confidence"` // 0-100
	LastUpdated time.Time       `json:"last_updated"`
}

// UniformUsageProfile returns a profile with every multiplier at 1.0 and zero
// confidence.
func UniformUsageProfile() UsageProfile {
	var p UsageProfile
	for h := 0; h < 24; h++ {
		p.Hourly[h] = 1.0
	}
	for d := 0; d < 7; d++ {
		p.Daily[d] = 1.0
		for h := 0; h < 24; h++ {
			p.HourlyByDay[d][h] = 1.0
		}
	}
	return p
}
