package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"HeatPilot/internal/engine"
	"HeatPilot/internal/model"
)

// staleAfter is how long without a successful data tick before the report
// flags the engine as running blind.
const staleAfter = 2 * time.Hour

// FormatStatus renders the engine status as a plain-text report.
func FormatStatus(s engine.Status, now time.Time) string {
	var b strings.Builder

	b.WriteString("HeatPilot status\n")
	b.WriteString("================\n")

	if s.LastTick.IsZero() {
		b.WriteString("No ticks yet\n")
		return b.String()
	}

	fmt.Fprintf(&b, "Last tick:      %s (%s)\n", s.LastTick.Format("2006-01-02 15:04"), humanize.Time(s.LastTick))
	fmt.Fprintf(&b, "Last action:    %s\n", s.LastAction)
	fmt.Fprintf(&b, "Reason:         %s\n", s.LastReason)
	fmt.Fprintf(&b, "Zone target:    %.1f°C\n", s.ZoneTarget)
	fmt.Fprintf(&b, "Tank target:    %.1f°C\n", s.TankTarget)
	fmt.Fprintf(&b, "Thermal model:  K=%.2f confidence %.0f%%\n", s.ThermalK, s.ThermalConfidence*100)
	fmt.Fprintf(&b, "Usage profile:  confidence %.0f%%\n", s.UsageConfidence)
	fmt.Fprintf(&b, "Learning:       %d cycles\n", s.LearningCycles)

	if !s.LastGoodData.IsZero() && now.Sub(s.LastGoodData) > staleAfter {
		hours := int(now.Sub(s.LastGoodData).Hours())
		fmt.Fprintf(&b, "WARNING: stale data for %d hours (%d failed ticks), holding last targets\n",
			hours, s.StaleTicks)
	}
	return b.String()
}

// FormatDecision renders one decision as a plain-text report.
func FormatDecision(d *model.OptimizationDecision) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Decision %s at %s\n", d.ID, d.Timestamp.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Action: %s\n", d.Action)
	fmt.Fprintf(&b, "Zone: %.1f°C -> %.1f°C (baseline %.1f°C)\n", d.IndoorTemp, d.TargetTemp, d.TargetOriginal)
	fmt.Fprintf(&b, "Price: %.3f (%s, p%.0f of window avg %.3f)\n",
		d.Price.Current, d.Price.Level, d.Price.Percentile, d.Price.Average)
	if d.Trend.Direction != model.TrendStable {
		fmt.Fprintf(&b, "Weather: %s, offset %+.2f°C\n", d.Trend.Direction, d.Adjustment.Offset)
	}
	if len(d.Factors) > 0 {
		b.WriteString("Factors:\n")
		for _, f := range d.Factors {
			fmt.Fprintf(&b, "  [%s] %+.2f°C %s\n", f.Kind, f.Magnitude, f.Detail)
		}
	}
	fmt.Fprintf(&b, "Reason: %s\n", d.Reason)
	fmt.Fprintf(&b, "Tank: %.1f°C -> %.1f°C (%s)\n", d.Tank.FromTemp, d.Tank.ToTemp, d.Tank.Reason)
	if d.EstimatedSavings != 0 {
		fmt.Fprintf(&b, "Estimated savings: %.3f\n", d.EstimatedSavings)
	}
	return b.String()
}
