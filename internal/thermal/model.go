package thermal

import "HeatPilot/internal/model"

// referenceOutdoor is the outdoor temperature below which the extra outdoor
// impact term starts costing heat.
const referenceOutdoor = 0.0

// referenceMass is the thermal-mass time constant the default gains were
// fitted against; heavier buildings drift proportionally slower.
const referenceMass = 6.0

// maxCoastingHours caps the coasting estimate for near-zero drop rates.
const maxCoastingHours = 24.0

// PredictDrift returns the expected indoor temperature change per hour for
// the given conditions and target.
func PredictDrift(m model.ThermalModel, indoor, outdoor, target, windSpeed float64) float64 {
	d := 0.0
	if target > indoor {
		d += m.HeatingRate * (target - indoor)
	}
	if indoor > outdoor {
		d -= m.CoolingRate * (indoor - outdoor)
	}
	if outdoor < referenceOutdoor {
		d -= m.OutdoorImpact * (referenceOutdoor - outdoor)
	}
	d -= m.WindImpact * windSpeed
	return d
}

// CoastingHours estimates how long the zone can coast with heating off before
// indoor temperature breaches comfortMin.
func CoastingHours(m model.ThermalModel, indoor, comfortMin, outdoor float64) float64 {
	margin := indoor - comfortMin
	if margin <= 0 {
		return 0
	}
	drop := 0.0
	if indoor > outdoor {
		drop += m.CoolingRate * (indoor - outdoor)
	}
	if outdoor < referenceOutdoor {
		drop += m.OutdoorImpact * (referenceOutdoor - outdoor)
	}
	if m.ThermalMass > 0 {
		drop *= referenceMass / m.ThermalMass
	}
	if drop <= 1e-9 {
		return maxCoastingHours
	}
	hours := margin / drop
	if hours > maxCoastingHours {
		hours = maxCoastingHours
	}
	return hours
}
