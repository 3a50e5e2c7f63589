// Package horizon evaluates closed-form black hole quantities in SI units.
// It shares nothing with the collapse core except the constant tables.
package horizon

import (
	"fmt"
	"math"

	"github.com/san-kum/collapse/internal/units"
)

// Properties summarises a Schwarzschild black hole.
type Properties struct {
	MassSolar            float64 `json:"mass_solar"`
	MassKg               float64 `json:"mass_kg"`
	SchwarzschildRadiusM float64 `json:"schwarzschild_radius_m"`
	HawkingTemperatureK  float64 `json:"hawking_temperature_K"`
	RelativePower        float64 `json:"relative_power"`
	HorizonDiameterM     float64 `json:"event_horizon_diameter_m"`
}

// HawkingTemperature returns hbar c^3 / (8 pi G M kB) for a mass in kg.
func HawkingTemperature(massKg float64) float64 {
	u := units.SI
	return u.Hbar * u.C * u.C * u.C / (8 * math.Pi * u.G * massKg * u.KB)
}

// RelativePower is the Hawking luminosity relative to a solar-mass hole,
// (Msun/M)^2.
func RelativePower(massKg float64) float64 {
	r := units.SI.Msun / massKg
	return r * r
}

// Calculate evaluates every property for a mass in solar masses.
func Calculate(massSolar float64) (Properties, error) {
	if !(massSolar > 0) || math.IsInf(massSolar, 0) {
		return Properties{}, fmt.Errorf("mass must be positive, got %g", massSolar)
	}

	kg := massSolar * units.SI.Msun
	rs := units.SI.SchwarzschildRadius(kg)
	return Properties{
		MassSolar:            massSolar,
		MassKg:               kg,
		SchwarzschildRadiusM: rs,
		HawkingTemperatureK:  HawkingTemperature(kg),
		RelativePower:        RelativePower(kg),
		HorizonDiameterM:     2 * rs,
	}, nil
}

const BaseSpawnRate = 300.0

// SpawnRate is the visual particle emission rate for a hole of massSolar.
type SpawnRate struct {
	PerSecond     float64 `json:"spawn_rate_per_second"`
	RelativePower float64 `json:"relative_power"`
	BaseRate      float64 `json:"base_rate"`
}

// ParticleSpawnRate scales BaseSpawnRate by the pair-rate knob and the
// relative Hawking power, which is floored at 0.01.
func ParticleSpawnRate(massSolar, pairRate float64) (SpawnRate, error) {
	if !(massSolar > 0) || math.IsInf(massSolar, 0) {
		return SpawnRate{}, fmt.Errorf("mass must be positive, got %g", massSolar)
	}
	if math.IsNaN(pairRate) || math.IsInf(pairRate, 0) {
		return SpawnRate{}, fmt.Errorf("pair rate must be finite, got %g", pairRate)
	}

	rel := RelativePower(massSolar * units.SI.Msun)
	return SpawnRate{
		PerSecond:     BaseSpawnRate * pairRate * math.Max(0.01, rel),
		RelativePower: rel,
		BaseRate:      BaseSpawnRate,
	}, nil
}
