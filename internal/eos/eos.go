// Package eos implements the broken power-law polytrope used by the collapse
// core: P = K * rho^gamma, with gamma switching from a core index to a soft
// index once density reaches a break point.
package eos

import "math"

const (
	DefaultK         = 1e13
	DefaultRhoBreak  = 2e9
	DefaultGammaCore = 4.0 / 3.0
	DefaultGammaSoft = 1.30
)

type Polytrope struct {
	K         float64
	RhoBreak  float64
	GammaCore float64
	GammaSoft float64
}

func NewPolytrope(k, rhoBreak, gammaCore, gammaSoft float64) Polytrope {
	return Polytrope{K: k, RhoBreak: rhoBreak, GammaCore: gammaCore, GammaSoft: gammaSoft}
}

func Default() Polytrope {
	return NewPolytrope(DefaultK, DefaultRhoBreak, DefaultGammaCore, DefaultGammaSoft)
}

// Gamma selects the adiabatic index for a density.
func (p Polytrope) Gamma(rho float64) float64 {
	if rho < p.RhoBreak {
		return p.GammaCore
	}
	return p.GammaSoft
}

// Pressure returns K*rho^gamma and the gamma that was used.
// Negative densities are treated as zero.
func (p Polytrope) Pressure(rho float64) (float64, float64) {
	gam := p.Gamma(rho)
	if rho <= 0 {
		return 0, gam
	}
	return p.K * math.Pow(rho, gam), gam
}

// PressureInto fills press and gam for every density in rho.
// All three slices must have the same length.
func (p Polytrope) PressureInto(press, gam, rho []float64) {
	for i, r := range rho {
		press[i], gam[i] = p.Pressure(r)
	}
}
