package collapse

import (
	"math"

	"github.com/san-kum/collapse/internal/eos"
	"github.com/san-kum/collapse/internal/units"
)

const (
	DefaultMassMsun = 30.0
	DefaultRadiusCm = 2.0e13
	DefaultShells   = 256
	DefaultTMax     = 5.0
	DefaultDt       = 1e-4
	DefaultAlpha    = 0.5
)

// Params is the full input of one collapse run. JSON names follow the
// public simulate endpoint.
type Params struct {
	MassMsun  float64 `json:"M_star_Msun"`
	RadiusCm  float64 `json:"R_star_cm"`
	Shells    int     `json:"N"`
	TMax      float64 `json:"t_max"`
	Dt        float64 `json:"dt"`
	K         float64 `json:"K"`
	RhoBreak  float64 `json:"rho_break"`
	GammaCore float64 `json:"g_core"`
	GammaSoft float64 `json:"g_soft"`
	Alpha     float64 `json:"alpha"`
}

func DefaultParams() Params {
	return Params{
		MassMsun:  DefaultMassMsun,
		RadiusCm:  DefaultRadiusCm,
		Shells:    DefaultShells,
		TMax:      DefaultTMax,
		Dt:        DefaultDt,
		K:         eos.DefaultK,
		RhoBreak:  eos.DefaultRhoBreak,
		GammaCore: eos.DefaultGammaCore,
		GammaSoft: eos.DefaultGammaSoft,
		Alpha:     DefaultAlpha,
	}
}

// Steps is floor(t_max/dt).
func (p Params) Steps() int {
	if p.Dt <= 0 {
		return 0
	}
	return int(p.TMax / p.Dt)
}

// StellarMass is the star mass in grams.
func (p Params) StellarMass() float64 {
	return p.MassMsun * units.CGS.Msun
}

func (p Params) EOS() eos.Polytrope {
	return eos.NewPolytrope(p.K, p.RhoBreak, p.GammaCore, p.GammaSoft)
}

// Validate rejects parameters the integration loop cannot run with. The loop
// itself never fails, so this is the only place bad input is caught.
func (p Params) Validate() error {
	checks := []struct {
		field  string
		value  float64
		ok     bool
		reason string
	}{
		{"M_star_Msun", p.MassMsun, p.MassMsun > 0, "must be positive"},
		{"R_star_cm", p.RadiusCm, p.RadiusCm > 0, "must be positive"},
		{"N", float64(p.Shells), p.Shells >= 1, "need at least one shell"},
		{"t_max", p.TMax, p.TMax > 0, "must be positive"},
		{"dt", p.Dt, p.Dt > 0, "must be positive"},
		{"K", p.K, p.K >= 0, "must be non-negative"},
		{"rho_break", p.RhoBreak, p.RhoBreak >= 0, "must be non-negative"},
		{"g_core", p.GammaCore, p.GammaCore > 0, "must be positive"},
		{"g_soft", p.GammaSoft, p.GammaSoft > 0, "must be positive"},
		{"alpha", p.Alpha, p.Alpha >= 0, "must be non-negative"},
	}

	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return &ValidationError{Field: c.field, Value: c.value, Reason: "must be finite"}
		}
		if !c.ok {
			return &ValidationError{Field: c.field, Value: c.value, Reason: c.reason}
		}
	}

	if p.TMax/p.Dt < 1 {
		return &ValidationError{Field: "t_max", Value: p.TMax, Reason: "shorter than one time step"}
	}
	return nil
}
