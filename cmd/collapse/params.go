package main

import (
	"fmt"

	"github.com/san-kum/collapse/internal/collapse"
	"github.com/san-kum/collapse/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// paramOptions backs the flags shared by every command that runs a collapse.
type paramOptions struct {
	configFile string
	preset     string
	p          collapse.Params
}

func addParamFlags(fs *pflag.FlagSet) *paramOptions {
	o := &paramOptions{p: collapse.DefaultParams()}
	fs.StringVar(&o.configFile, "config", "", "config file path (yaml)")
	fs.StringVar(&o.preset, "preset", "", "use preset configuration")
	fs.Float64Var(&o.p.MassMsun, "mass", o.p.MassMsun, "stellar mass [Msun]")
	fs.Float64Var(&o.p.RadiusCm, "radius", o.p.RadiusCm, "stellar radius [cm]")
	fs.IntVarP(&o.p.Shells, "shells", "n", o.p.Shells, "number of shells")
	fs.Float64Var(&o.p.TMax, "time", o.p.TMax, "simulated duration [s]")
	fs.Float64Var(&o.p.Dt, "dt", o.p.Dt, "timestep [s]")
	fs.Float64Var(&o.p.K, "k", o.p.K, "polytropic constant")
	fs.Float64Var(&o.p.RhoBreak, "rho-break", o.p.RhoBreak, "core/soft density break [g/cm^3]")
	fs.Float64Var(&o.p.GammaCore, "gamma-core", o.p.GammaCore, "adiabatic index below the break")
	fs.Float64Var(&o.p.GammaSoft, "gamma-soft", o.p.GammaSoft, "adiabatic index above the break")
	fs.Float64Var(&o.p.Alpha, "alpha", o.p.Alpha, "velocity drag coefficient [1/s]")
	return o
}

// resolve applies preset, then config file, then explicitly set flags.
func (o *paramOptions) resolve(cmd *cobra.Command) (collapse.Params, error) {
	p := collapse.DefaultParams()

	if o.preset != "" {
		cfg := config.GetPreset(o.preset)
		if cfg == nil {
			return p, fmt.Errorf("unknown preset: %s (available: %v)", o.preset, config.ListPresets())
		}
		p = cfg.Params()
	}

	if o.configFile != "" {
		cfg, err := config.Load(o.configFile)
		if err != nil {
			return p, fmt.Errorf("failed to load config: %w", err)
		}
		p = cfg.Params()
	}

	flags := cmd.Flags()
	overrides := []struct {
		name  string
		apply func()
	}{
		{"mass", func() { p.MassMsun = o.p.MassMsun }},
		{"radius", func() { p.RadiusCm = o.p.RadiusCm }},
		{"shells", func() { p.Shells = o.p.Shells }},
		{"time", func() { p.TMax = o.p.TMax }},
		{"dt", func() { p.Dt = o.p.Dt }},
		{"k", func() { p.K = o.p.K }},
		{"rho-break", func() { p.RhoBreak = o.p.RhoBreak }},
		{"gamma-core", func() { p.GammaCore = o.p.GammaCore }},
		{"gamma-soft", func() { p.GammaSoft = o.p.GammaSoft }},
		{"alpha", func() { p.Alpha = o.p.Alpha }},
	}
	for _, ov := range overrides {
		if flags.Changed(ov.name) {
			ov.apply()
		}
	}

	return p, p.Validate()
}
