package config

import (
	"sort"

	"github.com/san-kum/collapse/internal/collapse"
)

var Presets = map[string]func() *Config{
	"default": DefaultConfig,
	"quick": func() *Config {
		p := collapse.DefaultParams()
		p.Shells = 64
		p.TMax = 0.5
		return FromParams(p)
	},
	"soft-core": func() *Config {
		p := collapse.DefaultParams()
		p.RhoBreak = 1e-3
		return FromParams(p)
	},
	"compact": func() *Config {
		p := collapse.DefaultParams()
		p.Shells = 64
		p.RadiusCm = 5e7
		p.RhoBreak = 1e-3
		p.TMax = 0.05
		return FromParams(p)
	},
	"end-to-end": func() *Config {
		p := collapse.DefaultParams()
		p.Shells = 8
		p.RadiusCm = 5e7
		p.RhoBreak = 1e-3
		p.TMax = 2000 * p.Dt
		return FromParams(p)
	},
	"no-pressure": func() *Config {
		p := collapse.DefaultParams()
		p.K = 0
		p.Alpha = 0
		return FromParams(p)
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
