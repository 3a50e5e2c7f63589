// Package config loads and saves collapse run configuration as YAML and
// provides named presets.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/collapse/internal/collapse"
	"github.com/san-kum/collapse/internal/eos"
)

type Config struct {
	Star      StarConfig      `yaml:"star"`
	Mesh      MeshConfig      `yaml:"mesh"`
	Time      TimeConfig      `yaml:"time"`
	EOS       EOSConfig       `yaml:"eos"`
	Viscosity ViscosityConfig `yaml:"viscosity"`
}

type StarConfig struct {
	MassMsun float64 `yaml:"mass_msun"`
	RadiusCm float64 `yaml:"radius_cm"`
}

type MeshConfig struct {
	Shells int `yaml:"shells"`
}

type TimeConfig struct {
	TMax float64 `yaml:"t_max"`
	Dt   float64 `yaml:"dt"`
}

type EOSConfig struct {
	K         float64 `yaml:"k"`
	RhoBreak  float64 `yaml:"rho_break"`
	GammaCore float64 `yaml:"gamma_core"`
	GammaSoft float64 `yaml:"gamma_soft"`
}

type ViscosityConfig struct {
	Alpha float64 `yaml:"alpha"`
}

func DefaultConfig() *Config {
	return FromParams(collapse.DefaultParams())
}

func FromParams(p collapse.Params) *Config {
	return &Config{
		Star:      StarConfig{MassMsun: p.MassMsun, RadiusCm: p.RadiusCm},
		Mesh:      MeshConfig{Shells: p.Shells},
		Time:      TimeConfig{TMax: p.TMax, Dt: p.Dt},
		EOS:       EOSConfig{K: p.K, RhoBreak: p.RhoBreak, GammaCore: p.GammaCore, GammaSoft: p.GammaSoft},
		Viscosity: ViscosityConfig{Alpha: p.Alpha},
	}
}

func (c *Config) Params() collapse.Params {
	return collapse.Params{
		MassMsun:  c.Star.MassMsun,
		RadiusCm:  c.Star.RadiusCm,
		Shells:    c.Mesh.Shells,
		TMax:      c.Time.TMax,
		Dt:        c.Time.Dt,
		K:         c.EOS.K,
		RhoBreak:  c.EOS.RhoBreak,
		GammaCore: c.EOS.GammaCore,
		GammaSoft: c.EOS.GammaSoft,
		Alpha:     c.Viscosity.Alpha,
	}
}

func (c *Config) EOSModel() eos.Polytrope {
	return eos.NewPolytrope(c.EOS.K, c.EOS.RhoBreak, c.EOS.GammaCore, c.EOS.GammaSoft)
}

// Load reads a YAML file on top of the defaults, so omitted keys keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Encode writes cfg as YAML.
func (c *Config) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}
