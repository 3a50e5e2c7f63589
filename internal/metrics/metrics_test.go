package metrics

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/collapse/internal/collapse"
	"github.com/san-kum/collapse/internal/mesh"
)

func TestMassDrift(t *testing.T) {
	m := &mesh.Mesh{Mass: []float64{4, 5}}
	d := NewMassDrift(10)

	d.Observe(collapse.Snapshot{RemnantMass: 1}, m)
	if d.Value() != 0 {
		t.Errorf("expected zero drift, got %e", d.Value())
	}

	d.Observe(collapse.Snapshot{RemnantMass: 2}, m)
	if math.Abs(d.Value()-0.1) > 1e-12 {
		t.Errorf("expected drift 0.1, got %e", d.Value())
	}

	d.Reset()
	if d.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestPeakAccretion(t *testing.T) {
	p := NewPeakAccretion()
	for _, rate := range []float64{0, 3, 7, 2} {
		p.Observe(collapse.Snapshot{AccretionRate: rate}, nil)
	}
	if p.Value() != 7 {
		t.Errorf("expected peak 7, got %f", p.Value())
	}
	p.Reset()
	if p.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestFormationTime(t *testing.T) {
	f := NewFormationTime()
	if f.Value() != -1 {
		t.Errorf("expected -1 before formation, got %f", f.Value())
	}

	f.Observe(collapse.Snapshot{Time: 0.1}, nil)
	f.Observe(collapse.Snapshot{Time: 0.2, RemnantMass: 1}, nil)
	f.Observe(collapse.Snapshot{Time: 0.3, RemnantMass: 2}, nil)

	if f.Value() != 0.2 {
		t.Errorf("expected formation at 0.2, got %f", f.Value())
	}

	f.Reset()
	if f.Value() != -1 {
		t.Error("expected -1 after reset")
	}
}

func TestAbsorbedFraction(t *testing.T) {
	a := NewAbsorbedFraction()
	a.Observe(collapse.Snapshot{}, &mesh.Mesh{Mass: []float64{0, 0, 1, 1}})
	if a.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", a.Value())
	}
	a.Observe(collapse.Snapshot{}, &mesh.Mesh{})
	if a.Value() != 0.5 {
		t.Error("empty mesh should not change the value")
	}
}

func TestDefaultMetricsOnRun(t *testing.T) {
	p := collapse.DefaultParams()
	p.Shells = 8
	p.RadiusCm = 5e7
	p.RhoBreak = 1e-3
	p.TMax = 1000 * p.Dt

	series, err := collapse.Simulate(context.Background(), p, Default(p.StellarMass())...)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	for _, name := range []string{"mass_drift", "peak_mdot", "formation_time", "absorbed_fraction"} {
		if _, ok := series.Metrics[name]; !ok {
			t.Errorf("metric %s missing", name)
		}
	}
	if series.Metrics["mass_drift"] > 1e-12 {
		t.Errorf("mass drift too large: %e", series.Metrics["mass_drift"])
	}
	if series.Metrics["formation_time"] < 0 {
		t.Error("expected the compact star to form a remnant")
	}
	if series.Metrics["peak_mdot"] <= 0 {
		t.Error("expected positive peak accretion rate")
	}
}
