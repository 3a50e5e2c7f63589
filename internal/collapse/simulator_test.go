package collapse

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/collapse/internal/mesh"
	"github.com/san-kum/collapse/internal/units"
)

// compactParams describes a star small enough to collapse within a few
// hundred steps.
func compactParams() Params {
	p := DefaultParams()
	p.Shells = 8
	p.RadiusCm = 5e7
	p.RhoBreak = 1e-3
	p.Dt = 1e-4
	p.TMax = 2000 * p.Dt
	return p
}

type conservationObserver struct {
	t        *testing.T
	initial  float64
	maxDrift float64
	zeroed   map[int]bool
	steps    int
}

func (o *conservationObserver) OnStep(snap Snapshot, m *mesh.Mesh) {
	o.steps++
	total := m.TotalMass() + snap.RemnantMass
	drift := math.Abs(total-o.initial) / o.initial
	o.maxDrift = math.Max(o.maxDrift, drift)

	for i := range m.Mass {
		if o.zeroed[i] && m.Mass[i] != 0 {
			o.t.Errorf("shell %d resurrected at step %d", i, snap.Step)
		}
		if m.Mass[i] == 0 {
			o.zeroed[i] = true
		}
	}
}

func TestSimulator_EndToEnd(t *testing.T) {
	p := compactParams()
	sim, err := New(p)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	obs := &conservationObserver{t: t, initial: sim.InitialMass(), zeroed: map[int]bool{}}
	sim.AddObserver(obs)

	series, err := sim.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	n := series.Len()
	if n != p.Steps() {
		t.Fatalf("expected %d snapshots, got %d", p.Steps(), n)
	}
	for name, arr := range map[string][]float64{
		"r_min": series.RMin, "M_bh": series.MBH, "M_bh_Msun": series.MBHMsun, "mdot_bh": series.Mdot,
	} {
		if len(arr) != n {
			t.Errorf("%s has %d entries, want %d", name, len(arr), n)
		}
	}

	for i := 1; i < n; i++ {
		if series.MBH[i] < series.MBH[i-1] {
			t.Fatalf("remnant mass decreased at step %d", i)
		}
	}
	if series.MBH[n-1] <= 0 {
		t.Fatal("remnant should have formed")
	}

	for i := 1; i < n && series.MBH[i] == 0; i++ {
		if series.RMin[i] > series.RMin[i-1] {
			t.Fatalf("r_min increased before absorption at step %d", i)
		}
	}

	if obs.maxDrift > 1e-12 {
		t.Errorf("mass conservation drift %e", obs.maxDrift)
	}
	if obs.steps != n {
		t.Errorf("observer saw %d steps, want %d", obs.steps, n)
	}
	if sim.Phase() != PhaseDone {
		t.Errorf("expected phase done, got %s", sim.Phase())
	}
	if len(series.Events) == 0 {
		t.Error("expected at least one trapping event")
	}
}

func TestSimulator_EventsOnlyForNewMass(t *testing.T) {
	p := compactParams()
	series, err := Simulate(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}

	if len(series.Events) == 0 {
		t.Fatal("expected a trapping event")
	}
	if len(series.Events) > p.Steps()/10 {
		t.Errorf("%d events over %d steps, expected far fewer", len(series.Events), p.Steps())
	}

	total := 0.0
	for i, ev := range series.Events {
		if ev.Mass <= 0 {
			t.Errorf("event %d at step %d carries no mass", i, ev.Step)
		}
		if i > 0 && ev.Step <= series.Events[i-1].Step {
			t.Errorf("event %d not after the previous one", i)
		}
		total += ev.Mass
	}

	final, _ := series.Final()
	if total > final.RemnantMass*(1+1e-12) {
		t.Errorf("events account for %e, more than the remnant %e", total, final.RemnantMass)
	}
}

func TestSimulator_SnapshotFields(t *testing.T) {
	p := compactParams()
	sim, err := New(p)
	if err != nil {
		t.Fatal(err)
	}

	series, err := sim.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if series.Mdot[0] != 0 {
		t.Errorf("first accretion rate must be 0, got %e", series.Mdot[0])
	}
	for i := 0; i < series.Len(); i++ {
		if want := float64(i) * p.Dt; series.T[i] != want {
			t.Fatalf("t[%d] = %e, want %e", i, series.T[i], want)
		}
		if got, want := series.MBHMsun[i], series.MBH[i]/units.CGS.Msun; got != want {
			t.Fatalf("solar mass column mismatch at %d", i)
		}
		if i > 0 {
			want := (series.MBH[i] - series.MBH[i-1]) / p.Dt
			if series.Mdot[i] != want {
				t.Fatalf("mdot[%d] = %e, want %e", i, series.Mdot[i], want)
			}
		}
	}

	last, ok := series.Final()
	if !ok || last.Step != series.Len()-1 {
		t.Error("Final should return the last snapshot")
	}
}

func TestSimulator_NoEarlyExit(t *testing.T) {
	p := compactParams()
	p.TMax = 5000 * p.Dt
	series, err := Simulate(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if series.Len() != p.Steps() {
		t.Errorf("run must continue after collapse: %d of %d steps", series.Len(), p.Steps())
	}
}

func TestSimulator_StepAfterDone(t *testing.T) {
	p := compactParams()
	p.TMax = 3 * p.Dt
	sim, err := New(p)
	if err != nil {
		t.Fatal(err)
	}
	if sim.Phase() != PhaseInit {
		t.Errorf("expected init phase, got %s", sim.Phase())
	}

	for i := 0; i < sim.Steps(); i++ {
		if _, err := sim.Step(); err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
	}
	if _, err := sim.Step(); !errors.Is(err, ErrFinished) {
		t.Errorf("expected ErrFinished, got %v", err)
	}
}

func TestSimulator_Cancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim, err := New(compactParams())
	if err != nil {
		t.Fatal(err)
	}
	series, err := sim.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if series == nil || series.Len() != 0 {
		t.Error("expected an empty partial series")
	}
}

type countMetric struct {
	resets, samples int
}

func (c *countMetric) Name() string                     { return "count" }
func (c *countMetric) Observe(_ Snapshot, _ *mesh.Mesh) { c.samples++ }
func (c *countMetric) Value() float64                   { return float64(c.samples) }
func (c *countMetric) Reset()                           { c.resets++; c.samples = 0 }

func TestSimulator_Metrics(t *testing.T) {
	p := compactParams()
	p.TMax = 10 * p.Dt
	metric := &countMetric{}

	series, err := Simulate(context.Background(), p, metric)
	if err != nil {
		t.Fatal(err)
	}
	if metric.resets != 1 {
		t.Errorf("metric should be reset once, got %d", metric.resets)
	}
	if series.Metrics["count"] != float64(p.Steps()) {
		t.Errorf("expected count %d, got %f", p.Steps(), series.Metrics["count"])
	}
}

func TestSimulator_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		field  string
	}{
		{"zero mass", func(p *Params) { p.MassMsun = 0 }, "M_star_Msun"},
		{"negative radius", func(p *Params) { p.RadiusCm = -1 }, "R_star_cm"},
		{"zero shells", func(p *Params) { p.Shells = 0 }, "N"},
		{"zero dt", func(p *Params) { p.Dt = 0 }, "dt"},
		{"negative duration", func(p *Params) { p.TMax = -1 }, "t_max"},
		{"duration below dt", func(p *Params) { p.TMax = p.Dt / 2 }, "t_max"},
		{"negative K", func(p *Params) { p.K = -1 }, "K"},
		{"negative alpha", func(p *Params) { p.Alpha = -0.1 }, "alpha"},
		{"zero gamma", func(p *Params) { p.GammaSoft = 0 }, "g_soft"},
		{"nan break", func(p *Params) { p.RhoBreak = math.NaN() }, "rho_break"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)

			_, err := New(p)
			if !errors.Is(err, ErrParameterBounds) {
				t.Fatalf("expected ErrParameterBounds, got %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if verr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, verr.Field)
			}
		})
	}
}

func TestValidate_HugeStepCount(t *testing.T) {
	p := DefaultParams()
	p.Dt = 1e-300
	p.TMax = 1e300
	if err := p.Validate(); err != nil {
		t.Errorf("step count beyond int range should still validate: %v", err)
	}
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	if err := p.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if p.Shells != 256 || p.MassMsun != 30 || p.RadiusCm != 2e13 {
		t.Errorf("unexpected defaults %+v", p)
	}
	if p.Steps() < 49999 || p.Steps() > 50000 {
		t.Errorf("expected ~50000 steps, got %d", p.Steps())
	}
}

func TestSimError(t *testing.T) {
	err := SimError{Time: 1.5, Step: 150, Message: "test error"}
	expected := "step 150 (t=1.5000): test error"
	if err.Error() != expected {
		t.Errorf("SimError.Error() = %q, want %q", err.Error(), expected)
	}
}

func TestPhaseString(t *testing.T) {
	for p, want := range map[Phase]string{PhaseInit: "init", PhaseStepping: "stepping", PhaseDone: "done", Phase(9): "unknown"} {
		if p.String() != want {
			t.Errorf("Phase(%d).String() = %s, want %s", p, p.String(), want)
		}
	}
}
