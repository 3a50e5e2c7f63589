package collapse

import (
	"context"

	"github.com/san-kum/collapse/internal/mesh"
	"github.com/san-kum/collapse/internal/units"
)

// Simulator owns the shell mesh and the remnant and runs the fixed
// Stepper -> HorizonTracker -> Accretor pipeline once per step.
type Simulator struct {
	params   Params
	mesh     *mesh.Mesh
	remnant  Remnant
	stepper  *Stepper
	tracker  *HorizonTracker
	accretor *Accretor

	phase       Phase
	step        int
	steps       int
	lastMass    float64
	initialMass float64
	events      []Trapping

	metrics   []Metric
	observers []Observer
}

// New validates p and builds the initial mesh.
func New(p Params) (*Simulator, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	m := mesh.New(p.StellarMass(), p.RadiusCm, p.Shells)
	return &Simulator{
		params:      p,
		mesh:        m,
		stepper:     NewStepper(p.EOS(), p.Alpha, p.Dt),
		tracker:     NewHorizonTracker(),
		accretor:    NewAccretor(),
		phase:       PhaseInit,
		steps:       p.Steps(),
		initialMass: m.TotalMass(),
		metrics:     make([]Metric, 0),
		observers:   make([]Observer, 0),
	}, nil
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Params() Params       { return s.params }
func (s *Simulator) Phase() Phase         { return s.phase }
func (s *Simulator) Mesh() *mesh.Mesh     { return s.mesh }
func (s *Simulator) RemnantMass() float64 { return s.remnant.Mass() }
func (s *Simulator) RemnantActive() bool  { return s.remnant.Active() }
func (s *Simulator) StepIndex() int       { return s.step }
func (s *Simulator) Steps() int           { return s.steps }
func (s *Simulator) InitialMass() float64 { return s.initialMass }
func (s *Simulator) Events() []Trapping   { return s.events }

// Step runs one pipeline pass and returns the recorded snapshot.
func (s *Simulator) Step() (Snapshot, error) {
	if s.phase == PhaseDone {
		return Snapshot{}, ErrFinished
	}
	if s.phase == PhaseInit {
		for _, m := range s.metrics {
			m.Reset()
		}
		s.phase = PhaseStepping
	}

	k := s.step
	dt := s.params.Dt
	t := float64(k) * dt

	s.stepper.Step(s.mesh, s.remnant.Mass())

	if ev, ok := s.tracker.Track(s.mesh, &s.remnant); ok {
		ev.Step, ev.Time = k, t
		s.events = append(s.events, ev)
	}

	if s.remnant.Active() {
		s.accretor.Accrete(s.mesh, &s.remnant)
	}

	mbh := s.remnant.Mass()
	mdot := 0.0
	if k > 0 {
		mdot = (mbh - s.lastMass) / dt
	}
	s.lastMass = mbh

	snap := Snapshot{
		Step:            k,
		Time:            t,
		MinRadius:       s.mesh.MinRadius(),
		RemnantMass:     mbh,
		RemnantMassMsun: mbh / units.CGS.Msun,
		AccretionRate:   mdot,
	}

	for _, m := range s.metrics {
		m.Observe(snap, s.mesh)
	}
	for _, o := range s.observers {
		o.OnStep(snap, s.mesh)
	}

	s.step++
	if s.step >= s.steps {
		s.phase = PhaseDone
	}
	return snap, nil
}

// Run steps until the configured step count is reached. There is no early
// exit on full collapse. The context is checked between steps; on
// cancellation the partial series is returned with ctx.Err().
func (s *Simulator) Run(ctx context.Context) (*Series, error) {
	series := NewSeries(s.steps - s.step)

	for s.phase != PhaseDone {
		select {
		case <-ctx.Done():
			s.Summarize(series)
			return series, ctx.Err()
		default:
		}

		snap, err := s.Step()
		if err != nil {
			return series, err
		}
		series.Append(snap)
	}

	s.Summarize(series)
	return series, nil
}

// Summarize copies the trapping events and current metric values into
// series. Run calls it on return; callers driving Step directly call it
// themselves.
func (s *Simulator) Summarize(series *Series) {
	series.Events = s.events
	for _, m := range s.metrics {
		series.Metrics[m.Name()] = m.Value()
	}
}

// Simulate builds a simulator for p and runs it to completion.
func Simulate(ctx context.Context, p Params, metrics ...Metric) (*Series, error) {
	s, err := New(p)
	if err != nil {
		return nil, err
	}
	for _, m := range metrics {
		s.AddMetric(m)
	}
	return s.Run(ctx)
}
