package metrics

import (
	"github.com/san-kum/collapse/internal/collapse"
	"github.com/san-kum/collapse/internal/mesh"
)

type PeakAccretion struct {
	name string
	peak float64
}

func NewPeakAccretion() *PeakAccretion {
	return &PeakAccretion{name: "peak_mdot"}
}

func (p *PeakAccretion) Name() string { return p.name }

func (p *PeakAccretion) Observe(snap collapse.Snapshot, _ *mesh.Mesh) {
	if snap.AccretionRate > p.peak {
		p.peak = snap.AccretionRate
	}
}

func (p *PeakAccretion) Value() float64 { return p.peak }
func (p *PeakAccretion) Reset()         { p.peak = 0 }

// FormationTime is the time of the first snapshot with a positive remnant,
// or -1 if none formed.
type FormationTime struct {
	name   string
	time   float64
	formed bool
}

func NewFormationTime() *FormationTime {
	return &FormationTime{name: "formation_time", time: -1}
}

func (f *FormationTime) Name() string { return f.name }

func (f *FormationTime) Observe(snap collapse.Snapshot, _ *mesh.Mesh) {
	if !f.formed && snap.RemnantMass > 0 {
		f.formed = true
		f.time = snap.Time
	}
}

func (f *FormationTime) Value() float64 { return f.time }

func (f *FormationTime) Reset() {
	f.formed = false
	f.time = -1
}

// AbsorbedFraction is the share of shells holding no mass at the last
// observed step.
type AbsorbedFraction struct {
	name     string
	fraction float64
}

func NewAbsorbedFraction() *AbsorbedFraction {
	return &AbsorbedFraction{name: "absorbed_fraction"}
}

func (a *AbsorbedFraction) Name() string { return a.name }

func (a *AbsorbedFraction) Observe(_ collapse.Snapshot, m *mesh.Mesh) {
	if m.Len() == 0 {
		return
	}
	a.fraction = float64(m.AbsorbedCount()) / float64(m.Len())
}

func (a *AbsorbedFraction) Value() float64 { return a.fraction }
func (a *AbsorbedFraction) Reset()         { a.fraction = 0 }
