package metrics

import (
	"math"

	"github.com/san-kum/collapse/internal/collapse"
	"github.com/san-kum/collapse/internal/mesh"
)

// MassDrift tracks the worst relative deviation of shell mass plus remnant
// mass from the initial stellar mass.
type MassDrift struct {
	name     string
	initial  float64
	maxDrift float64
}

func NewMassDrift(initialMass float64) *MassDrift {
	return &MassDrift{name: "mass_drift", initial: initialMass}
}

func (d *MassDrift) Name() string { return d.name }

func (d *MassDrift) Observe(snap collapse.Snapshot, m *mesh.Mesh) {
	if d.initial == 0 {
		return
	}
	total := m.TotalMass() + snap.RemnantMass
	d.maxDrift = math.Max(d.maxDrift, math.Abs(total-d.initial)/d.initial)
}

func (d *MassDrift) Value() float64 { return d.maxDrift }

func (d *MassDrift) Reset() { d.maxDrift = 0 }
