package collapse

import (
	"math"

	"github.com/san-kum/collapse/internal/mesh"
	"github.com/san-kum/collapse/internal/units"
)

// Trapping records one horizon absorption.
type Trapping struct {
	Step  int     `json:"step"`
	Time  float64 `json:"time"`
	Index int     `json:"index"`
	Mass  float64 `json:"mass"`
}

// HorizonTracker detects shells inside their own Schwarzschild radius and
// swallows them into the remnant.
type HorizonTracker struct {
	consts   units.CGSConstants
	enclosed []float64
	rs       []float64
}

func NewHorizonTracker() *HorizonTracker {
	return &HorizonTracker{consts: units.CGS}
}

// SchwarzschildRadii returns 2GM_enc/c^2 per shell for the current mesh.
// The returned slice is reused on the next call.
func (h *HorizonTracker) SchwarzschildRadii(m *mesh.Mesh, remnant float64) []float64 {
	n := m.Len()
	if len(h.rs) != n {
		h.rs = make([]float64, n)
	}
	h.enclosed = m.EnclosedMass(h.enclosed, remnant)
	for i, menc := range h.enclosed {
		h.rs[i] = h.consts.SchwarzschildRadius(menc)
	}
	return h.rs
}

// Track absorbs shells 0..idx, where idx is the outermost shell with
// r <= rs. Nothing happens when no shell is trapped. Already absorbed
// shells stay inside their horizon, so an event is only reported when
// new mass crossed it.
func (h *HorizonTracker) Track(m *mesh.Mesh, r *Remnant) (Trapping, bool) {
	rs := h.SchwarzschildRadii(m, r.Mass())

	idx := -1
	for i := range rs {
		if m.Radius[i] <= rs[i] {
			idx = i
		}
	}
	if idx < 0 {
		return Trapping{}, false
	}

	absorbed := 0.0
	for i := 0; i <= idx; i++ {
		absorbed += m.Mass[i]
	}
	r.Add(absorbed)

	for i := 0; i <= idx; i++ {
		m.Mass[i] = 0
		m.Radius[i] = math.Min(m.Radius[i], rs[i])
		m.Velocity[i] = 0
		m.Density[i] = mesh.Swallowed
	}
	r.Activate()

	if absorbed <= 0 {
		return Trapping{}, false
	}
	return Trapping{Index: idx, Mass: absorbed}, true
}
