package collapse

import (
	"math"

	"github.com/san-kum/collapse/internal/mesh"
	"github.com/san-kum/collapse/internal/units"
)

const (
	// CaptureMargin widens the capture radius relative to the horizon test.
	CaptureMargin = 1.2

	// CaptureFloor is the smallest capture radius, matching RadiusFloor.
	CaptureFloor = 1e5
)

// Accretor mops up shells that fall close to the remnant after it forms.
// Its capture radius is looser than the horizon test.
type Accretor struct {
	Margin float64
	Floor  float64

	consts units.CGSConstants
	mask   []bool
}

func NewAccretor() *Accretor {
	return &Accretor{Margin: CaptureMargin, Floor: CaptureFloor, consts: units.CGS}
}

// Accrete captures every shell with mass whose radius is inside
// Margin*max(rs, Floor), where rs uses the remaining enclosed shell mass plus
// the remnant. Radii are left untouched. It returns the captured mass and
// shell count.
func (a *Accretor) Accrete(m *mesh.Mesh, r *Remnant) (float64, int) {
	n := m.Len()
	if len(a.mask) != n {
		a.mask = make([]bool, n)
	}

	cum := 0.0
	for i := 0; i < n; i++ {
		cum += m.Mass[i]
		capture := a.consts.SchwarzschildRadius(cum + r.Mass())
		a.mask[i] = m.Mass[i] > 0 && m.Radius[i] < a.Margin*math.Max(capture, a.Floor)
	}

	captured, count := 0.0, 0
	for i, hit := range a.mask {
		if !hit {
			continue
		}
		captured += m.Mass[i]
		m.Mass[i] = 0
		m.Velocity[i] = 0
		count++
	}
	r.Add(captured)
	return captured, count
}
