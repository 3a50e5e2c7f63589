package collapse

import (
	"math"

	"github.com/san-kum/collapse/internal/eos"
	"github.com/san-kum/collapse/internal/mesh"
	"github.com/san-kum/collapse/internal/units"
)

const (
	// RadiusFloor keeps shells from reaching zero or negative radius.
	RadiusFloor = 1e5

	radiusSqFloor = 1e-6
	densityFloor  = 1e-20
	spacingFloor  = 1e-6
)

// Stepper advances the mesh by one explicit step: v += a*dt, then r += v*dt.
type Stepper struct {
	EOS   eos.Polytrope
	Alpha float64
	Dt    float64

	consts   units.CGSConstants
	enclosed []float64
	press    []float64
	gam      []float64
	dpdr     []float64
}

func NewStepper(p eos.Polytrope, alpha, dt float64) *Stepper {
	return &Stepper{EOS: p, Alpha: alpha, Dt: dt, consts: units.CGS}
}

func (s *Stepper) ensureScratch(n int) {
	if len(s.press) != n {
		s.enclosed = make([]float64, n)
		s.press = make([]float64, n)
		s.gam = make([]float64, n)
		s.dpdr = make([]float64, n)
	}
}

// prepare fills enclosed mass, pressure and the backward pressure difference
// from the current mesh. The innermost shell has no interior pressure.
func (s *Stepper) prepare(m *mesh.Mesh, remnant float64) {
	n := m.Len()
	s.ensureScratch(n)

	s.enclosed = m.EnclosedMass(s.enclosed, remnant)
	s.EOS.PressureInto(s.press, s.gam, m.Density)

	s.dpdr[0] = 0
	for i := 1; i < n; i++ {
		dr := math.Max(m.Radius[i]-m.Radius[i-1], spacingFloor)
		s.dpdr[i] = (s.press[i] - s.press[i-1]) / dr
	}
}

func (s *Stepper) accel(m *mesh.Mesh, i int) (grav, pres, visc float64) {
	r := m.Radius[i]
	grav = -s.consts.G * s.enclosed[i] / math.Max(r*r, radiusSqFloor)
	pres = -s.dpdr[i] / math.Max(m.Density[i], densityFloor)
	visc = -s.Alpha * m.Velocity[i]
	return grav, pres, visc
}

// Step integrates every shell once and refreshes densities. It returns the
// enclosed mass used for gravity, computed before the update. The slice is
// reused on the next call.
func (s *Stepper) Step(m *mesh.Mesh, remnant float64) []float64 {
	n := m.Len()
	if n == 0 {
		return nil
	}
	s.prepare(m, remnant)

	dt := s.Dt
	for i := 0; i < n; i++ {
		g, p, v := s.accel(m, i)
		m.Velocity[i] += (g + p + v) * dt
		m.Radius[i] += m.Velocity[i] * dt
		m.Radius[i] = math.Max(m.Radius[i], RadiusFloor)
	}

	m.UpdateDensity()
	return s.enclosed
}

// Accelerations reports the three acceleration terms per shell for the
// current mesh without advancing it.
func (s *Stepper) Accelerations(m *mesh.Mesh, remnant float64) (grav, pres, visc []float64) {
	n := m.Len()
	grav, pres, visc = make([]float64, n), make([]float64, n), make([]float64, n)
	if n == 0 {
		return grav, pres, visc
	}
	s.prepare(m, remnant)
	for i := 0; i < n; i++ {
		grav[i], pres[i], visc[i] = s.accel(m, i)
	}
	return grav, pres, visc
}
