// Package mesh owns the per-shell state of the one-dimensional Lagrangian
// star: mass, radius, velocity and density, indexed from the centre (0)
// outward. Shell order is radial order and never changes, even when radii
// evolve.
package mesh

import (
	"math"
)

const (
	// VolumeFloor is added to every shell volume so density never divides by zero.
	VolumeFloor = 1e-20

	// Swallowed is the density written to shells absorbed by the remnant.
	Swallowed = 1e15

	// CoreWeight biases the initial mass toward the centre: the innermost shell
	// is roughly (1+CoreWeight) times heavier than the outermost one.
	CoreWeight = 4.0
)

type Mesh struct {
	Mass     []float64
	Radius   []float64
	Velocity []float64
	Density  []float64
}

// New builds the initial profile for a star of totalMass grams and radius cm.
func New(totalMass, radius float64, n int) *Mesh {
	m := &Mesh{
		Mass:     make([]float64, n),
		Radius:   make([]float64, n),
		Velocity: make([]float64, n),
		Density:  make([]float64, n),
	}
	if n == 0 {
		return m
	}

	nf := float64(n)
	sum := 0.0
	for i := 0; i < n; i++ {
		frac := MassFraction(i, n)
		m.Mass[i] = totalMass / nf * (1.0 + CoreWeight*(1-frac))
		m.Radius[i] = math.Cbrt(frac) * radius
		sum += m.Mass[i]
	}

	scale := totalMass / sum
	sum = 0
	for i := range m.Mass {
		m.Mass[i] *= scale
		sum += m.Mass[i]
	}
	// round-off residual goes to the outermost shell
	m.Mass[n-1] += totalMass - sum

	m.UpdateDensity()
	return m
}

// MassFraction is the cell-centred mass coordinate of shell i in [0,1).
func MassFraction(i, n int) float64 {
	return float64(i)/float64(n) + 0.5/float64(n)
}

func (m *Mesh) Len() int { return len(m.Mass) }

// ShellVolume is the floored volume of the spherical shell between
// Radius[i-1] (0 for the innermost shell) and Radius[i].
func (m *Mesh) ShellVolume(i int) float64 {
	inner := 0.0
	if i > 0 {
		inner = m.Radius[i-1]
	}
	r := m.Radius[i]
	vol := (4.0/3.0)*math.Pi*(r*r*r-inner*inner*inner) + VolumeFloor
	if vol < VolumeFloor {
		vol = VolumeFloor
	}
	return vol
}

// UpdateDensity recomputes every shell density from its mass and volume.
func (m *Mesh) UpdateDensity() {
	for i := range m.Mass {
		m.Density[i] = m.Mass[i] / m.ShellVolume(i)
	}
}

// EnclosedMass writes the cumulative shell mass plus remnant into dst and
// returns it. dst is grown if it is too short.
func (m *Mesh) EnclosedMass(dst []float64, remnant float64) []float64 {
	if cap(dst) < len(m.Mass) {
		dst = make([]float64, len(m.Mass))
	}
	dst = dst[:len(m.Mass)]
	acc := 0.0
	for i, mass := range m.Mass {
		acc += mass
		dst[i] = acc + remnant
	}
	return dst
}

func (m *Mesh) TotalMass() float64 {
	sum := 0.0
	for _, mass := range m.Mass {
		sum += mass
	}
	return sum
}

func (m *Mesh) MinRadius() float64 {
	if len(m.Radius) == 0 {
		return 0
	}
	lo := m.Radius[0]
	for _, r := range m.Radius[1:] {
		if r < lo {
			lo = r
		}
	}
	return lo
}

// Absorbed reports whether shell i has lost all of its mass to the remnant.
func (m *Mesh) Absorbed(i int) bool {
	return m.Mass[i] == 0
}

// AbsorbedCount returns the number of shells with zero mass.
func (m *Mesh) AbsorbedCount() int {
	n := 0
	for i := range m.Mass {
		if m.Absorbed(i) {
			n++
		}
	}
	return n
}

func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Mass:     make([]float64, len(m.Mass)),
		Radius:   make([]float64, len(m.Radius)),
		Velocity: make([]float64, len(m.Velocity)),
		Density:  make([]float64, len(m.Density)),
	}
	copy(c.Mass, m.Mass)
	copy(c.Radius, m.Radius)
	copy(c.Velocity, m.Velocity)
	copy(c.Density, m.Density)
	return c
}

// IsValid reports whether every shell quantity is finite.
func (m *Mesh) IsValid() bool {
	for _, s := range [][]float64{m.Mass, m.Radius, m.Velocity, m.Density} {
		for _, v := range s {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
