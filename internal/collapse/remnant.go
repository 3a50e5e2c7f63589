package collapse

// Remnant is the compact object built from absorbed shells. Its mass never
// decreases and once active it stays active.
type Remnant struct {
	mass   float64
	active bool
}

func (r *Remnant) Mass() float64 { return r.mass }
func (r *Remnant) Active() bool  { return r.active }
func (r *Remnant) Activate()     { r.active = true }

// Add moves mass into the remnant. Non-positive amounts are ignored.
func (r *Remnant) Add(m float64) {
	if m > 0 {
		r.mass += m
	}
}
