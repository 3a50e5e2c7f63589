package collapse

import "github.com/san-kum/collapse/internal/mesh"

type Phase int

const (
	PhaseInit Phase = iota
	PhaseStepping
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseStepping:
		return "stepping"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Snapshot holds the global observables recorded after one step.
type Snapshot struct {
	Step            int     `json:"step"`
	Time            float64 `json:"t"`
	MinRadius       float64 `json:"r_min"`
	RemnantMass     float64 `json:"M_bh"`
	RemnantMassMsun float64 `json:"M_bh_Msun"`
	AccretionRate   float64 `json:"mdot_bh"`
}

type Observer interface {
	OnStep(snap Snapshot, m *mesh.Mesh)
}

type Metric interface {
	Name() string
	Observe(snap Snapshot, m *mesh.Mesh)
	Value() float64
	Reset()
}

// Series is the per-step time series of a run. All arrays have equal length.
type Series struct {
	T       []float64          `json:"t"`
	RMin    []float64          `json:"r_min"`
	MBH     []float64          `json:"M_bh"`
	MBHMsun []float64          `json:"M_bh_Msun"`
	Mdot    []float64          `json:"mdot_bh"`
	Events  []Trapping         `json:"events,omitempty"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

func NewSeries(capacity int) *Series {
	if capacity < 0 {
		capacity = 0
	}
	return &Series{
		T:       make([]float64, 0, capacity),
		RMin:    make([]float64, 0, capacity),
		MBH:     make([]float64, 0, capacity),
		MBHMsun: make([]float64, 0, capacity),
		Mdot:    make([]float64, 0, capacity),
		Metrics: make(map[string]float64),
	}
}

func (s *Series) Append(snap Snapshot) {
	s.T = append(s.T, snap.Time)
	s.RMin = append(s.RMin, snap.MinRadius)
	s.MBH = append(s.MBH, snap.RemnantMass)
	s.MBHMsun = append(s.MBHMsun, snap.RemnantMassMsun)
	s.Mdot = append(s.Mdot, snap.AccretionRate)
}

func (s *Series) Len() int { return len(s.T) }

// At rebuilds the snapshot stored at index i.
func (s *Series) At(i int) Snapshot {
	return Snapshot{
		Step:            i,
		Time:            s.T[i],
		MinRadius:       s.RMin[i],
		RemnantMass:     s.MBH[i],
		RemnantMassMsun: s.MBHMsun[i],
		AccretionRate:   s.Mdot[i],
	}
}

// Final returns the last snapshot, or false for an empty series.
func (s *Series) Final() (Snapshot, bool) {
	if s.Len() == 0 {
		return Snapshot{}, false
	}
	return s.At(s.Len() - 1), true
}
