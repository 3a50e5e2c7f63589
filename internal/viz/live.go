package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/collapse/internal/collapse"
)

const (
	historyCapacity  = 400
	maxStepsPerFrame = 10000
)

type TickMsg time.Time

type LiveOptions struct {
	StepsPerFrame int
	FPS           int
}

func DefaultLiveOptions() LiveOptions {
	return LiveOptions{StepsPerFrame: 50, FPS: 30}
}

// LiveModel steps a simulator on every tick and redraws the minimum radius
// and remnant mass charts.
type LiveModel struct {
	sim           *collapse.Simulator
	name          string
	series        *collapse.Series
	stepsPerFrame int
	frame         time.Duration
	running       bool
	last          collapse.Snapshot
	logR          []float64
	mass          []float64
	err           error
	width         int
}

func NewLiveModel(sim *collapse.Simulator, name string, opts LiveOptions) LiveModel {
	if opts.StepsPerFrame <= 0 {
		opts.StepsPerFrame = DefaultLiveOptions().StepsPerFrame
	}
	if opts.FPS <= 0 {
		opts.FPS = DefaultLiveOptions().FPS
	}
	return LiveModel{
		sim:           sim,
		name:          name,
		series:        collapse.NewSeries(sim.Steps()),
		stepsPerFrame: opts.StepsPerFrame,
		frame:         time.Second / time.Duration(opts.FPS),
		running:       true,
		logR:          make([]float64, 0, historyCapacity),
		mass:          make([]float64, 0, historyCapacity),
		width:         80,
	}
}

func (m LiveModel) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m LiveModel) Init() tea.Cmd { return m.tick() }

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			m.stepsPerFrame *= 2
			if m.stepsPerFrame > maxStepsPerFrame {
				m.stepsPerFrame = maxStepsPerFrame
			}
		case "-", "_":
			if m.stepsPerFrame > 1 {
				m.stepsPerFrame /= 2
			}
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case TickMsg:
		if m.running && m.sim.Phase() != collapse.PhaseDone {
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

// advance runs up to stepsPerFrame steps and records one chart sample.
func (m *LiveModel) advance() {
	for i := 0; i < m.stepsPerFrame; i++ {
		snap, err := m.sim.Step()
		if err != nil {
			m.err = err
			break
		}
		m.series.Append(snap)
		m.last = snap
		if m.sim.Phase() == collapse.PhaseDone {
			break
		}
	}
	m.sim.Summarize(m.series)

	m.logR = pushSample(m.logR, logRadius(m.last.MinRadius))
	m.mass = pushSample(m.mass, m.last.RemnantMassMsun)
}

func pushSample(buf []float64, v float64) []float64 {
	if len(buf) >= historyCapacity {
		copy(buf, buf[1:])
		buf = buf[:len(buf)-1]
	}
	return append(buf, v)
}

func (m LiveModel) status() string {
	switch {
	case m.sim.Phase() == collapse.PhaseDone:
		return StatusTrapped.Render("DONE")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	case m.sim.RemnantActive():
		return StatusTrapped.Render("HORIZON")
	default:
		return StatusRunning.Render("COLLAPSING")
	}
}

func (m LiveModel) View() string {
	var s strings.Builder
	s.WriteString(Title.Render(strings.ToUpper(m.name)) + "  " + m.status() + "\n\n")

	total := m.sim.Steps()
	fraction := 0.0
	if total > 0 {
		fraction = float64(m.sim.StepIndex()) / float64(total)
	}
	s.WriteString(ProgressBar(fraction, 40) + fmt.Sprintf(" %d/%d\n\n", m.sim.StepIndex(), total))

	s.WriteString(metricLine("t", fmt.Sprintf("%.4g s", m.last.Time)))
	s.WriteString(metricLine("r_min", fmt.Sprintf("%.4g cm", m.last.MinRadius)))
	s.WriteString(metricLine("M_bh", fmt.Sprintf("%.4g Msun", m.last.RemnantMassMsun)))
	s.WriteString(metricLine("mdot_bh", fmt.Sprintf("%.4g g/s", m.last.AccretionRate)))
	s.WriteString(metricLine("absorbed", fmt.Sprintf("%d/%d", m.sim.Mesh().AbsorbedCount(), m.sim.Mesh().Len())))
	s.WriteString(metricLine("steps/frame", fmt.Sprintf("%d", m.stepsPerFrame)))
	if m.err != nil {
		s.WriteString(StatusTrapped.Render(m.err.Error()) + "\n")
	}

	chartWidth := m.width - 20
	if chartWidth < 20 {
		chartWidth = 20
	}
	var charts []string
	if len(m.logR) > 1 {
		charts = append(charts, GraphStyle.Render(asciigraph.Plot(finite(m.logR),
			asciigraph.Height(8), asciigraph.Width(chartWidth), asciigraph.Caption("log10 r_min [cm]"))))
	}
	if len(m.mass) > 1 {
		charts = append(charts, GraphStyle.Render(asciigraph.Plot(finite(m.mass),
			asciigraph.Height(8), asciigraph.Width(chartWidth), asciigraph.Caption("M_bh [Msun]"))))
	}

	s.WriteString(KeyHint.Render("\nSP:Pause +/-:Speed Q:Quit"))
	stats := Panel.Render(s.String())
	if len(charts) == 0 {
		return stats
	}
	return lipgloss.JoinVertical(lipgloss.Left, stats, lipgloss.JoinVertical(lipgloss.Left, charts...))
}

// Series returns everything recorded so far.
func (m LiveModel) Series() *collapse.Series { return m.series }

// RunLive runs the live view until the user quits and returns the recorded
// series, which may be partial.
func RunLive(sim *collapse.Simulator, name string, opts LiveOptions) (*collapse.Series, error) {
	p := tea.NewProgram(NewLiveModel(sim, name, opts), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return nil, err
	}
	if lm, ok := final.(LiveModel); ok {
		return lm.Series(), nil
	}
	return nil, fmt.Errorf("unexpected model %T", final)
}
