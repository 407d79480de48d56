package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/pysic/internal/control"
	"github.com/san-kum/pysic/internal/experiment"
	"github.com/san-kum/pysic/internal/md"
	"github.com/san-kum/pysic/internal/utility/visualization"
)

const historyLen = 120

type model struct {
	name    string
	exp     *experiment.Experiment
	sys     *md.AtomsSystem
	integ   md.Integrator
	x0      md.State
	x       md.State
	t       float64
	dt      float64
	steps   int
	maxStep int

	paused  bool
	speed   int
	history []float64
	err     error

	lastFrame time.Time
	fps       float64

	width  int
	height int
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// NewLiveApp wraps an experiment that has been set up.
func NewLiveApp(exp *experiment.Experiment) (*model, error) {
	sys := exp.System()
	if sys == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	integ, err := experiment.NewRegistry().BuildIntegrator(exp.Config().MD, exp.Atoms().Masses)
	if err != nil {
		return nil, err
	}
	x0 := sys.State()
	return &model{
		name:    exp.Config().Name,
		exp:     exp,
		sys:     sys,
		integ:   integ,
		x0:      x0,
		x:       x0.Clone(),
		dt:      exp.Config().MD.Dt,
		maxStep: exp.Config().MD.Steps,
		speed:   1,
		history: make([]float64, 0, historyLen),
		width:   80,
		height:  24,
	}, nil
}

func (m model) Init() tea.Cmd { return tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		if !m.paused && m.err == nil {
			now := time.Now()
			if !m.lastFrame.IsZero() {
				if dt := now.Sub(m.lastFrame).Seconds(); dt > 0 {
					m.fps = 1.0 / dt
				}
			}
			m.lastFrame = now
			for i := 0; i < m.speed; i++ {
				m.step()
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case " ", "p":
		m.paused = !m.paused
	case "r":
		m.reset()
		return m, tea.ClearScreen
	case "+", "=":
		m.speed = min(m.speed*2, 64)
	case "-", "_":
		m.speed = max(m.speed/2, 1)
	case "0":
		m.speed = 1
	}
	return m, nil
}

func (m *model) reset() {
	m.x = m.x0.Clone()
	m.sys.Apply(m.x)
	m.t = 0
	m.steps = 0
	m.err = nil
	m.sys.ClearErr()
	if th, ok := m.integ.(*control.Thermostatted); ok {
		th.Thermostat().Reset()
	}
	m.paused = false
	m.history = m.history[:0]
}

func (m *model) step() {
	if m.maxStep > 0 && m.steps >= m.maxStep {
		m.paused = true
		return
	}
	next := m.integ.Step(m.sys, m.x, m.t, m.dt)
	if err := m.sys.Err(); err != nil {
		m.err = err
		return
	}
	if !next.IsValid() {
		m.err = md.ErrInvalidState
		return
	}
	m.x = next
	m.t += m.dt
	m.steps++

	m.history = append(m.history, m.sys.Energy(m.x))
	if len(m.history) > historyLen {
		m.history = m.history[1:]
	}
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(visualization.Title.Render(m.name) + "  " + visualization.Status(m.paused, m.err) + "\n")
	b.WriteString(visualization.Legend(m.sys.Atoms().Symbols) + "\n\n")

	cw := max(10, min(m.width/2-4, 60))
	ch := max(4, min(m.height-12, 20))
	canvas := visualization.NewCanvas(cw, ch)
	canvas.DrawAtoms(m.sys.Atoms())
	structure := visualization.Panel.Render(strings.TrimRight(canvas.String(), "\n"))

	atoms := m.sys.Atoms()
	e := math.NaN()
	if n := len(m.history); n > 0 {
		e = m.history[n-1]
	}
	stats := strings.Join([]string{
		visualization.Metric("t", fmt.Sprintf("%.1f fs", m.t)),
		visualization.Metric("step", fmt.Sprintf("%d/%d", m.steps, m.maxStep)),
		visualization.Metric("atoms", fmt.Sprintf("%d", atoms.Len())),
		visualization.Metric("E", fmt.Sprintf("%.6f eV", e)),
		visualization.Metric("T", fmt.Sprintf("%.1f K", atoms.Temperature())),
		visualization.Metric("speed", fmt.Sprintf("%dx", m.speed)),
		visualization.Metric("fps", fmt.Sprintf("%.0f", m.fps)),
	}, "\n")
	if m.maxStep > 0 {
		stats += "\n\n" + visualization.ProgressBar(float64(m.steps)/float64(m.maxStep), 20)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, structure, "  ", visualization.Panel.Render(stats)))
	b.WriteString("\n")

	if len(m.history) > 1 {
		graph := visualization.PlotSeries(m.history, 6, max(20, m.width-12), "total energy (eV)")
		b.WriteString(graph + "\n")
	}

	b.WriteString(visualization.KeyHint.Render("space pause · r reset · +/- speed · q quit"))
	return b.String()
}

// RunLive runs the interactive view until the user quits.
func RunLive(exp *experiment.Experiment) error {
	m, err := NewLiveApp(exp)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
