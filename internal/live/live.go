// Package live renders a closed-loop run step by step in the terminal.
package live

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/regulator/internal/viz"
	"github.com/san-kum/regulator/sim"
)

const historyWindow = 120

type tickMsg time.Time

// Model drives a sim loop one plant step per frame.
type Model struct {
	plant     *sim.Linear
	ctrl      sim.Controller
	plantName string
	frameRate int
	maxSteps  int

	x       []float64
	step    int
	history []float64 // first state channel
	effort  float64
	paused  bool
	done    bool
}

// NewModel prepares a live view of ctrl driving plant from x0.
func NewModel(plant *sim.Linear, ctrl sim.Controller, plantName string, x0 []float64, steps, frameRate int) *Model {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &Model{
		plant:     plant,
		ctrl:      ctrl,
		plantName: plantName,
		frameRate: frameRate,
		maxSteps:  steps,
		x:         append([]float64(nil), x0...),
		history:   make([]float64, 0, historyWindow),
	}
}

// Run starts the bubbletea program and blocks until it exits.
func Run(m *Model) error {
	_, err := tea.NewProgram(m).Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.frameRate), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		}
	case tickMsg:
		if m.done {
			return m, nil
		}
		if !m.paused {
			m.advance()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) advance() {
	u := m.ctrl.Compute(m.x, m.step)
	for _, v := range u {
		if v < 0 {
			m.effort -= v
		} else {
			m.effort += v
		}
	}
	m.x = m.plant.Step(m.x, u)
	m.step++

	m.history = append(m.history, m.x[0])
	if len(m.history) > historyWindow {
		m.history = m.history[1:]
	}
	if m.step >= m.maxSteps {
		m.done = true
	}
}

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(viz.Title.Render(fmt.Sprintf("live: %s", m.plantName)))
	b.WriteString("\n\n")

	if len(m.history) > 1 {
		b.WriteString(viz.PlotSeries("x[0]", m.history, 12))
		b.WriteString("\n\n")
	}

	b.WriteString(viz.Metric("step", fmt.Sprintf("%d/%d", m.step, m.maxSteps)))
	b.WriteString("  ")
	b.WriteString(viz.Metric("x", fmt.Sprintf("%.4v", m.x)))
	b.WriteString("  ")
	b.WriteString(viz.Metric("effort", fmt.Sprintf("%.3f", m.effort)))
	b.WriteString("\n\n")

	switch {
	case m.done:
		b.WriteString(viz.StatusOK.Render("finished"))
	case m.paused:
		b.WriteString(viz.StatusWarn.Render("paused"))
	default:
		b.WriteString(viz.StatusOK.Render("running"))
	}
	b.WriteString(viz.Subtle.Render("   space pause · q quit"))
	b.WriteString("\n")

	return b.String()
}
