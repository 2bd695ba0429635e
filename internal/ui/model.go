// ABOUTME: Bubbletea model for synthesizer TUI
// ABOUTME: Defines UI state, key handling and the waveform plot
package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/Resonate-Protocol/resonate-synth/pkg/oscillator"
	"github.com/Resonate-Protocol/resonate-synth/pkg/playback"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// plotRange is the amplitude shown at the top and bottom rows of the plot
const plotRange = 1.25

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	traceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	axisStyle = lipgloss.NewStyle().Faint(true)

	plotBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62"))
)

// Model represents the TUI state
type Model struct {
	ctrl   Controller
	config Config

	// Playback
	time  float64
	shape oscillator.Shape

	// Plot samples, one per column
	samples []float32

	// Debug
	showDebug bool
	frames    int

	quitting bool

	// Dimensions
	width  int
	height int
}

// Init starts the refresh tick
func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.refresh()
	case tickMsg:
		m.frames++
		m.refresh()
		return m, m.tick()
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Stopping synthesizer...\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(m.config.Title))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("Time:  "))
	b.WriteString(valueStyle.Render(fmt.Sprintf("%.3f", m.time)))
	b.WriteString("\n")

	b.WriteString(headerStyle.Render("Shape: "))
	b.WriteString(valueStyle.Render(m.shape.String()))
	b.WriteString("\n\n")

	b.WriteString(plotBorder.Render(m.renderPlot()))
	b.WriteString("\n")

	if m.showDebug {
		b.WriteString(m.renderDebug())
	}

	b.WriteString(axisStyle.Render("p:Waveform  ←/→:Seek  d:Debug  q:Quit"))

	return b.String()
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.quitting = true
		if m.config.Quit != nil {
			select {
			case m.config.Quit <- struct{}{}:
			default:
			}
		}
		return m, tea.Quit
	case "p":
		m.ctrl.Toggle()
	case "left":
		m.ctrl.Seek(-m.config.SeekStep)
	case "right":
		m.ctrl.Seek(m.config.SeekStep)
	case "home":
		m.ctrl.SetTime(0)
	case "d":
		m.showDebug = !m.showDebug
	}

	m.refresh()
	return m, nil
}

// plotColumns is the number of samples drawn across the terminal
func (m Model) plotColumns() int {
	// Border takes two columns
	return max(m.width-2, 10)
}

// refresh samples the clock and the window starting at the current time
func (m *Model) refresh() {
	m.time = m.ctrl.Time()
	m.shape = m.ctrl.Shape()

	cols := m.plotColumns()
	step := m.config.Window / float64(cols)

	points, err := playback.WindowPoints(m.ctrl, m.time, m.time+m.config.Window, step, cols)
	m.samples = make([]float32, len(points))
	if err != nil {
		return
	}
	for i, p := range points {
		m.samples[i] = p.Amplitude
	}
}

// plotRow maps an amplitude to a row, row 0 being the top
func plotRow(amp float32, rows int) int {
	a := math.Max(-plotRange, math.Min(plotRange, float64(amp)))
	r := int(math.Round((plotRange - a) / (2 * plotRange) * float64(rows-1)))
	return min(max(r, 0), rows-1)
}

// renderPlot draws the sampled window as a character plot
func (m Model) renderPlot() string {
	rows := m.config.PlotHeight
	cols := m.plotColumns()

	grid := make([][]rune, rows)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", cols))
	}

	zero := plotRow(0, rows)
	for c := range grid[zero] {
		grid[zero][c] = '·'
	}

	for c, amp := range m.samples {
		grid[plotRow(amp, rows)][c] = '•'
	}

	lines := make([]string, rows)
	for r, line := range grid {
		lines[r] = string(line)
	}
	return traceStyle.Render(strings.Join(lines, "\n"))
}

// renderDebug renders debug information
func (m Model) renderDebug() string {
	return axisStyle.Render(fmt.Sprintf("frames: %d  samples: %d  window: %.3fs  step: %.6fs",
		m.frames, len(m.samples), m.config.Window, m.config.Window/float64(m.plotColumns()))) + "\n"
}
