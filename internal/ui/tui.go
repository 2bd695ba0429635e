// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the synthesizer UI
package ui

import (
	"fmt"
	"iter"
	"time"

	"github.com/Resonate-Protocol/resonate-synth/pkg/oscillator"
	tea "github.com/charmbracelet/bubbletea"
)

// Controller is the part of the synthesizer the UI drives
type Controller interface {
	Time() float64
	SetTime(t float64)
	Seek(delta float64) float64
	Window(start, end, step float64) (iter.Seq2[float64, float32], bool)
	Toggle() bool
	Shape() oscillator.Shape
}

// Config tunes the UI
type Config struct {
	// SeekStep is how far the arrow keys move the clock in seconds (default: 0.5)
	SeekStep float64

	// Window is the span of the waveform plot in seconds (default: 0.1)
	Window float64

	// FrameRate is how often the plot refreshes (default: 30)
	FrameRate int

	// PlotHeight is the number of rows in the plot (default: 15)
	PlotHeight int

	// Title is shown in the header
	Title string

	// Quit receives a value when the user quits. Optional.
	Quit chan struct{}
}

func (c Config) withDefaults() Config {
	if c.SeekStep <= 0 {
		c.SeekStep = 0.5
	}
	if c.Window <= 0 {
		c.Window = 0.1
	}
	if c.FrameRate <= 0 {
		c.FrameRate = 30
	}
	if c.PlotHeight <= 2 {
		c.PlotHeight = 15
	}
	if c.Title == "" {
		c.Title = "Resonate Synth"
	}
	return c
}

// NewModel creates a new TUI model
func NewModel(ctrl Controller, cfg Config) Model {
	cfg = cfg.withDefaults()
	m := Model{
		ctrl:   ctrl,
		config: cfg,
		width:  80,
	}
	m.refresh()
	return m
}

// Run creates the TUI program. The caller runs it.
func Run(ctrl Controller, cfg Config) (*tea.Program, error) {
	if ctrl == nil {
		return nil, fmt.Errorf("ui requires a controller")
	}
	p := tea.NewProgram(NewModel(ctrl, cfg), tea.WithAltScreen())
	return p, nil
}

type tickMsg time.Time

func (m Model) tick() tea.Cmd {
	interval := time.Second / time.Duration(m.config.FrameRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
