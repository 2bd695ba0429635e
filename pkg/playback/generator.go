// ABOUTME: Per-frame sample generator run on the audio goroutine
// ABOUTME: Advances the shared clock one step per frame and evaluates the signal source
package playback

import (
	"github.com/Resonate-Protocol/resonate-synth/pkg/audio"
	"github.com/Resonate-Protocol/resonate-synth/pkg/source"
)

// Generator is the real-time entry point a Sink calls for each block of frames.
// It holds the shared clock and source explicitly; it never allocates or blocks
// beyond the clock lock.
type Generator struct {
	clock    *Clock
	source   source.Source
	step     float64
	channels int
}

// NewGenerator creates a generator for the given output format
func NewGenerator(clock *Clock, src source.Source, format audio.Format) *Generator {
	return &Generator{
		clock:    clock,
		source:   src,
		step:     format.Step(),
		channels: format.Channels,
	}
}

// Channels returns the number of interleaved channels per frame
func (g *Generator) Channels() int { return g.channels }

// Step returns the clock advance per frame in seconds
func (g *Generator) Step() float64 { return g.step }

// Fill writes whole interleaved frames into buf and returns the number of frames.
// Each frame advances the clock by one step and carries the same amplitude on every channel.
// Trailing samples that do not form a whole frame are left untouched.
func (g *Generator) Fill(buf []float32) int {
	frames := len(buf) / g.channels
	for i := 0; i < frames; i++ {
		t := g.clock.Advance(g.step)
		amp := g.source.AmplitudeAt(t)

		frame := buf[i*g.channels : (i+1)*g.channels]
		for ch := range frame {
			frame[ch] = amp
		}
	}
	return frames
}
