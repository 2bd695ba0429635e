// ABOUTME: Decoded audio overlaid with a vibrato tone
// ABOUTME: Integrates a sinusoidal pitch curve into an oscillator phase, switchable between two shapes
package source

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/Resonate-Protocol/resonate-synth/pkg/audio"
	"github.com/Resonate-Protocol/resonate-synth/pkg/oscillator"
)

const (
	DefaultBaseFrequency = 440.0 // A4
	DefaultDepth         = 10.0  // semitones
	DefaultSteps         = 10
	DefaultGain          = 1.0 / 8
)

// Config holds the tone parameters. Zero fields take the defaults.
type Config struct {
	// BaseFrequency is the centre pitch in Hz
	BaseFrequency float64

	// Depth is the peak pitch deviation in semitones
	Depth float64

	// PitchShift transposes the whole curve, in semitones
	PitchShift float64

	// Steps is the number of sub-steps used to integrate the pitch curve
	Steps int

	// Gain scales the oscillator before it is added to the decoded audio
	Gain float64

	// Shapes are the two waveforms the toggle flag selects between.
	// Shapes[0] plays while the flag is off.
	Shapes *[2]oscillator.Shape
}

func (c Config) withDefaults() Config {
	if c.BaseFrequency == 0 {
		c.BaseFrequency = DefaultBaseFrequency
	}
	if c.Depth == 0 {
		c.Depth = DefaultDepth
	}
	if c.Steps <= 0 {
		c.Steps = DefaultSteps
	}
	if c.Gain == 0 {
		c.Gain = DefaultGain
	}
	if c.Shapes == nil {
		c.Shapes = &[2]oscillator.Shape{oscillator.ShapeSquare, oscillator.ShapeSine}
	}
	return c
}

// Vibrato sums a looping sample buffer with a vibrato tone.
// The buffer and parameters are immutable; the only mutable state is the shape flag.
type Vibrato struct {
	buf       audio.Buffer
	cfg       Config
	oscs      [2]oscillator.Func
	alternate atomic.Bool
}

// NewVibrato creates a vibrato source over the decoded buffer
func NewVibrato(buf audio.Buffer, cfg Config) (*Vibrato, error) {
	if buf.Len() == 0 {
		return nil, audio.ErrEmptyBuffer
	}
	if buf.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", buf.SampleRate)
	}

	cfg = cfg.withDefaults()

	return &Vibrato{
		buf:  buf,
		cfg:  cfg,
		oscs: [2]oscillator.Func{cfg.Shapes[0].Func(), cfg.Shapes[1].Func()},
	}, nil
}

// Config returns the effective configuration
func (v *Vibrato) Config() Config {
	return v.cfg
}

// Frequency returns the instantaneous pitch in Hz at time t
func (v *Vibrato) Frequency(t float64) float64 {
	pitch := math.Sin(2*math.Pi*t) * v.cfg.Depth
	return v.cfg.BaseFrequency * math.Pow(2, (pitch+v.cfg.PitchShift)/12)
}

// Phase integrates Frequency over [0, t] with a left Riemann sum of Steps+1 terms
func (v *Vibrato) Phase(t float64) float64 {
	n := float64(v.cfg.Steps)
	dt := t / n

	var sum float64
	for i := 0; i <= v.cfg.Steps; i++ {
		sum += v.Frequency(float64(i)*t/n) * dt
	}
	return sum
}

// AmplitudeAt returns the buffer sample at t plus the scaled oscillator.
// The vibrato curve restarts every second.
func (v *Vibrato) AmplitudeAt(t float64) float32 {
	data := v.buf.At(t)
	osc := v.oscs[0]
	if v.alternate.Load() {
		osc = v.oscs[1]
	}
	tone := osc(v.Phase(oscillator.Rem(t, 1)))
	return float32(float64(tone)*v.cfg.Gain) + data
}

// Toggle flips the shape flag and returns the new value
func (v *Vibrato) Toggle() bool {
	// Load then Store would let two concurrent toggles cancel into one
	for {
		old := v.alternate.Load()
		if v.alternate.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// Alternate reports whether the second shape is selected
func (v *Vibrato) Alternate() bool {
	return v.alternate.Load()
}

// SetAlternate selects the second shape when on is true
func (v *Vibrato) SetAlternate(on bool) {
	v.alternate.Store(on)
}

// Shape returns the currently selected waveform
func (v *Vibrato) Shape() oscillator.Shape {
	if v.alternate.Load() {
		return v.cfg.Shapes[1]
	}
	return v.cfg.Shapes[0]
}
