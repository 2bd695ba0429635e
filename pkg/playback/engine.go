// ABOUTME: Playback engine driving an audio sink from a signal source
// ABOUTME: Owns the shared clock and exposes thread-safe seek and windowed sample queries
package playback

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Resonate-Protocol/resonate-synth/pkg/audio"
	"github.com/Resonate-Protocol/resonate-synth/pkg/source"
)

var (
	// ErrInvalidConfig is returned when the engine is built without a source or sink
	ErrInvalidConfig = errors.New("invalid engine configuration")

	// ErrStreamBuild is returned when the sink rejects the stream configuration
	ErrStreamBuild = errors.New("failed to build output stream")

	// ErrStreamStart is returned when the sink fails to start playback
	ErrStreamStart = errors.New("failed to start output stream")
)

// Sink is an audio output that pulls frames from a Generator on its own goroutine
type Sink interface {
	// Format returns the negotiated output format
	Format() audio.Format

	// Open registers the generator the sink will call for every block of frames
	Open(g *Generator) error

	// Start begins playback; the generator is invoked continuously afterwards
	Start() error

	// Close stops playback and releases the device
	Close() error
}

// State is the lifecycle state of an engine
type State int

const (
	StateIdle State = iota
	StatePlaying
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Engine plays a Source through a Sink and shares its clock with callers
type Engine struct {
	clock  *Clock
	source source.Source
	sink   Sink
	format audio.Format
	gen    *Generator

	mu    sync.Mutex
	state State
}

// New builds the stream and starts playback. Playback begins before New returns;
// failures are fatal and never retried.
func New(src source.Source, sink Sink) (*Engine, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: source is required", ErrInvalidConfig)
	}
	if sink == nil {
		return nil, fmt.Errorf("%w: sink is required", ErrInvalidConfig)
	}

	format := sink.Format()
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStreamBuild, err)
	}

	clock := NewClock(0)
	e := &Engine{
		clock:  clock,
		source: src,
		sink:   sink,
		format: format,
		gen:    NewGenerator(clock, src, format),
		state:  StateIdle,
	}

	if err := sink.Open(e.gen); err != nil {
		if closeErr := sink.Close(); closeErr != nil {
			log.Printf("Error closing sink after failed build: %v", closeErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrStreamBuild, err)
	}

	if err := sink.Start(); err != nil {
		if closeErr := sink.Close(); closeErr != nil {
			log.Printf("Error closing sink after failed start: %v", closeErr)
		}
		return nil, fmt.Errorf("%w: %w", ErrStreamStart, err)
	}

	e.state = StatePlaying
	log.Printf("Playback started: %dHz, %d channels, %s",
		format.SampleRate, format.Channels, format.Encoding)

	return e, nil
}

// Time returns the current playback position in seconds. The clock is float64,
// so after long sessions it drifts less than a float32 clock advanced by the
// same per-sample step, and values will not match one exactly.
func (e *Engine) Time() float64 {
	return e.clock.Time()
}

// SetTime seeks to max(t, 0). The next generated frame starts from there.
func (e *Engine) SetTime(t float64) {
	e.clock.SetTime(t)
}

// Seek moves the playback position by delta seconds
func (e *Engine) Seek(delta float64) float64 {
	return e.clock.Seek(delta)
}

// Format returns the output format negotiated with the sink
func (e *Engine) Format() audio.Format {
	return e.format
}

// Source returns the signal source being played
func (e *Engine) Source() source.Source {
	return e.source
}

// State returns the lifecycle state
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Close tears down the stream. Calling Close more than once is a no-op.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateClosed {
		return nil
	}
	e.state = StateClosed

	if err := e.sink.Close(); err != nil {
		return fmt.Errorf("failed to close sink: %w", err)
	}

	log.Printf("Playback stopped at %.3fs", e.clock.Time())
	return nil
}
