// ABOUTME: Binds the playback engine and the vibrato source into one control surface
// ABOUTME: Satisfies the controller interfaces of the TUI and the remote server
package main

import (
	"log"

	"github.com/Resonate-Protocol/resonate-synth/internal/remote"
	"github.com/Resonate-Protocol/resonate-synth/internal/ui"
	"github.com/Resonate-Protocol/resonate-synth/pkg/oscillator"
	"github.com/Resonate-Protocol/resonate-synth/pkg/playback"
	"github.com/Resonate-Protocol/resonate-synth/pkg/source"
)

var (
	_ ui.Controller     = (*synth)(nil)
	_ remote.Controller = (*synth)(nil)
)

// synth exposes the engine's clock and windows with the source's shape toggle
type synth struct {
	*playback.Engine
	vibrato *source.Vibrato
}

func (s *synth) Toggle() bool {
	on := s.vibrato.Toggle()
	log.Printf("Oscillator: %s", s.vibrato.Shape())
	return on
}

func (s *synth) Alternate() bool {
	return s.vibrato.Alternate()
}

func (s *synth) Shape() oscillator.Shape {
	return s.vibrato.Shape()
}
