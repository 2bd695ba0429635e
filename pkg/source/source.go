// ABOUTME: Signal source abstraction for the synthesizer
// ABOUTME: Defines the amplitude-at-time capability the playback engine depends on
package source

// Source produces the signal amplitude at a given time in seconds.
// Implementations must be safe for concurrent use: the audio goroutine and
// the visualization loop evaluate the same source independently.
type Source interface {
	AmplitudeAt(t float64) float32
}

// Func adapts an ordinary function to the Source interface
type Func func(t float64) float32

// AmplitudeAt calls f(t)
func (f Func) AmplitudeAt(t float64) float32 {
	return f(t)
}
