// ABOUTME: Playback engine package driving real-time audio generation
// ABOUTME: Provides Engine, Clock, Generator, the Sink boundary and window queries
// Package playback generates audio sample by sample on demand from an output device.
//
// The Engine owns a Clock shared between two contexts: the sink's real-time goroutine,
// which advances it by 1/sampleRate for every frame through a Generator, and any number
// of callers that read or seek it. Each clock operation is a single short critical section
// so the audio goroutine is never held up.
//
// Window evaluates the source over a time range for visualization without touching the clock.
//
// Example:
//
//	engine, err := playback.New(src, sink)
//	engine.SetTime(engine.Time() + 0.5)
//	if seq, ok := engine.Window(0, 0.1, 0.001); ok {
//	    for t, amp := range seq { ... }
//	}
package playback
