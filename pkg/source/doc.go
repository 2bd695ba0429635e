// ABOUTME: Signal source package for the synthesizer
// ABOUTME: Provides the Source interface and the vibrato overlay implementation
// Package source defines what produces sound.
//
// A Source maps a time in seconds to an amplitude. The playback engine depends only
// on this capability, so custom sources can be played without touching the engine.
//
// Vibrato is the built-in source: a looping decoded buffer with a tone on top whose
// pitch swings ±10 semitones around 440Hz once per second. Toggle switches the tone
// between two oscillator shapes while audio is playing.
//
// Example:
//
//	src, err := source.NewVibrato(buf, source.Config{})
//	src.Toggle() // square -> sine
package source
