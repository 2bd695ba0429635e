// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Encoding and Buffer types and sample conversion functions
// Package audio provides the fundamental types shared by the synthesizer.
//
// This package defines:
//   - Format: the output stream binding (sample rate, channels, sample encoding)
//   - Buffer: decoded mono audio tagged with its sample rate, looped on lookup
//
// It also provides conversions between float amplitudes and integer PCM samples.
//
// Example:
//
//	buf, err := audio.NewBuffer(samples, 44100)
//	amp := buf.At(2.5) // sample at 2.5s, wrapping past the end
package audio
