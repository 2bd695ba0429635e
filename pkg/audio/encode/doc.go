// ABOUTME: Audio encoder package for device sample formats
// ABOUTME: Provides Encoder interface and float32, s16 and u8 implementations
// Package encode converts float32 amplitudes into the byte layout an output device expects.
//
// Encoders write into caller-owned buffers so they can run on the real-time audio goroutine.
//
// Example:
//
//	enc, err := encode.New(audio.EncodingSigned16LE)
//	n := enc.Encode(dst, frames)
package encode
