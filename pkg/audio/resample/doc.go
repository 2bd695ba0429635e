// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts mono buffers between sample rates
// Package resample provides audio sample rate conversion.
//
// Uses linear interpolation for converting between sample rates.
// Handles both upsampling and downsampling.
//
// Example:
//
//	r, err := resample.New(44100, 48000)
//	out := make([]float32, r.OutputLen(len(in)))
//	n := r.Resample(in, out)
package resample
