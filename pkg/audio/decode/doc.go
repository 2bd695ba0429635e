// ABOUTME: Audio decoder package for loading sample buffers
// ABOUTME: Provides Decoder interface and implementations for MP3, FLAC, WAV and raw PCM
// Package decode loads audio files into the mono sample buffer the synthesizer loops.
//
// Supports: MP3 (go-mp3), FLAC (mewkiz/flac), WAV (beep), raw 16/24-bit PCM.
//
// Only the first channel is kept and samples are normalized to [-1, 1]. File can
// resample the result to the output rate; the conversion is approximate.
//
// Example:
//
//	buf, err := decode.File("cow.mp3", decode.Options{TargetRate: 48000})
package decode
