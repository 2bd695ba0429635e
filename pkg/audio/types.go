// ABOUTME: Audio type definitions
// ABOUTME: Defines the sink format, the looping sample buffer and sample conversions
package audio

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Encoding is the numeric format of samples sent to the output device
type Encoding int

const (
	EncodingFloat32LE Encoding = iota
	EncodingSigned16LE
	EncodingUnsigned8
)

func (e Encoding) String() string {
	switch e {
	case EncodingFloat32LE:
		return "f32le"
	case EncodingSigned16LE:
		return "s16le"
	case EncodingUnsigned8:
		return "u8"
	}
	return fmt.Sprintf("encoding(%d)", int(e))
}

// BytesPerSample returns the size of one sample, or 0 for unknown encodings
func (e Encoding) BytesPerSample() int {
	switch e {
	case EncodingFloat32LE:
		return 4
	case EncodingSigned16LE:
		return 2
	case EncodingUnsigned8:
		return 1
	}
	return 0
}

// ParseEncoding parses "f32", "s16" or "u8" (with or without the le suffix)
func ParseEncoding(name string) (Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "f32", "f32le", "float32":
		return EncodingFloat32LE, nil
	case "s16", "s16le", "int16":
		return EncodingSigned16LE, nil
	case "u8", "uint8":
		return EncodingUnsigned8, nil
	}
	return EncodingFloat32LE, fmt.Errorf("unsupported sample encoding: %s", name)
}

// Format describes the negotiated output stream. It is fixed for the stream lifetime.
type Format struct {
	SampleRate int
	Channels   int
	Encoding   Encoding
}

// Validate reports whether the format can drive a stream
func (f Format) Validate() error {
	if f.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %d", f.SampleRate)
	}
	if f.Channels <= 0 {
		return fmt.Errorf("invalid channel count: %d", f.Channels)
	}
	if f.Encoding.BytesPerSample() == 0 {
		return fmt.Errorf("unsupported sample encoding: %s", f.Encoding)
	}
	return nil
}

// FrameBytes returns the number of bytes in one interleaved frame
func (f Format) FrameBytes() int {
	return f.Channels * f.Encoding.BytesPerSample()
}

// Step returns the time in seconds between two frames
func (f Format) Step() float64 {
	return 1 / float64(f.SampleRate)
}

// ErrEmptyBuffer is returned when a buffer has no samples
var ErrEmptyBuffer = errors.New("sample buffer is empty")

// Buffer is decoded mono audio tagged with its sample rate.
// It is never modified after construction, so it can be shared freely.
type Buffer struct {
	Samples    []float32
	SampleRate int
}

// NewBuffer validates and wraps samples
func NewBuffer(samples []float32, sampleRate int) (Buffer, error) {
	if len(samples) == 0 {
		return Buffer{}, ErrEmptyBuffer
	}
	if sampleRate <= 0 {
		return Buffer{}, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	return Buffer{Samples: samples, SampleRate: sampleRate}, nil
}

// Silence returns a buffer holding one second of zeros
func Silence(sampleRate int) Buffer {
	if sampleRate <= 0 {
		sampleRate = 1
	}
	return Buffer{Samples: make([]float32, sampleRate), SampleRate: sampleRate}
}

// Len returns the number of samples
func (b Buffer) Len() int { return len(b.Samples) }

// Duration returns the length of one loop in seconds
func (b Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Index maps a time to floor(t*rate) mod len, always in range
func (b Buffer) Index(t float64) int {
	n := len(b.Samples)
	if n == 0 {
		return 0
	}
	pos := math.Floor(t * float64(b.SampleRate))
	if math.IsNaN(pos) || math.IsInf(pos, 0) {
		return 0
	}
	i := int(math.Mod(pos, float64(n)))
	if i < 0 {
		i += n
	}
	return i
}

// At returns the sample played at time t; playback loops forever
func (b Buffer) At(t float64) float32 {
	if len(b.Samples) == 0 {
		return 0
	}
	return b.Samples[b.Index(t)]
}

// Clamp limits v to [-1, 1]
func Clamp(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// FloatToInt16 converts a [-1, 1] amplitude to a 16-bit sample
func FloatToInt16(v float32) int16 {
	return int16(Clamp(v) * math.MaxInt16)
}

// Int16ToFloat converts a 16-bit sample to a [-1, 1] amplitude
func Int16ToFloat(sample int16) float32 {
	return float32(sample) / math.MaxInt16
}

// FloatToUint8 converts a [-1, 1] amplitude to an unsigned 8-bit sample centred at 128
func FloatToUint8(v float32) uint8 {
	return uint8(math.Round(float64(Clamp(v))*127) + 128)
}

// IntToFloat normalizes a signed integer sample of the given bit depth
func IntToFloat(sample int32, bitDepth int) float32 {
	if bitDepth <= 0 || bitDepth > 32 {
		return 0
	}
	full := float64(int64(1)<<(bitDepth-1)) - 1
	return Clamp(float32(float64(sample) / full))
}
