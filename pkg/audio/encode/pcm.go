// ABOUTME: PCM sample encoders
// ABOUTME: Encodes float32 amplitudes to float32, 16-bit or 8-bit PCM bytes
package encode

import (
	"encoding/binary"
	"math"

	"github.com/Resonate-Protocol/resonate-synth/pkg/audio"
)

// Float32LE passes amplitudes through as little-endian IEEE floats
type Float32LE struct{}

func (Float32LE) BytesPerSample() int { return 4 }

func (Float32LE) Encode(dst []byte, samples []float32) int {
	for i, s := range samples {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(s))
	}
	return len(samples) * 4
}

// Signed16LE clamps amplitudes and writes 16-bit little-endian PCM
type Signed16LE struct{}

func (Signed16LE) BytesPerSample() int { return 2 }

func (Signed16LE) Encode(dst []byte, samples []float32) int {
	for i, s := range samples {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(audio.FloatToInt16(s)))
	}
	return len(samples) * 2
}

// Unsigned8 writes unsigned 8-bit PCM centred at 128
type Unsigned8 struct{}

func (Unsigned8) BytesPerSample() int { return 1 }

func (Unsigned8) Encode(dst []byte, samples []float32) int {
	for i, s := range samples {
		dst[i] = audio.FloatToUint8(s)
	}
	return len(samples)
}
