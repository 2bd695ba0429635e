// ABOUTME: Encoder interface definition
// ABOUTME: Common interface for converting float frames into device sample bytes
package encode

import (
	"fmt"

	"github.com/Resonate-Protocol/resonate-synth/pkg/audio"
)

// Encoder converts float32 amplitudes into raw PCM bytes
type Encoder interface {
	// Encode writes samples into dst and returns the number of bytes written.
	// dst must hold at least len(samples)*BytesPerSample bytes. It never allocates.
	Encode(dst []byte, samples []float32) int

	// BytesPerSample returns the encoded size of a single sample
	BytesPerSample() int
}

// New returns the encoder for the given sample encoding
func New(enc audio.Encoding) (Encoder, error) {
	switch enc {
	case audio.EncodingFloat32LE:
		return Float32LE{}, nil
	case audio.EncodingSigned16LE:
		return Signed16LE{}, nil
	case audio.EncodingUnsigned8:
		return Unsigned8{}, nil
	}
	return nil, fmt.Errorf("unsupported sample encoding: %s", enc)
}
