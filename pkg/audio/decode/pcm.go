// ABOUTME: Raw PCM audio decoder
// ABOUTME: Decodes headerless 16-bit and 24-bit little-endian PCM to a mono buffer
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/resonate-synth/pkg/audio"
)

// RawFormat describes headerless PCM data
type RawFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// DefaultRawFormat is CD-quality mono
var DefaultRawFormat = RawFormat{SampleRate: 44100, Channels: 1, BitDepth: 16}

// PCMDecoder decodes raw PCM audio
type PCMDecoder struct {
	format RawFormat
}

// NewPCM creates a new PCM decoder. Zero fields take DefaultRawFormat values.
func NewPCM(format RawFormat) (*PCMDecoder, error) {
	if format.SampleRate == 0 {
		format.SampleRate = DefaultRawFormat.SampleRate
	}
	if format.Channels == 0 {
		format.Channels = DefaultRawFormat.Channels
	}
	if format.BitDepth == 0 {
		format.BitDepth = DefaultRawFormat.BitDepth
	}

	if format.BitDepth != 16 && format.BitDepth != 24 {
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", format.BitDepth)
	}
	if format.Channels < 0 || format.SampleRate < 0 {
		return nil, fmt.Errorf("invalid raw format: %+v", format)
	}

	return &PCMDecoder{format: format}, nil
}

// Decode reads all PCM data and keeps the first channel
func (d *PCMDecoder) Decode(r io.Reader) (audio.Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to read PCM data: %w", err)
	}

	width := d.format.BitDepth / 8
	frameSize := width * d.format.Channels
	numFrames := len(data) / frameSize

	samples := make([]float32, numFrames)
	for i := 0; i < numFrames; i++ {
		b := data[i*frameSize:]
		if width == 3 {
			samples[i] = audio.IntToFloat(sampleFrom24Bit(b[0], b[1], b[2]), 24)
		} else {
			samples[i] = audio.Int16ToFloat(int16(binary.LittleEndian.Uint16(b)))
		}
	}

	return audio.NewBuffer(samples, d.format.SampleRate)
}

// sampleFrom24Bit sign-extends a little-endian 24-bit sample
func sampleFrom24Bit(b0, b1, b2 byte) int32 {
	val := int32(b0) | int32(b1)<<8 | int32(b2)<<16
	if val&0x800000 != 0 {
		val |= ^0xFFFFFF
	}
	return val
}
