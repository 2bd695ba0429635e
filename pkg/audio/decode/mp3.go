// ABOUTME: MP3 audio decoder
// ABOUTME: Decodes MP3 audio to a mono float buffer using go-mp3
package decode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/resonate-synth/pkg/audio"
	"github.com/hajimehoshi/go-mp3"
)

// MP3Decoder decodes MP3 audio
type MP3Decoder struct{}

// Decode reads the whole MP3 stream and keeps the left channel
func (d *MP3Decoder) Decode(r io.Reader) (audio.Buffer, error) {
	decoder, err := mp3.NewDecoder(r)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to create mp3 decoder: %w", err)
	}

	// go-mp3 always produces 16-bit little-endian stereo
	data, err := io.ReadAll(decoder)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("mp3 decode error: %w", err)
	}

	const frameSize = 4
	numFrames := len(data) / frameSize
	samples := make([]float32, numFrames)
	for i := 0; i < numFrames; i++ {
		sample16 := int16(binary.LittleEndian.Uint16(data[i*frameSize:]))
		samples[i] = audio.Int16ToFloat(sample16)
	}

	return audio.NewBuffer(samples, decoder.SampleRate())
}
