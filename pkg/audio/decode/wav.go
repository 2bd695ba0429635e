// ABOUTME: WAV audio decoder
// ABOUTME: Decodes WAV audio to a mono float buffer using beep's wav package
package decode

import (
	"fmt"
	"io"

	"github.com/Resonate-Protocol/resonate-synth/pkg/audio"
	"github.com/gopxl/beep/v2/wav"
)

// WAVDecoder decodes WAV audio
type WAVDecoder struct{}

// Decode streams the whole file and keeps the left channel
func (d *WAVDecoder) Decode(r io.Reader) (audio.Buffer, error) {
	streamer, format, err := wav.Decode(r)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to decode WAV: %w", err)
	}
	defer streamer.Close()

	samples := make([]float32, 0, streamer.Len())
	chunk := make([][2]float64, 4096)
	for {
		n, ok := streamer.Stream(chunk)
		for _, frame := range chunk[:n] {
			samples = append(samples, audio.Clamp(float32(frame[0])))
		}
		if !ok {
			break
		}
	}
	if err := streamer.Err(); err != nil {
		return audio.Buffer{}, fmt.Errorf("wav decode error: %w", err)
	}

	return audio.NewBuffer(samples, int(format.SampleRate))
}
