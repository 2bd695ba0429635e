// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes FLAC audio to a mono float buffer using mewkiz/flac
package decode

import (
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/resonate-synth/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLACDecoder decodes FLAC audio
type FLACDecoder struct{}

// Decode parses every frame and keeps the first subframe
func (d *FLACDecoder) Decode(r io.Reader) (audio.Buffer, error) {
	stream, err := flac.New(r)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to decode FLAC: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	bitDepth := int(info.BitsPerSample)

	var samples []float32
	if info.NSamples > 0 {
		samples = make([]float32, 0, info.NSamples)
	}

	for {
		frame, err := stream.ParseNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return audio.Buffer{}, fmt.Errorf("flac frame error: %w", err)
		}

		for _, sample := range frame.Subframes[0].Samples[:frame.BlockSize] {
			samples = append(samples, audio.IntToFloat(sample, bitDepth))
		}
	}

	return audio.NewBuffer(samples, int(info.SampleRate))
}
