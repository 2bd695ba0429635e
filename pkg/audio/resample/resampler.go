// ABOUTME: Simple linear resampler for converting audio sample rates
// ABOUTME: Used to bring decoded buffers to the output device rate
package resample

import (
	"fmt"
	"math"

	"github.com/Resonate-Protocol/resonate-synth/pkg/audio"
)

// Resampler performs linear interpolation to convert mono audio between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	ratio      float64
}

// New creates a new resampler
func New(inputRate, outputRate int) (*Resampler, error) {
	if inputRate <= 0 || outputRate <= 0 {
		return nil, fmt.Errorf("invalid resample rates: %d -> %d", inputRate, outputRate)
	}
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		ratio:      float64(inputRate) / float64(outputRate),
	}, nil
}

// OutputLen returns how many samples Resample produces for n input samples
func (r *Resampler) OutputLen(n int) int {
	if n <= 0 {
		return 0
	}
	return int(math.Ceil(float64(n) / r.ratio))
}

// Resample converts input to the output rate and returns the number of samples
// written. The last input sample is held past the end of the input.
func (r *Resampler) Resample(input, output []float32) int {
	if len(input) == 0 {
		return 0
	}

	last := len(input) - 1
	n := min(len(output), r.OutputLen(len(input)))

	for i := 0; i < n; i++ {
		pos := float64(i) * r.ratio
		idx := int(pos)
		if idx >= last {
			output[i] = input[last]
			continue
		}

		// Linear interpolation
		frac := float32(pos - float64(idx))
		output[i] = input[idx]*(1-frac) + input[idx+1]*frac
	}

	return n
}

// Buffer converts a whole buffer to outputRate
func Buffer(buf audio.Buffer, outputRate int) (audio.Buffer, error) {
	if buf.SampleRate == outputRate {
		return buf, nil
	}

	r, err := New(buf.SampleRate, outputRate)
	if err != nil {
		return audio.Buffer{}, err
	}

	out := make([]float32, r.OutputLen(buf.Len()))
	out = out[:r.Resample(buf.Samples, out)]
	return audio.NewBuffer(out, outputRate)
}
