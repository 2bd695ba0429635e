// ABOUTME: Pull-model PCM stream fed by the playback generator
// ABOUTME: Converts generated float frames to device bytes on the audio goroutine without allocating
package output

import (
	"fmt"
	"sync/atomic"

	"github.com/Resonate-Protocol/resonate-synth/pkg/audio"
	"github.com/Resonate-Protocol/resonate-synth/pkg/audio/encode"
	"github.com/Resonate-Protocol/resonate-synth/pkg/playback"
)

// chunkFrames bounds the scratch buffers; larger reads are served in several chunks
const chunkFrames = 2048

// Stream is an io.Reader producing encoded frames from a playback.Generator.
// Read runs on the device goroutine; SetGenerator may be called from any goroutine.
type Stream struct {
	format     audio.Format
	frameBytes int
	encoder    encode.Encoder
	gen        atomic.Pointer[playback.Generator]

	// Scratch space, only touched by Read
	frames  []float32
	encoded []byte
	pending []byte

	report func(error)
}

// NewStream creates a stream for the given format. report receives soft errors
// from the audio goroutine and must not block.
func NewStream(format audio.Format, report func(error)) (*Stream, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	enc, err := encode.New(format.Encoding)
	if err != nil {
		return nil, err
	}
	if report == nil {
		report = func(error) {}
	}

	frameBytes := format.FrameBytes()
	return &Stream{
		format:     format,
		frameBytes: frameBytes,
		encoder:    enc,
		frames:     make([]float32, chunkFrames*format.Channels),
		encoded:    make([]byte, chunkFrames*frameBytes),
		pending:    make([]byte, 0, frameBytes),
		report:     report,
	}, nil
}

// Format returns the stream format
func (s *Stream) Format() audio.Format {
	return s.format
}

// SetGenerator installs the generator Read pulls from. A nil generator plays silence.
func (s *Stream) SetGenerator(g *playback.Generator) {
	s.gen.Store(g)
}

// Read fills p with encoded frames. It always fills p completely; bytes of a
// frame that do not fit are kept and returned first on the next call.
func (s *Stream) Read(p []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.report(fmt.Errorf("audio generation panic: %v", r))
			clear(p[n:])
			n, err = len(p), nil
		}
	}()

	gen := s.gen.Load()
	if gen == nil {
		clear(p)
		return len(p), nil
	}

	if len(s.pending) > 0 {
		n = copy(p, s.pending)
		s.pending = s.pending[:copy(s.pending, s.pending[n:])]
	}

	for n < len(p) {
		frames := (len(p) - n) / s.frameBytes
		if frames == 0 {
			frames = 1
		}
		if frames > chunkFrames {
			frames = chunkFrames
		}

		buf := s.frames[:frames*s.format.Channels]
		gen.Fill(buf)

		enc := s.encoded[:s.encoder.Encode(s.encoded, buf)]
		c := copy(p[n:], enc)
		n += c

		if c < len(enc) {
			s.pending = append(s.pending[:0], enc[c:]...)
		}
	}

	return n, nil
}
