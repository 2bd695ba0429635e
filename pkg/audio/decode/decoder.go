// ABOUTME: Decoder interface definition and file loading
// ABOUTME: Picks a decoder by extension and produces a mono sample buffer for playback
package decode

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/Resonate-Protocol/resonate-synth/pkg/audio"
	"github.com/Resonate-Protocol/resonate-synth/pkg/audio/resample"
)

// Decoder decodes a whole encoded stream into a mono buffer (channel 0),
// normalized to [-1, 1] at the stream's native sample rate
type Decoder interface {
	Decode(r io.Reader) (audio.Buffer, error)
}

// Options controls how File loads audio
type Options struct {
	// TargetRate resamples the decoded buffer when non-zero and different from the native rate
	TargetRate int

	// Raw describes headerless .raw/.pcm files
	Raw RawFormat
}

// ForPath returns the decoder for a file extension
func ForPath(path string, raw RawFormat) (Decoder, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".mp3":
		return &MP3Decoder{}, nil
	case ".flac":
		return &FLACDecoder{}, nil
	case ".wav":
		return &WAVDecoder{}, nil
	case ".raw", ".pcm":
		return NewPCM(raw)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s (supported: .mp3, .flac, .wav, .raw, .pcm)", ext)
	}
}

// File decodes an audio file into a looping mono buffer
func File(path string, opts Options) (audio.Buffer, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return audio.Buffer{}, fmt.Errorf("audio file not found: %s", path)
	}

	decoder, err := ForPath(path, opts.Raw)
	if err != nil {
		return audio.Buffer{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	buf, err := decoder.Decode(f)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("failed to decode %s: %w", filepath.Base(path), err)
	}

	log.Printf("Loaded %s: %d samples at %dHz (%.2fs)",
		filepath.Base(path), buf.Len(), buf.SampleRate, buf.Duration())

	if opts.TargetRate > 0 && opts.TargetRate != buf.SampleRate {
		resampled, err := resample.Buffer(buf, opts.TargetRate)
		if err != nil {
			return audio.Buffer{}, err
		}
		log.Printf("Resampled %dHz -> %dHz", buf.SampleRate, opts.TargetRate)
		return resampled, nil
	}

	return buf, nil
}
