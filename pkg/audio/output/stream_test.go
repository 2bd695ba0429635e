// ABOUTME: Tests for the pull-model PCM stream and the Null sink
// ABOUTME: Tests silence, frame carry-over, encoding, panic recovery and clock pacing
package output

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/Resonate-Protocol/resonate-synth/pkg/audio"
	"github.com/Resonate-Protocol/resonate-synth/pkg/oscillator"
	"github.com/Resonate-Protocol/resonate-synth/pkg/playback"
	"github.com/Resonate-Protocol/resonate-synth/pkg/source"
)

func constant(v float32) source.Source {
	return source.Func(func(float64) float32 { return v })
}

func newTestStream(t *testing.T, format audio.Format, src source.Source) (*Stream, *playback.Clock, *[]error) {
	t.Helper()
	var reported []error
	s, err := NewStream(format, func(err error) { reported = append(reported, err) })
	if err != nil {
		t.Fatalf("failed to create stream: %v", err)
	}
	clock := playback.NewClock(0)
	s.SetGenerator(playback.NewGenerator(clock, src, format))
	return s, clock, &reported
}

func TestStreamSilenceWithoutGenerator(t *testing.T) {
	s, err := NewStream(audio.Format{SampleRate: 8000, Channels: 1, Encoding: audio.EncodingUnsigned8}, nil)
	if err != nil {
		t.Fatalf("failed to create stream: %v", err)
	}

	p := []byte{7, 7, 7}
	n, err := s.Read(p)
	if err != nil || n != 3 {
		t.Fatalf("expected 3 bytes and no error, got %d, %v", n, err)
	}
	for i, b := range p {
		if b != 0 {
			t.Errorf("byte %d: expected 0, got %d", i, b)
		}
	}
}

func TestStreamFloat32Frames(t *testing.T) {
	format := audio.Format{SampleRate: 100, Channels: 2, Encoding: audio.EncodingFloat32LE}
	s, clock, _ := newTestStream(t, format, constant(0.25))

	p := make([]byte, 10*format.FrameBytes())
	n, err := s.Read(p)
	if err != nil || n != len(p) {
		t.Fatalf("expected full read, got %d, %v", n, err)
	}

	for i := 0; i < 20; i++ {
		got := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
		if got != 0.25 {
			t.Fatalf("sample %d: expected 0.25, got %v", i, got)
		}
	}

	if math.Abs(clock.Time()-0.1) > 1e-9 {
		t.Errorf("expected clock at 0.1 after 10 frames, got %v", clock.Time())
	}
}

func TestStreamCarriesPartialFrame(t *testing.T) {
	format := audio.Format{SampleRate: 1000, Channels: 2, Encoding: audio.EncodingSigned16LE}
	src := source.Func(func(t float64) float32 { return float32(t) * 100 })
	s, clock, _ := newTestStream(t, format, src)

	// 4 bytes per frame; read 6 then 2 so a frame straddles the two reads
	first := make([]byte, 6)
	if n, _ := s.Read(first); n != 6 {
		t.Fatalf("expected 6 bytes, got %d", n)
	}
	if math.Abs(clock.Time()-0.002) > 1e-12 {
		t.Errorf("expected two frames generated, clock at %v", clock.Time())
	}

	second := make([]byte, 2)
	if n, _ := s.Read(second); n != 2 {
		t.Fatalf("expected 2 bytes, got %d", n)
	}
	if math.Abs(clock.Time()-0.002) > 1e-12 {
		t.Errorf("carried bytes should not generate a new frame, clock at %v", clock.Time())
	}

	all := append(first, second...)
	frame2left := int16(binary.LittleEndian.Uint16(all[4:]))
	frame2right := int16(binary.LittleEndian.Uint16(all[6:]))
	if frame2left != frame2right {
		t.Errorf("channels of the straddling frame differ: %d vs %d", frame2left, frame2right)
	}
	if frame2left != audio.FloatToInt16(0.2) {
		t.Errorf("expected %d, got %d", audio.FloatToInt16(0.2), frame2left)
	}
}

func TestStreamLargeRead(t *testing.T) {
	format := audio.Format{SampleRate: 48000, Channels: 1, Encoding: audio.EncodingUnsigned8}
	s, clock, _ := newTestStream(t, format, constant(0))

	p := make([]byte, chunkFrames*3+17)
	if n, _ := s.Read(p); n != len(p) {
		t.Fatalf("expected %d bytes, got %d", len(p), n)
	}

	expected := float64(len(p)) / 48000
	if math.Abs(clock.Time()-expected) > 1e-9 {
		t.Errorf("expected clock at %v, got %v", expected, clock.Time())
	}
}

func TestStreamRecoversFromSourcePanic(t *testing.T) {
	format := audio.Format{SampleRate: 100, Channels: 1, Encoding: audio.EncodingSigned16LE}
	boom := source.Func(func(float64) float32 { panic("bad sample") })
	s, _, reported := newTestStream(t, format, boom)

	p := []byte{1, 2, 3, 4}
	n, err := s.Read(p)
	if err != nil || n != len(p) {
		t.Fatalf("expected silent full read, got %d, %v", n, err)
	}
	if len(*reported) != 1 || !strings.Contains((*reported)[0].Error(), "bad sample") {
		t.Errorf("expected panic to be reported, got %v", *reported)
	}
}

func TestNewStreamRejectsBadFormat(t *testing.T) {
	if _, err := NewStream(audio.Format{SampleRate: 0, Channels: 1}, nil); err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestNullSinkDrivesEngine(t *testing.T) {
	format := audio.Format{SampleRate: 1000, Channels: 2, Encoding: audio.EncodingFloat32LE}
	sink, err := NewNull(format, 0)
	if err != nil {
		t.Fatalf("failed to create sink: %v", err)
	}

	src, err := source.NewVibrato(audio.Silence(1000), source.Config{})
	if err != nil {
		t.Fatalf("failed to create source: %v", err)
	}

	// Open through the engine but pull by hand before the ticker starts
	clock := playback.NewClock(0)
	if err := sink.Open(playback.NewGenerator(clock, src, format)); err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := sink.Open(playback.NewGenerator(clock, src, format)); err == nil {
		t.Error("expected second open to fail")
	}

	sink.Pull(250)
	if math.Abs(clock.Time()-0.25) > 1e-9 {
		t.Errorf("expected clock at 0.25, got %v", clock.Time())
	}

	if err := sink.Close(); err != nil {
		t.Errorf("close failed: %v", err)
	}
}

func TestNullSinkWithEngine(t *testing.T) {
	format := audio.Format{SampleRate: 8000, Channels: 1, Encoding: audio.EncodingSigned16LE}
	sink, err := NewNull(format, 0)
	if err != nil {
		t.Fatalf("failed to create sink: %v", err)
	}

	engine, err := playback.New(constant(0), sink)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	defer engine.Close()

	if engine.State() != playback.StatePlaying {
		t.Errorf("expected playing, got %v", engine.State())
	}
}

func TestNullSinkStartBeforeOpen(t *testing.T) {
	sink, err := NewNull(audio.Format{SampleRate: 8000, Channels: 1}, 0)
	if err != nil {
		t.Fatalf("failed to create sink: %v", err)
	}
	if err := sink.Start(); err == nil {
		t.Error("expected start before open to fail")
	}
}

func TestOtoFormatFor(t *testing.T) {
	for _, enc := range []audio.Encoding{audio.EncodingFloat32LE, audio.EncodingSigned16LE, audio.EncodingUnsigned8} {
		if _, err := otoFormatFor(enc); err != nil {
			t.Errorf("unexpected error for %v: %v", enc, err)
		}
	}
	if _, err := otoFormatFor(audio.Encoding(5)); err == nil {
		t.Error("expected error for unknown encoding")
	}
}

func TestShapeIndependentOfStream(t *testing.T) {
	// Square tone only: every sample is ±gain
	shapes := [2]oscillator.Shape{oscillator.ShapeSquare, oscillator.ShapeSquare}
	src, err := source.NewVibrato(audio.Silence(100), source.Config{Shapes: &shapes})
	if err != nil {
		t.Fatalf("failed to create source: %v", err)
	}

	format := audio.Format{SampleRate: 100, Channels: 1, Encoding: audio.EncodingFloat32LE}
	s, _, _ := newTestStream(t, format, src)

	p := make([]byte, 50*4)
	s.Read(p)
	for i := 0; i < 50; i++ {
		v := math.Float32frombits(binary.LittleEndian.Uint32(p[i*4:]))
		if v != 0.125 && v != -0.125 {
			t.Fatalf("sample %d: expected ±0.125, got %v", i, v)
		}
	}
}
