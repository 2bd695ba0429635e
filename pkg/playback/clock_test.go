// ABOUTME: Tests for the shared clock and the per-frame generator
// ABOUTME: Tests clamping, step size, channel fan-out and concurrent access
package playback

import (
	"math"
	"sync"
	"testing"

	"github.com/Resonate-Protocol/resonate-synth/pkg/audio"
	"github.com/Resonate-Protocol/resonate-synth/pkg/source"
)

func TestClockClamps(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{-5, 0},
		{0, 0},
		{1.5, 1.5},
		{math.NaN(), 0},
	}

	for _, tt := range tests {
		c := NewClock(tt.input)
		if c.Time() != tt.expected {
			t.Errorf("NewClock(%v).Time() = %v, expected %v", tt.input, c.Time(), tt.expected)
		}
	}
}

func TestClockAdvanceMonotonic(t *testing.T) {
	const rate = 44100
	step := 1.0 / rate
	c := NewClock(0)

	prev := c.Time()
	for i := 0; i < 10000; i++ {
		now := c.Advance(step)
		if now < prev {
			t.Fatalf("clock went backwards at step %d: %v -> %v", i, prev, now)
		}
		if math.Abs((now-prev)-step) > 1e-9 {
			t.Fatalf("unexpected step at %d: %v", i, now-prev)
		}
		prev = now
	}

	if math.Abs(c.Time()-10000*step) > 1e-9 {
		t.Errorf("expected %v after 10000 steps, got %v", 10000*step, c.Time())
	}
}

func TestClockConcurrentAccess(t *testing.T) {
	c := NewClock(0)
	valid := map[float64]bool{0: true, 1: true, 2: true}

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			c.SetTime(float64(i % 3))
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			c.SetTime(float64((i + 1) % 3))
		}
	}()

	var bad []float64
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			if v := c.Time(); !valid[v] {
				bad = append(bad, v)
			}
		}
	}()

	wg.Wait()

	if len(bad) > 0 {
		t.Errorf("observed values never set: %v", bad)
	}
}

func TestGeneratorFillsAllChannels(t *testing.T) {
	clock := NewClock(0)
	format := audio.Format{SampleRate: 10, Channels: 3, Encoding: audio.EncodingFloat32LE}
	gen := NewGenerator(clock, source.Func(func(t float64) float32 { return float32(t) }), format)

	if gen.Channels() != 3 {
		t.Errorf("expected 3 channels, got %d", gen.Channels())
	}
	if gen.Step() != 0.1 {
		t.Errorf("expected step 0.1, got %v", gen.Step())
	}

	buf := make([]float32, 12)
	frames := gen.Fill(buf)
	if frames != 4 {
		t.Fatalf("expected 4 frames, got %d", frames)
	}

	for f := 0; f < frames; f++ {
		expected := float32(float64(f+1) * 0.1)
		for ch := 0; ch < 3; ch++ {
			got := buf[f*3+ch]
			if math.Abs(float64(got-expected)) > 1e-6 {
				t.Errorf("frame %d channel %d: expected %v, got %v", f, ch, expected, got)
			}
		}
	}

	if math.Abs(clock.Time()-0.4) > 1e-9 {
		t.Errorf("expected clock at 0.4, got %v", clock.Time())
	}
}

func TestGeneratorIgnoresPartialFrame(t *testing.T) {
	clock := NewClock(0)
	format := audio.Format{SampleRate: 100, Channels: 2, Encoding: audio.EncodingFloat32LE}
	gen := NewGenerator(clock, source.Func(func(float64) float32 { return 0.5 }), format)

	buf := []float32{9, 9, 9, 9, 9}
	if frames := gen.Fill(buf); frames != 2 {
		t.Fatalf("expected 2 whole frames, got %d", frames)
	}
	if buf[4] != 9 {
		t.Errorf("trailing sample should be untouched, got %v", buf[4])
	}
	if math.Abs(clock.Time()-0.02) > 1e-12 {
		t.Errorf("expected clock to advance two steps, got %v", clock.Time())
	}
}
