// ABOUTME: Windowed sample queries for visualization
// ABOUTME: Lazily evaluates the signal source over a time range without touching the clock
package playback

import (
	"errors"
	"iter"
	"math"

	"github.com/Resonate-Protocol/resonate-synth/pkg/source"
)

// ErrInvalidWindow describes a window with start < 0 or end < start
var ErrInvalidWindow = errors.New("invalid window range")

// maxPrealloc bounds the capacity reserved up front by WindowPoints
const maxPrealloc = 1 << 16

// Point is one sampled (time, amplitude) pair
type Point struct {
	Time      float64
	Amplitude float32
}

// Windower produces windowed samples. Engine implements it, as do the
// controllers wrapping an Engine.
type Windower interface {
	Window(start, end, step float64) (iter.Seq2[float64, float32], bool)
}

// ValidWindow reports whether [start, end] is a well-formed range
func ValidWindow(start, end float64) bool {
	return start >= 0 && end >= start
}

// windowSpan returns ceil((end-start)/step), the index of the last point.
// A non-positive or non-finite step gives 0.
func windowSpan(start, end, step float64) float64 {
	if !(step > 0) || math.IsInf(step, 0) {
		return 0
	}
	n := math.Ceil((end - start) / step)
	if math.IsNaN(n) || n < 0 {
		return 0
	}
	return n
}

// WindowLen returns the number of points in a window: ceil((end-start)/step) + 1.
// A non-positive or non-finite step gives a single point. ok is false when the
// count does not fit in an int.
func WindowLen(start, end, step float64) (n int, ok bool) {
	span := windowSpan(start, end, step)
	if span >= math.MaxInt {
		return 0, false
	}
	return int(span) + 1, true
}

// Window samples src from start to end (inclusive) every step seconds.
// It returns false when start < 0 or end < start; that is the only validation.
// The sequence is lazy: each point is evaluated when the caller reaches it.
func Window(src source.Source, start, end, step float64) (iter.Seq2[float64, float32], bool) {
	if !ValidWindow(start, end) {
		return nil, false
	}

	last := windowSpan(start, end, step)
	return func(yield func(float64, float32) bool) {
		for i := uint64(0); float64(i) <= last; i++ {
			t := start + float64(i)*step
			if !yield(t, src.AmplitudeAt(t)) {
				return
			}
		}
	}, true
}

// Window samples the engine's source. The result is independent of live playback
// and may differ from what is audible if the clock moves before it is rendered.
func (e *Engine) Window(start, end, step float64) (iter.Seq2[float64, float32], bool) {
	return Window(e.source, start, end, step)
}

// WindowPoints collects a window into a slice, capped at limit points (0 means no cap)
func WindowPoints(w Windower, start, end, step float64, limit int) ([]Point, error) {
	seq, ok := w.Window(start, end, step)
	if !ok {
		return nil, ErrInvalidWindow
	}

	n, fits := WindowLen(start, end, step)
	if limit > 0 && (!fits || n > limit) {
		n = limit
	}

	points := make([]Point, 0, min(n, maxPrealloc))
	for t, amp := range seq {
		if limit > 0 && len(points) == limit {
			break
		}
		points = append(points, Point{Time: t, Amplitude: amp})
	}
	return points, nil
}
