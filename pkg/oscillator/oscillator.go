// ABOUTME: Stateless periodic waveforms for tone synthesis
// ABOUTME: Sine, square, triangle and sawtooth over a unit period
package oscillator

import (
	"fmt"
	"math"
	"strings"
)

// Func maps a time/phase value to an amplitude in [-1, 1] with period 1
type Func func(t float64) float32

// Shape names one of the built-in waveforms
type Shape int

const (
	ShapeSine Shape = iota
	ShapeSquare
	ShapeTriangle
	ShapeSawtooth
)

var shapeNames = [...]string{"sine", "square", "triangle", "sawtooth"}

func (s Shape) String() string {
	if s < 0 || int(s) >= len(shapeNames) {
		return fmt.Sprintf("shape(%d)", int(s))
	}
	return shapeNames[s]
}

// Func returns the waveform for the shape (sine for unknown shapes)
func (s Shape) Func() Func {
	switch s {
	case ShapeSquare:
		return Square
	case ShapeTriangle:
		return Triangle
	case ShapeSawtooth:
		return Sawtooth
	default:
		return Sine
	}
}

// ParseShape parses a shape name such as "sine" or "saw"
func ParseShape(name string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sine", "sin":
		return ShapeSine, nil
	case "square", "sqr":
		return ShapeSquare, nil
	case "triangle", "tri":
		return ShapeTriangle, nil
	case "sawtooth", "saw":
		return ShapeSawtooth, nil
	}
	return ShapeSine, fmt.Errorf("unknown oscillator shape: %q", name)
}

// Rem returns the floating remainder of x/y. The result takes the sign of x.
func Rem(x, y float64) float64 {
	return math.Mod(x, y)
}

// Phase wraps t into [0, 1). Equal to Rem(t, 1) for t >= 0.
func Phase(t float64) float64 {
	p := t - math.Floor(t)
	if p >= 1 {
		// t - floor(t) rounds up to 1 for tiny negative t
		p = 0
	}
	return p
}

// Sine computes sin(2πt)
func Sine(t float64) float32 {
	return float32(math.Sin(2 * math.Pi * t))
}

// Square is +1 for the first half of the period and -1 for the second
func Square(t float64) float32 {
	if Phase(t) < 0.5 {
		return 1
	}
	return -1
}

// Triangle peaks at +1 at t=0.25 and -1 at t=0.75
func Triangle(t float64) float32 {
	p := Phase(t)
	if p < 0.5 {
		return float32(1 - 4*math.Abs(p-0.25))
	}
	return float32(4*math.Abs(p-0.75) - 1)
}

// Sawtooth ramps from -1 at t=0.5 up to 1, passing 0 at integer t
func Sawtooth(t float64) float32 {
	return float32(2*Phase(t+0.5) - 1)
}
