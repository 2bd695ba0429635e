// ABOUTME: Tests for the control server
// ABOUTME: Drives the server end to end through the protocol client over httptest
package remote

import (
	"context"
	"errors"
	"iter"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Resonate-Protocol/resonate-synth/pkg/audio"
	"github.com/Resonate-Protocol/resonate-synth/pkg/oscillator"
	"github.com/Resonate-Protocol/resonate-synth/pkg/playback"
	"github.com/Resonate-Protocol/resonate-synth/pkg/protocol"
	"github.com/Resonate-Protocol/resonate-synth/pkg/source"
)

// fakeController keeps a clock and an oscillator flag behind a mutex
type fakeController struct {
	mu        sync.Mutex
	clock     *playback.Clock
	alternate bool
}

func newFakeController() *fakeController {
	return &fakeController{clock: playback.NewClock(0)}
}

func (c *fakeController) Time() float64              { return c.clock.Time() }
func (c *fakeController) SetTime(t float64)          { c.clock.SetTime(t) }
func (c *fakeController) Seek(delta float64) float64 { return c.clock.Seek(delta) }

func (c *fakeController) Window(start, end, step float64) (iter.Seq2[float64, float32], bool) {
	return playback.Window(source.Func(func(t float64) float32 { return float32(t) }), start, end, step)
}

func (c *fakeController) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alternate = !c.alternate
	return c.alternate
}

func (c *fakeController) Alternate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alternate
}

func (c *fakeController) Shape() oscillator.Shape {
	if c.Alternate() {
		return oscillator.ShapeSine
	}
	return oscillator.ShapeSquare
}

func startServer(t *testing.T, config Config) (*Server, *protocol.Client) {
	t.Helper()

	if config.Controller == nil {
		config.Controller = newFakeController()
	}
	s, err := NewServer(config)
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := protocol.Dial(ctx, protocol.Config{ServerAddr: strings.TrimPrefix(ts.URL, "http://")})
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return s, client
}

func TestNewServerRequiresController(t *testing.T) {
	if _, err := NewServer(Config{}); err == nil {
		t.Error("expected error without controller")
	}
}

func TestNewServerDefaults(t *testing.T) {
	s, err := NewServer(Config{Controller: newFakeController()})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	if s.config.Port != DefaultPort {
		t.Errorf("expected port %d, got %d", DefaultPort, s.config.Port)
	}
	if s.config.MaxWindowPoints != DefaultMaxWindowPoints {
		t.Errorf("expected max window points %d, got %d", DefaultMaxWindowPoints, s.config.MaxWindowPoints)
	}
	if s.ID() == "" {
		t.Error("expected server ID")
	}
}

func TestHello(t *testing.T) {
	format := audio.Format{SampleRate: 48000, Channels: 2, Encoding: audio.EncodingFloat32LE}
	s, client := startServer(t, Config{Name: "Test Synth", Format: format})

	hello := client.Hello()
	if hello.ServerID != s.ID() {
		t.Errorf("expected server ID %s, got %s", s.ID(), hello.ServerID)
	}
	if hello.Name != "Test Synth" {
		t.Errorf("expected name Test Synth, got %s", hello.Name)
	}
	if hello.SampleRate != 48000 || hello.Channels != 2 {
		t.Errorf("unexpected format in hello: %+v", hello)
	}
	if hello.Version != protocol.ProtocolVersion {
		t.Errorf("expected protocol version %d, got %d", protocol.ProtocolVersion, hello.Version)
	}
}

func TestTimeRequests(t *testing.T) {
	ctrl := newFakeController()
	_, client := startServer(t, Config{Controller: ctrl})
	ctx := context.Background()

	got, err := client.SetTime(ctx, 2.5)
	if err != nil {
		t.Fatalf("set time failed: %v", err)
	}
	if got != 2.5 || ctrl.Time() != 2.5 {
		t.Errorf("expected 2.5, got %v (controller %v)", got, ctrl.Time())
	}

	got, err = client.Seek(ctx, -0.5)
	if err != nil {
		t.Fatalf("seek failed: %v", err)
	}
	if got != 2 {
		t.Errorf("expected 2 after seek, got %v", got)
	}

	got, err = client.Seek(ctx, -10)
	if err != nil {
		t.Fatalf("seek failed: %v", err)
	}
	if got != 0 {
		t.Errorf("expected clamp to 0, got %v", got)
	}

	if _, err := client.SetTime(ctx, -3); err != nil {
		t.Fatalf("set time failed: %v", err)
	}
	got, err = client.Time(ctx)
	if err != nil {
		t.Fatalf("time failed: %v", err)
	}
	if got != 0 {
		t.Errorf("expected negative set to clamp to 0, got %v", got)
	}
}

func TestShapeRequests(t *testing.T) {
	_, client := startServer(t, Config{})
	ctx := context.Background()

	state, err := client.Shape(ctx)
	if err != nil {
		t.Fatalf("shape failed: %v", err)
	}
	if state.Shape != "square" || state.Alternate {
		t.Errorf("expected square, got %+v", state)
	}

	state, err = client.Toggle(ctx)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if state.Shape != "sine" || !state.Alternate {
		t.Errorf("expected sine after toggle, got %+v", state)
	}
}

func TestWindowRequest(t *testing.T) {
	_, client := startServer(t, Config{})

	points, err := client.Window(context.Background(), 0, 1, 0.25)
	if err != nil {
		t.Fatalf("window failed: %v", err)
	}

	if len(points) != 5 {
		t.Fatalf("expected 5 points, got %d", len(points))
	}
	for i, p := range points {
		want := float64(i) * 0.25
		if p[0] != want || p[1] != want {
			t.Errorf("point %d: expected [%v %v], got %v", i, want, want, p)
		}
	}
}

func TestWindowRequestInvalid(t *testing.T) {
	_, client := startServer(t, Config{})

	_, err := client.Window(context.Background(), 2, 1, 0.1)
	if !errors.Is(err, protocol.ErrRemote) {
		t.Errorf("expected remote error, got %v", err)
	}
}

func TestWindowRequestTooLarge(t *testing.T) {
	_, client := startServer(t, Config{MaxWindowPoints: 10})

	_, err := client.Window(context.Background(), 0, 1, 0.01)
	if !errors.Is(err, protocol.ErrRemote) || !strings.Contains(err.Error(), "too large") {
		t.Errorf("expected too large error, got %v", err)
	}

	points, err := client.Window(context.Background(), 0, 2.25, 0.25)
	if err != nil {
		t.Fatalf("window at the cap failed: %v", err)
	}
	if len(points) != 10 {
		t.Errorf("expected 10 points, got %d", len(points))
	}
}

func TestWindowRequestLargeRangeRejected(t *testing.T) {
	_, client := startServer(t, Config{MaxWindowPoints: 10})

	tests := []struct {
		name             string
		start, end, step float64
	}{
		{"billions of points", 0, 3000, 1e-6},
		{"count overflows int", 0, 1e300, 1e-300},
	}

	for _, tt := range tests {
		points, err := client.Window(context.Background(), tt.start, tt.end, tt.step)
		if !errors.Is(err, protocol.ErrRemote) || !strings.Contains(err.Error(), "too large") {
			t.Errorf("%s: expected too large error, got err=%v points=%v", tt.name, err, points)
		}
	}
}

func TestWindowRequestInvalidBeforeSize(t *testing.T) {
	_, client := startServer(t, Config{MaxWindowPoints: 10})

	_, err := client.Window(context.Background(), -1, 1e300, 1e-300)
	if !errors.Is(err, protocol.ErrRemote) || !strings.Contains(err.Error(), "invalid window") {
		t.Errorf("expected invalid window error, got %v", err)
	}
}

func TestUnknownRequest(t *testing.T) {
	s, _ := startServer(t, Config{})

	resp := s.handleRequest(protocol.Message{Type: "volume/set", ID: "42"})
	if resp.Type != protocol.TypeError {
		t.Fatalf("expected error response, got %s", resp.Type)
	}
	if resp.ID != "42" {
		t.Errorf("expected response to echo ID 42, got %q", resp.ID)
	}
}

func TestClientsTracked(t *testing.T) {
	s, client := startServer(t, Config{})

	// The client is registered once its hello has been read
	if _, err := client.Time(context.Background()); err != nil {
		t.Fatalf("time failed: %v", err)
	}
	if n := s.Clients(); n != 1 {
		t.Errorf("expected 1 client, got %d", n)
	}

	client.Close()
	deadline := time.Now().Add(2 * time.Second)
	for s.Clients() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := s.Clients(); n != 0 {
		t.Errorf("expected 0 clients after close, got %d", n)
	}
}
