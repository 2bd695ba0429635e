// ABOUTME: Audio sink implementations of the playback boundary
// ABOUTME: Provides a device-less Null sink that pulls frames on a wall-clock timer
package output

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Resonate-Protocol/resonate-synth/pkg/audio"
	"github.com/Resonate-Protocol/resonate-synth/pkg/playback"
)

var (
	_ playback.Sink = (*Oto)(nil)
	_ playback.Sink = (*Null)(nil)
)

// Null is a sink without a device. It pulls and discards frames at the format's
// sample rate, so the clock advances exactly as it would on real hardware.
type Null struct {
	stream *Stream
	period time.Duration
	buf    []byte

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	opened  bool
	started bool
}

// NewNull creates a device-less sink that wakes every period (default 10ms)
func NewNull(format audio.Format, period time.Duration) (*Null, error) {
	if period <= 0 {
		period = 10 * time.Millisecond
	}
	stream, err := NewStream(format, nil)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Null{
		stream: stream,
		period: period,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

func (n *Null) Format() audio.Format {
	return n.stream.Format()
}

func (n *Null) Open(g *playback.Generator) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.opened {
		return fmt.Errorf("output already open")
	}
	n.stream.SetGenerator(g)
	n.opened = true
	return nil
}

func (n *Null) Start() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.opened {
		return fmt.Errorf("output not opened")
	}
	if n.started {
		return nil
	}
	n.started = true

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.run()
	}()
	return nil
}

func (n *Null) Close() error {
	n.cancel()
	n.wg.Wait()
	n.stream.SetGenerator(nil)
	return nil
}

// Pull reads the given number of frames immediately, as a device callback would.
// It must not be called while the sink is started.
func (n *Null) Pull(frames int) {
	need := frames * n.stream.frameBytes
	if cap(n.buf) < need {
		n.buf = make([]byte, need)
	}
	n.stream.Read(n.buf[:need])
}

func (n *Null) run() {
	ticker := time.NewTicker(n.period)
	defer ticker.Stop()

	rate := float64(n.stream.Format().SampleRate)
	last := time.Now()
	var owed float64

	for {
		select {
		case <-n.ctx.Done():
			return
		case now := <-ticker.C:
			owed += now.Sub(last).Seconds() * rate
			last = now
			frames := int(owed)
			owed -= float64(frames)
			if frames > 0 {
				n.Pull(frames)
			}
		}
	}
}
