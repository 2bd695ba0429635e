// ABOUTME: Oto-based audio sink implementation
// ABOUTME: Lets the oto device goroutine pull frames straight from the playback generator
package output

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Resonate-Protocol/resonate-synth/pkg/audio"
	"github.com/Resonate-Protocol/resonate-synth/pkg/playback"
	"github.com/ebitengine/oto/v3"
)

// ErrSinkUnavailable is returned when no usable output device can be opened
var ErrSinkUnavailable = errors.New("audio output device unavailable")

// OtoConfig tunes the oto sink
type OtoConfig struct {
	// BufferSize is the device buffer duration (default: oto's own default)
	BufferSize time.Duration

	// OnError receives errors raised while streaming (default: log.Printf).
	// It runs on a background goroutine, never on the audio goroutine.
	OnError func(error)

	// MonitorInterval is how often the player is polled for errors (default: 500ms)
	MonitorInterval time.Duration
}

// Oto is a playback.Sink backed by an oto context. Oto allows a single
// context per process, so only one Oto sink can exist at a time.
type Oto struct {
	config  OtoConfig
	stream  *Stream
	otoCtx  *oto.Context
	player  *oto.Player
	ctx     context.Context
	cancel  context.CancelFunc
	errs    chan error
	dropped atomic.Int64
	wg      sync.WaitGroup

	mu      sync.Mutex
	started bool
	closed  bool
}

// NewOto opens the default output device with the requested format
func NewOto(format audio.Format, config OtoConfig) (*Oto, error) {
	if config.OnError == nil {
		config.OnError = func(err error) {
			log.Printf("Audio stream error: %v", err)
		}
	}
	if config.MonitorInterval == 0 {
		config.MonitorInterval = 500 * time.Millisecond
	}

	otoFormat, err := otoFormatFor(format.Encoding)
	if err != nil {
		return nil, err
	}

	o := &Oto{
		config: config,
		errs:   make(chan error, 16),
	}

	o.stream, err = NewStream(format, o.report)
	if err != nil {
		return nil, err
	}

	op := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       otoFormat,
		BufferSize:   config.BufferSize,
	}

	otoCtx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSinkUnavailable, err)
	}
	<-readyChan

	o.otoCtx = otoCtx
	o.ctx, o.cancel = context.WithCancel(context.Background())

	log.Printf("Audio output initialized: %dHz, %d channels, %s",
		format.SampleRate, format.Channels, format.Encoding)

	return o, nil
}

// Format returns the device format
func (o *Oto) Format() audio.Format {
	return o.stream.Format()
}

// Open creates the oto player that pulls from the generator
func (o *Oto) Open(g *playback.Generator) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return fmt.Errorf("output closed")
	}
	if o.player != nil {
		return fmt.Errorf("output already open")
	}
	if err := o.otoCtx.Err(); err != nil {
		return fmt.Errorf("oto context error: %w", err)
	}
	if g.Channels() != o.stream.Format().Channels {
		return fmt.Errorf("generator has %d channels, device has %d",
			g.Channels(), o.stream.Format().Channels)
	}

	o.stream.SetGenerator(g)
	o.player = o.otoCtx.NewPlayer(o.stream)
	return nil
}

// Start begins playback and the error monitor
func (o *Oto) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player == nil {
		return fmt.Errorf("output not opened")
	}
	if o.started {
		return nil
	}
	if err := o.otoCtx.Err(); err != nil {
		return fmt.Errorf("oto context error: %w", err)
	}

	o.player.Play()
	o.started = true

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.monitor()
	}()

	return nil
}

// Close stops playback and suspends the device
func (o *Oto) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	o.mu.Unlock()

	o.cancel()
	o.wg.Wait()

	var errs []error
	if o.player != nil {
		if err := o.player.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close player: %w", err))
		}
		o.player = nil
	}
	o.stream.SetGenerator(nil)
	if err := o.otoCtx.Suspend(); err != nil {
		errs = append(errs, fmt.Errorf("failed to suspend oto context: %w", err))
	}

	if n := o.dropped.Load(); n > 0 {
		log.Printf("Audio output dropped %d error reports", n)
	}
	return errors.Join(errs...)
}

// report queues an error from the audio goroutine without blocking
func (o *Oto) report(err error) {
	select {
	case o.errs <- err:
	default:
		o.dropped.Add(1)
	}
}

// monitor forwards queued stream errors and polls the player for device errors
func (o *Oto) monitor() {
	ticker := time.NewTicker(o.config.MonitorInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		select {
		case <-o.ctx.Done():
			return
		case err := <-o.errs:
			o.config.OnError(err)
		case <-ticker.C:
			err := o.player.Err()
			if err == nil {
				err = o.otoCtx.Err()
			}
			if err != nil && err != lastErr {
				o.config.OnError(fmt.Errorf("device error: %w", err))
			}
			lastErr = err
		}
	}
}

// otoFormatFor maps a sample encoding to oto's format constants
func otoFormatFor(enc audio.Encoding) (oto.Format, error) {
	switch enc {
	case audio.EncodingFloat32LE:
		return oto.FormatFloat32LE, nil
	case audio.EncodingSigned16LE:
		return oto.FormatSignedInt16LE, nil
	case audio.EncodingUnsigned8:
		return oto.FormatUnsignedInt8, nil
	}
	return 0, fmt.Errorf("unsupported sample encoding for oto: %s", enc)
}
