// ABOUTME: Entry point for the Resonate synthesizer
// ABOUTME: Parses CLI flags, wires decoder, source, sink and engine, then runs the TUI or remote control
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Resonate-Protocol/resonate-synth/internal/remote"
	"github.com/Resonate-Protocol/resonate-synth/internal/ui"
	"github.com/Resonate-Protocol/resonate-synth/internal/version"
	"github.com/Resonate-Protocol/resonate-synth/pkg/audio"
	"github.com/Resonate-Protocol/resonate-synth/pkg/audio/decode"
	"github.com/Resonate-Protocol/resonate-synth/pkg/audio/output"
	"github.com/Resonate-Protocol/resonate-synth/pkg/oscillator"
	"github.com/Resonate-Protocol/resonate-synth/pkg/playback"
	"github.com/Resonate-Protocol/resonate-synth/pkg/source"
	tea "github.com/charmbracelet/bubbletea"
)

var (
	file        = flag.String("file", "", "Audio file to loop under the tone (mp3, flac, wav, raw)")
	rate        = flag.Int("rate", 44100, "Output sample rate")
	channels    = flag.Int("channels", 2, "Output channel count")
	format      = flag.String("format", "f32", "Output sample encoding (f32, s16, u8)")
	bufferMs    = flag.Int("buffer-ms", 0, "Device buffer in milliseconds (0 = driver default)")
	rawRate     = flag.Int("raw-rate", 44100, "Sample rate of .raw/.pcm input")
	rawChannels = flag.Int("raw-channels", 1, "Channel count of .raw/.pcm input")
	rawBits     = flag.Int("raw-bits", 16, "Bit depth of .raw/.pcm input (16 or 24)")
	baseFreq    = flag.Float64("base-freq", source.DefaultBaseFrequency, "Vibrato centre frequency in Hz")
	depth       = flag.Float64("depth", source.DefaultDepth, "Vibrato depth in semitones")
	pitchShift  = flag.Float64("pitch-shift", 0, "Transpose the tone by semitones")
	steps       = flag.Int("steps", source.DefaultSteps, "Phase integration steps")
	gain        = flag.Float64("gain", source.DefaultGain, "Tone gain")
	shape       = flag.String("shape", "square", "Waveform while the toggle is off")
	altShape    = flag.String("alt-shape", "sine", "Waveform while the toggle is on")
	seekStep    = flag.Float64("seek-step", 0.5, "Arrow key seek in seconds")
	window      = flag.Float64("window", 0.1, "Visualized window in seconds")
	resample    = flag.Bool("resample", true, "Resample the file to the output rate")
	remotePort  = flag.Int("remote-port", 0, "Serve the control protocol on this port (0 = disabled)")
	enableMDNS  = flag.Bool("mdns", true, "Advertise the control server via mDNS")
	nullSink    = flag.Bool("null-sink", false, "Discard audio instead of opening a device")
	logFile     = flag.String("log-file", "resonate-synth.log", "Log file path")
	noTUI       = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", version.Product, version.Version)
		return
	}

	useTUI := !*noTUI

	// Set up logging
	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		// Streaming logs mode: log to both stdout and file
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	log.Printf("Starting %s %s", version.Product, version.Version)

	enc, err := audio.ParseEncoding(*format)
	if err != nil {
		log.Fatalf("Invalid -format: %v", err)
	}
	sinkFormat := audio.Format{SampleRate: *rate, Channels: *channels, Encoding: enc}
	if err := sinkFormat.Validate(); err != nil {
		log.Fatalf("Invalid output format: %v", err)
	}

	shapes, err := parseShapes(*shape, *altShape)
	if err != nil {
		log.Fatalf("Invalid shape: %v", err)
	}

	buf, err := loadBuffer(sinkFormat.SampleRate)
	if err != nil {
		log.Fatalf("Failed to load audio: %v", err)
	}

	vibrato, err := source.NewVibrato(buf, source.Config{
		BaseFrequency: *baseFreq,
		Depth:         *depth,
		PitchShift:    *pitchShift,
		Steps:         *steps,
		Gain:          *gain,
		Shapes:        shapes,
	})
	if err != nil {
		log.Fatalf("Failed to create source: %v", err)
	}

	sink, err := openSink(sinkFormat)
	if err != nil {
		log.Fatalf("Failed to open audio output: %v", err)
	}

	engine, err := playback.New(vibrato, sink)
	if err != nil {
		log.Fatalf("Failed to start playback: %v", err)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			log.Printf("Error closing engine: %v", err)
		}
	}()

	ctrl := &synth{Engine: engine, vibrato: vibrato}

	// Remote control
	var server *remote.Server
	if *remotePort > 0 {
		server, err = remote.NewServer(remote.Config{
			Port:       *remotePort,
			Name:       hostName(),
			Controller: ctrl,
			Format:     engine.Format(),
			EnableMDNS: *enableMDNS,
		})
		if err != nil {
			log.Fatalf("Failed to create control server: %v", err)
		}
		go func() {
			if err := server.Start(); err != nil {
				log.Printf("Control server error: %v", err)
			}
		}()
		defer server.Stop()
	}

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if !useTUI {
		<-sigChan
		log.Printf("Shutdown signal received")
		return
	}

	quit := make(chan struct{}, 1)
	prog, err := ui.Run(ctrl, ui.Config{
		SeekStep: *seekStep,
		Window:   *window,
		Title:    fmt.Sprintf("%s %s", version.Product, version.Version),
		Quit:     quit,
	})
	if err != nil {
		log.Fatalf("Failed to start TUI: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := prog.Run(); err != nil {
			log.Printf("TUI error: %v", err)
		}
	}()

	select {
	case <-quit:
		log.Printf("Received quit signal from TUI")
	case <-sigChan:
		log.Printf("Shutdown signal received")
		prog.Quit()
	case <-done:
	}
	waitTUI(prog, done)

	log.Printf("Synthesizer stopped")
}

// waitTUI gives the program a moment to restore the terminal
func waitTUI(prog *tea.Program, done <-chan struct{}) {
	select {
	case <-done:
	case <-time.After(time.Second):
		prog.Kill()
	}
}

// loadBuffer decodes -file, or returns one second of silence
func loadBuffer(outputRate int) (audio.Buffer, error) {
	if *file == "" {
		log.Printf("No -file given, looping silence")
		return audio.Silence(outputRate), nil
	}

	opts := decode.Options{
		Raw: decode.RawFormat{
			SampleRate: *rawRate,
			Channels:   *rawChannels,
			BitDepth:   *rawBits,
		},
	}
	if *resample {
		opts.TargetRate = outputRate
	}
	return decode.File(*file, opts)
}

// openSink opens the audio device, or a null sink when requested
func openSink(format audio.Format) (playback.Sink, error) {
	if *nullSink {
		log.Printf("Using null sink")
		return output.NewNull(format, 0)
	}
	return output.NewOto(format, output.OtoConfig{
		BufferSize: time.Duration(*bufferMs) * time.Millisecond,
	})
}

// parseShapes parses the toggle's two waveforms
func parseShapes(off, on string) (*[2]oscillator.Shape, error) {
	first, err := oscillator.ParseShape(off)
	if err != nil {
		return nil, err
	}
	second, err := oscillator.ParseShape(on)
	if err != nil {
		return nil, err
	}
	return &[2]oscillator.Shape{first, second}, nil
}

func hostName() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return fmt.Sprintf("%s-resonate-synth", hostname)
}
