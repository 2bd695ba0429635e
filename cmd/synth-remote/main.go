// ABOUTME: Command-line remote control for a running synthesizer
// ABOUTME: Finds the control server via mDNS or -server and issues one request
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/Resonate-Protocol/resonate-synth/internal/discovery"
	"github.com/Resonate-Protocol/resonate-synth/pkg/protocol"
)

var (
	serverAddr      = flag.String("server", "", "Control server address host:port (skip mDNS)")
	timeout         = flag.Duration("timeout", 5*time.Second, "Request timeout")
	discoverTimeout = flag.Duration("discover-timeout", 10*time.Second, "How long to browse for a server")
	verbose         = flag.Bool("verbose", false, "Log connection details to stderr")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: synth-remote [flags] <command>

Commands:
  time                       print the playback time
  set <seconds>              move the playback time
  seek <delta>               move the playback time relative to now
  toggle                     switch oscillator shape
  shape                      print the oscillator shape
  window <start> <end> <step> print time/amplitude pairs

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	log.SetOutput(io.Discard)
	if *verbose {
		log.SetOutput(os.Stderr)
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	addr, path, err := resolveServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, err := protocol.Dial(ctx, protocol.Config{ServerAddr: addr, Path: path})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	if err := run(ctx, client, args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		client.Close()
		os.Exit(1)
	}
}

// resolveServer returns -server or the first server found via mDNS
func resolveServer() (string, string, error) {
	if *serverAddr != "" {
		return *serverAddr, protocol.DefaultPath, nil
	}

	disc := discovery.NewManager(discovery.Config{})
	defer disc.Stop()
	disc.Browse()

	select {
	case server := <-disc.Servers():
		log.Printf("Discovered %s at %s", server.Name, server.Addr())
		return server.Addr(), server.Path, nil
	case <-time.After(*discoverTimeout):
		return "", "", fmt.Errorf("no synthesizer found after %v (use -server)", *discoverTimeout)
	}
}

// run executes one command
func run(ctx context.Context, client *protocol.Client, args []string) error {
	cmd, params := args[0], args[1:]

	nums, err := parseFloats(params)
	if err != nil {
		return err
	}

	switch cmd {
	case "time":
		t, err := client.Time(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%.3f\n", t)

	case "set", "seek":
		if len(nums) != 1 {
			return fmt.Errorf("%s takes one number", cmd)
		}
		var t float64
		if cmd == "set" {
			t, err = client.SetTime(ctx, nums[0])
		} else {
			t, err = client.Seek(ctx, nums[0])
		}
		if err != nil {
			return err
		}
		fmt.Printf("%.3f\n", t)

	case "toggle", "shape":
		var state protocol.ShapeState
		if cmd == "toggle" {
			state, err = client.Toggle(ctx)
		} else {
			state, err = client.Shape(ctx)
		}
		if err != nil {
			return err
		}
		fmt.Println(state.Shape)

	case "window":
		if len(nums) != 3 {
			return fmt.Errorf("window takes <start> <end> <step>")
		}
		points, err := client.Window(ctx, nums[0], nums[1], nums[2])
		if err != nil {
			return err
		}
		for _, p := range points {
			fmt.Printf("%.6f\t%.6f\n", p[0], p[1])
		}

	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}

	return nil
}

func parseFloats(args []string) ([]float64, error) {
	nums := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		nums[i] = v
	}
	return nums, nil
}
