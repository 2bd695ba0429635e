// ABOUTME: WebSocket client for the synth control protocol
// ABOUTME: Handles connection, hello, and request/response calls
package protocol

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// DefaultPath is the HTTP path the control server listens on
const DefaultPath = "/control"

// ErrRemote is returned when the server answers a request with an error message
var ErrRemote = errors.New("remote error")

// Config holds client configuration
type Config struct {
	// ServerAddr is host:port of the control server
	ServerAddr string

	// Path is the WebSocket path (default: /control)
	Path string

	// Timeout bounds each call when the context has no deadline (default: 5s)
	Timeout time.Duration
}

// Client is a synchronous control connection. Calls are serialized.
type Client struct {
	config Config
	conn   *websocket.Conn
	hello  ServerHello

	mu     sync.Mutex
	closed bool
}

// Dial connects to a control server and reads its hello
func Dial(ctx context.Context, config Config) (*Client, error) {
	if config.Path == "" {
		config.Path = DefaultPath
	}
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}

	u := url.URL{Scheme: "ws", Host: config.ServerAddr, Path: config.Path}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	c := &Client{config: config, conn: conn}

	// Wait for server/hello (with timeout)
	conn.SetReadDeadline(time.Now().Add(config.Timeout))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to read server/hello: %w", err)
	}
	conn.SetReadDeadline(time.Time{})

	if msg.Type != TypeServerHello {
		conn.Close()
		return nil, fmt.Errorf("expected %s, got %s", TypeServerHello, msg.Type)
	}
	if err := DecodePayload(msg, &c.hello); err != nil {
		conn.Close()
		return nil, err
	}

	log.Printf("Connected to %s (%s, %dHz)", c.hello.Name, c.hello.ServerID, c.hello.SampleRate)
	return c, nil
}

// Hello returns the server's hello
func (c *Client) Hello() ServerHello {
	return c.hello
}

// Time returns the server's playback time
func (c *Client) Time(ctx context.Context) (float64, error) {
	var state TimeState
	err := c.call(ctx, TypeTimeGet, nil, TypeTime, &state)
	return state.Time, err
}

// SetTime moves the playback clock and returns the resulting time
func (c *Client) SetTime(ctx context.Context, t float64) (float64, error) {
	var state TimeState
	err := c.call(ctx, TypeTimeSet, TimeSet{Time: t}, TypeTime, &state)
	return state.Time, err
}

// Seek moves the playback clock by delta and returns the resulting time
func (c *Client) Seek(ctx context.Context, delta float64) (float64, error) {
	var state TimeState
	err := c.call(ctx, TypeTimeSeek, TimeSeek{Delta: delta}, TypeTime, &state)
	return state.Time, err
}

// Toggle flips the oscillator and returns the new state
func (c *Client) Toggle(ctx context.Context) (ShapeState, error) {
	var state ShapeState
	err := c.call(ctx, TypeShapeToggle, nil, TypeShape, &state)
	return state, err
}

// Shape returns the active oscillator
func (c *Client) Shape(ctx context.Context) (ShapeState, error) {
	var state ShapeState
	err := c.call(ctx, TypeShapeGet, nil, TypeShape, &state)
	return state, err
}

// Window samples the server's signal on [start, end]
func (c *Client) Window(ctx context.Context, start, end, step float64) ([][2]float64, error) {
	var result WindowResult
	req := WindowRequest{Start: start, End: end, Step: step}
	err := c.call(ctx, TypeWindow, req, TypeWindow, &result)
	return result.Points, err
}

// Close closes the connection
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return c.conn.Close()
}

// call sends a request and waits for the response carrying the same ID
func (c *Client) call(ctx context.Context, reqType string, payload interface{}, respType string, out interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("not connected")
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.Timeout)
	}
	c.conn.SetWriteDeadline(deadline)
	c.conn.SetReadDeadline(deadline)
	defer c.conn.SetReadDeadline(time.Time{})

	id := uuid.New().String()
	if err := c.conn.WriteJSON(Message{Type: reqType, ID: id, Payload: payload}); err != nil {
		return fmt.Errorf("failed to send %s: %w", reqType, err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("failed to read %s response: %w", reqType, err)
		}
		if msg.ID != id {
			log.Printf("Ignoring unsolicited %s message", msg.Type)
			continue
		}

		switch msg.Type {
		case respType:
			return DecodePayload(msg, out)
		case TypeError:
			var e ErrorMessage
			if err := DecodePayload(msg, &e); err != nil {
				return err
			}
			return fmt.Errorf("%w: %s", ErrRemote, e.Message)
		default:
			return fmt.Errorf("unexpected response to %s: %s", reqType, msg.Type)
		}
	}
}
