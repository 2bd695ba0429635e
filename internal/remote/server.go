// ABOUTME: WebSocket control server for the synthesizer
// ABOUTME: Serves time, shape and window requests from remote clients
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/Resonate-Protocol/resonate-synth/internal/discovery"
	"github.com/Resonate-Protocol/resonate-synth/internal/version"
	"github.com/Resonate-Protocol/resonate-synth/pkg/audio"
	"github.com/Resonate-Protocol/resonate-synth/pkg/oscillator"
	"github.com/Resonate-Protocol/resonate-synth/pkg/playback"
	"github.com/Resonate-Protocol/resonate-synth/pkg/protocol"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// DefaultPort is the control server port
	DefaultPort = 8928

	// DefaultMaxWindowPoints caps a single window response
	DefaultMaxWindowPoints = 4096
)

// Controller is the part of the synthesizer exposed to remote clients
type Controller interface {
	Time() float64
	SetTime(t float64)
	Seek(delta float64) float64
	Window(start, end, step float64) (iter.Seq2[float64, float32], bool)
	Toggle() bool
	Shape() oscillator.Shape
	Alternate() bool
}

// Config configures the control server
type Config struct {
	// Port to listen on (default: 8928)
	Port int

	// Name of the server for identification
	Name string

	// Controller is the synthesizer being controlled (required)
	Controller Controller

	// Format is reported in server/hello
	Format audio.Format

	// MaxWindowPoints bounds window responses (default: 4096)
	MaxWindowPoints int

	// EnableMDNS advertises the server on the local network
	EnableMDNS bool
}

// Server is a WebSocket control server
type Server struct {
	config   Config
	serverID string

	upgrader   websocket.Upgrader
	httpServer *http.Server
	mux        *http.ServeMux

	clients   map[*client]struct{}
	clientsMu sync.Mutex

	mdnsManager *discovery.Manager

	stopChan   chan struct{}
	stopOnce   sync.Once
	shutdownMu sync.RWMutex
	isShutdown bool
	wg         sync.WaitGroup
}

// client is a connected remote
type client struct {
	conn     *websocket.Conn
	addr     string
	sendChan chan protocol.Message
}

// NewServer creates a new control server
func NewServer(config Config) (*Server, error) {
	if config.Port == 0 {
		config.Port = DefaultPort
	}
	if config.Name == "" {
		config.Name = version.Product
	}
	if config.MaxWindowPoints <= 0 {
		config.MaxWindowPoints = DefaultMaxWindowPoints
	}
	if config.Controller == nil {
		return nil, fmt.Errorf("controller is required")
	}

	s := &Server{
		config:   config,
		serverID: uuid.New().String(),
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Local network control surface, accept all origins
				return true
			},
		},
		clients:  make(map[*client]struct{}),
		stopChan: make(chan struct{}),
	}
	s.mux.HandleFunc(protocol.DefaultPath, s.handleWebSocket)

	return s, nil
}

// ID returns the server's unique ID
func (s *Server) ID() string {
	return s.serverID
}

// Handler returns the HTTP handler serving the control endpoint
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens for connections and blocks until Stop is called
func (s *Server) Start() error {
	log.Printf("Control server starting: %s (ID: %s)", s.config.Name, s.serverID)

	if s.config.EnableMDNS {
		s.mdnsManager = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        s.config.Port,
			ID:          s.serverID,
			Version:     version.Version,
		})

		if err := s.mdnsManager.Advertise(); err != nil {
			log.Printf("Failed to start mDNS advertisement: %v", err)
		} else {
			log.Printf("mDNS advertisement started")
		}
	}

	addr := fmt.Sprintf(":%d", s.config.Port)
	log.Printf("Control server listening on %s%s", addr, protocol.DefaultPath)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-s.stopChan:
		log.Printf("Control server shutting down...")
	case err := <-errChan:
		if s.mdnsManager != nil {
			s.mdnsManager.Stop()
		}
		return fmt.Errorf("control server error: %w", err)
	}

	s.shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	s.wg.Wait()
	log.Printf("Control server stopped cleanly")

	return nil
}

// Stop stops the server
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// shutdown refuses new connections and closes open ones
func (s *Server) shutdown() {
	s.shutdownMu.Lock()
	s.isShutdown = true
	s.shutdownMu.Unlock()

	if s.mdnsManager != nil {
		s.mdnsManager.Stop()
	}

	// Hijacked connections are not closed by http.Server.Shutdown
	s.clientsMu.Lock()
	for c := range s.clients {
		c.conn.Close()
	}
	s.clientsMu.Unlock()
}

// Clients returns the number of connected clients
func (s *Server) Clients() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}

// handleWebSocket handles WebSocket connections
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.shutdownMu.RLock()
	shutdown := s.isShutdown
	s.shutdownMu.RUnlock()
	if shutdown {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	log.Printf("New control connection from %s", r.RemoteAddr)
	s.handleConnection(conn, r.RemoteAddr)
}

// handleConnection manages a client connection
func (s *Server) handleConnection(conn *websocket.Conn, addr string) {
	defer conn.Close()

	c := &client{
		conn:     conn,
		addr:     addr,
		sendChan: make(chan protocol.Message, 32),
	}

	s.clientsMu.Lock()
	s.clients[c] = struct{}{}
	s.clientsMu.Unlock()

	done := make(chan struct{})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.clientWriter(c, done)
	}()

	defer func() {
		close(done)
		s.clientsMu.Lock()
		delete(s.clients, c)
		s.clientsMu.Unlock()
		log.Printf("Control client disconnected: %s", c.addr)
	}()

	hello := protocol.ServerHello{
		ServerID:   s.serverID,
		Name:       s.config.Name,
		Version:    protocol.ProtocolVersion,
		Software:   version.Version,
		SampleRate: s.config.Format.SampleRate,
		Channels:   s.config.Format.Channels,
	}
	if err := s.send(c, protocol.Message{Type: protocol.TypeServerHello, Payload: hello}); err != nil {
		log.Printf("Error sending server hello: %v", err)
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}

		var msg protocol.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.send(c, errorMessage("", fmt.Sprintf("malformed message: %v", err)))
			continue
		}

		if err := s.send(c, s.handleRequest(msg)); err != nil {
			log.Printf("Dropping response to %s: %v", c.addr, err)
		}
	}
}

// clientWriter sends queued messages and keeps the connection alive
func (s *Server) clientWriter(c *client, done <-chan struct{}) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	const writeDeadline = 10 * time.Second

	for {
		select {
		case <-done:
			return

		case msg := <-c.sendChan:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("Write error to %s: %v", c.addr, err)
				c.conn.Close()
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeDeadline)); err != nil {
				c.conn.Close()
				return
			}
		}
	}
}

// send queues a message without blocking the reader
func (s *Server) send(c *client, msg protocol.Message) error {
	select {
	case c.sendChan <- msg:
		return nil
	default:
		return fmt.Errorf("client send buffer full")
	}
}

// handleRequest serves a single request
func (s *Server) handleRequest(msg protocol.Message) protocol.Message {
	ctrl := s.config.Controller

	switch msg.Type {
	case protocol.TypeTimeGet:
		return timeMessage(msg.ID, ctrl.Time())

	case protocol.TypeTimeSet:
		var req protocol.TimeSet
		if err := protocol.DecodePayload(msg, &req); err != nil {
			return errorMessage(msg.ID, err.Error())
		}
		ctrl.SetTime(req.Time)
		return timeMessage(msg.ID, ctrl.Time())

	case protocol.TypeTimeSeek:
		var req protocol.TimeSeek
		if err := protocol.DecodePayload(msg, &req); err != nil {
			return errorMessage(msg.ID, err.Error())
		}
		return timeMessage(msg.ID, ctrl.Seek(req.Delta))

	case protocol.TypeShapeToggle:
		ctrl.Toggle()
		return s.shapeMessage(msg.ID)

	case protocol.TypeShapeGet:
		return s.shapeMessage(msg.ID)

	case protocol.TypeWindow:
		var req protocol.WindowRequest
		if err := protocol.DecodePayload(msg, &req); err != nil {
			return errorMessage(msg.ID, err.Error())
		}
		return s.windowMessage(msg.ID, req)

	default:
		return errorMessage(msg.ID, fmt.Sprintf("unknown message type: %s", msg.Type))
	}
}

func (s *Server) shapeMessage(id string) protocol.Message {
	ctrl := s.config.Controller
	return protocol.Message{
		Type: protocol.TypeShape,
		ID:   id,
		Payload: protocol.ShapeState{
			Shape:     ctrl.Shape().String(),
			Alternate: ctrl.Alternate(),
		},
	}
}

func (s *Server) windowMessage(id string, req protocol.WindowRequest) protocol.Message {
	if !playback.ValidWindow(req.Start, req.End) {
		return invalidWindow(id, req)
	}

	limit := s.config.MaxWindowPoints
	n, ok := playback.WindowLen(req.Start, req.End, req.Step)
	if !ok {
		return errorMessage(id, fmt.Sprintf("window too large: count overflows (max %d)", limit))
	}
	if n > limit {
		return errorMessage(id, fmt.Sprintf("window too large: %d points (max %d)", n, limit))
	}

	window, err := playback.WindowPoints(s.config.Controller, req.Start, req.End, req.Step, limit)
	if errors.Is(err, playback.ErrInvalidWindow) {
		return invalidWindow(id, req)
	}
	if err != nil {
		return errorMessage(id, err.Error())
	}

	points := make([][2]float64, len(window))
	for i, p := range window {
		points[i] = [2]float64{p.Time, float64(p.Amplitude)}
	}

	return protocol.Message{
		Type:    protocol.TypeWindow,
		ID:      id,
		Payload: protocol.WindowResult{Points: points},
	}
}

func invalidWindow(id string, req protocol.WindowRequest) protocol.Message {
	return errorMessage(id, fmt.Sprintf("invalid window [%g, %g]", req.Start, req.End))
}

func timeMessage(id string, t float64) protocol.Message {
	return protocol.Message{Type: protocol.TypeTime, ID: id, Payload: protocol.TimeState{Time: t}}
}

func errorMessage(id, text string) protocol.Message {
	return protocol.Message{Type: protocol.TypeError, ID: id, Payload: protocol.ErrorMessage{Message: text}}
}
