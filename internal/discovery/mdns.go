// ABOUTME: mDNS service discovery for the synth control server
// ABOUTME: Handles both advertisement (server) and browsing (remote CLI)
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the DNS-SD service type of the control server
const ServiceType = "_resonate-synth._tcp"

// Config holds discovery configuration
type Config struct {
	ServiceName string
	Port        int

	// ID is the server's unique ID, published in TXT
	ID string

	// Version is the software version, published in TXT
	Version string

	// Path is the WebSocket path (default: /control)
	Path string

	// BrowseTimeout bounds each browse query (default: 3s)
	BrowseTimeout time.Duration
}

// Manager handles mDNS operations
type Manager struct {
	config  Config
	ctx     context.Context
	cancel  context.CancelFunc
	servers chan *ServerInfo

	mu     sync.Mutex
	server *mdns.Server
}

// ServerInfo describes a discovered server
type ServerInfo struct {
	Name    string
	Host    string
	Port    int
	ID      string
	Path    string
	Version string
}

// Addr returns host:port
func (s *ServerInfo) Addr() string {
	return net.JoinHostPort(s.Host, fmt.Sprintf("%d", s.Port))
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	if config.Path == "" {
		config.Path = "/control"
	}
	if config.BrowseTimeout == 0 {
		config.BrowseTimeout = 3 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config:  config,
		ctx:     ctx,
		cancel:  cancel,
		servers: make(chan *ServerInfo, 10),
	}
}

// txtRecords builds the TXT fields published with the service
func (m *Manager) txtRecords() []string {
	txt := []string{"path=" + m.config.Path}
	if m.config.ID != "" {
		txt = append(txt, "id="+m.config.ID)
	}
	if m.config.Version != "" {
		txt = append(txt, "version="+m.config.Version)
	}
	return txt
}

// Advertise advertises the control server via mDNS
func (m *Manager) Advertise() error {
	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		m.config.ServiceName,
		ServiceType,
		"",
		"",
		m.config.Port,
		ips,
		m.txtRecords(),
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	m.mu.Lock()
	m.server = server
	m.mu.Unlock()

	log.Printf("Advertising mDNS service: %s on port %d (type: %s)", m.config.ServiceName, m.config.Port, ServiceType)

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()

	return nil
}

// Browse searches for control servers until Stop is called
func (m *Manager) Browse() error {
	go m.browseLoop()
	return nil
}

// browseLoop continuously browses for servers
func (m *Manager) browseLoop() {
	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		entries := make(chan *mdns.ServiceEntry, 10)
		done := make(chan struct{})

		go func() {
			defer close(done)
			for entry := range entries {
				server := serverFromEntry(entry)
				if server == nil {
					continue
				}

				log.Printf("Discovered server: %s at %s", server.Name, server.Addr())

				select {
				case m.servers <- server:
				case <-m.ctx.Done():
				}
			}
		}()

		params := mdns.DefaultParams(ServiceType)
		params.Timeout = m.config.BrowseTimeout
		params.Entries = entries
		params.DisableIPv6 = true

		if err := mdns.Query(params); err != nil {
			log.Printf("mDNS query failed: %v", err)
			// Avoid spinning when the network is unavailable
			select {
			case <-time.After(m.config.BrowseTimeout):
			case <-m.ctx.Done():
			}
		}
		close(entries)
		<-done
	}
}

// serverFromEntry converts a browse result, or returns nil if it has no IPv4 address
func serverFromEntry(entry *mdns.ServiceEntry) *ServerInfo {
	if entry.AddrV4 == nil {
		return nil
	}

	txt := parseTXT(entry.InfoFields)
	path := txt["path"]
	if path == "" {
		path = "/control"
	}

	return &ServerInfo{
		Name:    strings.TrimSuffix(entry.Name, "."+ServiceType+".local."),
		Host:    entry.AddrV4.String(),
		Port:    entry.Port,
		ID:      txt["id"],
		Path:    path,
		Version: txt["version"],
	}
}

// parseTXT splits key=value TXT fields
func parseTXT(fields []string) map[string]string {
	txt := make(map[string]string, len(fields))
	for _, field := range fields {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		txt[strings.ToLower(key)] = value
	}
	return txt
}

// Servers returns the channel of discovered servers
func (m *Manager) Servers() <-chan *ServerInfo {
	return m.servers
}

// Stop stops advertisement and browsing
func (m *Manager) Stop() {
	m.cancel()
}

// getLocalIPs returns local IP addresses
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}
