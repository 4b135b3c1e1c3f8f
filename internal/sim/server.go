package sim

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/aquaclean/internal/discovery"
	"github.com/muurk/aquaclean/internal/logging"
)

// Config holds the simulator configuration
type Config struct {
	Host     string
	Port     int
	Serial   string // Appliance serial announced over mDNS
	MAC      string // Appliance MAC announced over mDNS
	Announce bool   // Register the bridge service over mDNS
	LogLevel string
}

// Server is a simulated AquaClean bridge: a WebSocket endpoint backed by an
// in-memory appliance model, optionally announced over mDNS like the real
// bridge firmware.
type Server struct {
	config    *Config
	appliance *Appliance

	httpServer *http.Server
	mdns       *zeroconf.Server
	upgrader   websocket.Upgrader

	wg          sync.WaitGroup
	mu          sync.Mutex
	activeConns map[string]*websocket.Conn
}

// New creates a new simulator instance
func New(config *Config, appliance *Appliance) (*Server, error) {
	if err := logging.Initialize(config.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	return &Server{
		config:    config,
		appliance: appliance,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		activeConns: make(map[string]*websocket.Conn),
	}, nil
}

// Start starts the simulator and blocks until shutdown
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	logging.Info("Starting AquaClean bridge simulator",
		zap.String("addr", addr),
		zap.String("serial", s.config.Serial),
		zap.Bool("announce", s.config.Announce),
		zap.String("log_level", s.config.LogLevel),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/link", s.handleLink)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.httpServer = &http.Server{Handler: mux}

	if s.config.Announce {
		if err := s.announce(); err != nil {
			listener.Close()
			return fmt.Errorf("failed to announce service: %w", err)
		}
	}

	logging.Info("Simulator listening for connections", zap.String("addr", addr))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
			return
		}
		errChan <- nil
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping simulator...")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// announce registers the bridge service over mDNS with the TXT records the
// discovery package expects.
func (s *Server) announce() error {
	instance := fmt.Sprintf("aquaclean-bridge-%s", s.config.Serial)
	txt := []string{
		fmt.Sprintf("serial=%s", s.config.Serial),
		fmt.Sprintf("mac=%s", s.config.MAC),
	}

	server, err := zeroconf.Register(
		instance,
		discovery.ServiceType,
		discovery.ServiceDomain,
		s.config.Port,
		txt,
		nil,
	)
	if err != nil {
		return err
	}

	s.mdns = server
	logging.Info("Announced bridge service over mDNS",
		zap.String("instance", instance),
		zap.String("service", discovery.ServiceType),
	)
	return nil
}

// handleLink upgrades one client connection and relays packets to the
// appliance model.
func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	remoteAddr := conn.RemoteAddr().String()

	s.mu.Lock()
	s.activeConns[remoteAddr] = conn
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.serveConnection(conn, remoteAddr)
	}()
}

// serveConnection runs the request loop for one client.
func (s *Server) serveConnection(conn *websocket.Conn, remoteAddr string) {
	logging.LogConnection(remoteAddr, "connection_accepted")

	defer func() {
		_ = conn.Close()
		s.mu.Lock()
		delete(s.activeConns, remoteAddr)
		s.mu.Unlock()
		logging.LogConnection(remoteAddr, "connection_closed")
	}()

	for {
		messageType, packet, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Warn("Connection error",
					zap.String("remote_addr", remoteAddr),
					zap.Error(err),
				)
			}
			return
		}
		if messageType != websocket.BinaryMessage {
			logging.Debug("Ignoring non-binary message",
				zap.String("remote_addr", remoteAddr),
				zap.Int("type", messageType),
			)
			continue
		}

		logging.LogRawBytes("simulator received", packet)

		for _, response := range s.appliance.Handle(packet) {
			logging.LogRawBytes("simulator sending", response)
			if err := conn.WriteMessage(websocket.BinaryMessage, response); err != nil {
				logging.Error("Failed to write response",
					zap.String("remote_addr", remoteAddr),
					zap.Error(err),
				)
				return
			}
		}
	}
}

// Shutdown gracefully shuts down the simulator
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down simulator...")

	if s.mdns != nil {
		s.mdns.Shutdown()
	}

	if s.httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			logging.Error("Error shutting down HTTP server", zap.Error(err))
		}
	}

	s.mu.Lock()
	for addr, conn := range s.activeConns {
		logging.Info("Closing active connection", zap.String("remote_addr", addr))
		_ = conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All connections closed gracefully")
	case <-time.After(10 * time.Second):
		logging.Warn("Shutdown timeout after 10 seconds, forcing close")
	}

	logging.Sync()

	return nil
}

// GetActiveConnections returns the number of active connections
func (s *Server) GetActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}
