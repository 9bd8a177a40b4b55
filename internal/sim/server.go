package sim

import (
	"context"
	"crypto/tls"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fossabot/rodbus/internal/logging"
)

// Config holds the simulator configuration
type Config struct {
	Host         string
	Port         int
	CertPath     string // Path to certificate file (enables TLS together with KeyPath)
	KeyPath      string // Path to private key file
	GenerateCert bool   // If true, serve TLS with an auto-generated self-signed certificate
	LogLevel     string

	// Table sizes; zero selects the defaults
	Coils            int
	DiscreteInputs   int
	HoldingRegisters int
	InputRegisters   int
}

// Server is a Modbus TCP simulator
type Server struct {
	config      *Config
	store       *DataStore
	listener    net.Listener
	tlsConfig   *tls.Config
	wg          sync.WaitGroup
	mu          sync.Mutex
	activeConns map[string]net.Conn
	closed      bool
}

// New creates a new Server instance
func New(config *Config) (*Server, error) {
	if err := logging.Initialize(config.LogLevel); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	var tlsConfig *tls.Config
	var err error
	switch {
	case config.GenerateCert:
		tlsConfig, err = generateSelfSignedTLSConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to generate certificate: %w", err)
		}
		logging.Info("Using auto-generated self-signed certificate (in-memory)")
	case config.CertPath != "" || config.KeyPath != "":
		tlsConfig, err = NewTLSConfig(config.CertPath, config.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	return &Server{
		config:      config,
		store:       NewDataStore(config.Coils, config.DiscreteInputs, config.HoldingRegisters, config.InputRegisters),
		tlsConfig:   tlsConfig,
		activeConns: make(map[string]net.Conn),
	}, nil
}

// Store returns the simulator's data store for seeding and inspection.
func (s *Server) Store() *DataStore {
	return s.store
}

// Addr returns the listener address. Valid after Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Listen binds the listener without accepting connections yet. Port 0
// selects an ephemeral port, which Addr reports.
func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var listener net.Listener
	var err error
	if s.tlsConfig != nil {
		listener, err = tls.Listen("tcp", addr, s.tlsConfig)
	} else {
		listener, err = net.Listen("tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	s.listener = listener

	logging.Info("Simulator listening for connections",
		zap.String("addr", listener.Addr().String()),
		zap.Bool("tls", s.tlsConfig != nil),
	)
	return nil
}

// Serve accepts and handles connections until the listener is closed.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Check if listener was closed (during shutdown)
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			logging.Error("Failed to accept connection", zap.Error(err))
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// Start binds the listener, serves connections, and blocks until a shutdown
// signal or accept error.
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.Serve()
	}()

	select {
	case <-sigChan:
		logging.Info("Shutdown signal received, stopping simulator...")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown closes the listener and every active connection, then waits for
// connection handlers to finish (or the context to expire).
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.listener != nil {
		s.listener.Close()
	}
	for _, conn := range s.activeConns {
		conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("Simulator stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// handleConnection serves one client until it disconnects or sends a frame
// the server cannot parse.
func (s *Server) handleConnection(conn net.Conn) {
	remoteAddr := conn.RemoteAddr().String()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.activeConns[remoteAddr] = conn
	s.mu.Unlock()

	defer func() {
		conn.Close()
		s.mu.Lock()
		delete(s.activeConns, remoteAddr)
		s.mu.Unlock()
		logging.LogConnection(remoteAddr, "closed")
	}()

	logging.LogConnection(remoteAddr, "accepted")

	for {
		txID, unit, pdu, err := readRequest(conn)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				logging.Warn("Dropping connection",
					zap.String("remote_addr", remoteAddr),
					zap.Error(err),
				)
			}
			return
		}

		logging.LogFrame("received", remoteAddr, pdu)
		resp := handlePDU(s.store, pdu)
		if resp == nil {
			continue
		}

		if err := writeResponse(conn, txID, unit, resp); err != nil {
			logging.Warn("Failed to write response",
				zap.String("remote_addr", remoteAddr),
				zap.Error(err),
			)
			return
		}
	}
}

// readRequest reads one MBAP-framed request from the stream.
func readRequest(conn net.Conn) (txID uint16, unit uint8, pdu []byte, err error) {
	hdr := make([]byte, 7)
	if _, err = io.ReadFull(conn, hdr); err != nil {
		return 0, 0, nil, err
	}

	if protocolID := binary.BigEndian.Uint16(hdr[2:4]); protocolID != 0 {
		return 0, 0, nil, fmt.Errorf("unexpected MBAP protocol identifier %d", protocolID)
	}
	length := int(binary.BigEndian.Uint16(hdr[4:6]))
	if length < 2 || length > 254 {
		return 0, 0, nil, fmt.Errorf("MBAP length %d out of range", length)
	}

	pdu = make([]byte, length-1)
	if _, err = io.ReadFull(conn, pdu); err != nil {
		return 0, 0, nil, err
	}
	return binary.BigEndian.Uint16(hdr[0:2]), hdr[6], pdu, nil
}

// writeResponse frames and sends one response PDU, echoing the request's
// transaction and unit identifiers.
func writeResponse(conn net.Conn, txID uint16, unit uint8, pdu []byte) error {
	adu := make([]byte, 7+len(pdu))
	binary.BigEndian.PutUint16(adu[0:2], txID)
	binary.BigEndian.PutUint16(adu[2:4], 0)
	binary.BigEndian.PutUint16(adu[4:6], uint16(1+len(pdu)))
	adu[6] = unit
	copy(adu[7:], pdu)

	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	_, err := conn.Write(adu)
	return err
}
