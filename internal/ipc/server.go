package ipc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/borders/internal/config"
)

// readTimeout bounds how long a client may take to send its message.
const readTimeout = 5 * time.Second

// Handler applies one update message and reports the resulting scope.
type Handler func(ctx context.Context, tokens []string) (config.Scope, error)

// Server accepts configuration update messages on a unix socket.
type Server struct {
	socketPath   string
	listener     net.Listener
	handler      Handler
	logger       *slog.Logger
	ctx          context.Context
	cancel       context.CancelFunc
	wg           sync.WaitGroup
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a server that will listen on socketPath.
func NewServer(socketPath string, handler Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		socketPath: socketPath,
		handler:    handler,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	// Remove existing socket if present; the caller holds the singleton lock.
	os.Remove(s.socketPath)

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// acceptLoop accepts incoming connections
func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// handleConnection reads one update message and answers with one JSON line.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(readTimeout))

	tokens, err := ReadTokens(bufio.NewReader(conn))
	if err != nil {
		s.logger.Warn("IPC read error", "error", err)
		s.send(conn, NewErrorResponse(fmt.Sprintf("Invalid message: %v", err)))
		return
	}

	// The handler runs on the daemon loop, which may be busy; the deadline
	// only covers reading and writing.
	conn.SetDeadline(time.Time{})
	scope, err := s.handler(s.ctx, tokens)
	if err != nil {
		s.send(conn, NewErrorResponse(fmt.Sprintf("Failed to apply update: %v", err)))
		return
	}

	s.logger.Debug("IPC update applied", "tokens", len(tokens), "scope", scope.String())
	resp, err := NewOKResponse(UpdateData{Scope: scope.String()})
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}
	conn.SetDeadline(time.Now().Add(readTimeout))
	s.send(conn, resp)
}

func (s *Server) send(conn net.Conn, resp *Response) {
	data, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.logger.Warn("failed to send response", "error", err)
	}
}

// Stop gracefully shuts down the IPC server and waits for in-flight
// connections.
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	if s.shuttingDown {
		s.shutdownMu.Unlock()
		return
	}
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	s.cancel()
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}
