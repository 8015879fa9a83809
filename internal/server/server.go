package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Server represents the WebSocket server
type Server struct {
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	logger      *log.Logger
	mu          sync.RWMutex
	gameService *GameService
}

var _ Broadcaster = (*Server)(nil)

// NewServer creates a new WebSocket server
func NewServer(logger *log.Logger) *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// browsers on any origin may join a room by code
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		logger:      logger.WithPrefix("server"),
	}
}

// SetGameService sets the game service for the server
func (s *Server) SetGameService(gameService *GameService) {
	s.gameService = gameService
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Serve listens on addr until ctx is cancelled, then closes every connection.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting WebSocket server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	s.Stop()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop closes every open connection.
func (s *Server) Stop() {
	s.mu.Lock()
	conns := make([]*Connection, 0, len(s.connections))
	for conn := range s.connections {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close() // Ignore close errors during shutdown
	}
}

func (s *Server) register(conn *Connection) {
	s.mu.Lock()
	s.connections[conn] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "total", total)
}

// unregister forgets conn and releases its seat.
func (s *Server) unregister(conn *Connection) {
	s.mu.Lock()
	_, ok := s.connections[conn]
	delete(s.connections, conn)
	total := len(s.connections)
	s.mu.Unlock()

	if !ok {
		return
	}
	s.logger.Info("Client disconnected", "total", total)

	roomCode, playerID := conn.Seat()
	if roomCode == "" || playerID == "" || s.gameService == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	if err := s.gameService.Disconnect(ctx, roomCode, playerID, conn.ID()); err != nil {
		s.logger.Warn("Failed to release seat", "room", roomCode, "player", playerID, "error", err)
	}
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger, s.gameService)
	s.register(client)
	client.Start()

	go func() {
		<-client.Done()
		s.unregister(client)
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}

// SendToPlayer delivers msg to every connection seated as playerID in
// roomCode. A reconnecting player may briefly hold two.
func (s *Server) SendToPlayer(roomCode, playerID string, msg *Message) error {
	s.mu.RLock()
	var targets []*Connection
	for conn := range s.connections {
		if code, player := conn.Seat(); code == roomCode && player == playerID {
			targets = append(targets, conn)
		}
	}
	s.mu.RUnlock()

	if len(targets) == 0 {
		return fmt.Errorf("player not connected: %s", playerID)
	}
	var errs []error
	for _, conn := range targets {
		errs = append(errs, conn.Send(msg))
	}
	return errors.Join(errs...)
}

// Release unbinds and closes the connections seated as playerID other than
// keepConnectionID. They are closed unbound, so their teardown leaves the
// seat alone.
func (s *Server) Release(roomCode, playerID, keepConnectionID string) {
	s.mu.RLock()
	var stale []*Connection
	for conn := range s.connections {
		if code, player := conn.Seat(); code == roomCode && player == playerID && conn.ID() != keepConnectionID {
			stale = append(stale, conn)
		}
	}
	s.mu.RUnlock()

	for _, conn := range stale {
		s.logger.Info("Releasing superseded connection", "room", roomCode, "player", playerID)
		conn.Bind("", "")
		_ = conn.Close()
	}
}
