// Package ws serves the WebSocket endpoint clients connect to. It upgrades
// HTTP requests, assigns each connection an identifier, relays inbound
// frames to a MessageHandler, and delivers outbound events per connection.
package ws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/roshambo/internal/config"
	"github.com/cory-johannsen/roshambo/internal/protocol"
)

// MessageHandler consumes inbound frames and disconnect notifications.
// Calls for a single connection arrive sequentially; HandleDisconnect is
// called exactly once per connection, after its last HandleMessage.
type MessageHandler interface {
	HandleMessage(connID string, raw []byte)
	HandleDisconnect(connID string)
}

// Acceptor listens for WebSocket connections on an HTTP port and tracks
// live clients by connection ID. It satisfies the coordinator's Publisher
// contract: Publish is best-effort and never blocks.
type Acceptor struct {
	cfg      config.ServerConfig
	wsCfg    config.WebsocketConfig
	handler  MessageHandler
	logger   *zap.Logger
	upgrader websocket.Upgrader

	httpServer *http.Server

	mu       sync.RWMutex
	listener net.Listener
	clients  map[string]*Client
	running  bool

	wg sync.WaitGroup
}

// NewAcceptor creates a WebSocket acceptor with the given configuration.
// The game endpoint is served at /ws; if cfg.StaticDir is set, client
// assets are served from it at /.
//
// Precondition: handler and logger must be non-nil.
// Postcondition: Returns an Acceptor ready to be started with ListenAndServe.
func NewAcceptor(cfg config.ServerConfig, wsCfg config.WebsocketConfig, handler MessageHandler, logger *zap.Logger) *Acceptor {
	a := &Acceptor{
		cfg:     cfg,
		wsCfg:   wsCfg,
		handler: handler,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[string]*Client),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", a.serveWS)
	if cfg.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))
	}
	a.httpServer = &http.Server{Handler: mux}

	return a
}

// ListenAndServe starts the HTTP listener and serves connections until Stop
// is called. This method blocks until the acceptor is stopped.
//
// Precondition: The acceptor must not already be running.
// Postcondition: The listener is closed when this method returns.
func (a *Acceptor) ListenAndServe() error {
	start := time.Now()

	listener, err := net.Listen("tcp", a.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", a.cfg.Addr(), err)
	}

	a.mu.Lock()
	a.listener = listener
	a.running = true
	a.mu.Unlock()

	a.logger.Info("websocket acceptor listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("static_dir", a.cfg.StaticDir),
		zap.Duration("startup", time.Since(start)),
	)

	if err := a.httpServer.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving websocket endpoint: %w", err)
	}
	return nil
}

// Stop gracefully stops the acceptor: the HTTP listener is shut down,
// every live connection is closed, and both pump goroutines of every
// client are waited on.
//
// Postcondition: All connections are closed and goroutines have exited.
func (a *Acceptor) Stop() {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return
	}
	a.running = false
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.httpServer.Shutdown(ctx)

	// Shutdown does not close upgraded connections; closing them unblocks
	// every readPump, which tears the clients down.
	a.mu.RLock()
	for _, c := range a.clients {
		c.conn.Close()
	}
	a.mu.RUnlock()

	a.wg.Wait()
	a.logger.Info("websocket acceptor stopped")
}

// Addr returns the actual listening address, or empty string if not yet listening.
func (a *Acceptor) Addr() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.listener != nil {
		return a.listener.Addr().String()
	}
	return ""
}

// ClientCount returns the number of live connections.
func (a *Acceptor) ClientCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.clients)
}

// Publish sends an event to one connection. Delivery is best-effort: an
// unknown connection ID is ignored, and a connection whose outbound queue
// is full is dropped rather than allowed to stall the caller.
//
// The send happens under the read lock. dropClient closes the send channel
// under the write lock, so a channel is never closed while a publisher
// still holds it.
func (a *Acceptor) Publish(connID string, ev protocol.Event) {
	payload, err := ev.Encode()
	if err != nil {
		a.logger.Error("encoding outbound event",
			zap.String("conn_id", connID),
			zap.String("event_type", ev.Type),
			zap.Error(err),
		)
		return
	}

	a.mu.RLock()
	defer a.mu.RUnlock()

	c, ok := a.clients[connID]
	if !ok {
		a.logger.Debug("publish to unknown connection",
			zap.String("conn_id", connID),
			zap.String("event_type", ev.Type),
		)
		return
	}

	select {
	case c.send <- payload:
	default:
		a.logger.Warn("outbound queue full, dropping slow client",
			zap.String("conn_id", connID),
			zap.String("event_type", ev.Type),
		)
		c.conn.Close()
	}
}

// serveWS upgrades one HTTP request and starts the connection's pumps.
func (a *Acceptor) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Error("websocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	client := newClient(uuid.NewString(), conn, a.wsCfg, a.logger)

	a.mu.Lock()
	a.clients[client.id] = client
	total := len(a.clients)
	a.mu.Unlock()

	a.logger.Info("client connected",
		zap.String("conn_id", client.id),
		zap.String("remote_addr", r.RemoteAddr),
		zap.Int("total_clients", total),
	)

	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		client.writePump()
	}()
	go func() {
		defer a.wg.Done()
		client.readPump(a)
	}()
}

// dropClient removes a client from the registry and notifies the handler.
// Idempotent; only the first call for a connection has any effect.
func (a *Acceptor) dropClient(c *Client) {
	a.mu.Lock()
	if _, ok := a.clients[c.id]; !ok {
		a.mu.Unlock()
		return
	}
	delete(a.clients, c.id)
	close(c.send)
	total := len(a.clients)
	a.mu.Unlock()

	a.logger.Info("client disconnected",
		zap.String("conn_id", c.id),
		zap.Int("total_clients", total),
	)
	a.handler.HandleDisconnect(c.id)
}
