package ws

import (
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cory-johannsen/roshambo/internal/config"
)

// Client is one upgraded WebSocket connection. Outbound frames go through
// the send channel; writePump is the only goroutine that writes to the
// underlying connection.
type Client struct {
	id     string
	conn   *websocket.Conn
	cfg    config.WebsocketConfig
	send   chan []byte
	logger *zap.Logger
}

func newClient(id string, conn *websocket.Conn, cfg config.WebsocketConfig, logger *zap.Logger) *Client {
	return &Client{
		id:     id,
		conn:   conn,
		cfg:    cfg,
		send:   make(chan []byte, cfg.SendBuffer),
		logger: logger,
	}
}

// ID returns the connection identifier assigned at upgrade time.
func (c *Client) ID() string { return c.id }

// readPump reads frames from the peer and hands them to the acceptor.
// It owns the read deadline and exits on any read error, which triggers
// connection teardown.
func (c *Client) readPump(a *Acceptor) {
	defer func() {
		a.dropClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error",
					zap.String("conn_id", c.id),
					zap.Error(err),
				)
			}
			return
		}
		a.handler.HandleMessage(c.id, raw)
	}
}

// writePump drains the send channel to the peer and keeps the connection
// alive with periodic pings. It exits when the send channel is closed or
// a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
