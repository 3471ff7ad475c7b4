package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/facebridge/facebridge/pkg/relay"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// writeWait is how long one frame write may take before the connection
	// is considered dead.
	writeWait = 10 * time.Second
)

// Client is one open WebSocket connection
type Client struct {
	ID string

	conn     *websocket.Conn
	send     chan []byte
	logger   *zap.Logger
	pongWait time.Duration

	closeOnce sync.Once
	done      chan struct{}
}

func newClient(id string, conn *websocket.Conn, sendBuffer int, pongWait time.Duration, logger *zap.Logger) *Client {
	return &Client{
		ID:       id,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		logger:   logger,
		pongWait: pongWait,
		done:     make(chan struct{}),
	}
}

// Send marshals the envelope and enqueues it for the writer goroutine. A
// closed connection or a full send buffer drops the message; delivery is
// best-effort and at-most-once.
func (c *Client) Send(env relay.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		c.logger.Error("failed to marshal envelope",
			zap.String("connection_id", c.ID),
			zap.String("event", env.Event),
			zap.Error(err))
		return
	}

	select {
	case <-c.done:
	case c.send <- data:
	default:
		c.logger.Warn("send buffer full, dropping event",
			zap.String("connection_id", c.ID),
			zap.String("event", env.Event))
	}
}

// close stops the writer goroutine and closes the socket. Safe to call from
// both the read loop and the manager.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// writePump is the single writer for the connection. It drains the send
// channel and keeps the connection alive with pings.
func (c *Client) writePump() {
	pingPeriod := c.pongWait * 9 / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("failed to write message",
					zap.String("connection_id", c.ID),
					zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
