package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var (
	ErrConnectionClosed = errors.New("ws: connection closed")
	ErrSlowConsumer     = errors.New("ws: send buffer full")
)

// Connectioner is the write side of a client connection.
type Connectioner interface {
	SendMessage(message []byte) error
	Close() error
}

type Connection struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
	err  error

	mu     sync.RWMutex
	values map[string]any
}

func newConnection(conn *websocket.Conn, buffer int) *Connection {
	return &Connection{
		conn:   conn,
		send:   make(chan []byte, buffer),
		done:   make(chan struct{}),
		values: map[string]any{},
	}
}

// SendMessage queues message for delivery. A full queue closes the
// connection rather than blocking the caller.
func (c *Connection) SendMessage(message []byte) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	default:
	}
	select {
	case c.send <- message:
		return nil
	case <-c.done:
		return ErrConnectionClosed
	default:
		_ = c.Close()
		return ErrSlowConsumer
	}
}

func (c *Connection) Close() error {
	c.once.Do(func() {
		close(c.done)
		c.err = c.conn.Close()
	})
	return c.err
}

// Set stores a value on the connection, e.g. the authenticated user id.
func (c *Connection) Set(key string, v any) {
	c.mu.Lock()
	c.values[key] = v
	c.mu.Unlock()
}

func (c *Connection) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

func (c *Connection) readPump(h *Hub) {
	defer h.remove(c)

	c.conn.SetReadLimit(h.opts.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(h.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.opts.PongWait))
	})
	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.WithError(err).Debug("ws: unexpected close")
			}
			return
		}
		if h.opts.OnMessage != nil {
			h.opts.OnMessage(c, msg)
		}
	}
}

func (c *Connection) writePump(h *Hub) {
	ticker := time.NewTicker(h.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
			messagesSent.Inc()
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
