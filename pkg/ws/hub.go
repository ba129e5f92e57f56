// Package ws is a channel based websocket hub. Connections join named
// channels and receive every message broadcast to them.
package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type HubOptions struct {
	Logger      *logrus.Logger
	CheckOrigin func(r *http.Request) bool
	// OnConnect runs after the upgrade. Returning an error closes the connection.
	OnConnect    func(r *http.Request, hub *Hub, conn *Connection) error
	OnDisconnect func(conn *Connection)
	OnMessage    func(conn *Connection, message []byte)

	PingPeriod     time.Duration
	PongWait       time.Duration
	WriteWait      time.Duration
	MaxMessageSize int64
	SendBuffer     int
}

func (o *HubOptions) withDefaults() HubOptions {
	out := *o
	if out.PingPeriod <= 0 {
		out.PingPeriod = 30 * time.Second
	}
	if out.PongWait <= 0 {
		out.PongWait = 60 * time.Second
	}
	if out.WriteWait <= 0 {
		out.WriteWait = 10 * time.Second
	}
	if out.MaxMessageSize <= 0 {
		out.MaxMessageSize = 4096
	}
	if out.SendBuffer <= 0 {
		out.SendBuffer = 64
	}
	if out.Logger == nil {
		out.Logger = logrus.StandardLogger()
	}
	return out
}

type Hub struct {
	opts     HubOptions
	log      *logrus.Entry
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	channels map[string]map[*Connection]struct{}
	conns    map[*Connection]map[string]struct{}
	closed   bool
	wg       sync.WaitGroup
}

func NewHub(opts *HubOptions) *Hub {
	o := opts.withDefaults()
	return &Hub{
		opts: o,
		log:  o.Logger.WithField("component", "ws"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     o.CheckOrigin,
		},
		channels: map[string]map[*Connection]struct{}{},
		conns:    map[*Connection]map[string]struct{}{},
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws: upgrade failed")
		return
	}
	conn := newConnection(raw, h.opts.SendBuffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.conns[conn] = map[string]struct{}{}
	h.wg.Add(2)
	h.mu.Unlock()
	connections.Inc()

	go func() {
		defer h.wg.Done()
		conn.writePump(h)
	}()
	go func() {
		defer h.wg.Done()
		conn.readPump(h)
	}()

	if h.opts.OnConnect != nil {
		if err := h.opts.OnConnect(r, h, conn); err != nil {
			h.log.WithError(err).Debug("ws: connection rejected")
			_ = conn.Close()
		}
	}
}

func (h *Hub) remove(conn *Connection) {
	h.mu.Lock()
	chans, ok := h.conns[conn]
	if ok {
		for ch := range chans {
			if members := h.channels[ch]; members != nil {
				delete(members, conn)
				if len(members) == 0 {
					delete(h.channels, ch)
				}
			}
		}
		delete(h.conns, conn)
	}
	h.mu.Unlock()
	_ = conn.Close()

	if ok {
		connections.Dec()
		if h.opts.OnDisconnect != nil {
			h.opts.OnDisconnect(conn)
		}
	}
}

func (h *Hub) JoinChannel(channel string, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	chans, ok := h.conns[conn]
	if !ok {
		return
	}
	chans[channel] = struct{}{}
	members := h.channels[channel]
	if members == nil {
		members = map[*Connection]struct{}{}
		h.channels[channel] = members
	}
	members[conn] = struct{}{}
}

func (h *Hub) LeaveChannel(channel string, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if chans, ok := h.conns[conn]; ok {
		delete(chans, channel)
	}
	if members := h.channels[channel]; members != nil {
		delete(members, conn)
		if len(members) == 0 {
			delete(h.channels, channel)
		}
	}
}

func (h *Hub) ConnectionsInChannel(channel string) []*Connection {
	h.mu.RLock()
	defer h.mu.RUnlock()
	members := h.channels[channel]
	out := make([]*Connection, 0, len(members))
	for c := range members {
		out = append(out, c)
	}
	return out
}

// BroadcastToChannel queues message on every connection in channel and
// returns how many accepted it.
func (h *Hub) BroadcastToChannel(channel string, message []byte) int {
	sent := 0
	for _, c := range h.ConnectionsInChannel(channel) {
		if err := c.SendMessage(message); err != nil {
			h.log.WithError(err).WithField("channel", channel).Debug("ws: drop message")
			continue
		}
		sent++
	}
	return sent
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Close disconnects every client and waits for their goroutines.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	conns := make([]*Connection, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
	h.wg.Wait()
}
