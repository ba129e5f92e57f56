package application

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/httpapi"
	"github.com/fleetdesk/fleetdesk/pkg/ws"
)

const (
	ChannelAuthenticated = "authenticated"
	userIDKey            = "userID"
)

// UserChannel is the channel every connection of a user joins.
func UserChannel(id uuid.UUID) string {
	return "user/" + id.String()
}

type HuberOptions struct {
	Logger      *logrus.Logger
	CheckOrigin func(r *http.Request) bool
	HubOptions  ws.HubOptions
}

// Huber is the application facing websocket hub: connections are bound to
// the authenticated user and addressed by user id.
type Huber interface {
	http.Handler
	SendToUser(id uuid.UUID, payload any) (int, error)
	Broadcast(channel string, payload any) (int, error)
	Close()
}

func NewHub(opts *HuberOptions) Huber {
	h := &huber{logger: opts.Logger}
	hubOpts := opts.HubOptions
	hubOpts.Logger = opts.Logger
	hubOpts.CheckOrigin = opts.CheckOrigin
	hubOpts.OnConnect = h.onConnect
	h.hub = ws.NewHub(&hubOpts)
	return h
}

type huber struct {
	hub    *ws.Hub
	logger *logrus.Logger
}

// ServeHTTP refuses the upgrade unless the request carries a user.
func (h *huber) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, err := composables.UseUser(r.Context()); err != nil {
		httpapi.WriteError(w, r, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required", nil)
		return
	}
	h.hub.ServeHTTP(w, r)
}

func (h *huber) onConnect(r *http.Request, hub *ws.Hub, conn *ws.Connection) error {
	u, err := composables.UseUser(r.Context())
	if err != nil {
		return err
	}
	conn.Set(userIDKey, u.ID())
	hub.JoinChannel(ChannelAuthenticated, conn)
	hub.JoinChannel(UserChannel(u.ID()), conn)
	if h.logger != nil {
		h.logger.WithFields(logrus.Fields{
			"component": "ws",
			"user_id":   u.ID(),
			"role":      u.Role(),
		}).Debug("websocket connected")
	}
	return nil
}

func (h *huber) SendToUser(id uuid.UUID, payload any) (int, error) {
	return h.Broadcast(UserChannel(id), payload)
}

func (h *huber) Broadcast(channel string, payload any) (int, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	return h.hub.BroadcastToChannel(channel, b), nil
}

func (h *huber) Close() {
	h.hub.Close()
}
