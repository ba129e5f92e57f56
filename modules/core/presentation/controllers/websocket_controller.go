package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fleetdesk/fleetdesk/pkg/application"
)

// WebSocketController exposes the application hub. The hub itself refuses
// upgrades without a user.
type WebSocketController struct {
	app application.Application
}

func NewWebSocketController(app application.Application) application.Controller {
	return &WebSocketController{app: app}
}

func (c *WebSocketController) Key() string {
	return "/ws"
}

func (c *WebSocketController) Register(r *mux.Router) {
	r.Handle("/ws", c.app.Websocket()).Methods(http.MethodGet)
}
