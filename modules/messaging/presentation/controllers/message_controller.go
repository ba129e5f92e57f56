package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fleetdesk/fleetdesk/modules/messaging/domain/aggregates/message"
	"github.com/fleetdesk/fleetdesk/modules/messaging/presentation/mappers"
	"github.com/fleetdesk/fleetdesk/modules/messaging/services"
	"github.com/fleetdesk/fleetdesk/pkg/application"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/httpapi"
	"github.com/fleetdesk/fleetdesk/pkg/middleware"
)

type MessagesController struct {
	app            application.Application
	messageService *services.MessageService
	basePath       string
}

func NewMessagesController(app application.Application) application.Controller {
	return &MessagesController{
		app:            app,
		messageService: app.Service(services.MessageService{}).(*services.MessageService),
		basePath:       "/api/messages",
	}
}

func (c *MessagesController) Key() string {
	return c.basePath
}

func (c *MessagesController) Register(r *mux.Router) {
	getRouter := r.PathPrefix(c.basePath).Subrouter()
	getRouter.Use(middleware.RequireUser())
	getRouter.HandleFunc("", c.Inbox).Methods(http.MethodGet)
	getRouter.HandleFunc("/unread", c.Unread).Methods(http.MethodGet)
	getRouter.HandleFunc("/with/{userId}", c.Conversation).Methods(http.MethodGet)
	getRouter.HandleFunc("/{id}", c.GetByID).Methods(http.MethodGet)

	setRouter := r.PathPrefix(c.basePath).Subrouter()
	setRouter.Use(middleware.RequireUser(), middleware.WithTransaction())
	setRouter.HandleFunc("", c.Send).Methods(http.MethodPost)
	setRouter.HandleFunc("/with/{userId}/read", c.ReadConversation).Methods(http.MethodPost)
	setRouter.HandleFunc("/{id}/read", c.MarkRead).Methods(http.MethodPost)
}

func (c *MessagesController) Inbox(w http.ResponseWriter, r *http.Request) {
	entries, err := c.messageService.Inbox(r.Context())
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, mappers.InboxToViewModels(entries))
}

func (c *MessagesController) Unread(w http.ResponseWriter, r *http.Request) {
	counts, err := c.messageService.UnreadCounts(r.Context())
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, mappers.UnreadToViewModel(counts))
}

// Conversation pages from the newest message; each page is ordered
// oldest first.
func (c *MessagesController) Conversation(w http.ResponseWriter, r *http.Request) {
	userID, err := httpapi.PathUUID(r, "userId")
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	page := composables.UsePaginated(r)
	list, total, err := c.messageService.Conversation(r.Context(), userID, page.Offset, page.Limit)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteList(w, mappers.MessagesToViewModels(list), httpapi.ListMeta{
		Total:  total,
		Offset: page.Offset,
		Limit:  page.Limit,
	})
}

func (c *MessagesController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	m, err := c.messageService.GetByID(r.Context(), id)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, mappers.MessageToViewModel(m))
}

func (c *MessagesController) Send(w http.ResponseWriter, r *http.Request) {
	var dto message.SendDTO
	if err := httpapi.DecodeJSON(r, &dto); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	m, err := c.messageService.Send(r.Context(), &dto)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusCreated, mappers.MessageToViewModel(m))
}

func (c *MessagesController) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	m, err := c.messageService.MarkRead(r.Context(), id)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, mappers.MessageToViewModel(m))
}

func (c *MessagesController) ReadConversation(w http.ResponseWriter, r *http.Request) {
	userID, err := httpapi.PathUUID(r, "userId")
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	res, err := c.messageService.MarkConversationRead(r.Context(), userID)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, mappers.ReadResultToViewModel(res))
}
