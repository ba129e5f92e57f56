package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fleetdesk/fleetdesk/modules/core/services"
	"github.com/fleetdesk/fleetdesk/pkg/application"
	"github.com/fleetdesk/fleetdesk/pkg/httpapi"
	"github.com/fleetdesk/fleetdesk/pkg/middleware"
)

const maxFilterBody = 64 << 10

type SavedFilterController struct {
	app           application.Application
	filterService *services.SavedFilterService
}

func NewSavedFilterController(app application.Application) application.Controller {
	return &SavedFilterController{
		app:           app,
		filterService: app.Service(services.SavedFilterService{}).(*services.SavedFilterService),
	}
}

func (c *SavedFilterController) Key() string {
	return "/api/filters"
}

func (c *SavedFilterController) Register(r *mux.Router) {
	router := r.PathPrefix("/api/filters").Subrouter()
	router.Use(middleware.RequireUser())
	router.HandleFunc("/{view}", c.Get).Methods(http.MethodGet)
	router.HandleFunc("/{view}", c.Save).Methods(http.MethodPut)
	router.HandleFunc("/{view}", c.Delete).Methods(http.MethodDelete)
}

func (c *SavedFilterController) Get(w http.ResponseWriter, r *http.Request) {
	filter, err := c.filterService.Get(r.Context(), mux.Vars(r)["view"])
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, filter)
}

func (c *SavedFilterController) Save(w http.ResponseWriter, r *http.Request) {
	body, err := httpapi.ReadBody(r, maxFilterBody)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	filter, err := c.filterService.Save(r.Context(), mux.Vars(r)["view"], body)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, filter)
}

func (c *SavedFilterController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := c.filterService.Delete(r.Context(), mux.Vars(r)["view"]); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteNoContent(w)
}
