package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fleetdesk/fleetdesk/modules/core/presentation/mappers"
	"github.com/fleetdesk/fleetdesk/modules/core/services"
	"github.com/fleetdesk/fleetdesk/pkg/application"
	"github.com/fleetdesk/fleetdesk/pkg/httpapi"
	"github.com/fleetdesk/fleetdesk/pkg/middleware"
)

type DashboardController struct {
	app              application.Application
	dashboardService *services.DashboardService
}

func NewDashboardController(app application.Application) application.Controller {
	return &DashboardController{
		app:              app,
		dashboardService: app.Service(services.DashboardService{}).(*services.DashboardService),
	}
}

func (c *DashboardController) Key() string {
	return "/api/dashboard"
}

func (c *DashboardController) Register(r *mux.Router) {
	router := r.PathPrefix("/api/dashboard").Subrouter()
	router.Use(middleware.RequireUser())
	router.HandleFunc("", c.Get).Methods(http.MethodGet)
}

func (c *DashboardController) Get(w http.ResponseWriter, r *http.Request) {
	d, err := c.dashboardService.Get(r.Context())
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, mappers.DashboardToViewModel(d))
}
