package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fleetdesk/fleetdesk/modules/contragents/domain/aggregates/contragent"
	"github.com/fleetdesk/fleetdesk/modules/contragents/presentation/mappers"
	"github.com/fleetdesk/fleetdesk/modules/contragents/services"
	"github.com/fleetdesk/fleetdesk/pkg/application"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/httpapi"
	"github.com/fleetdesk/fleetdesk/pkg/middleware"
	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

type ContragentListQuery struct {
	Q string `query:"q"`
}

type ContragentsController struct {
	app               application.Application
	contragentService *services.ContragentService
	basePath          string
}

func NewContragentsController(app application.Application) application.Controller {
	return &ContragentsController{
		app:               app,
		contragentService: app.Service(services.ContragentService{}).(*services.ContragentService),
		basePath:          "/api/contragents",
	}
}

func (c *ContragentsController) Key() string {
	return c.basePath
}

func (c *ContragentsController) Register(r *mux.Router) {
	getRouter := r.PathPrefix(c.basePath).Subrouter()
	getRouter.Use(middleware.RequireUser())
	getRouter.HandleFunc("", c.List).Methods(http.MethodGet)
	getRouter.HandleFunc("/{id}", c.GetByID).Methods(http.MethodGet)

	setRouter := r.PathPrefix(c.basePath).Subrouter()
	setRouter.Use(middleware.RequireUser(), middleware.WithTransaction())
	setRouter.HandleFunc("", c.Create).Methods(http.MethodPost)
	setRouter.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	setRouter.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
}

func (c *ContragentsController) List(w http.ResponseWriter, r *http.Request) {
	query, err := composables.UseQuery(&ContragentListQuery{}, r)
	if err != nil {
		httpapi.WriteServiceError(w, r, serrors.BadRequest("INVALID_QUERY", err.Error()))
		return
	}
	var types []contragent.Type
	for _, v := range httpapi.QueryList(r, "type") {
		t := contragent.Type(v)
		if !t.IsValid() {
			httpapi.WriteServiceError(w, r, serrors.ValidationErrors{"type": "unknown type " + v})
			return
		}
		types = append(types, t)
	}
	page := composables.UsePaginated(r)
	params := &contragent.FindParams{
		Q:      query.Q,
		Types:  types,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	items, total, err := c.contragentService.GetPaginatedWithTotal(r.Context(), params)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteList(w, mappers.ContragentsToViewModels(items), httpapi.ListMeta{
		Total:  total,
		Offset: page.Offset,
		Limit:  page.Limit,
	})
}

func (c *ContragentsController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	item, err := c.contragentService.GetByID(r.Context(), id)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, mappers.ContragentToViewModel(item))
}

func (c *ContragentsController) Create(w http.ResponseWriter, r *http.Request) {
	var dto contragent.DTO
	if err := httpapi.DecodeJSON(r, &dto); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	item, err := c.contragentService.Create(r.Context(), &dto)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusCreated, mappers.ContragentToViewModel(item))
}

func (c *ContragentsController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	var dto contragent.DTO
	if err := httpapi.DecodeJSON(r, &dto); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	item, err := c.contragentService.Update(r.Context(), id, &dto)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, mappers.ContragentToViewModel(item))
}

func (c *ContragentsController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	if _, err := c.contragentService.Delete(r.Context(), id); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteNoContent(w)
}
