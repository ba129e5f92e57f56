package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/modules/core/presentation/mappers"
	"github.com/fleetdesk/fleetdesk/modules/core/services"
	"github.com/fleetdesk/fleetdesk/pkg/application"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/httpapi"
	"github.com/fleetdesk/fleetdesk/pkg/middleware"
	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

type UserListQuery struct {
	Q      string `query:"q"`
	Active *bool  `query:"active"`
}

type UsersController struct {
	app         application.Application
	userService *services.UserService
	basePath    string
}

func NewUsersController(app application.Application) application.Controller {
	return &UsersController{
		app:         app,
		userService: app.Service(services.UserService{}).(*services.UserService),
		basePath:    "/api/users",
	}
}

func (c *UsersController) Key() string {
	return c.basePath
}

func (c *UsersController) Register(r *mux.Router) {
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

func parseRoles(values []string) ([]user.Role, error) {
	roles := make([]user.Role, 0, len(values))
	for _, v := range values {
		role, err := user.ParseRole(v)
		if err != nil {
			return nil, serrors.ValidationErrors{"role": "unknown role " + v}
		}
		roles = append(roles, role)
	}
	return roles, nil
}

func (c *UsersController) List(w http.ResponseWriter, r *http.Request) {
	query, err := composables.UseQuery(&UserListQuery{}, r)
	if err != nil {
		httpapi.WriteServiceError(w, r, serrors.BadRequest("INVALID_QUERY", err.Error()))
		return
	}
	roles, err := parseRoles(httpapi.QueryList(r, "role"))
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	page := composables.UsePaginated(r)
	params := &user.FindParams{
		Q:      query.Q,
		Roles:  roles,
		Active: query.Active,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	us, total, err := c.userService.GetPaginatedWithTotal(r.Context(), params)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteList(w, mappers.UsersToViewModels(us), httpapi.ListMeta{
		Total:  total,
		Offset: page.Offset,
		Limit:  page.Limit,
	})
}

func (c *UsersController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	u, err := c.userService.GetByID(r.Context(), id)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, mappers.UserToViewModel(u))
}

func (c *UsersController) Create(w http.ResponseWriter, r *http.Request) {
	var dto user.CreateDTO
	if err := httpapi.DecodeJSON(r, &dto); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	u, err := c.userService.Create(r.Context(), &dto)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusCreated, mappers.UserToViewModel(u))
}

func (c *UsersController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	var dto user.UpdateDTO
	if err := httpapi.DecodeJSON(r, &dto); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	u, err := c.userService.Update(r.Context(), id, &dto)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, mappers.UserToViewModel(u))
}

func (c *UsersController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	if _, err := c.userService.Delete(r.Context(), id); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteNoContent(w)
}
