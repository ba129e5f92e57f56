package controllers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/fleetdesk/fleetdesk/modules/core/presentation/mappers"
	"github.com/fleetdesk/fleetdesk/modules/core/services"
	"github.com/fleetdesk/fleetdesk/pkg/application"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/constants"
	"github.com/fleetdesk/fleetdesk/pkg/httpapi"
	"github.com/fleetdesk/fleetdesk/pkg/middleware"
	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

type LoginDTO struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (d *LoginDTO) Ok() error {
	d.Email = strings.TrimSpace(d.Email)
	return serrors.FromValidator(constants.Validate.Struct(d), nil)
}

type AuthController struct {
	app         application.Application
	authService *services.AuthService
	basePath    string
}

func NewAuthController(app application.Application) application.Controller {
	return &AuthController{
		app:         app,
		authService: app.Service(services.AuthService{}).(*services.AuthService),
		basePath:    "/api/auth",
	}
}

func (c *AuthController) Key() string {
	return c.basePath
}

func (c *AuthController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("/login", c.Login).Methods(http.MethodPost)

	protected := router.NewRoute().Subrouter()
	protected.Use(middleware.RequireUser())
	protected.HandleFunc("/logout", c.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/me", c.Me).Methods(http.MethodGet)
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := httpapi.DecodeJSON(r, &dto); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	if err := dto.Ok(); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	u, sess, err := c.authService.Login(r.Context(), dto.Email, dto.Password)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	http.SetCookie(w, c.authService.Cookie(sess))
	httpapi.WriteData(w, http.StatusOK, mappers.SessionToViewModel(sess, u))
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	sess, err := composables.UseSession(r.Context())
	if err == nil {
		if err := c.authService.Logout(r.Context(), sess.Token); err != nil {
			httpapi.WriteServiceError(w, r, err)
			return
		}
	}
	http.SetCookie(w, c.authService.ExpiredCookie())
	httpapi.WriteNoContent(w)
}

func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	u := composables.MustUseUser(r.Context())
	httpapi.WriteData(w, http.StatusOK, mappers.UserToViewModel(u))
}
