package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/entities/upload"
	"github.com/fleetdesk/fleetdesk/modules/core/presentation/mappers"
	"github.com/fleetdesk/fleetdesk/modules/core/services"
	"github.com/fleetdesk/fleetdesk/pkg/application"
	"github.com/fleetdesk/fleetdesk/pkg/configuration"
	"github.com/fleetdesk/fleetdesk/pkg/httpapi"
	"github.com/fleetdesk/fleetdesk/pkg/middleware"
	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

const (
	uploadFormField    = "file"
	uploadCacheControl = "public, max-age=31536000, immutable"
	multipartMemory    = 8 << 20
)

type UploadController struct {
	app           application.Application
	uploadService *services.UploadService
	maxSize       int64
}

func NewUploadController(app application.Application) application.Controller {
	return &UploadController{
		app:           app,
		uploadService: app.Service(services.UploadService{}).(*services.UploadService),
		maxSize:       configuration.Use().MaxUploadSize,
	}
}

func (c *UploadController) Key() string {
	return "/api/uploads"
}

func (c *UploadController) Register(r *mux.Router) {
	apiRouter := r.PathPrefix("/api/uploads").Subrouter()
	apiRouter.Use(middleware.RequireUser())
	apiRouter.HandleFunc("", c.Create).Methods(http.MethodPost)

	fileRouter := r.PathPrefix("/uploads").Subrouter()
	fileRouter.Use(middleware.RequireUser())
	fileRouter.HandleFunc("/{hash:[a-f0-9]{64}}", c.Serve).Methods(http.MethodGet, http.MethodHead)
}

func (c *UploadController) Create(w http.ResponseWriter, r *http.Request) {
	// Multipart framing needs headroom over the file limit.
	r.Body = http.MaxBytesReader(w, r.Body, c.maxSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httpapi.WriteServiceError(w, r, upload.ErrTooLarge)
			return
		}
		httpapi.WriteServiceError(w, r, serrors.BadRequest("INVALID_MULTIPART", "invalid multipart body"))
		return
	}
	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		httpapi.WriteServiceError(w, r, serrors.ValidationErrors{uploadFormField: "is required"})
		return
	}
	defer file.Close()

	u, err := c.uploadService.Create(r.Context(), &upload.CreateDTO{
		File:    file,
		Name:    header.Filename,
		MaxSize: c.maxSize,
	})
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusCreated, mappers.UploadToViewModel(u))
}

// Serve streams an upload. Contents are addressed by hash, so responses
// are cacheable forever and revalidate by ETag.
func (c *UploadController) Serve(w http.ResponseWriter, r *http.Request) {
	hash := mux.Vars(r)["hash"]
	u, err := c.uploadService.GetByHash(r.Context(), hash)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}

	etag := `"` + u.Hash + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", uploadCacheControl)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	f, err := c.uploadService.Open(r.Context(), u)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	defer f.Close()
	w.Header().Set("Content-Type", u.Mimetype)
	http.ServeContent(w, r, u.Name, u.CreatedAt, f)
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}
