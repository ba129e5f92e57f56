package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/fleetdesk/fleetdesk/modules/fleet/domain/aggregates/truck"
	"github.com/fleetdesk/fleetdesk/modules/fleet/presentation/mappers"
	"github.com/fleetdesk/fleetdesk/modules/fleet/services"
	"github.com/fleetdesk/fleetdesk/pkg/application"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/export"
	"github.com/fleetdesk/fleetdesk/pkg/httpapi"
	"github.com/fleetdesk/fleetdesk/pkg/middleware"
	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

type TruckListQuery struct {
	Q string `query:"q"`
}

type AssignDriverDTO struct {
	DriverID *uuid.UUID `json:"driverId"`
}

type TrucksController struct {
	app          application.Application
	truckService *services.TruckService
	basePath     string
}

func NewTrucksController(app application.Application) application.Controller {
	return &TrucksController{
		app:          app,
		truckService: app.Service(services.TruckService{}).(*services.TruckService),
		basePath:     "/api/trucks",
	}
}

func (c *TrucksController) Key() string {
	return c.basePath
}

func (c *TrucksController) Register(r *mux.Router) {
	getRouter := r.PathPrefix(c.basePath).Subrouter()
	getRouter.Use(middleware.RequireUser())
	getRouter.HandleFunc("", c.List).Methods(http.MethodGet)
	getRouter.HandleFunc("/export", c.Export).Methods(http.MethodGet)
	getRouter.HandleFunc("/{id}", c.GetByID).Methods(http.MethodGet)

	setRouter := r.PathPrefix(c.basePath).Subrouter()
	setRouter.Use(middleware.RequireUser(), middleware.WithTransaction())
	setRouter.HandleFunc("", c.Create).Methods(http.MethodPost)
	setRouter.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	setRouter.HandleFunc("/{id}", c.Patch).Methods(http.MethodPatch)
	setRouter.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
	setRouter.HandleFunc("/{id}/driver", c.AssignDriver).Methods(http.MethodPost)
}

func (c *TrucksController) findParams(r *http.Request) (*truck.FindParams, error) {
	query, err := composables.UseQuery(&TruckListQuery{}, r)
	if err != nil {
		return nil, serrors.BadRequest("INVALID_QUERY", err.Error())
	}
	verrs := serrors.ValidationErrors{}
	var statuses []truck.Status
	for _, v := range httpapi.QueryList(r, "status") {
		if s := truck.Status(v); s.IsValid() {
			statuses = append(statuses, s)
		} else {
			verrs.Add("status", "unknown status "+v)
		}
	}
	var types []truck.Type
	for _, v := range httpapi.QueryList(r, "type") {
		if t := truck.Type(v); t.IsValid() {
			types = append(types, t)
		} else {
			verrs.Add("type", "unknown type "+v)
		}
	}
	if err := verrs.OrNil(); err != nil {
		return nil, err
	}
	driverID, err := httpapi.QueryUUID(r, "driverId")
	if err != nil {
		return nil, err
	}
	page := composables.UsePaginated(r)
	return &truck.FindParams{
		Q:        query.Q,
		Statuses: statuses,
		Types:    types,
		DriverID: driverID,
		Limit:    page.Limit,
		Offset:   page.Offset,
	}, nil
}

func (c *TrucksController) List(w http.ResponseWriter, r *http.Request) {
	params, err := c.findParams(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	trucks, total, err := c.truckService.GetPaginatedWithTotal(r.Context(), params)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteList(w, mappers.TrucksToViewModels(trucks), httpapi.ListMeta{
		Total:  total,
		Offset: params.Offset,
		Limit:  params.Limit,
	})
}

var truckExportTable = export.Table[*truck.Truck]{
	Sheet: "Trucks",
	Columns: []export.Column[*truck.Truck]{
		{Header: "Unit", Width: 12, Value: func(t *truck.Truck) any { return t.UnitNumber }},
		{Header: "Plate", Width: 12, Value: func(t *truck.Truck) any { return t.PlateNumber }},
		{Header: "VIN", Width: 22, Value: func(t *truck.Truck) any { return t.VIN }},
		{Header: "Make", Value: func(t *truck.Truck) any { return t.Make }},
		{Header: "Model", Value: func(t *truck.Truck) any { return t.Model }},
		{Header: "Year", Width: 8, Value: func(t *truck.Truck) any { return t.Year }},
		{Header: "Type", Width: 12, Value: func(t *truck.Truck) any { return string(t.Type) }},
		{Header: "Status", Value: func(t *truck.Truck) any { return string(t.Status) }},
		{Header: "Driver", Width: 24, Value: func(t *truck.Truck) any { return t.DriverName }},
		{Header: "Capacity (lbs)", Value: func(t *truck.Truck) any { return t.CapacityLbs }},
		{Header: "Location", Width: 24, Value: func(t *truck.Truck) any { return t.Location }},
		{Header: "Updated", Width: 18, Value: func(t *truck.Truck) any { return t.UpdatedAt }},
	},
}

func (c *TrucksController) Export(w http.ResponseWriter, r *http.Request) {
	params, err := c.findParams(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	trucks, err := c.truckService.Export(r.Context(), params)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	if err := export.Serve(w, export.Filename("trucks", time.Now()), truckExportTable, trucks); err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to export trucks")
	}
}

func (c *TrucksController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	t, err := c.truckService.GetByID(r.Context(), id)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, mappers.TruckToViewModel(t))
}

func (c *TrucksController) Create(w http.ResponseWriter, r *http.Request) {
	var dto truck.DTO
	if err := httpapi.DecodeJSON(r, &dto); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	t, err := c.truckService.Create(r.Context(), &dto)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusCreated, mappers.TruckToViewModel(t))
}

func (c *TrucksController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	var dto truck.DTO
	if err := httpapi.DecodeJSON(r, &dto); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	t, err := c.truckService.Update(r.Context(), id, &dto)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, mappers.TruckToViewModel(t))
}

// Patch applies a JSON merge patch to the truck's writable fields.
func (c *TrucksController) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	existing, err := c.truckService.GetByID(r.Context(), id)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	var dto truck.DTO
	if err := httpapi.MergePatch(r, truck.DTOFromEntity(existing), &dto); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	t, err := c.truckService.Update(r.Context(), id, &dto)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, mappers.TruckToViewModel(t))
}

func (c *TrucksController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	if _, err := c.truckService.Delete(r.Context(), id); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteNoContent(w)
}

// AssignDriver sets or clears the truck's driver. A null driverId
// unassigns.
func (c *TrucksController) AssignDriver(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	var dto AssignDriverDTO
	if err := httpapi.DecodeJSON(r, &dto); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	t, err := c.truckService.AssignDriver(r.Context(), id, dto.DriverID)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, mappers.TruckToViewModel(t))
}
