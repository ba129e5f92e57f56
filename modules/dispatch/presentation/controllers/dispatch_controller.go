package controllers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fleetdesk/fleetdesk/modules/dispatch/domain/aggregates/dispatch"
	"github.com/fleetdesk/fleetdesk/modules/dispatch/presentation/mappers"
	"github.com/fleetdesk/fleetdesk/modules/dispatch/services"
	"github.com/fleetdesk/fleetdesk/pkg/application"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/export"
	"github.com/fleetdesk/fleetdesk/pkg/httpapi"
	"github.com/fleetdesk/fleetdesk/pkg/middleware"
	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

type DispatchListQuery struct {
	Q string `query:"q"`
}

type DispatchesController struct {
	app             application.Application
	dispatchService *services.DispatchService
	basePath        string
}

func NewDispatchesController(app application.Application) application.Controller {
	return &DispatchesController{
		app:             app,
		dispatchService: app.Service(services.DispatchService{}).(*services.DispatchService),
		basePath:        "/api/dispatches",
	}
}

func (c *DispatchesController) Key() string {
	return c.basePath
}

func (c *DispatchesController) Register(r *mux.Router) {
	getRouter := r.PathPrefix(c.basePath).Subrouter()
	getRouter.Use(middleware.RequireUser())
	getRouter.HandleFunc("", c.List).Methods(http.MethodGet)
	getRouter.HandleFunc("/export", c.Export).Methods(http.MethodGet)
	getRouter.HandleFunc("/{id}", c.GetByID).Methods(http.MethodGet)
	getRouter.HandleFunc("/{id}/history", c.History).Methods(http.MethodGet)

	setRouter := r.PathPrefix(c.basePath).Subrouter()
	setRouter.Use(middleware.RequireUser(), middleware.WithTransaction())
	setRouter.HandleFunc("", c.Create).Methods(http.MethodPost)
	setRouter.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	setRouter.HandleFunc("/{id}", c.Patch).Methods(http.MethodPatch)
	setRouter.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
	setRouter.HandleFunc("/{id}/assign", c.Assign).Methods(http.MethodPost)
	setRouter.HandleFunc("/{id}/status", c.ChangeStatus).Methods(http.MethodPost)
}

func (c *DispatchesController) findParams(r *http.Request) (*dispatch.FindParams, error) {
	query, err := composables.UseQuery(&DispatchListQuery{}, r)
	if err != nil {
		return nil, serrors.BadRequest("INVALID_QUERY", err.Error())
	}
	verrs := serrors.ValidationErrors{}
	var statuses []dispatch.Status
	for _, v := range httpapi.QueryList(r, "status") {
		if s := dispatch.Status(v); s.IsValid() {
			statuses = append(statuses, s)
		} else {
			verrs.Add("status", "unknown status "+v)
		}
	}
	var priorities []dispatch.Priority
	for _, v := range httpapi.QueryList(r, "priority") {
		if p := dispatch.Priority(v); p.IsValid() {
			priorities = append(priorities, p)
		} else {
			verrs.Add("priority", "unknown priority "+v)
		}
	}
	from, err := httpapi.QueryTime(r, "from")
	if err != nil {
		return nil, err
	}
	to, err := httpapi.QueryTime(r, "to")
	if err != nil {
		return nil, err
	}
	if from != nil && to != nil && to.Before(*from) {
		verrs.Add("to", "must not be before from")
	}
	if err := verrs.OrNil(); err != nil {
		return nil, err
	}
	params := &dispatch.FindParams{
		Q:          query.Q,
		Statuses:   statuses,
		Priorities: priorities,
		PickupFrom: from,
		PickupTo:   to,
	}
	if params.DriverID, err = httpapi.QueryUUID(r, "driverId"); err != nil {
		return nil, err
	}
	if params.TruckID, err = httpapi.QueryUUID(r, "truckId"); err != nil {
		return nil, err
	}
	if params.CustomerID, err = httpapi.QueryUUID(r, "customerId"); err != nil {
		return nil, err
	}
	page := composables.UsePaginated(r)
	params.Limit = page.Limit
	params.Offset = page.Offset
	return params, nil
}

func (c *DispatchesController) List(w http.ResponseWriter, r *http.Request) {
	params, err := c.findParams(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	list, total, err := c.dispatchService.GetPaginatedWithTotal(r.Context(), params)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteList(w, mappers.DispatchesToViewModels(list), httpapi.ListMeta{
		Total:  total,
		Offset: params.Offset,
		Limit:  params.Limit,
	})
}

var dispatchExportTable = export.Table[*dispatch.Dispatch]{
	Sheet: "Dispatches",
	Columns: []export.Column[*dispatch.Dispatch]{
		{Header: "Number", Width: 14, Value: func(d *dispatch.Dispatch) any { return d.DisplayNumber() }},
		{Header: "Origin", Width: 24, Value: func(d *dispatch.Dispatch) any { return d.Origin }},
		{Header: "Destination", Width: 24, Value: func(d *dispatch.Dispatch) any { return d.Destination }},
		{Header: "Pickup", Width: 18, Value: func(d *dispatch.Dispatch) any { return d.PickupAt }},
		{Header: "Delivery", Width: 18, Value: func(d *dispatch.Dispatch) any { return d.DeliveryAt }},
		{Header: "Status", Width: 12, Value: func(d *dispatch.Dispatch) any { return string(d.Status) }},
		{Header: "Priority", Width: 10, Value: func(d *dispatch.Dispatch) any { return string(d.Priority) }},
		{Header: "Truck", Width: 10, Value: func(d *dispatch.Dispatch) any { return d.TruckUnit }},
		{Header: "Driver", Width: 24, Value: func(d *dispatch.Dispatch) any { return d.DriverName }},
		{Header: "Customer", Width: 24, Value: func(d *dispatch.Dispatch) any { return d.CustomerName }},
		{Header: "Carrier", Width: 24, Value: func(d *dispatch.Dispatch) any { return d.CarrierName }},
		{Header: "Rate", Width: 12, Value: func(d *dispatch.Dispatch) any { return d.Rate.InexactFloat64() }},
		{Header: "Currency", Width: 9, Value: func(d *dispatch.Dispatch) any { return d.Currency }},
		{Header: "Weight (lbs)", Value: func(d *dispatch.Dispatch) any { return d.WeightLbs }},
	},
}

func (c *DispatchesController) Export(w http.ResponseWriter, r *http.Request) {
	params, err := c.findParams(r)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	list, err := c.dispatchService.Export(r.Context(), params)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	if err := export.Serve(w, export.Filename("dispatches", time.Now()), dispatchExportTable, list); err != nil {
		composables.UseLogger(r.Context()).WithError(err).Error("failed to export dispatches")
	}
}

func (c *DispatchesController) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	d, err := c.dispatchService.GetByID(r.Context(), id)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, mappers.DispatchToViewModel(d))
}

func (c *DispatchesController) History(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	entries, err := c.dispatchService.History(r.Context(), id)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, mappers.HistoryToViewModels(entries))
}

func (c *DispatchesController) Create(w http.ResponseWriter, r *http.Request) {
	var dto dispatch.DTO
	if err := httpapi.DecodeJSON(r, &dto); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	d, err := c.dispatchService.Create(r.Context(), &dto)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusCreated, mappers.DispatchToViewModel(d))
}

func (c *DispatchesController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	var dto dispatch.DTO
	if err := httpapi.DecodeJSON(r, &dto); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	d, err := c.dispatchService.Update(r.Context(), id, &dto)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, mappers.DispatchToViewModel(d))
}

// Patch applies a JSON merge patch to the dispatch's writable fields.
func (c *DispatchesController) Patch(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	existing, err := c.dispatchService.GetByID(r.Context(), id)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	var dto dispatch.DTO
	if err := httpapi.MergePatch(r, dispatch.DTOFromEntity(existing), &dto); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	d, err := c.dispatchService.Update(r.Context(), id, &dto)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, mappers.DispatchToViewModel(d))
}

func (c *DispatchesController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	if _, err := c.dispatchService.Delete(r.Context(), id); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteNoContent(w)
}

func (c *DispatchesController) Assign(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	var dto dispatch.AssignDTO
	if err := httpapi.DecodeJSON(r, &dto); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	d, err := c.dispatchService.Assign(r.Context(), id, &dto)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, mappers.DispatchToViewModel(d))
}

func (c *DispatchesController) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpapi.PathUUID(r, "id")
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	var dto dispatch.StatusDTO
	if err := httpapi.DecodeJSON(r, &dto); err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	d, err := c.dispatchService.ChangeStatus(r.Context(), id, &dto)
	if err != nil {
		httpapi.WriteServiceError(w, r, err)
		return
	}
	httpapi.WriteData(w, http.StatusOK, mappers.DispatchToViewModel(d))
}
