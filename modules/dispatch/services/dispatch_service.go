package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/modules/contragents/domain/aggregates/contragent"
	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/modules/dispatch/domain/aggregates/dispatch"
	"github.com/fleetdesk/fleetdesk/modules/fleet/domain/aggregates/truck"
	"github.com/fleetdesk/fleetdesk/pkg/authz"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/eventbus"
	"github.com/fleetdesk/fleetdesk/pkg/search"
	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

var ErrDriverStatusChange = serrors.Forbidden("DISPATCH_DRIVER_STATUS", "drivers may only start or deliver their dispatches")

type TruckReader interface {
	Lookup(ctx context.Context, id uuid.UUID) (*truck.Truck, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
}

type ContragentReader interface {
	Lookup(ctx context.Context, id uuid.UUID) (*contragent.Contragent, error)
}

type DispatchService struct {
	repo        dispatch.Repository
	trucks      TruckReader
	users       UserReader
	contragents ContragentReader
	publisher   eventbus.EventBus
}

func NewDispatchService(
	repo dispatch.Repository,
	trucks TruckReader,
	users UserReader,
	contragents ContragentReader,
	publisher eventbus.EventBus,
) *DispatchService {
	return &DispatchService{
		repo:        repo,
		trucks:      trucks,
		users:       users,
		contragents: contragents,
		publisher:   publisher,
	}
}

func dispatchSearchFields(d *dispatch.Dispatch) []string {
	return []string{
		d.DisplayNumber(),
		d.Origin,
		d.Destination,
		d.TruckUnit,
		d.DriverName,
		d.CustomerName,
		d.CarrierName,
		d.Notes,
	}
}

// driverScope returns the id of the current user when it is a driver.
// Drivers only see dispatches assigned to them.
func driverScope(ctx context.Context) *uuid.UUID {
	u, err := composables.UseUser(ctx)
	if err != nil || u.Role() != user.RoleDriver {
		return nil
	}
	id := u.ID()
	return &id
}

func actorID(ctx context.Context) *uuid.UUID {
	u, err := composables.UseUser(ctx)
	if err != nil {
		return nil
	}
	id := u.ID()
	return &id
}

func (s *DispatchService) GetByID(ctx context.Context, id uuid.UUID) (*dispatch.Dispatch, error) {
	if err := authorizeDispatches(ctx, authz.ActionView); err != nil {
		return nil, err
	}
	return s.getScoped(ctx, id)
}

func (s *DispatchService) getScoped(ctx context.Context, id uuid.UUID) (*dispatch.Dispatch, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if driverID := driverScope(ctx); driverID != nil && !d.AssignedTo(*driverID) {
		return nil, dispatch.ErrNotFound
	}
	return d, nil
}

func (s *DispatchService) CountByStatus(ctx context.Context, filter dispatch.StatusFilter) (map[dispatch.Status]int64, error) {
	return s.repo.CountByStatus(ctx, filter)
}

func (s *DispatchService) RevenueByCurrency(ctx context.Context) ([]Revenue, error) {
	sums, err := s.repo.RevenueByCurrency(ctx)
	if err != nil {
		return nil, err
	}
	return revenueLines(sums), nil
}

// Active returns the dispatches driverID is working on, earliest pickup first.
func (s *DispatchService) Active(ctx context.Context, driverID uuid.UUID) ([]*dispatch.Dispatch, error) {
	list, err := s.repo.GetPaginated(ctx, &dispatch.FindParams{
		DriverID: &driverID,
		Statuses: dispatch.ActiveStatuses,
	})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
	return list, nil
}

// EnsureDriverIdle refuses with ErrDriverBusy while driverID has active
// dispatches. It guards role changes and deactivation of drivers.
func (s *DispatchService) EnsureDriverIdle(ctx context.Context, driverID uuid.UUID) error {
	n, err := s.repo.Count(ctx, &dispatch.FindParams{
		DriverID: &driverID,
		Statuses: dispatch.ActiveStatuses,
	})
	if err != nil {
		return err
	}
	if n > 0 {
		return dispatch.ErrDriverBusy
	}
	return nil
}

// EnsureContragentUnused refuses with contragent.ErrInUse while any
// dispatch names id as its customer or carrier.
func (s *DispatchService) EnsureContragentUnused(ctx context.Context, id uuid.UUID) error {
	n, err := s.repo.CountByContragent(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return contragent.ErrInUse
	}
	return nil
}

// GetPaginatedWithTotal returns one window of dispatches and the number
// matching params. A non-empty Q ranks candidates by fuzzy match.
func (s *DispatchService) GetPaginatedWithTotal(ctx context.Context, params *dispatch.FindParams) ([]*dispatch.Dispatch, int64, error) {
	if err := authorizeDispatches(ctx, authz.ActionList); err != nil {
		return nil, 0, err
	}
	return s.find(ctx, params)
}

// Export returns every dispatch matching params, ignoring the window.
func (s *DispatchService) Export(ctx context.Context, params *dispatch.FindParams) ([]*dispatch.Dispatch, error) {
	if err := authorizeDispatches(ctx, authz.ActionExport); err != nil {
		return nil, err
	}
	all := *params
	all.Offset = 0
	all.Limit = 0
	list, _, err := s.find(ctx, &all)
	return list, err
}

func (s *DispatchService) find(ctx context.Context, params *dispatch.FindParams) ([]*dispatch.Dispatch, int64, error) {
	scoped := *params
	if driverID := driverScope(ctx); driverID != nil {
		scoped.DriverID = driverID
	}
	if scoped.Q == "" {
		list, err := s.repo.GetPaginated(ctx, &scoped)
		if err != nil {
			return nil, 0, err
		}
		total, err := s.repo.Count(ctx, &scoped)
		if err != nil {
			return nil, 0, err
		}
		return list, total, nil
	}

	candidates := scoped
	candidates.Offset = 0
	candidates.Limit = search.MaxCandidates
	all, err := s.repo.GetPaginated(ctx, &candidates)
	if err != nil {
		return nil, 0, err
	}
	matched := search.Filter(scoped.Q, all, dispatchSearchFields)
	return search.Window(matched, scoped.Offset, scoped.Limit), int64(len(matched)), nil
}

func (s *DispatchService) History(ctx context.Context, id uuid.UUID) ([]*dispatch.HistoryEntry, error) {
	if err := authorizeDispatches(ctx, authz.ActionView); err != nil {
		return nil, err
	}
	if _, err := s.getScoped(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.History(ctx, id)
}

func (s *DispatchService) Create(ctx context.Context, dto *dispatch.DTO) (*dispatch.Dispatch, error) {
	if err := authorizeDispatches(ctx, authz.ActionCreate); err != nil {
		return nil, err
	}
	if err := dto.Ok(); err != nil {
		return nil, err
	}
	entity := dto.ToEntity(actorID(ctx))

	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (*dispatch.Dispatch, error) {
		if err := s.checkContragents(txCtx, entity, nil); err != nil {
			return nil, err
		}
		created, err := s.repo.Create(txCtx, entity)
		if err != nil {
			return nil, err
		}
		return created, s.record(txCtx, dispatch.ActionCreated, nil, created)
	})
	if err != nil {
		return nil, err
	}
	sender, _ := composables.UseUser(ctx)
	s.publisher.Publish(&dispatch.CreatedEvent{Sender: sender, Result: created})
	return created, nil
}

// Update replaces the writable fields. Status and assignment are left
// untouched.
func (s *DispatchService) Update(ctx context.Context, id uuid.UUID, dto *dispatch.DTO) (*dispatch.Dispatch, error) {
	if err := authorizeDispatches(ctx, authz.ActionUpdate); err != nil {
		return nil, err
	}
	if err := dto.Ok(); err != nil {
		return nil, err
	}

	var before *dispatch.Dispatch
	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (*dispatch.Dispatch, error) {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		before = existing
		data := dto.Apply(existing)
		if err := s.checkContragents(txCtx, data, existing); err != nil {
			return nil, err
		}
		updated, err := s.repo.Update(txCtx, data)
		if err != nil {
			return nil, err
		}
		return updated, s.record(txCtx, dispatch.ActionUpdated, before, updated)
	})
	if err != nil {
		return nil, err
	}
	sender, _ := composables.UseUser(ctx)
	s.publisher.Publish(&dispatch.UpdatedEvent{Sender: sender, Before: before, Result: updated})
	return updated, nil
}

// Assign puts a truck and driver on a pending or assigned dispatch and
// moves a pending one to assigned. Without dto.DriverID the truck's
// driver is used.
func (s *DispatchService) Assign(ctx context.Context, id uuid.UUID, dto *dispatch.AssignDTO) (*dispatch.Dispatch, error) {
	if err := authorizeDispatches(ctx, authz.ActionAssign); err != nil {
		return nil, err
	}
	if err := dto.Ok(); err != nil {
		return nil, err
	}

	var before *dispatch.Dispatch
	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (*dispatch.Dispatch, error) {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		before = existing
		if existing.Status != dispatch.StatusPending && existing.Status != dispatch.StatusAssigned {
			return nil, dispatch.ErrNotAssignable
		}
		t, err := s.trucks.Lookup(txCtx, dto.TruckID)
		if err != nil {
			if serrors.KindOf(err) == serrors.KindNotFound {
				return nil, dispatch.ErrUnknownTruck
			}
			return nil, err
		}
		if !t.Status.Dispatchable() {
			return nil, dispatch.ErrTruckUnavailable
		}
		driverID := dto.DriverID
		if driverID == nil {
			driverID = t.DriverID
		}
		if driverID == nil {
			return nil, dispatch.ErrNoDriver
		}
		if err := s.checkDriver(txCtx, *driverID); err != nil {
			return nil, err
		}

		data := *existing
		truckID := t.ID
		data.TruckID = &truckID
		data.DriverID = driverID
		data.Status = dispatch.StatusAssigned
		data.UpdatedAt = time.Now().UTC()
		updated, err := s.repo.Update(txCtx, &data)
		if err != nil {
			return nil, err
		}
		return updated, s.record(txCtx, dispatch.ActionAssigned, before, updated)
	})
	if err != nil {
		return nil, err
	}
	sender, _ := composables.UseUser(ctx)
	s.publisher.Publish(&dispatch.AssignedEvent{Sender: sender, Before: before, Result: updated})
	return updated, nil
}

// ChangeStatus moves the dispatch along the allowed transitions. Moving
// back to pending clears the assignment. Drivers may only move their own
// dispatches to in_transit or delivered.
func (s *DispatchService) ChangeStatus(ctx context.Context, id uuid.UUID, dto *dispatch.StatusDTO) (*dispatch.Dispatch, error) {
	if err := authorizeDispatches(ctx, authz.ActionStatus); err != nil {
		return nil, err
	}
	if err := dto.Ok(); err != nil {
		return nil, err
	}
	next := dispatch.Status(dto.Status)

	var before *dispatch.Dispatch
	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (*dispatch.Dispatch, error) {
		existing, err := s.getScoped(txCtx, id)
		if err != nil {
			return nil, err
		}
		before = existing
		if driverScope(txCtx) != nil && next != dispatch.StatusInTransit && next != dispatch.StatusDelivered {
			return nil, ErrDriverStatusChange
		}
		if !existing.Status.CanTransition(next) {
			return nil, dispatch.ErrInvalidTransition
		}
		data := *existing
		switch next {
		case dispatch.StatusPending:
			data.TruckID = nil
			data.DriverID = nil
		case dispatch.StatusAssigned:
			if data.TruckID == nil || data.DriverID == nil {
				return nil, dispatch.ErrNotAssigned
			}
		}
		data.Status = next
		data.UpdatedAt = time.Now().UTC()
		updated, err := s.repo.Update(txCtx, &data)
		if err != nil {
			return nil, err
		}
		return updated, s.record(txCtx, dispatch.ActionStatus, before, updated)
	})
	if err != nil {
		return nil, err
	}
	sender, _ := composables.UseUser(ctx)
	s.publisher.Publish(&dispatch.StatusChangedEvent{Sender: sender, From: before.Status, Result: updated})
	return updated, nil
}

func (s *DispatchService) Delete(ctx context.Context, id uuid.UUID) (*dispatch.Dispatch, error) {
	if err := authorizeDispatches(ctx, authz.ActionDelete); err != nil {
		return nil, err
	}
	deleted, err := composables.InTxResult(ctx, func(txCtx context.Context) (*dispatch.Dispatch, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		if !entity.Status.Deletable() {
			return nil, dispatch.ErrNotDeletable
		}
		if err := s.repo.Delete(txCtx, id); err != nil {
			return nil, err
		}
		return entity, nil
	})
	if err != nil {
		return nil, err
	}
	sender, _ := composables.UseUser(ctx)
	s.publisher.Publish(&dispatch.DeletedEvent{Sender: sender, Result: deleted})
	return deleted, nil
}

func (s *DispatchService) record(ctx context.Context, action dispatch.Action, before, after *dispatch.Dispatch) error {
	entry, err := dispatch.NewHistoryEntry(action, actorID(ctx), before, after)
	if err != nil {
		return err
	}
	return s.repo.AddHistory(ctx, entry)
}

// checkContragents validates customer and carrier when they differ from
// existing, which is nil on create.
func (s *DispatchService) checkContragents(ctx context.Context, d, existing *dispatch.Dispatch) error {
	var prevCustomer, prevCarrier *uuid.UUID
	if existing != nil {
		prevCustomer, prevCarrier = existing.CustomerID, existing.CarrierID
	}
	if d.CustomerID != nil && !sameID(d.CustomerID, prevCustomer) {
		if err := s.checkContragent(ctx, *d.CustomerID, contragent.TypeCustomer, dispatch.ErrNotCustomer); err != nil {
			return err
		}
	}
	if d.CarrierID != nil && !sameID(d.CarrierID, prevCarrier) {
		if err := s.checkContragent(ctx, *d.CarrierID, contragent.TypeCarrier, dispatch.ErrNotCarrier); err != nil {
			return err
		}
	}
	return nil
}

func (s *DispatchService) checkContragent(ctx context.Context, id uuid.UUID, want contragent.Type, mismatch error) error {
	c, err := s.contragents.Lookup(ctx, id)
	if err != nil {
		if serrors.KindOf(err) == serrors.KindNotFound {
			return mismatch
		}
		return err
	}
	if c.Type != want {
		return mismatch
	}
	return nil
}

func (s *DispatchService) checkDriver(ctx context.Context, id uuid.UUID) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if serrors.KindOf(err) == serrors.KindNotFound {
			return dispatch.ErrNotADriver
		}
		return err
	}
	if u.Role() != user.RoleDriver || !u.Active() {
		return dispatch.ErrNotADriver
	}
	return nil
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
