package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/modules/core/domain/entities/upload"
	"github.com/fleetdesk/fleetdesk/modules/fleet/domain/aggregates/truck"
	"github.com/fleetdesk/fleetdesk/pkg/authz"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/eventbus"
	"github.com/fleetdesk/fleetdesk/pkg/search"
	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

// UserReader resolves the users trucks reference.
type UserReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
}

// UploadReader resolves truck photos.
type UploadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*upload.Upload, error)
}

type TruckService struct {
	repo      truck.Repository
	users     UserReader
	uploads   UploadReader
	publisher eventbus.EventBus
}

func NewTruckService(repo truck.Repository, users UserReader, uploads UploadReader, publisher eventbus.EventBus) *TruckService {
	return &TruckService{
		repo:      repo,
		users:     users,
		uploads:   uploads,
		publisher: publisher,
	}
}

func truckSearchFields(t *truck.Truck) []string {
	return []string{t.UnitNumber, t.PlateNumber, t.VIN, t.Make, t.Model, t.Location, t.DriverName}
}

func (s *TruckService) GetByID(ctx context.Context, id uuid.UUID) (*truck.Truck, error) {
	if err := authorizeTrucks(ctx, authz.ActionView); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// GetByDriverID returns the truck driven by driverID. It backs the driver
// dashboard and dispatch assignment and is not authorized.
func (s *TruckService) GetByDriverID(ctx context.Context, driverID uuid.UUID) (*truck.Truck, error) {
	return s.repo.GetByDriverID(ctx, driverID)
}

// Lookup returns a truck for modules that reference trucks. It is not
// authorized.
func (s *TruckService) Lookup(ctx context.Context, id uuid.UUID) (*truck.Truck, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TruckService) CountByStatus(ctx context.Context) (map[truck.Status]int64, error) {
	return s.repo.CountByStatus(ctx)
}

// GetPaginatedWithTotal returns one window of trucks and the number of
// trucks matching params. A non-empty Q ranks candidates by fuzzy match.
func (s *TruckService) GetPaginatedWithTotal(ctx context.Context, params *truck.FindParams) ([]*truck.Truck, int64, error) {
	if err := authorizeTrucks(ctx, authz.ActionList); err != nil {
		return nil, 0, err
	}
	return s.find(ctx, params)
}

// Export returns every truck matching params, ignoring the window.
func (s *TruckService) Export(ctx context.Context, params *truck.FindParams) ([]*truck.Truck, error) {
	if err := authorizeTrucks(ctx, authz.ActionExport); err != nil {
		return nil, err
	}
	all := *params
	all.Offset = 0
	all.Limit = 0
	trucks, _, err := s.find(ctx, &all)
	return trucks, err
}

func (s *TruckService) find(ctx context.Context, params *truck.FindParams) ([]*truck.Truck, int64, error) {
	if params.Q == "" {
		trucks, err := s.repo.GetPaginated(ctx, params)
		if err != nil {
			return nil, 0, err
		}
		total, err := s.repo.Count(ctx, params)
		if err != nil {
			return nil, 0, err
		}
		return trucks, total, nil
	}

	candidates := *params
	candidates.Offset = 0
	candidates.Limit = search.MaxCandidates
	all, err := s.repo.GetPaginated(ctx, &candidates)
	if err != nil {
		return nil, 0, err
	}
	matched := search.Filter(params.Q, all, truckSearchFields)
	return search.Window(matched, params.Offset, params.Limit), int64(len(matched)), nil
}

func (s *TruckService) Create(ctx context.Context, dto *truck.DTO) (*truck.Truck, error) {
	if err := authorizeTrucks(ctx, authz.ActionCreate); err != nil {
		return nil, err
	}
	if err := dto.Ok(); err != nil {
		return nil, err
	}
	entity := dto.ToEntity()

	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (*truck.Truck, error) {
		if err := s.checkReferences(txCtx, entity, nil); err != nil {
			return nil, err
		}
		if entity.DriverID != nil {
			if err := s.repo.ReleaseDriver(txCtx, *entity.DriverID, entity.ID); err != nil {
				return nil, err
			}
		}
		return s.repo.Create(txCtx, entity)
	})
	if err != nil {
		return nil, err
	}
	sender, _ := composables.UseUser(ctx)
	s.publisher.Publish(&truck.CreatedEvent{Sender: sender, Result: created})
	return created, nil
}

// Update replaces every writable field of the truck. A changed driverId is
// handled like an assignment.
func (s *TruckService) Update(ctx context.Context, id uuid.UUID, dto *truck.DTO) (*truck.Truck, error) {
	if err := authorizeTrucks(ctx, authz.ActionUpdate); err != nil {
		return nil, err
	}
	if err := dto.Ok(); err != nil {
		return nil, err
	}

	var before *truck.Truck
	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (*truck.Truck, error) {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		before = existing
		data := dto.Apply(existing)
		if err := s.checkReferences(txCtx, data, existing); err != nil {
			return nil, err
		}
		if data.DriverID != nil && !sameID(data.DriverID, existing.DriverID) {
			if err := s.repo.ReleaseDriver(txCtx, *data.DriverID, data.ID); err != nil {
				return nil, err
			}
		}
		return s.repo.Update(txCtx, data)
	})
	if err != nil {
		return nil, err
	}
	sender, _ := composables.UseUser(ctx)
	s.publisher.Publish(&truck.UpdatedEvent{Sender: sender, Before: before, Result: updated})
	if !sameID(before.DriverID, updated.DriverID) {
		s.publisher.Publish(&truck.DriverAssignedEvent{Sender: sender, Truck: updated, Previous: before})
	}
	return updated, nil
}

// AssignDriver puts driverID on the truck, removing the driver from any
// other truck. A nil driverID unassigns the current driver.
func (s *TruckService) AssignDriver(ctx context.Context, id uuid.UUID, driverID *uuid.UUID) (*truck.Truck, error) {
	if err := authorizeTrucks(ctx, authz.ActionAssign); err != nil {
		return nil, err
	}

	var before *truck.Truck
	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (*truck.Truck, error) {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		before = existing
		if sameID(existing.DriverID, driverID) {
			return existing, nil
		}
		if driverID != nil {
			if err := s.checkDriver(txCtx, *driverID); err != nil {
				return nil, err
			}
			if err := s.repo.ReleaseDriver(txCtx, *driverID, id); err != nil {
				return nil, err
			}
		}
		data := *existing
		data.DriverID = driverID
		data.UpdatedAt = time.Now().UTC()
		return s.repo.Update(txCtx, &data)
	})
	if err != nil {
		return nil, err
	}
	if !sameID(before.DriverID, updated.DriverID) {
		sender, _ := composables.UseUser(ctx)
		s.publisher.Publish(&truck.DriverAssignedEvent{Sender: sender, Truck: updated, Previous: before})
	}
	return updated, nil
}

// ReleaseDriver takes driverID off whatever truck they drive. It runs
// inside the caller's transaction when the user stops being an active
// driver and is not authorized.
func (s *TruckService) ReleaseDriver(ctx context.Context, driverID uuid.UUID) error {
	return s.repo.ReleaseDriver(ctx, driverID, uuid.Nil)
}

func (s *TruckService) Delete(ctx context.Context, id uuid.UUID) (*truck.Truck, error) {
	if err := authorizeTrucks(ctx, authz.ActionDelete); err != nil {
		return nil, err
	}
	deleted, err := composables.InTxResult(ctx, func(txCtx context.Context) (*truck.Truck, error) {
		entity, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
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
	s.publisher.Publish(&truck.DeletedEvent{Sender: sender, Result: deleted})
	return deleted, nil
}

// checkReferences validates the driver and photo of t when they differ
// from existing, which is nil on create.
func (s *TruckService) checkReferences(ctx context.Context, t, existing *truck.Truck) error {
	var prevDriver, prevPhoto *uuid.UUID
	if existing != nil {
		prevDriver, prevPhoto = existing.DriverID, existing.PhotoUploadID
	}
	if t.DriverID != nil && !sameID(t.DriverID, prevDriver) {
		if err := s.checkDriver(ctx, *t.DriverID); err != nil {
			return err
		}
	}
	if t.PhotoUploadID != nil && !sameID(t.PhotoUploadID, prevPhoto) {
		up, err := s.uploads.GetByID(ctx, *t.PhotoUploadID)
		if err != nil {
			if serrors.KindOf(err) == serrors.KindNotFound {
				return truck.ErrUnknownPhoto
			}
			return err
		}
		if !up.IsImage() {
			return truck.ErrPhotoNotImage
		}
	}
	return nil
}

func (s *TruckService) checkDriver(ctx context.Context, id uuid.UUID) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if serrors.KindOf(err) == serrors.KindNotFound {
			return truck.ErrNotADriver
		}
		return err
	}
	if u.Role() != user.RoleDriver {
		return truck.ErrNotADriver
	}
	if !u.Active() {
		return truck.ErrInactiveDriver
	}
	return nil
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
