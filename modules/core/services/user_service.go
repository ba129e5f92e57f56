package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/pkg/authz"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/eventbus"
	"github.com/fleetdesk/fleetdesk/pkg/search"
)

func authorizeUsers(ctx context.Context, action string) error {
	return authorizeCore(ctx, usersAuthzObject, action)
}

// DriverRetiredHook runs inside the update transaction when an active
// driver loses the driver role or is deactivated. An error aborts the
// update.
type DriverRetiredHook func(ctx context.Context, driverID uuid.UUID) error

type UserService struct {
	repo          user.Repository
	publisher     eventbus.EventBus
	driverRetired []DriverRetiredHook
}

func NewUserService(repo user.Repository, publisher eventbus.EventBus) *UserService {
	return &UserService{
		repo:      repo,
		publisher: publisher,
	}
}

// OnDriverRetired registers hook. Modules that reference drivers use it to
// release or refuse the change. Hooks run in registration order.
func (s *UserService) OnDriverRetired(hook DriverRetiredHook) {
	s.driverRetired = append(s.driverRetired, hook)
}

func retiresDriver(before, after user.User) bool {
	if before.Role() != user.RoleDriver || !before.Active() {
		return false
	}
	return after.Role() != user.RoleDriver || !after.Active()
}

// GetByEmail is used by authentication and is not authorized.
func (s *UserService) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	if err := authorizeUsers(ctx, authz.ActionView); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) CountByRole(ctx context.Context) (map[user.Role]int64, error) {
	return s.repo.CountByRole(ctx)
}

func userSearchFields(u user.User) []string {
	return []string{u.FirstName(), u.LastName(), u.Email(), u.Phone()}
}

// GetPaginatedWithTotal returns one window of users and the number of
// users matching params. A non-empty Q ranks candidates by fuzzy match.
func (s *UserService) GetPaginatedWithTotal(ctx context.Context, params *user.FindParams) ([]user.User, int64, error) {
	if err := authorizeUsers(ctx, authz.ActionList); err != nil {
		return nil, 0, err
	}
	if params.Q == "" {
		us, err := s.repo.GetPaginated(ctx, params)
		if err != nil {
			return nil, 0, err
		}
		total, err := s.repo.Count(ctx, params)
		if err != nil {
			return nil, 0, err
		}
		return us, total, nil
	}

	candidates := *params
	candidates.Offset = 0
	candidates.Limit = search.MaxCandidates
	all, err := s.repo.GetPaginated(ctx, &candidates)
	if err != nil {
		return nil, 0, err
	}
	matched := search.Filter(params.Q, all, userSearchFields)
	return search.Window(matched, params.Offset, params.Limit), int64(len(matched)), nil
}

func (s *UserService) Create(ctx context.Context, dto *user.CreateDTO) (user.User, error) {
	if err := authorizeUsers(ctx, authz.ActionCreate); err != nil {
		return nil, err
	}
	if err := dto.Ok(); err != nil {
		return nil, err
	}
	entity, err := dto.ToEntity()
	if err != nil {
		return nil, err
	}

	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (user.User, error) {
		return s.repo.Create(txCtx, entity)
	})
	if err != nil {
		return nil, err
	}
	sender, _ := composables.UseUser(ctx)
	s.publisher.Publish(&user.CreatedEvent{Sender: sender, Result: created})
	return created, nil
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, dto *user.UpdateDTO) (user.User, error) {
	if err := authorizeUsers(ctx, authz.ActionUpdate); err != nil {
		return nil, err
	}
	if err := dto.Ok(); err != nil {
		return nil, err
	}

	var data user.User
	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (user.User, error) {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		data, err = dto.Apply(existing)
		if err != nil {
			return nil, err
		}
		if retiresDriver(existing, data) {
			for _, hook := range s.driverRetired {
				if err := hook(txCtx, id); err != nil {
					return nil, err
				}
			}
		}
		return s.repo.Update(txCtx, data)
	})
	if err != nil {
		return nil, err
	}
	sender, _ := composables.UseUser(ctx)
	s.publisher.Publish(&user.UpdatedEvent{Sender: sender, Data: data, Result: updated})
	return updated, nil
}

func (s *UserService) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	return s.repo.UpdateLastLogin(ctx, id)
}

// Delete removes a user. Nobody can delete their own account.
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) (user.User, error) {
	if err := authorizeUsers(ctx, authz.ActionDelete); err != nil {
		return nil, err
	}
	sender, _ := composables.UseUser(ctx)
	if sender != nil && sender.ID() == id {
		return nil, user.ErrSelfDelete
	}

	deleted, err := composables.InTxResult(ctx, func(txCtx context.Context) (user.User, error) {
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
	s.publisher.Publish(&user.DeletedEvent{Sender: sender, Result: deleted})
	return deleted, nil
}
