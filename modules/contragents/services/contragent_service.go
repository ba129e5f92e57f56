package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/modules/contragents/domain/aggregates/contragent"
	"github.com/fleetdesk/fleetdesk/modules/contragents/permissions"
	"github.com/fleetdesk/fleetdesk/modules/core/authzutil"
	"github.com/fleetdesk/fleetdesk/pkg/authz"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/eventbus"
	"github.com/fleetdesk/fleetdesk/pkg/search"
)

var authorizeContragentsFn = authzutil.Authorize

func authorizeContragents(ctx context.Context, action string) error {
	return authorizeContragentsFn(ctx, permissions.Contragents, action)
}

// TypeChangeHook runs inside the update transaction before a contragent
// changes type. An error aborts the update.
type TypeChangeHook func(ctx context.Context, id uuid.UUID) error

type ContragentService struct {
	repo        contragent.Repository
	publisher   eventbus.EventBus
	typeChanged []TypeChangeHook
}

func NewContragentService(repo contragent.Repository, publisher eventbus.EventBus) *ContragentService {
	return &ContragentService{
		repo:      repo,
		publisher: publisher,
	}
}

// OnTypeChange registers hook. Modules that rely on a contragent's type
// use it to refuse the change.
func (s *ContragentService) OnTypeChange(hook TypeChangeHook) {
	s.typeChanged = append(s.typeChanged, hook)
}

func contragentSearchFields(c *contragent.Contragent) []string {
	return []string{c.Name, c.ContactPerson, c.Email, c.Phone, c.Address, c.Details.MCNumber, c.Details.DOTNumber}
}

func (s *ContragentService) GetByID(ctx context.Context, id uuid.UUID) (*contragent.Contragent, error) {
	if err := authorizeContragents(ctx, authz.ActionView); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Lookup is used by modules that reference contragents and is not
// authorized.
func (s *ContragentService) Lookup(ctx context.Context, id uuid.UUID) (*contragent.Contragent, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ContragentService) GetPaginatedWithTotal(ctx context.Context, params *contragent.FindParams) ([]*contragent.Contragent, int64, error) {
	if err := authorizeContragents(ctx, authz.ActionList); err != nil {
		return nil, 0, err
	}
	if params.Q == "" {
		items, err := s.repo.GetPaginated(ctx, params)
		if err != nil {
			return nil, 0, err
		}
		total, err := s.repo.Count(ctx, params)
		if err != nil {
			return nil, 0, err
		}
		return items, total, nil
	}

	candidates := *params
	candidates.Offset = 0
	candidates.Limit = search.MaxCandidates
	all, err := s.repo.GetPaginated(ctx, &candidates)
	if err != nil {
		return nil, 0, err
	}
	matched := search.Filter(params.Q, all, contragentSearchFields)
	return search.Window(matched, params.Offset, params.Limit), int64(len(matched)), nil
}

func (s *ContragentService) Create(ctx context.Context, dto *contragent.DTO) (*contragent.Contragent, error) {
	if err := authorizeContragents(ctx, authz.ActionCreate); err != nil {
		return nil, err
	}
	if err := dto.Ok(); err != nil {
		return nil, err
	}
	entity := dto.ToEntity()
	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (*contragent.Contragent, error) {
		return s.repo.Create(txCtx, entity)
	})
	if err != nil {
		return nil, err
	}
	sender, _ := composables.UseUser(ctx)
	s.publisher.Publish(&contragent.CreatedEvent{Sender: sender, Result: created})
	return created, nil
}

func (s *ContragentService) Update(ctx context.Context, id uuid.UUID, dto *contragent.DTO) (*contragent.Contragent, error) {
	if err := authorizeContragents(ctx, authz.ActionUpdate); err != nil {
		return nil, err
	}
	if err := dto.Ok(); err != nil {
		return nil, err
	}
	var before *contragent.Contragent
	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (*contragent.Contragent, error) {
		existing, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return nil, err
		}
		before = existing
		data := dto.Apply(existing)
		if data.Type != existing.Type {
			for _, hook := range s.typeChanged {
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
	s.publisher.Publish(&contragent.UpdatedEvent{Sender: sender, Before: before, Result: updated})
	return updated, nil
}

// Delete removes a contragent. The repository refuses while dispatches
// reference it.
func (s *ContragentService) Delete(ctx context.Context, id uuid.UUID) (*contragent.Contragent, error) {
	if err := authorizeContragents(ctx, authz.ActionDelete); err != nil {
		return nil, err
	}
	deleted, err := composables.InTxResult(ctx, func(txCtx context.Context) (*contragent.Contragent, error) {
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
	s.publisher.Publish(&contragent.DeletedEvent{Sender: sender, Result: deleted})
	return deleted, nil
}
