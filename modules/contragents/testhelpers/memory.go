// Package testhelpers holds an in-memory contragent repository.
package testhelpers

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/modules/contragents/domain/aggregates/contragent"
)

type ContragentRepository struct {
	mu    sync.Mutex
	items map[uuid.UUID]contragent.Contragent
	// InUse makes Delete fail like a referenced row does.
	InUse map[uuid.UUID]bool
}

func NewContragentRepository(items ...*contragent.Contragent) *ContragentRepository {
	r := &ContragentRepository{items: map[uuid.UUID]contragent.Contragent{}, InUse: map[uuid.UUID]bool{}}
	for _, c := range items {
		r.items[c.ID] = *c
	}
	return r
}

func (r *ContragentRepository) filtered(params *contragent.FindParams) []*contragent.Contragent {
	out := make([]*contragent.Contragent, 0, len(r.items))
	for _, c := range r.items {
		if len(params.Types) > 0 && !containsType(params.Types, c.Type) {
			continue
		}
		if len(params.IDs) > 0 && !containsID(params.IDs, c.ID) {
			continue
		}
		c := c
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func containsType(types []contragent.Type, t contragent.Type) bool {
	for _, x := range types {
		if x == t {
			return true
		}
	}
	return false
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func (r *ContragentRepository) GetPaginated(ctx context.Context, params *contragent.FindParams) ([]*contragent.Contragent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.filtered(params)
	if params.Offset >= len(all) {
		return nil, nil
	}
	all = all[params.Offset:]
	if params.Limit > 0 && params.Limit < len(all) {
		all = all[:params.Limit]
	}
	return all, nil
}

func (r *ContragentRepository) Count(ctx context.Context, params *contragent.FindParams) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.filtered(params))), nil
}

func (r *ContragentRepository) GetByID(ctx context.Context, id uuid.UUID) (*contragent.Contragent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.items[id]
	if !ok {
		return nil, contragent.ErrNotFound
	}
	return &c, nil
}

func (r *ContragentRepository) Create(ctx context.Context, c *contragent.Contragent) (*contragent.Contragent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[c.ID] = *c
	out := *c
	return &out, nil
}

func (r *ContragentRepository) Update(ctx context.Context, c *contragent.Contragent) (*contragent.Contragent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[c.ID]; !ok {
		return nil, contragent.ErrNotFound
	}
	r.items[c.ID] = *c
	out := *c
	return &out, nil
}

func (r *ContragentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return contragent.ErrNotFound
	}
	if r.InUse[id] {
		return contragent.ErrInUse
	}
	delete(r.items, id)
	return nil
}
