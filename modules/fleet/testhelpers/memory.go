// Package testhelpers holds an in-memory truck repository for service and
// controller tests.
package testhelpers

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/modules/fleet/domain/aggregates/truck"
)

type TruckRepository struct {
	mu     sync.Mutex
	trucks map[uuid.UUID]truck.Truck
}

func NewTruckRepository(trucks ...*truck.Truck) *TruckRepository {
	r := &TruckRepository{trucks: map[uuid.UUID]truck.Truck{}}
	for _, t := range trucks {
		r.trucks[t.ID] = *t
	}
	return r
}

func contains[T comparable](values []T, v T) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func (r *TruckRepository) filtered(params *truck.FindParams) []*truck.Truck {
	out := make([]*truck.Truck, 0, len(r.trucks))
	for _, t := range r.trucks {
		if len(params.Statuses) > 0 && !contains(params.Statuses, t.Status) {
			continue
		}
		if len(params.Types) > 0 && !contains(params.Types, t.Type) {
			continue
		}
		if len(params.IDs) > 0 && !contains(params.IDs, t.ID) {
			continue
		}
		if params.DriverID != nil && (t.DriverID == nil || *t.DriverID != *params.DriverID) {
			continue
		}
		t := t
		out = append(out, &t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UnitNumber < out[j].UnitNumber })
	return out
}

func (r *TruckRepository) GetPaginated(ctx context.Context, params *truck.FindParams) ([]*truck.Truck, error) {
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

func (r *TruckRepository) Count(ctx context.Context, params *truck.FindParams) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.filtered(params))), nil
}

func (r *TruckRepository) CountByStatus(ctx context.Context) (map[truck.Status]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[truck.Status]int64{}
	for _, s := range truck.Statuses {
		out[s] = 0
	}
	for _, t := range r.trucks {
		out[t.Status]++
	}
	return out, nil
}

func (r *TruckRepository) GetByID(ctx context.Context, id uuid.UUID) (*truck.Truck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trucks[id]
	if !ok {
		return nil, truck.ErrNotFound
	}
	return &t, nil
}

func (r *TruckRepository) GetByDriverID(ctx context.Context, driverID uuid.UUID) (*truck.Truck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.trucks {
		if t.DriverID != nil && *t.DriverID == driverID {
			return &t, nil
		}
	}
	return nil, truck.ErrNotFound
}

func (r *TruckRepository) check(t *truck.Truck) error {
	for id, other := range r.trucks {
		if id == t.ID {
			continue
		}
		if other.UnitNumber == t.UnitNumber {
			return truck.ErrUnitNumberTaken
		}
		if t.DriverID != nil && other.DriverID != nil && *other.DriverID == *t.DriverID {
			return truck.ErrDriverTaken
		}
	}
	return nil
}

func (r *TruckRepository) Create(ctx context.Context, t *truck.Truck) (*truck.Truck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.check(t); err != nil {
		return nil, err
	}
	r.trucks[t.ID] = *t
	out := *t
	return &out, nil
}

func (r *TruckRepository) Update(ctx context.Context, t *truck.Truck) (*truck.Truck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trucks[t.ID]; !ok {
		return nil, truck.ErrNotFound
	}
	if err := r.check(t); err != nil {
		return nil, err
	}
	r.trucks[t.ID] = *t
	out := *t
	return &out, nil
}

func (r *TruckRepository) ReleaseDriver(ctx context.Context, driverID uuid.UUID, keep uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, t := range r.trucks {
		if id != keep && t.DriverID != nil && *t.DriverID == driverID {
			t.DriverID = nil
			r.trucks[id] = t
		}
	}
	return nil
}

func (r *TruckRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trucks[id]; !ok {
		return truck.ErrNotFound
	}
	delete(r.trucks, id)
	return nil
}
