// Package testhelpers holds an in-memory dispatch repository for service
// and controller tests.
package testhelpers

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk/modules/dispatch/domain/aggregates/dispatch"
)

type DispatchRepository struct {
	mu         sync.Mutex
	dispatches map[uuid.UUID]dispatch.Dispatch
	history    []dispatch.HistoryEntry
	number     int64
}

func NewDispatchRepository(dispatches ...*dispatch.Dispatch) *DispatchRepository {
	r := &DispatchRepository{dispatches: map[uuid.UUID]dispatch.Dispatch{}}
	for _, d := range dispatches {
		if d.Number == 0 {
			r.number++
			d.Number = r.number
		} else if d.Number > r.number {
			r.number = d.Number
		}
		r.dispatches[d.ID] = *d
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

func matchID(want, got *uuid.UUID) bool {
	return want == nil || (got != nil && *got == *want)
}

func (r *DispatchRepository) filtered(params *dispatch.FindParams) []*dispatch.Dispatch {
	out := make([]*dispatch.Dispatch, 0, len(r.dispatches))
	for _, d := range r.dispatches {
		if len(params.Statuses) > 0 && !contains(params.Statuses, d.Status) {
			continue
		}
		if len(params.Priorities) > 0 && !contains(params.Priorities, d.Priority) {
			continue
		}
		if len(params.IDs) > 0 && !contains(params.IDs, d.ID) {
			continue
		}
		if !matchID(params.DriverID, d.DriverID) || !matchID(params.TruckID, d.TruckID) ||
			!matchID(params.CustomerID, d.CustomerID) || !matchID(params.DispatcherID, d.DispatcherID) {
			continue
		}
		if params.PickupFrom != nil && d.PickupAt.Before(*params.PickupFrom) {
			continue
		}
		if params.PickupTo != nil && !d.PickupAt.Before(*params.PickupTo) {
			continue
		}
		d := d
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PickupAt.Equal(out[j].PickupAt) {
			return out[i].PickupAt.After(out[j].PickupAt)
		}
		return out[i].Number > out[j].Number
	})
	return out
}

func (r *DispatchRepository) GetPaginated(ctx context.Context, params *dispatch.FindParams) ([]*dispatch.Dispatch, error) {
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

func (r *DispatchRepository) Count(ctx context.Context, params *dispatch.FindParams) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.filtered(params))), nil
}

func (r *DispatchRepository) CountByContragent(ctx context.Context, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, d := range r.dispatches {
		if matchID(&id, d.CustomerID) || matchID(&id, d.CarrierID) {
			n++
		}
	}
	return n, nil
}

func (r *DispatchRepository) CountByStatus(ctx context.Context, filter dispatch.StatusFilter) (map[dispatch.Status]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[dispatch.Status]int64{}
	for _, s := range dispatch.Statuses {
		out[s] = 0
	}
	for _, d := range r.filtered(&dispatch.FindParams{DriverID: filter.DriverID, DispatcherID: filter.DispatcherID}) {
		out[d.Status]++
	}
	return out, nil
}

func (r *DispatchRepository) RevenueByCurrency(ctx context.Context) (map[string]decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]decimal.Decimal{}
	for _, d := range r.dispatches {
		if d.Status == dispatch.StatusDelivered {
			out[d.Currency] = out[d.Currency].Add(d.Rate)
		}
	}
	return out, nil
}

func (r *DispatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*dispatch.Dispatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.dispatches[id]
	if !ok {
		return nil, dispatch.ErrNotFound
	}
	return &d, nil
}

func (r *DispatchRepository) Create(ctx context.Context, d *dispatch.Dispatch) (*dispatch.Dispatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.number++
	stored := *d
	stored.Number = r.number
	r.dispatches[d.ID] = stored
	return &stored, nil
}

func (r *DispatchRepository) Update(ctx context.Context, d *dispatch.Dispatch) (*dispatch.Dispatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.dispatches[d.ID]; !ok {
		return nil, dispatch.ErrNotFound
	}
	stored := *d
	r.dispatches[d.ID] = stored
	return &stored, nil
}

func (r *DispatchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.dispatches[id]; !ok {
		return dispatch.ErrNotFound
	}
	delete(r.dispatches, id)
	return nil
}

func (r *DispatchRepository) AddHistory(ctx context.Context, entry *dispatch.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = int64(len(r.history) + 1)
	r.history = append(r.history, *entry)
	return nil
}

func (r *DispatchRepository) History(ctx context.Context, dispatchID uuid.UUID) ([]*dispatch.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*dispatch.HistoryEntry
	for _, h := range r.history {
		if h.DispatchID == dispatchID {
			h := h
			out = append(out, &h)
		}
	}
	return out, nil
}
