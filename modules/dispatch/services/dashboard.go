package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	coreservices "github.com/fleetdesk/fleetdesk/modules/core/services"
	"github.com/fleetdesk/fleetdesk/modules/dispatch/domain/aggregates/dispatch"
)

type Revenue struct {
	Currency  string          `json:"currency"`
	Amount    decimal.Decimal `json:"amount"`
	Formatted string          `json:"formatted"`
}

func revenueLines(sums map[string]decimal.Decimal) []Revenue {
	out := make([]Revenue, 0, len(sums))
	for cur, amount := range sums {
		out = append(out, Revenue{
			Currency:  cur,
			Amount:    amount,
			Formatted: dispatch.FormatAmount(amount, cur),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}

type DispatchSummary struct {
	ID          uuid.UUID `json:"id"`
	Number      string    `json:"number"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	PickupAt    time.Time `json:"pickupAt"`
	DeliveryAt  time.Time `json:"deliveryAt"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	TruckUnit   string    `json:"truckUnit"`
}

func summarize(list []*dispatch.Dispatch) []DispatchSummary {
	out := make([]DispatchSummary, 0, len(list))
	for _, d := range list {
		out = append(out, DispatchSummary{
			ID:          d.ID,
			Number:      d.DisplayNumber(),
			Origin:      d.Origin,
			Destination: d.Destination,
			PickupAt:    d.PickupAt,
			DeliveryAt:  d.DeliveryAt,
			Status:      string(d.Status),
			Priority:    string(d.Priority),
			TruckUnit:   d.TruckUnit,
		})
	}
	return out
}

// Dashboard adds dispatch widgets: counts by status for admins and
// managers, delivered revenue for managers, the dispatcher's own counts
// and the pending queue for dispatchers, and active loads for drivers.
func Dashboard(dispatches *DispatchService) coreservices.DashboardContributor {
	return coreservices.DashboardContributorFunc(func(ctx context.Context, u user.User) (map[string]any, error) {
		switch u.Role() {
		case user.RoleAdmin:
			counts, err := dispatches.CountByStatus(ctx, dispatch.StatusFilter{})
			if err != nil {
				return nil, err
			}
			return map[string]any{"dispatchesByStatus": counts}, nil
		case user.RoleManager:
			counts, err := dispatches.CountByStatus(ctx, dispatch.StatusFilter{})
			if err != nil {
				return nil, err
			}
			revenue, err := dispatches.RevenueByCurrency(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]any{"dispatchesByStatus": counts, "revenue": revenue}, nil
		case user.RoleDispatcher:
			id := u.ID()
			mine, err := dispatches.CountByStatus(ctx, dispatch.StatusFilter{DispatcherID: &id})
			if err != nil {
				return nil, err
			}
			all, err := dispatches.CountByStatus(ctx, dispatch.StatusFilter{})
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"myDispatchesByStatus": mine,
				"pendingDispatches":    all[dispatch.StatusPending],
			}, nil
		case user.RoleDriver:
			active, err := dispatches.Active(ctx, u.ID())
			if err != nil {
				return nil, err
			}
			return map[string]any{"activeDispatches": summarize(active)}, nil
		}
		return nil, nil
	})
}
