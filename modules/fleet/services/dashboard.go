package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	coreservices "github.com/fleetdesk/fleetdesk/modules/core/services"
	"github.com/fleetdesk/fleetdesk/modules/fleet/domain/aggregates/truck"
	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

type TruckSummary struct {
	ID          uuid.UUID `json:"id"`
	UnitNumber  string    `json:"unitNumber"`
	PlateNumber string    `json:"plateNumber"`
	Status      string    `json:"status"`
	Location    string    `json:"location"`
}

// Dashboard reports trucks by status to admins and managers, the number
// of available trucks to dispatchers and the current truck to drivers.
func Dashboard(trucks *TruckService) coreservices.DashboardContributor {
	return coreservices.DashboardContributorFunc(func(ctx context.Context, u user.User) (map[string]any, error) {
		switch u.Role() {
		case user.RoleAdmin, user.RoleManager:
			counts, err := trucks.CountByStatus(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]any{"trucksByStatus": counts}, nil
		case user.RoleDispatcher:
			counts, err := trucks.CountByStatus(ctx)
			if err != nil {
				return nil, err
			}
			return map[string]any{"availableTrucks": counts[truck.StatusAvailable]}, nil
		case user.RoleDriver:
			t, err := trucks.GetByDriverID(ctx, u.ID())
			if err != nil {
				if serrors.KindOf(err) == serrors.KindNotFound {
					return map[string]any{"currentTruck": nil}, nil
				}
				return nil, err
			}
			return map[string]any{"currentTruck": &TruckSummary{
				ID:          t.ID,
				UnitNumber:  t.UnitNumber,
				PlateNumber: t.PlateNumber,
				Status:      string(t.Status),
				Location:    t.Location,
			}}, nil
		}
		return nil, nil
	})
}
