// Package seed inserts the demo fleet.
package seed

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	coreseed "github.com/fleetdesk/fleetdesk/modules/core/seed"
	"github.com/fleetdesk/fleetdesk/modules/fleet/domain/aggregates/truck"
	"github.com/fleetdesk/fleetdesk/modules/fleet/infrastructure/persistence"
	"github.com/fleetdesk/fleetdesk/pkg/application"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
)

var DemoTrucks = []truck.Truck{
	{UnitNumber: "T-101", PlateNumber: "TX-4821", VIN: "1FUJGLDR7CLBP8834", Make: "Freightliner", Model: "Cascadia", Year: 2021, Type: truck.TypeDryVan, Status: truck.StatusInTransit, CapacityLbs: 45000, Location: "Dallas, TX"},
	{UnitNumber: "T-102", PlateNumber: "TX-5530", Make: "Volvo", Model: "VNL 860", Year: 2022, Type: truck.TypeReefer, Status: truck.StatusAvailable, CapacityLbs: 43000, Location: "Houston, TX"},
	{UnitNumber: "T-103", PlateNumber: "OK-1187", Make: "Kenworth", Model: "T680", Year: 2019, Type: truck.TypeFlatbed, Status: truck.StatusAvailable, CapacityLbs: 48000, Location: "Oklahoma City, OK"},
	{UnitNumber: "T-104", PlateNumber: "TX-9012", Make: "Peterbilt", Model: "579", Year: 2018, Type: truck.TypeTanker, Status: truck.StatusMaintenance, CapacityLbs: 40000, Location: "San Antonio, TX", Notes: "Brake inspection"},
	{UnitNumber: "T-105", PlateNumber: "LA-3345", Make: "International", Model: "LT", Year: 2020, Type: truck.TypeBox, Status: truck.StatusOutOfService, CapacityLbs: 26000, Location: "Shreveport, LA"},
	{UnitNumber: "T-106", PlateNumber: "AR-7720", Make: "Mack", Model: "Anthem", Year: 2023, Type: truck.TypeDryVan, Status: truck.StatusAvailable, CapacityLbs: 45000, Location: "Little Rock, AR"},
}

// TruckSeedFunc creates the demo trucks that are missing and hands the
// first ones to the seeded drivers.
func TruckSeedFunc(trucks ...truck.Truck) application.SeedFunc {
	return func(ctx context.Context, app application.Application) error {
		repo := persistence.NewTruckRepository()
		logger := app.Logger().WithField("component", "seed")
		return composables.InTx(ctx, func(txCtx context.Context) error {
			drivers, err := coreseed.UsersByRole(txCtx, user.RoleDriver)
			if err != nil {
				return err
			}
			existing, err := repo.GetPaginated(txCtx, &truck.FindParams{})
			if err != nil {
				return err
			}
			taken := make(map[string]bool, len(existing))
			busy := make(map[uuid.UUID]bool, len(existing))
			for _, t := range existing {
				taken[t.UnitNumber] = true
				if t.DriverID != nil {
					busy[*t.DriverID] = true
				}
			}

			now := time.Now().UTC()
			for _, demo := range trucks {
				if taken[demo.UnitNumber] {
					logger.Infof("Truck %s already exists", demo.UnitNumber)
					continue
				}
				t := demo
				t.ID = uuid.New()
				t.CreatedAt = now
				t.UpdatedAt = now
				if t.Status.Dispatchable() {
					for _, d := range drivers {
						if !busy[d.ID()] {
							id := d.ID()
							t.DriverID = &id
							busy[id] = true
							break
						}
					}
				}
				if _, err := repo.Create(txCtx, &t); err != nil {
					return err
				}
				logger.Infof("Created truck %s", t.UnitNumber)
			}
			return nil
		})
	}
}
