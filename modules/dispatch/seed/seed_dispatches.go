// Package seed inserts demo dispatches over the seeded fleet and contragents.
package seed

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk/modules/contragents/domain/aggregates/contragent"
	contragentpersistence "github.com/fleetdesk/fleetdesk/modules/contragents/infrastructure/persistence"
	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	coreseed "github.com/fleetdesk/fleetdesk/modules/core/seed"
	"github.com/fleetdesk/fleetdesk/modules/dispatch/domain/aggregates/dispatch"
	"github.com/fleetdesk/fleetdesk/modules/dispatch/infrastructure/persistence"
	"github.com/fleetdesk/fleetdesk/modules/fleet/domain/aggregates/truck"
	fleetpersistence "github.com/fleetdesk/fleetdesk/modules/fleet/infrastructure/persistence"
	"github.com/fleetdesk/fleetdesk/pkg/application"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
)

// DemoDispatch describes a seeded load. TruckUnit names a seeded truck
// whose driver takes the load; Customer names a seeded contragent.
type DemoDispatch struct {
	Origin      string
	Destination string
	PickupIn    time.Duration
	Transit     time.Duration
	Status      dispatch.Status
	Priority    dispatch.Priority
	TruckUnit   string
	Customer    string
	Rate        string
	Currency    string
	WeightLbs   int
}

var DemoDispatches = []DemoDispatch{
	{Origin: "Dallas, TX", Destination: "Memphis, TN", PickupIn: -30 * time.Hour, Transit: 20 * time.Hour, Status: dispatch.StatusInTransit, Priority: dispatch.PriorityHigh, TruckUnit: "T-101", Customer: "Lone Star Grocers", Rate: "2450.00", Currency: "USD", WeightLbs: 38000},
	{Origin: "Houston, TX", Destination: "New Orleans, LA", PickupIn: 6 * time.Hour, Transit: 6 * time.Hour, Status: dispatch.StatusAssigned, Priority: dispatch.PriorityNormal, TruckUnit: "T-102", Customer: "Lone Star Grocers", Rate: "1180.00", Currency: "USD", WeightLbs: 31000},
	{Origin: "San Antonio, TX", Destination: "El Paso, TX", PickupIn: 24 * time.Hour, Transit: 9 * time.Hour, Status: dispatch.StatusPending, Priority: dispatch.PriorityUrgent, Customer: "Alamo Building Supply", Rate: "1620.00", Currency: "USD", WeightLbs: 44000},
	{Origin: "Oklahoma City, OK", Destination: "Wichita, KS", PickupIn: 48 * time.Hour, Transit: 3 * time.Hour, Status: dispatch.StatusPending, Priority: dispatch.PriorityLow, Rate: "640.00", Currency: "USD", WeightLbs: 12000},
	{Origin: "Austin, TX", Destination: "Toronto, ON", PickupIn: -200 * time.Hour, Transit: 40 * time.Hour, Status: dispatch.StatusDelivered, Priority: dispatch.PriorityNormal, Customer: "Alamo Building Supply", Rate: "5300.00", Currency: "CAD", WeightLbs: 40000},
	{Origin: "Dallas, TX", Destination: "Denver, CO", PickupIn: -120 * time.Hour, Transit: 14 * time.Hour, Status: dispatch.StatusDelivered, Priority: dispatch.PriorityNormal, Customer: "Lone Star Grocers", Rate: "2100.00", Currency: "USD", WeightLbs: 36000},
	{Origin: "Little Rock, AR", Destination: "St. Louis, MO", PickupIn: -72 * time.Hour, Transit: 6 * time.Hour, Status: dispatch.StatusCancelled, Priority: dispatch.PriorityNormal, Rate: "900.00", Currency: "USD", WeightLbs: 20000},
}

// DispatchSeedFunc creates the demo dispatches when the table is empty.
func DispatchSeedFunc(demos ...DemoDispatch) application.SeedFunc {
	return func(ctx context.Context, app application.Application) error {
		repo := persistence.NewDispatchRepository()
		trucks := fleetpersistence.NewTruckRepository()
		contragents := contragentpersistence.NewContragentRepository()
		logger := app.Logger().WithField("component", "seed")

		return composables.InTx(ctx, func(txCtx context.Context) error {
			n, err := repo.Count(txCtx, &dispatch.FindParams{})
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Infof("%d dispatches already exist", n)
				return nil
			}

			var dispatcherID *uuid.UUID
			if dispatchers, err := coreseed.UsersByRole(txCtx, user.RoleDispatcher); err != nil {
				return err
			} else if len(dispatchers) > 0 {
				id := dispatchers[0].ID()
				dispatcherID = &id
			}
			byUnit := map[string]*truck.Truck{}
			fleet, err := trucks.GetPaginated(txCtx, &truck.FindParams{})
			if err != nil {
				return err
			}
			for _, t := range fleet {
				byUnit[t.UnitNumber] = t
			}
			byName := map[string]*contragent.Contragent{}
			customers, err := contragents.GetPaginated(txCtx, &contragent.FindParams{Types: []contragent.Type{contragent.TypeCustomer}})
			if err != nil {
				return err
			}
			for _, c := range customers {
				byName[c.Name] = c
			}

			now := time.Now().UTC().Truncate(time.Hour)
			for _, demo := range demos {
				pickup := now.Add(demo.PickupIn)
				d := &dispatch.Dispatch{
					ID:           uuid.New(),
					Origin:       demo.Origin,
					Destination:  demo.Destination,
					PickupAt:     pickup,
					DeliveryAt:   pickup.Add(demo.Transit),
					Status:       demo.Status,
					Priority:     demo.Priority,
					DispatcherID: dispatcherID,
					Rate:         decimal.RequireFromString(demo.Rate),
					Currency:     demo.Currency,
					WeightLbs:    demo.WeightLbs,
					CreatedAt:    now,
					UpdatedAt:    now,
				}
				if t, ok := byUnit[demo.TruckUnit]; ok && t.DriverID != nil {
					truckID := t.ID
					d.TruckID = &truckID
					d.DriverID = t.DriverID
				} else if d.Status == dispatch.StatusAssigned || d.Status == dispatch.StatusInTransit {
					d.Status = dispatch.StatusPending
				}
				if c, ok := byName[demo.Customer]; ok {
					customerID := c.ID
					d.CustomerID = &customerID
				}
				created, err := repo.Create(txCtx, d)
				if err != nil {
					return err
				}
				entry, err := dispatch.NewHistoryEntry(dispatch.ActionCreated, dispatcherID, nil, created)
				if err != nil {
					return err
				}
				if err := repo.AddHistory(txCtx, entry); err != nil {
					return err
				}
				logger.Infof("Created dispatch %s", created.DisplayNumber())
			}
			return nil
		})
	}
}
