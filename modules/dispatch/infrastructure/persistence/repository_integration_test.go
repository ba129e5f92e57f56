//go:build integration

package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/modules/contragents/domain/aggregates/contragent"
	contragentpersistence "github.com/fleetdesk/fleetdesk/modules/contragents/infrastructure/persistence"
	"github.com/fleetdesk/fleetdesk/modules/dispatch/domain/aggregates/dispatch"
	"github.com/fleetdesk/fleetdesk/modules/dispatch/infrastructure/persistence"
	"github.com/fleetdesk/fleetdesk/modules/fleet/domain/aggregates/truck"
	fleetpersistence "github.com/fleetdesk/fleetdesk/modules/fleet/infrastructure/persistence"
	"github.com/fleetdesk/fleetdesk/pkg/itf"
)

func newDispatch(origin string, status dispatch.Status, pickup time.Time, rate string, currency string) *dispatch.Dispatch {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &dispatch.Dispatch{
		ID:          uuid.New(),
		Origin:      origin,
		Destination: "Memphis, TN",
		PickupAt:    pickup,
		DeliveryAt:  pickup.Add(10 * time.Hour),
		Status:      status,
		Priority:    dispatch.PriorityNormal,
		Rate:        decimal.RequireFromString(rate),
		Currency:    currency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestPgDispatchRepository(t *testing.T) {
	env := itf.Setup(t, nil)
	repo := persistence.NewDispatchRepository()
	now := time.Now().UTC().Truncate(time.Microsecond)
	day := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)

	tr, err := fleetpersistence.NewTruckRepository().Create(env.Ctx, &truck.Truck{
		ID: uuid.New(), UnitNumber: "T-900", PlateNumber: "TX-900", Make: "Mack", Model: "Anthem",
		Year: 2022, Type: truck.TypeDryVan, Status: truck.StatusAvailable, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	customer, err := contragentpersistence.NewContragentRepository().Create(env.Ctx, &contragent.Contragent{
		ID: uuid.New(), Type: contragent.TypeCustomer, Name: "Gulf Coast Produce", CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	first := newDispatch("Dallas, TX", dispatch.StatusPending, day, "1200.50", "USD")
	first.TruckID = &tr.ID
	first.CustomerID = &customer.ID
	created, err := repo.Create(env.Ctx, first)
	require.NoError(t, err)
	assert.Positive(t, created.Number)
	assert.Equal(t, "T-900", created.TruckUnit)
	assert.Equal(t, "Gulf Coast Produce", created.CustomerName)
	assert.True(t, first.Rate.Equal(created.Rate))

	second, err := repo.Create(env.Ctx, newDispatch("Austin, TX", dispatch.StatusDelivered, day.Add(48*time.Hour), "800", "USD"))
	require.NoError(t, err)
	assert.Greater(t, second.Number, created.Number)
	_, err = repo.Create(env.Ctx, newDispatch("Laredo, TX", dispatch.StatusDelivered, day, "300", "MXN"))
	require.NoError(t, err)

	bad := newDispatch("Nowhere", dispatch.StatusPending, day, "1", "USD")
	missing := uuid.New()
	bad.TruckID = &missing
	err = env.Savepoint(func(ctx context.Context) error {
		_, err := repo.Create(ctx, bad)
		return err
	})
	assert.ErrorIs(t, err, dispatch.ErrUnknownTruck)

	from, to := day.Add(-time.Hour), day.Add(time.Hour)
	list, err := repo.GetPaginated(env.Ctx, &dispatch.FindParams{PickupFrom: &from, PickupTo: &to, Statuses: []dispatch.Status{dispatch.StatusPending}})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	count, err := repo.Count(env.Ctx, &dispatch.FindParams{TruckID: &tr.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	byStatus, err := repo.CountByStatus(env.Ctx, dispatch.StatusFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), byStatus[dispatch.StatusDelivered])
	assert.Equal(t, int64(0), byStatus[dispatch.StatusInTransit])

	revenue, err := repo.RevenueByCurrency(env.Ctx)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(800).Equal(revenue["USD"]))
	assert.True(t, decimal.NewFromInt(300).Equal(revenue["MXN"]))

	created.Status = dispatch.StatusCancelled
	created.Notes = "customer cancelled"
	updated, err := repo.Update(env.Ctx, created)
	require.NoError(t, err)
	assert.Equal(t, "customer cancelled", updated.Notes)

	entry, err := dispatch.NewHistoryEntry(dispatch.ActionStatus, nil, first, updated)
	require.NoError(t, err)
	require.NoError(t, repo.AddHistory(env.Ctx, entry))
	history, err := repo.History(env.Ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, dispatch.ActionStatus, history[0].Action)
	assert.JSONEq(t, string(entry.Diff), string(history[0].Diff))

	require.NoError(t, repo.Delete(env.Ctx, created.ID))
	assert.ErrorIs(t, repo.Delete(env.Ctx, created.ID), dispatch.ErrNotFound)
	_, err = repo.GetByID(env.Ctx, created.ID)
	assert.ErrorIs(t, err, dispatch.ErrNotFound)
}
