//go:build integration

package persistence_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/modules/contragents/domain/aggregates/contragent"
	"github.com/fleetdesk/fleetdesk/modules/contragents/infrastructure/persistence"
	"github.com/fleetdesk/fleetdesk/pkg/itf"
)

func TestPgContragentRepository(t *testing.T) {
	env := itf.Setup(t, nil)
	repo := persistence.NewContragentRepository()
	now := time.Now().UTC().Truncate(time.Microsecond)
	limit := decimal.RequireFromString("15000.50")
	terms := 45

	customer, err := repo.Create(env.Ctx, &contragent.Contragent{
		ID:        uuid.New(),
		Type:      contragent.TypeCustomer,
		Name:      "Gulf Coast Produce",
		Details:   contragent.Details{CreditLimit: &limit, PaymentTermsDays: &terms},
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	assert.True(t, limit.Equal(*customer.Details.CreditLimit))

	_, err = repo.Create(env.Ctx, &contragent.Contragent{
		ID: uuid.New(), Type: contragent.TypeCarrier, Name: "Bayou Freight",
		Details: contragent.Details{MCNumber: "MC-991"}, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	carriers, err := repo.GetPaginated(env.Ctx, &contragent.FindParams{Types: []contragent.Type{contragent.TypeCarrier}})
	require.NoError(t, err)
	require.Len(t, carriers, 1)
	assert.Equal(t, "MC-991", carriers[0].Details.MCNumber)

	customer.Name = "Gulf Coast Produce LLC"
	updated, err := repo.Update(env.Ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, "Gulf Coast Produce LLC", updated.Name)

	total, err := repo.Count(env.Ctx, &contragent.FindParams{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	require.NoError(t, repo.Delete(env.Ctx, customer.ID))
	_, err = repo.GetByID(env.Ctx, customer.ID)
	assert.ErrorIs(t, err, contragent.ErrNotFound)
}
