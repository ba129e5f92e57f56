package persistence

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/fleetdesk/fleetdesk/modules/dispatch/domain/aggregates/dispatch"
	"github.com/fleetdesk/fleetdesk/modules/dispatch/infrastructure/persistence/models"
)

func TestDispatchMappers_RoundTrip(t *testing.T) {
	truckID, customerID := uuid.New(), uuid.New()
	now := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	d := &dispatch.Dispatch{
		ID:         uuid.New(),
		Number:     42,
		Origin:     "Dallas, TX",
		PickupAt:   now,
		DeliveryAt: now.Add(time.Hour),
		Status:     dispatch.StatusAssigned,
		Priority:   dispatch.PriorityHigh,
		TruckID:    &truckID,
		CustomerID: &customerID,
		Rate:       decimal.RequireFromString("1999.95"),
		Currency:   "USD",
	}

	m := ToDBDispatch(d)
	assert.True(t, m.TruckID.Valid)
	assert.False(t, m.DriverID.Valid)

	m.TruckUnit = sql.NullString{String: "T-101", Valid: true}
	out := ToDomainDispatch(m)
	assert.Equal(t, d.ID, out.ID)
	assert.Equal(t, &truckID, out.TruckID)
	assert.Nil(t, out.DriverID)
	assert.True(t, d.Rate.Equal(out.Rate))
	assert.Equal(t, "T-101", out.TruckUnit)
	assert.Equal(t, "DSP-000042", out.DisplayNumber())
}

func TestToDomainHistoryEntry(t *testing.T) {
	actor := uuid.New()
	out := ToDomainHistoryEntry(&models.HistoryEntry{
		ID:        3,
		ActorID:   uuid.NullUUID{UUID: actor, Valid: true},
		ActorName: sql.NullString{String: "Dana Reyes", Valid: true},
		Action:    "status",
		Diff:      []byte(`[]`),
	})
	assert.Equal(t, &actor, out.ActorID)
	assert.Equal(t, dispatch.ActionStatus, out.Action)
	assert.Equal(t, "Dana Reyes", out.ActorName)
}
