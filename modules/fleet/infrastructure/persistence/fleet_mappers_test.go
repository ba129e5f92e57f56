package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/fleetdesk/fleetdesk/modules/fleet/domain/aggregates/truck"
)

func TestTruckMapping(t *testing.T) {
	driver := uuid.New()
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	in := &truck.Truck{
		ID:          uuid.New(),
		UnitNumber:  "T-101",
		PlateNumber: "TX-4821",
		Make:        "Volvo",
		Model:       "VNL 860",
		Year:        2022,
		Type:        truck.TypeDryVan,
		Status:      truck.StatusAvailable,
		DriverID:    &driver,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	db := ToDBTruck(in)
	assert.False(t, db.VIN.Valid, "empty vin is stored as NULL")
	assert.True(t, db.DriverID.Valid)
	assert.False(t, db.PhotoUploadID.Valid)

	out := ToDomainTruck(db)
	assert.Equal(t, in, out)
}
