package persistence

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/modules/fleet/domain/aggregates/truck"
	"github.com/fleetdesk/fleetdesk/modules/fleet/infrastructure/persistence/models"
)

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func uuidPtr(id uuid.NullUUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	v := id.UUID
	return &v
}

func ToDomainTruck(t *models.Truck) *truck.Truck {
	return &truck.Truck{
		ID:            t.ID,
		UnitNumber:    t.UnitNumber,
		PlateNumber:   t.PlateNumber,
		VIN:           t.VIN.String,
		Make:          t.Make,
		Model:         t.Model,
		Year:          t.Year,
		Type:          truck.Type(t.Type),
		Status:        truck.Status(t.Status),
		DriverID:      uuidPtr(t.DriverID),
		CapacityLbs:   t.CapacityLbs,
		Location:      t.Location,
		PhotoUploadID: uuidPtr(t.PhotoUploadID),
		Notes:         t.Notes,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		DriverName:    t.DriverName.String,
		PhotoHash:     t.PhotoHash.String,
	}
}

func ToDBTruck(t *truck.Truck) *models.Truck {
	return &models.Truck{
		ID:            t.ID,
		UnitNumber:    t.UnitNumber,
		PlateNumber:   t.PlateNumber,
		VIN:           sql.NullString{String: t.VIN, Valid: t.VIN != ""},
		Make:          t.Make,
		Model:         t.Model,
		Year:          t.Year,
		Type:          string(t.Type),
		Status:        string(t.Status),
		DriverID:      nullUUID(t.DriverID),
		CapacityLbs:   t.CapacityLbs,
		Location:      t.Location,
		PhotoUploadID: nullUUID(t.PhotoUploadID),
		Notes:         t.Notes,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}
