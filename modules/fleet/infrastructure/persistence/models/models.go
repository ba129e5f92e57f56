package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Truck struct {
	ID            uuid.UUID
	UnitNumber    string
	PlateNumber   string
	VIN           sql.NullString
	Make          string
	Model         string
	Year          int
	Type          string
	Status        string
	DriverID      uuid.NullUUID
	CapacityLbs   int
	Location      string
	PhotoUploadID uuid.NullUUID
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	DriverName sql.NullString
	PhotoHash  sql.NullString
}
