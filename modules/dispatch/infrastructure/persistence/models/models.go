package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Dispatch struct {
	ID           uuid.UUID
	Number       int64
	Origin       string
	Destination  string
	PickupAt     time.Time
	DeliveryAt   time.Time
	Status       string
	Priority     string
	TruckID      uuid.NullUUID
	DriverID     uuid.NullUUID
	DispatcherID uuid.NullUUID
	CustomerID   uuid.NullUUID
	CarrierID    uuid.NullUUID
	Rate         decimal.Decimal
	Currency     string
	WeightLbs    int
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	TruckUnit      sql.NullString
	DriverName     sql.NullString
	DispatcherName sql.NullString
	CustomerName   sql.NullString
	CarrierName    sql.NullString
}

type HistoryEntry struct {
	ID         int64
	DispatchID uuid.UUID
	ActorID    uuid.NullUUID
	ActorName  sql.NullString
	Action     string
	Diff       []byte
	CreatedAt  time.Time
}
