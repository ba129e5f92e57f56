package truck

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeDryVan  Type = "dry_van"
	TypeReefer  Type = "reefer"
	TypeFlatbed Type = "flatbed"
	TypeTanker  Type = "tanker"
	TypeBox     Type = "box"
)

var Types = []Type{TypeDryVan, TypeReefer, TypeFlatbed, TypeTanker, TypeBox}

func (t Type) IsValid() bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

type Status string

const (
	StatusAvailable    Status = "available"
	StatusInTransit    Status = "in_transit"
	StatusMaintenance  Status = "maintenance"
	StatusOutOfService Status = "out_of_service"
)

var Statuses = []Status{StatusAvailable, StatusInTransit, StatusMaintenance, StatusOutOfService}

func (s Status) IsValid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Dispatchable reports whether a truck in this status can take a load.
func (s Status) Dispatchable() bool {
	return s != StatusMaintenance && s != StatusOutOfService
}

const MinYear = 1980

// MaxYear is next year: dealers sell next year's models from autumn on.
func MaxYear(now time.Time) int {
	return now.Year() + 1
}

type Truck struct {
	ID            uuid.UUID
	UnitNumber    string
	PlateNumber   string
	VIN           string
	Make          string
	Model         string
	Year          int
	Type          Type
	Status        Status
	DriverID      *uuid.UUID
	CapacityLbs   int
	Location      string
	PhotoUploadID *uuid.UUID
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Read-only, resolved by the repository.
	DriverName string
	PhotoHash  string
}

func (t *Truck) HasDriver() bool {
	return t.DriverID != nil
}
