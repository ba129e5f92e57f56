package dispatch

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAssigned  Status = "assigned"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var Statuses = []Status{StatusPending, StatusAssigned, StatusInTransit, StatusDelivered, StatusCancelled}

// ActiveStatuses are the statuses of dispatches a driver is working on.
var ActiveStatuses = []Status{StatusAssigned, StatusInTransit}

var transitions = map[Status][]Status{
	StatusPending:   {StatusAssigned, StatusCancelled},
	StatusAssigned:  {StatusInTransit, StatusPending, StatusCancelled},
	StatusInTransit: {StatusDelivered, StatusCancelled},
}

func (s Status) IsValid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether a dispatch may move from s to next.
func (s Status) CanTransition(next Status) bool {
	for _, v := range transitions[s] {
		if v == next {
			return true
		}
	}
	return false
}

// Deletable reports whether a dispatch in this status may be deleted.
func (s Status) Deletable() bool {
	return s == StatusPending || s == StatusCancelled
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var Priorities = []Priority{PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent}

func (p Priority) IsValid() bool {
	for _, v := range Priorities {
		if v == p {
			return true
		}
	}
	return false
}

const DefaultCurrency = "USD"

// FormatNumber renders a dispatch number the way it is shown to users.
func FormatNumber(n int64) string {
	return fmt.Sprintf("DSP-%06d", n)
}

type Dispatch struct {
	ID           uuid.UUID
	Number       int64
	Origin       string
	Destination  string
	PickupAt     time.Time
	DeliveryAt   time.Time
	Status       Status
	Priority     Priority
	TruckID      *uuid.UUID
	DriverID     *uuid.UUID
	DispatcherID *uuid.UUID
	CustomerID   *uuid.UUID
	CarrierID    *uuid.UUID
	Rate         decimal.Decimal
	Currency     string
	WeightLbs    int
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Read-only, resolved by the repository.
	TruckUnit      string
	DriverName     string
	DispatcherName string
	CustomerName   string
	CarrierName    string
}

func (d *Dispatch) DisplayNumber() string {
	return FormatNumber(d.Number)
}

// AssignedTo reports whether driverID drives this dispatch.
func (d *Dispatch) AssignedTo(driverID uuid.UUID) bool {
	return d.DriverID != nil && *d.DriverID == driverID
}
