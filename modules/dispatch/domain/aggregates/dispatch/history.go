package dispatch

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/wI2L/jsondiff"
)

type Action string

const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionAssigned Action = "assigned"
	ActionStatus   Action = "status"
)

type HistoryEntry struct {
	ID         int64
	DispatchID uuid.UUID
	ActorID    *uuid.UUID
	ActorName  string
	Action     Action
	Diff       json.RawMessage
	CreatedAt  time.Time
}

// snapshot is the part of a dispatch whose changes are recorded.
type snapshot struct {
	Origin      string     `json:"origin"`
	Destination string     `json:"destination"`
	PickupAt    time.Time  `json:"pickupAt"`
	DeliveryAt  time.Time  `json:"deliveryAt"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	TruckID     *uuid.UUID `json:"truckId"`
	DriverID    *uuid.UUID `json:"driverId"`
	CustomerID  *uuid.UUID `json:"customerId"`
	CarrierID   *uuid.UUID `json:"carrierId"`
	Rate        string     `json:"rate"`
	Currency    string     `json:"currency"`
	WeightLbs   int        `json:"weightLbs"`
	Notes       string     `json:"notes"`
}

func snapshotOf(d *Dispatch) any {
	if d == nil {
		return struct{}{}
	}
	return snapshot{
		Origin:      d.Origin,
		Destination: d.Destination,
		PickupAt:    d.PickupAt.UTC(),
		DeliveryAt:  d.DeliveryAt.UTC(),
		Status:      d.Status,
		Priority:    d.Priority,
		TruckID:     d.TruckID,
		DriverID:    d.DriverID,
		CustomerID:  d.CustomerID,
		CarrierID:   d.CarrierID,
		Rate:        d.Rate.StringFixed(2),
		Currency:    d.Currency,
		WeightLbs:   d.WeightLbs,
		Notes:       d.Notes,
	}
}

// Diff returns the JSON Patch (RFC 6902) turning before into after. A nil
// before records every field as added.
func Diff(before, after *Dispatch) (json.RawMessage, error) {
	src, err := json.Marshal(snapshotOf(before))
	if err != nil {
		return nil, err
	}
	dst, err := json.Marshal(snapshotOf(after))
	if err != nil {
		return nil, err
	}
	patch, err := jsondiff.CompareJSON(src, dst)
	if err != nil {
		return nil, err
	}
	if patch == nil {
		return json.RawMessage("[]"), nil
	}
	return json.Marshal(patch)
}

// NewHistoryEntry records the change from before to after made by actor.
func NewHistoryEntry(action Action, actorID *uuid.UUID, before, after *Dispatch) (*HistoryEntry, error) {
	diff, err := Diff(before, after)
	if err != nil {
		return nil, err
	}
	return &HistoryEntry{
		DispatchID: after.ID,
		ActorID:    actorID,
		Action:     action,
		Diff:       diff,
		CreatedAt:  time.Now().UTC(),
	}, nil
}
