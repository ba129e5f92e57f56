package dispatch

import (
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk/pkg/constants"
	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

// DTO carries the writable dispatch fields. Status, truck and driver are
// changed through the assign and status operations only.
type DTO struct {
	Origin      string          `json:"origin" validate:"required,max=255"`
	Destination string          `json:"destination" validate:"required,max=255"`
	PickupAt    time.Time       `json:"pickupAt" validate:"required"`
	DeliveryAt  time.Time       `json:"deliveryAt" validate:"required"`
	Priority    string          `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
	CustomerID  *uuid.UUID      `json:"customerId"`
	CarrierID   *uuid.UUID      `json:"carrierId"`
	Rate        decimal.Decimal `json:"rate"`
	Currency    string          `json:"currency" validate:"omitempty,len=3,alpha"`
	WeightLbs   int             `json:"weightLbs" validate:"gte=0"`
	Notes       string          `json:"notes" validate:"max=4000"`
}

func (d *DTO) Normalize() {
	d.Origin = strings.TrimSpace(d.Origin)
	d.Destination = strings.TrimSpace(d.Destination)
	d.Priority = strings.ToLower(strings.TrimSpace(d.Priority))
	if d.Priority == "" {
		d.Priority = string(PriorityNormal)
	}
	d.Currency = strings.ToUpper(strings.TrimSpace(d.Currency))
	if d.Currency == "" {
		d.Currency = DefaultCurrency
	}
	d.Notes = strings.TrimSpace(d.Notes)
}

func (d *DTO) Ok() error {
	d.Normalize()
	errs, err := serrors.Collect(constants.Validate.Struct(d), nil)
	if err != nil {
		return err
	}
	for field, t := range map[string]time.Time{"pickupAt": d.PickupAt, "deliveryAt": d.DeliveryAt} {
		if _, ok := errs[field]; !ok && t.IsZero() {
			errs.Add(field, "is required")
		}
	}
	if _, ok := errs["deliveryAt"]; !ok && !d.PickupAt.IsZero() && d.DeliveryAt.Before(d.PickupAt) {
		errs.Add("deliveryAt", "must not be before pickupAt")
	}
	if d.Rate.IsNegative() {
		errs.Add("rate", "must be greater than or equal to 0")
	}
	if _, ok := errs["currency"]; !ok && money.GetCurrency(d.Currency) == nil {
		errs.Add("currency", "is not a known ISO 4217 currency")
	}
	return errs.OrNil()
}

func (d *DTO) ToEntity(dispatcherID *uuid.UUID) *Dispatch {
	return d.Apply(&Dispatch{
		ID:           uuid.New(),
		Status:       StatusPending,
		DispatcherID: dispatcherID,
		CreatedAt:    time.Now().UTC(),
	})
}

// Apply returns a copy of e with the DTO's fields.
func (d *DTO) Apply(e *Dispatch) *Dispatch {
	out := *e
	out.Origin = d.Origin
	out.Destination = d.Destination
	out.PickupAt = d.PickupAt.UTC()
	out.DeliveryAt = d.DeliveryAt.UTC()
	out.Priority = Priority(d.Priority)
	out.CustomerID = d.CustomerID
	out.CarrierID = d.CarrierID
	out.Rate = d.Rate
	out.Currency = d.Currency
	out.WeightLbs = d.WeightLbs
	out.Notes = d.Notes
	out.UpdatedAt = time.Now().UTC()
	return &out
}

func DTOFromEntity(e *Dispatch) *DTO {
	return &DTO{
		Origin:      e.Origin,
		Destination: e.Destination,
		PickupAt:    e.PickupAt,
		DeliveryAt:  e.DeliveryAt,
		Priority:    string(e.Priority),
		CustomerID:  e.CustomerID,
		CarrierID:   e.CarrierID,
		Rate:        e.Rate,
		Currency:    e.Currency,
		WeightLbs:   e.WeightLbs,
		Notes:       e.Notes,
	}
}

type AssignDTO struct {
	TruckID  uuid.UUID  `json:"truckId"`
	DriverID *uuid.UUID `json:"driverId"`
}

func (d *AssignDTO) Ok() error {
	errs, err := serrors.Collect(constants.Validate.Struct(d), nil)
	if err != nil {
		return err
	}
	if d.TruckID == uuid.Nil {
		errs.Add("truckId", "is required")
	}
	return errs.OrNil()
}

type StatusDTO struct {
	Status string `json:"status" validate:"required,oneof=pending assigned in_transit delivered cancelled"`
}

func (d *StatusDTO) Ok() error {
	d.Status = strings.ToLower(strings.TrimSpace(d.Status))
	return serrors.FromValidator(constants.Validate.Struct(d), nil)
}
