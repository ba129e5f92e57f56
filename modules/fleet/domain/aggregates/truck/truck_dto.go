package truck

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/pkg/constants"
	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

// DTO carries every writable truck field. It is used for create, full
// update and as the document a merge patch is applied to.
type DTO struct {
	UnitNumber    string     `json:"unitNumber" validate:"required,max=32"`
	PlateNumber   string     `json:"plateNumber" validate:"required,max=32"`
	VIN           string     `json:"vin" validate:"omitempty,len=17,alphanum"`
	Make          string     `json:"make" validate:"required,max=64"`
	Model         string     `json:"model" validate:"required,max=64"`
	Year          int        `json:"year" validate:"required"`
	Type          string     `json:"type" validate:"required,oneof=dry_van reefer flatbed tanker box"`
	Status        string     `json:"status" validate:"omitempty,oneof=available in_transit maintenance out_of_service"`
	DriverID      *uuid.UUID `json:"driverId"`
	CapacityLbs   int        `json:"capacityLbs" validate:"gte=0"`
	Location      string     `json:"location" validate:"max=255"`
	PhotoUploadID *uuid.UUID `json:"photoUploadId"`
	Notes         string     `json:"notes" validate:"max=4000"`
}

func (d *DTO) Normalize() {
	d.UnitNumber = strings.ToUpper(strings.TrimSpace(d.UnitNumber))
	d.PlateNumber = strings.ToUpper(strings.TrimSpace(d.PlateNumber))
	d.VIN = strings.ToUpper(strings.TrimSpace(d.VIN))
	d.Make = strings.TrimSpace(d.Make)
	d.Model = strings.TrimSpace(d.Model)
	d.Type = strings.ToLower(strings.TrimSpace(d.Type))
	d.Status = strings.ToLower(strings.TrimSpace(d.Status))
	if d.Status == "" {
		d.Status = string(StatusAvailable)
	}
	d.Location = strings.TrimSpace(d.Location)
	d.Notes = strings.TrimSpace(d.Notes)
}

func (d *DTO) Ok() error {
	return d.OkAt(time.Now())
}

// OkAt validates the DTO with the year range anchored at now.
func (d *DTO) OkAt(now time.Time) error {
	d.Normalize()
	errs, err := serrors.Collect(constants.Validate.Struct(d), nil)
	if err != nil {
		return err
	}
	if _, ok := errs["year"]; !ok {
		if d.Year < MinYear || d.Year > MaxYear(now) {
			errs.Add("year", fmt.Sprintf("must be between %d and %d", MinYear, MaxYear(now)))
		}
	}
	return errs.OrNil()
}

func (d *DTO) ToEntity() *Truck {
	now := time.Now().UTC()
	return d.Apply(&Truck{
		ID:        uuid.New(),
		CreatedAt: now,
	})
}

// Apply returns a copy of t with the DTO's fields.
func (d *DTO) Apply(t *Truck) *Truck {
	out := *t
	out.UnitNumber = d.UnitNumber
	out.PlateNumber = d.PlateNumber
	out.VIN = d.VIN
	out.Make = d.Make
	out.Model = d.Model
	out.Year = d.Year
	out.Type = Type(d.Type)
	out.Status = Status(d.Status)
	out.DriverID = d.DriverID
	out.CapacityLbs = d.CapacityLbs
	out.Location = d.Location
	out.PhotoUploadID = d.PhotoUploadID
	out.Notes = d.Notes
	out.UpdatedAt = time.Now().UTC()
	return &out
}

func DTOFromEntity(t *Truck) *DTO {
	return &DTO{
		UnitNumber:    t.UnitNumber,
		PlateNumber:   t.PlateNumber,
		VIN:           t.VIN,
		Make:          t.Make,
		Model:         t.Model,
		Year:          t.Year,
		Type:          string(t.Type),
		Status:        string(t.Status),
		DriverID:      t.DriverID,
		CapacityLbs:   t.CapacityLbs,
		Location:      t.Location,
		PhotoUploadID: t.PhotoUploadID,
		Notes:         t.Notes,
	}
}
