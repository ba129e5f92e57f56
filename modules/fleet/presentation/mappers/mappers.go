package mappers

import (
	"github.com/google/uuid"

	coremappers "github.com/fleetdesk/fleetdesk/modules/core/presentation/mappers"
	"github.com/fleetdesk/fleetdesk/modules/fleet/domain/aggregates/truck"
	"github.com/fleetdesk/fleetdesk/modules/fleet/presentation/viewmodels"
)

func optionalID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func TruckToViewModel(t *truck.Truck) *viewmodels.Truck {
	vm := &viewmodels.Truck{
		ID:            t.ID.String(),
		UnitNumber:    t.UnitNumber,
		PlateNumber:   t.PlateNumber,
		VIN:           t.VIN,
		Make:          t.Make,
		Model:         t.Model,
		Year:          t.Year,
		Type:          string(t.Type),
		Status:        string(t.Status),
		DriverID:      optionalID(t.DriverID),
		DriverName:    t.DriverName,
		CapacityLbs:   t.CapacityLbs,
		Location:      t.Location,
		PhotoUploadID: optionalID(t.PhotoUploadID),
		Notes:         t.Notes,
		CreatedAt:     coremappers.Timestamp(t.CreatedAt),
		UpdatedAt:     coremappers.Timestamp(t.UpdatedAt),
	}
	if t.PhotoHash != "" {
		vm.PhotoURL = "/uploads/" + t.PhotoHash
	}
	return vm
}

func TrucksToViewModels(trucks []*truck.Truck) []*viewmodels.Truck {
	out := make([]*viewmodels.Truck, len(trucks))
	for i, t := range trucks {
		out[i] = TruckToViewModel(t)
	}
	return out
}
