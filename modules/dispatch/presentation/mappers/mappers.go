package mappers

import (
	"github.com/google/uuid"

	coremappers "github.com/fleetdesk/fleetdesk/modules/core/presentation/mappers"
	"github.com/fleetdesk/fleetdesk/modules/dispatch/domain/aggregates/dispatch"
	"github.com/fleetdesk/fleetdesk/modules/dispatch/presentation/viewmodels"
)

func optionalID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func DispatchToViewModel(d *dispatch.Dispatch) *viewmodels.Dispatch {
	return &viewmodels.Dispatch{
		ID:             d.ID.String(),
		Number:         d.DisplayNumber(),
		Origin:         d.Origin,
		Destination:    d.Destination,
		PickupAt:       coremappers.Timestamp(d.PickupAt),
		DeliveryAt:     coremappers.Timestamp(d.DeliveryAt),
		Status:         string(d.Status),
		Priority:       string(d.Priority),
		TruckID:        optionalID(d.TruckID),
		TruckUnit:      d.TruckUnit,
		DriverID:       optionalID(d.DriverID),
		DriverName:     d.DriverName,
		DispatcherID:   optionalID(d.DispatcherID),
		DispatcherName: d.DispatcherName,
		CustomerID:     optionalID(d.CustomerID),
		CustomerName:   d.CustomerName,
		CarrierID:      optionalID(d.CarrierID),
		CarrierName:    d.CarrierName,
		Rate:           d.Rate.StringFixed(2),
		Currency:       d.Currency,
		RateFormatted:  dispatch.FormatAmount(d.Rate, d.Currency),
		WeightLbs:      d.WeightLbs,
		Notes:          d.Notes,
		CreatedAt:      coremappers.Timestamp(d.CreatedAt),
		UpdatedAt:      coremappers.Timestamp(d.UpdatedAt),
	}
}

func DispatchesToViewModels(list []*dispatch.Dispatch) []*viewmodels.Dispatch {
	out := make([]*viewmodels.Dispatch, len(list))
	for i, d := range list {
		out[i] = DispatchToViewModel(d)
	}
	return out
}

func HistoryToViewModels(entries []*dispatch.HistoryEntry) []*viewmodels.HistoryEntry {
	out := make([]*viewmodels.HistoryEntry, len(entries))
	for i, h := range entries {
		out[i] = &viewmodels.HistoryEntry{
			ID:        h.ID,
			Action:    string(h.Action),
			ActorID:   optionalID(h.ActorID),
			ActorName: h.ActorName,
			Diff:      h.Diff,
			CreatedAt: coremappers.Timestamp(h.CreatedAt),
		}
	}
	return out
}
