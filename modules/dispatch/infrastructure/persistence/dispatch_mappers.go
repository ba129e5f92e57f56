package persistence

import (
	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/modules/dispatch/domain/aggregates/dispatch"
	"github.com/fleetdesk/fleetdesk/modules/dispatch/infrastructure/persistence/models"
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

func ToDomainDispatch(m *models.Dispatch) *dispatch.Dispatch {
	return &dispatch.Dispatch{
		ID:             m.ID,
		Number:         m.Number,
		Origin:         m.Origin,
		Destination:    m.Destination,
		PickupAt:       m.PickupAt.UTC(),
		DeliveryAt:     m.DeliveryAt.UTC(),
		Status:         dispatch.Status(m.Status),
		Priority:       dispatch.Priority(m.Priority),
		TruckID:        uuidPtr(m.TruckID),
		DriverID:       uuidPtr(m.DriverID),
		DispatcherID:   uuidPtr(m.DispatcherID),
		CustomerID:     uuidPtr(m.CustomerID),
		CarrierID:      uuidPtr(m.CarrierID),
		Rate:           m.Rate,
		Currency:       m.Currency,
		WeightLbs:      m.WeightLbs,
		Notes:          m.Notes,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		TruckUnit:      m.TruckUnit.String,
		DriverName:     m.DriverName.String,
		DispatcherName: m.DispatcherName.String,
		CustomerName:   m.CustomerName.String,
		CarrierName:    m.CarrierName.String,
	}
}

func ToDBDispatch(d *dispatch.Dispatch) *models.Dispatch {
	return &models.Dispatch{
		ID:           d.ID,
		Number:       d.Number,
		Origin:       d.Origin,
		Destination:  d.Destination,
		PickupAt:     d.PickupAt,
		DeliveryAt:   d.DeliveryAt,
		Status:       string(d.Status),
		Priority:     string(d.Priority),
		TruckID:      nullUUID(d.TruckID),
		DriverID:     nullUUID(d.DriverID),
		DispatcherID: nullUUID(d.DispatcherID),
		CustomerID:   nullUUID(d.CustomerID),
		CarrierID:    nullUUID(d.CarrierID),
		Rate:         d.Rate,
		Currency:     d.Currency,
		WeightLbs:    d.WeightLbs,
		Notes:        d.Notes,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func ToDomainHistoryEntry(m *models.HistoryEntry) *dispatch.HistoryEntry {
	return &dispatch.HistoryEntry{
		ID:         m.ID,
		DispatchID: m.DispatchID,
		ActorID:    uuidPtr(m.ActorID),
		ActorName:  m.ActorName.String,
		Action:     dispatch.Action(m.Action),
		Diff:       m.Diff,
		CreatedAt:  m.CreatedAt,
	}
}
