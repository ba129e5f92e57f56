package persistence

import (
	"encoding/json"

	"github.com/go-faster/errors"

	"github.com/fleetdesk/fleetdesk/modules/contragents/domain/aggregates/contragent"
	"github.com/fleetdesk/fleetdesk/modules/contragents/infrastructure/persistence/models"
)

func ToDomainContragent(m *models.Contragent) (*contragent.Contragent, error) {
	var details contragent.Details
	if len(m.Details) > 0 {
		if err := json.Unmarshal(m.Details, &details); err != nil {
			return nil, errors.Wrapf(err, "decode details of contragent %s", m.ID)
		}
	}
	return &contragent.Contragent{
		ID:            m.ID,
		Type:          contragent.Type(m.Type),
		Name:          m.Name,
		Email:         m.Email,
		Phone:         m.Phone,
		Address:       m.Address,
		ContactPerson: m.ContactPerson,
		Notes:         m.Notes,
		Details:       details,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}, nil
}

func ToDBContragent(c *contragent.Contragent) (*models.Contragent, error) {
	details, err := json.Marshal(c.Details)
	if err != nil {
		return nil, errors.Wrap(err, "encode contragent details")
	}
	return &models.Contragent{
		ID:            c.ID,
		Type:          string(c.Type),
		Name:          c.Name,
		Email:         c.Email,
		Phone:         c.Phone,
		Address:       c.Address,
		ContactPerson: c.ContactPerson,
		Notes:         c.Notes,
		Details:       details,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}, nil
}
