package mappers

import (
	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk/modules/contragents/domain/aggregates/contragent"
	"github.com/fleetdesk/fleetdesk/modules/contragents/presentation/viewmodels"
	coremappers "github.com/fleetdesk/fleetdesk/modules/core/presentation/mappers"
)

func fixed(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.StringFixed(2)
	return &s
}

func ContragentToViewModel(c *contragent.Contragent) *viewmodels.Contragent {
	return &viewmodels.Contragent{
		ID:               c.ID.String(),
		Type:             string(c.Type),
		Name:             c.Name,
		Email:            c.Email,
		Phone:            c.Phone,
		Address:          c.Address,
		ContactPerson:    c.ContactPerson,
		Notes:            c.Notes,
		MCNumber:         c.Details.MCNumber,
		DOTNumber:        c.Details.DOTNumber,
		CreditLimit:      fixed(c.Details.CreditLimit),
		PaymentTermsDays: c.Details.PaymentTermsDays,
		WorkingHours:     c.Details.WorkingHours,
		DockCount:        c.Details.DockCount,
		FeePercent:       fixed(c.Details.FeePercent),
		RemitEmail:       c.Details.RemitEmail,
		CreatedAt:        coremappers.Timestamp(c.CreatedAt),
		UpdatedAt:        coremappers.Timestamp(c.UpdatedAt),
	}
}

func ContragentsToViewModels(items []*contragent.Contragent) []*viewmodels.Contragent {
	out := make([]*viewmodels.Contragent, len(items))
	for i, c := range items {
		out[i] = ContragentToViewModel(c)
	}
	return out
}
