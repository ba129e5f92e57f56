package contragent

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk/pkg/constants"
	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

var hundred = decimal.NewFromInt(100)

// typeFields lists the detail fields each type accepts, by json name.
var typeFields = map[Type][]string{
	TypeCarrier:   {"mcNumber", "dotNumber"},
	TypeCustomer:  {"creditLimit", "paymentTermsDays"},
	TypeFacility:  {"workingHours", "dockCount"},
	TypeFactoring: {"feePercent", "remitEmail"},
}

// DTO is the create and update payload. Detail fields sit next to the
// common ones.
type DTO struct {
	Type          string `json:"type" validate:"required,oneof=carrier customer facility factoring"`
	Name          string `json:"name" validate:"required,max=200"`
	Email         string `json:"email" validate:"omitempty,email,max=255"`
	Phone         string `json:"phone" validate:"max=32"`
	Address       string `json:"address" validate:"max=500"`
	ContactPerson string `json:"contactPerson" validate:"max=200"`
	Notes         string `json:"notes" validate:"max=4000"`

	MCNumber         string           `json:"mcNumber,omitempty" validate:"max=16"`
	DOTNumber        string           `json:"dotNumber,omitempty" validate:"omitempty,numeric,max=16"`
	CreditLimit      *decimal.Decimal `json:"creditLimit,omitempty"`
	PaymentTermsDays *int             `json:"paymentTermsDays,omitempty" validate:"omitempty,gte=0,lte=180"`
	WorkingHours     string           `json:"workingHours,omitempty" validate:"max=200"`
	DockCount        *int             `json:"dockCount,omitempty" validate:"omitempty,gte=0"`
	FeePercent       *decimal.Decimal `json:"feePercent,omitempty"`
	RemitEmail       string           `json:"remitEmail,omitempty" validate:"omitempty,email,max=255"`
}

func (d *DTO) Normalize() {
	d.Type = strings.ToLower(strings.TrimSpace(d.Type))
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Phone = strings.TrimSpace(d.Phone)
	d.Address = strings.TrimSpace(d.Address)
	d.ContactPerson = strings.TrimSpace(d.ContactPerson)
	d.Notes = strings.TrimSpace(d.Notes)
	d.MCNumber = strings.ToUpper(strings.TrimSpace(d.MCNumber))
	d.DOTNumber = strings.TrimSpace(d.DOTNumber)
	d.WorkingHours = strings.TrimSpace(d.WorkingHours)
	d.RemitEmail = strings.ToLower(strings.TrimSpace(d.RemitEmail))
}

// setFields returns the json names of the detail fields carrying a value.
func (d *DTO) setFields() []string {
	var out []string
	add := func(name string, set bool) {
		if set {
			out = append(out, name)
		}
	}
	add("mcNumber", d.MCNumber != "")
	add("dotNumber", d.DOTNumber != "")
	add("creditLimit", d.CreditLimit != nil)
	add("paymentTermsDays", d.PaymentTermsDays != nil)
	add("workingHours", d.WorkingHours != "")
	add("dockCount", d.DockCount != nil)
	add("feePercent", d.FeePercent != nil)
	add("remitEmail", d.RemitEmail != "")
	return out
}

func (d *DTO) Ok() error {
	d.Normalize()
	errs, err := serrors.Collect(constants.Validate.Struct(d), nil)
	if err != nil {
		return err
	}
	if d.CreditLimit != nil && d.CreditLimit.IsNegative() {
		errs.Add("creditLimit", "must be at least 0")
	}
	if d.FeePercent != nil && (d.FeePercent.IsNegative() || d.FeePercent.GreaterThan(hundred)) {
		errs.Add("feePercent", "must be between 0 and 100")
	}
	if allowed, ok := typeFields[Type(d.Type)]; ok {
		for _, f := range d.setFields() {
			if !contains(allowed, f) {
				errs.Add(f, fmt.Sprintf("is not allowed for %s contragents", d.Type))
			}
		}
	}
	return errs.OrNil()
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func (d *DTO) details() Details {
	return Details{
		MCNumber:         d.MCNumber,
		DOTNumber:        d.DOTNumber,
		CreditLimit:      d.CreditLimit,
		PaymentTermsDays: d.PaymentTermsDays,
		WorkingHours:     d.WorkingHours,
		DockCount:        d.DockCount,
		FeePercent:       d.FeePercent,
		RemitEmail:       d.RemitEmail,
	}
}

func (d *DTO) ToEntity() *Contragent {
	return d.Apply(&Contragent{
		ID:        uuid.New(),
		CreatedAt: time.Now().UTC(),
	})
}

// Apply returns a copy of c with the DTO's fields. Details are replaced
// as a whole.
func (d *DTO) Apply(c *Contragent) *Contragent {
	out := *c
	out.Type = Type(d.Type)
	out.Name = d.Name
	out.Email = d.Email
	out.Phone = d.Phone
	out.Address = d.Address
	out.ContactPerson = d.ContactPerson
	out.Notes = d.Notes
	out.Details = d.details()
	out.UpdatedAt = time.Now().UTC()
	return &out
}
