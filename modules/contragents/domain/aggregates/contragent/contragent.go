package contragent

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeCarrier   Type = "carrier"
	TypeCustomer  Type = "customer"
	TypeFacility  Type = "facility"
	TypeFactoring Type = "factoring"
)

var Types = []Type{TypeCarrier, TypeCustomer, TypeFacility, TypeFactoring}

func (t Type) IsValid() bool {
	for _, v := range Types {
		if v == t {
			return true
		}
	}
	return false
}

// Details holds the fields that only apply to some types. Fields of other
// types stay nil or empty.
type Details struct {
	// carrier
	MCNumber  string `json:"mcNumber,omitempty"`
	DOTNumber string `json:"dotNumber,omitempty"`
	// customer
	CreditLimit      *decimal.Decimal `json:"creditLimit,omitempty"`
	PaymentTermsDays *int             `json:"paymentTermsDays,omitempty"`
	// facility
	WorkingHours string `json:"workingHours,omitempty"`
	DockCount    *int   `json:"dockCount,omitempty"`
	// factoring
	FeePercent *decimal.Decimal `json:"feePercent,omitempty"`
	RemitEmail string           `json:"remitEmail,omitempty"`
}

type Contragent struct {
	ID            uuid.UUID
	Type          Type
	Name          string
	Email         string
	Phone         string
	Address       string
	ContactPerson string
	Notes         string
	Details       Details
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
