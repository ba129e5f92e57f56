package contragent

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

func intPtr(v int) *int { return &v }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestDTO_Ok(t *testing.T) {
	d := &DTO{
		Type:             " Customer ",
		Name:             "Lone Star Grocers",
		Email:            "AP@LoneStar.test",
		CreditLimit:      decPtr("25000.00"),
		PaymentTermsDays: intPtr(30),
	}
	require.NoError(t, d.Ok())
	assert.Equal(t, "customer", d.Type)
	assert.Equal(t, "ap@lonestar.test", d.Email)

	c := d.ToEntity()
	assert.Equal(t, TypeCustomer, c.Type)
	assert.True(t, c.Details.CreditLimit.Equal(decimal.NewFromInt(25000)))
	assert.Equal(t, 30, *c.Details.PaymentTermsDays)
}

func TestDTO_RejectsForeignDetails(t *testing.T) {
	d := &DTO{
		Type:       "carrier",
		Name:       "Red River Haulers",
		MCNumber:   "mc-123456",
		DockCount:  intPtr(4),
		RemitEmail: "pay@factor.test",
	}
	err := d.Ok()
	var verrs serrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
	assert.Contains(t, verrs, "dockCount")
	assert.Contains(t, verrs, "remitEmail")
	assert.Equal(t, "MC-123456", d.MCNumber)
}

func TestDTO_RangeChecks(t *testing.T) {
	cases := []struct {
		name  string
		dto   DTO
		field string
	}{
		{"negative credit", DTO{Type: "customer", Name: "A", CreditLimit: decPtr("-1")}, "creditLimit"},
		{"terms too long", DTO{Type: "customer", Name: "A", PaymentTermsDays: intPtr(181)}, "paymentTermsDays"},
		{"negative docks", DTO{Type: "facility", Name: "A", DockCount: intPtr(-2)}, "dockCount"},
		{"fee over 100", DTO{Type: "factoring", Name: "A", FeePercent: decPtr("100.5")}, "feePercent"},
		{"bad remit email", DTO{Type: "factoring", Name: "A", RemitEmail: "nope"}, "remitEmail"},
		{"unknown type", DTO{Type: "broker", Name: "A"}, "type"},
		{"missing name", DTO{Type: "carrier"}, "name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := tc.dto
			var verrs serrors.ValidationErrors
			require.ErrorAs(t, d.Ok(), &verrs)
			assert.Contains(t, verrs, tc.field)
		})
	}
}

func TestDTO_ZeroTermsAllowed(t *testing.T) {
	d := &DTO{Type: "customer", Name: "Cash Only Co", PaymentTermsDays: intPtr(0), CreditLimit: decPtr("0")}
	assert.NoError(t, d.Ok())
}
