package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/modules/contragents/domain/aggregates/contragent"
)

func TestContragentMapping(t *testing.T) {
	fee := decimal.RequireFromString("2.75")
	in := &contragent.Contragent{
		ID:        uuid.New(),
		Type:      contragent.TypeFactoring,
		Name:      "Prairie Capital",
		Details:   contragent.Details{FeePercent: &fee, RemitEmail: "remit@prairie.test"},
		CreatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
	}

	db, err := ToDBContragent(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"feePercent":"2.75","remitEmail":"remit@prairie.test"}`, string(db.Details))

	out, err := ToDomainContragent(db)
	require.NoError(t, err)
	assert.True(t, fee.Equal(*out.Details.FeePercent))
	assert.Equal(t, "remit@prairie.test", out.Details.RemitEmail)
	assert.Nil(t, out.Details.CreditLimit)
}

func TestToDomainContragent_BadDetails(t *testing.T) {
	db, err := ToDBContragent(&contragent.Contragent{ID: uuid.New(), Type: contragent.TypeCarrier})
	require.NoError(t, err)
	db.Details = []byte(`{"dockCount":"many"}`)
	_, err = ToDomainContragent(db)
	assert.Error(t, err)
}
