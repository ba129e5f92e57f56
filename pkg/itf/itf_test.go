package itf

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
)

func TestSanitizeDBName(t *testing.T) {
	assert.Equal(t, "testtruckrepository_create", sanitizeDBName("TestTruckRepository/Create"))
	assert.Equal(t, "test_db", sanitizeDBName("///"))

	long := "Test" + strings.Repeat("VeryLongSubtestName", 10)
	got := sanitizeDBName(long)
	assert.LessOrEqual(t, len(got), maxDBNameLength)
	assert.NotEqual(t, got, sanitizeDBName(long+"2"))
}

func TestCtx_InTxCommitsAndRollsBack(t *testing.T) {
	ctx, db := Ctx(User(user.RoleAdmin))

	require.NoError(t, composables.InTx(ctx, func(txCtx context.Context) error {
		_, err := composables.UseTx(txCtx)
		return err
	}))
	require.Len(t, db.Txs(), 1)
	assert.True(t, db.LastTx().Committed())

	boom := errors.New("boom")
	err := composables.InTx(ctx, func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	assert.True(t, db.LastTx().RolledBack())
	assert.False(t, db.LastTx().Committed())
}

func TestCtx_NestedInTxReusesOuter(t *testing.T) {
	ctx, db := Ctx(nil)
	require.NoError(t, composables.InTx(ctx, func(txCtx context.Context) error {
		return composables.InTx(txCtx, func(context.Context) error { return nil })
	}))
	assert.Len(t, db.Txs(), 1)

	_, err := composables.UseUser(ctx)
	require.ErrorIs(t, err, composables.ErrNoUserFound)
}
