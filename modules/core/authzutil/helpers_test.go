package authzutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/pkg/authz"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/itf"
)

func useEnforcing(t *testing.T) {
	t.Helper()
	svc, err := authz.NewService(authz.Config{FlagMode: authz.ModeEnforce})
	require.NoError(t, err)
	authz.SetDefault(svc)
	t.Cleanup(func() { authz.SetDefault(nil) })
}

func TestAuthorize(t *testing.T) {
	useEnforcing(t)
	trucks := authz.ObjectName("fleet", "trucks")

	driverCtx := composables.WithUser(context.Background(), itf.User(user.RoleDriver))
	require.NoError(t, Authorize(driverCtx, trucks, authz.ActionView))
	err := Authorize(driverCtx, trucks, authz.ActionDelete)
	assert.ErrorIs(t, err, authz.ErrForbidden)

	require.NoError(t, Authorize(WithSystemActor(driverCtx, "seed"), trucks, authz.ActionDelete))
	require.NoError(t, Authorize(context.Background(), trucks, authz.ActionDelete))
}

func TestCan(t *testing.T) {
	useEnforcing(t)
	ctx := context.Background()
	users := authz.ObjectName("core", "users")

	assert.True(t, Can(ctx, itf.User(user.RoleAdmin), users, authz.ActionDelete))
	assert.True(t, Can(ctx, itf.User(user.RoleDispatcher), users, authz.ActionList))
	assert.False(t, Can(ctx, itf.User(user.RoleDispatcher), users, authz.ActionCreate))
	assert.False(t, Can(ctx, nil, users, authz.ActionList))

	caps := Capabilities(ctx, itf.User(user.RoleManager), map[string][]string{
		"dispatch.dispatches": {"export", "delete"},
	})
	assert.True(t, caps[CapabilityKey("dispatch.dispatches", "export")])
	assert.False(t, caps[CapabilityKey("dispatch.dispatches", "delete")])
}

func TestSystemActor(t *testing.T) {
	ctx := WithSystemActor(context.Background(), " Realtime ")
	actor, ok := SystemActor(ctx)
	require.True(t, ok)
	assert.Equal(t, "system:realtime", actor)

	_, ok = SystemActor(WithSystemActor(context.Background(), ""))
	assert.False(t, ok)
}
