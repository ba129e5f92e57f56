package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/modules/core/testhelpers"
	"github.com/fleetdesk/fleetdesk/pkg/itf"
	"github.com/fleetdesk/fleetdesk/pkg/types"
)

func testNav() []types.NavigationItem {
	return []types.NavigationItem{
		{Name: "Dashboard", Href: "/dashboard", AuthzObject: "core.dashboard", AuthzAction: "view"},
		{Name: "Users", Href: "/users", AuthzObject: "core.users", AuthzAction: "create"},
		{Name: "Trucks", Href: "/trucks", AuthzObject: "fleet.trucks", AuthzAction: "list"},
	}
}

func TestDashboardService_Get(t *testing.T) {
	admin := itf.User(user.RoleAdmin)
	driver := itf.User(user.RoleDriver)
	users := NewUserService(testhelpers.NewUserRepository(admin, driver), &testhelpers.Publisher{})
	svc := NewDashboardService(testNav, UsersDashboard(users))
	svc.Register(DashboardContributorFunc(func(ctx context.Context, u user.User) (map[string]any, error) {
		return map[string]any{"unreadMessages": 3}, nil
	}))

	ctx, _ := itf.Ctx(admin)
	d, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, d.Role)
	assert.Equal(t, 3, d.Widgets["unreadMessages"])
	byRole, ok := d.Widgets["usersByRole"].(map[user.Role]int64)
	require.True(t, ok)
	assert.EqualValues(t, 1, byRole[user.RoleDriver])
	assert.Len(t, d.Navigation, 3)

	ctx, _ = itf.Ctx(driver)
	d, err = svc.Get(ctx)
	require.NoError(t, err)
	assert.NotContains(t, d.Widgets, "usersByRole")
	names := make([]string, 0, len(d.Navigation))
	for _, item := range d.Navigation {
		names = append(names, item.Name)
	}
	assert.Equal(t, []string{"Dashboard", "Trucks"}, names)
}

func TestDashboardService_ContributorError(t *testing.T) {
	boom := errors.New("boom")
	svc := NewDashboardService(nil, DashboardContributorFunc(func(ctx context.Context, u user.User) (map[string]any, error) {
		return nil, boom
	}))
	ctx, _ := itf.Ctx(itf.User(user.RoleManager))
	_, err := svc.Get(ctx)
	assert.ErrorIs(t, err, boom)
}
