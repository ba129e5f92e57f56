package services

import (
	"context"
	"sync"

	"github.com/fleetdesk/fleetdesk/modules/core/authzutil"
	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/pkg/authz"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/types"
)

// DashboardContributor adds role specific widgets to the dashboard. Keys
// returned by different contributors must not overlap.
type DashboardContributor interface {
	DashboardWidgets(ctx context.Context, u user.User) (map[string]any, error)
}

type DashboardContributorFunc func(ctx context.Context, u user.User) (map[string]any, error)

func (f DashboardContributorFunc) DashboardWidgets(ctx context.Context, u user.User) (map[string]any, error) {
	return f(ctx, u)
}

type Dashboard struct {
	Role       user.Role
	Widgets    map[string]any
	Navigation []types.NavigationItem
}

type DashboardService struct {
	navItems func() []types.NavigationItem

	mu           sync.RWMutex
	contributors []DashboardContributor
}

func NewDashboardService(navItems func() []types.NavigationItem, contributors ...DashboardContributor) *DashboardService {
	return &DashboardService{navItems: navItems, contributors: contributors}
}

func (s *DashboardService) Register(contributors ...DashboardContributor) {
	s.mu.Lock()
	s.contributors = append(s.contributors, contributors...)
	s.mu.Unlock()
}

func (s *DashboardService) Get(ctx context.Context) (*Dashboard, error) {
	if err := authorizeCore(ctx, dashboardAuthzObject, authz.ActionView); err != nil {
		return nil, err
	}
	u, err := composables.UseUser(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	contributors := append([]DashboardContributor(nil), s.contributors...)
	s.mu.RUnlock()

	widgets := make(map[string]any)
	for _, c := range contributors {
		part, err := c.DashboardWidgets(ctx, u)
		if err != nil {
			return nil, err
		}
		for k, v := range part {
			widgets[k] = v
		}
	}

	var nav []types.NavigationItem
	if s.navItems != nil {
		nav = types.FilterNavigation(s.navItems(), func(object, action string) bool {
			return authzutil.Can(ctx, u, object, action)
		})
	}
	return &Dashboard{Role: u.Role(), Widgets: widgets, Navigation: nav}, nil
}

// UsersDashboard reports users by role to admins.
func UsersDashboard(users *UserService) DashboardContributor {
	return DashboardContributorFunc(func(ctx context.Context, u user.User) (map[string]any, error) {
		if u.Role() != user.RoleAdmin {
			return nil, nil
		}
		counts, err := users.CountByRole(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"usersByRole": counts}, nil
	})
}
