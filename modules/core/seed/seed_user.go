// Package seed inserts the demo users the dashboard ships with.
package seed

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/modules/core/infrastructure/persistence"
	"github.com/fleetdesk/fleetdesk/pkg/application"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
)

// DemoPassword is shared by every seeded account.
const DemoPassword = "fleetdesk123"

type SeedUser struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Role      user.Role
}

var DemoUsers = []SeedUser{
	{Email: "admin@fleetdesk.local", FirstName: "Ada", LastName: "Admin", Phone: "+1 555 0100", Role: user.RoleAdmin},
	{Email: "manager@fleetdesk.local", FirstName: "Morgan", LastName: "Reyes", Phone: "+1 555 0101", Role: user.RoleManager},
	{Email: "dispatch@fleetdesk.local", FirstName: "Dana", LastName: "Whitfield", Phone: "+1 555 0102", Role: user.RoleDispatcher},
	{Email: "dispatch2@fleetdesk.local", FirstName: "Priya", LastName: "Shah", Phone: "+1 555 0103", Role: user.RoleDispatcher},
	{Email: "driver@fleetdesk.local", FirstName: "Luis", LastName: "Gonzalez", Phone: "+1 555 0110", Role: user.RoleDriver},
	{Email: "driver2@fleetdesk.local", FirstName: "Tom", LastName: "Becker", Phone: "+1 555 0111", Role: user.RoleDriver},
	{Email: "driver3@fleetdesk.local", FirstName: "Aisha", LastName: "Okafor", Phone: "+1 555 0112", Role: user.RoleDriver},
}

type userSeeder struct {
	users    []SeedUser
	password string
}

// UserSeedFunc creates the given accounts unless their email is taken.
func UserSeedFunc(password string, users ...SeedUser) application.SeedFunc {
	s := &userSeeder{users: users, password: password}
	return s.CreateUsers
}

func (s *userSeeder) CreateUsers(ctx context.Context, app application.Application) error {
	userRepository := persistence.NewUserRepository()
	logger := app.Logger().WithField("component", "seed")
	return composables.InTx(ctx, func(txCtx context.Context) error {
		for _, su := range s.users {
			_, err := userRepository.GetByEmail(txCtx, su.Email)
			if err == nil {
				logger.Infof("User %s already exists", su.Email)
				continue
			}
			if !errors.Is(err, user.ErrNotFound) {
				return err
			}
			u, err := user.New(su.Email, su.FirstName, su.LastName, su.Role, user.WithPhone(su.Phone)).SetPassword(s.password)
			if err != nil {
				return err
			}
			if _, err := userRepository.Create(txCtx, u); err != nil {
				return errors.Wrapf(err, "create user %s", su.Email)
			}
			logger.Infof("Created %s user %s", su.Role, su.Email)
		}
		return nil
	})
}

// UsersByRole loads seeded accounts for dependent seeders.
func UsersByRole(ctx context.Context, role user.Role) ([]user.User, error) {
	return persistence.NewUserRepository().GetPaginated(ctx, &user.FindParams{
		Roles: []user.Role{role},
		Limit: 100,
	})
}
