package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/modules/core/testhelpers"
	"github.com/fleetdesk/fleetdesk/pkg/authz"
	"github.com/fleetdesk/fleetdesk/pkg/itf"
	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

func TestUserService_Create(t *testing.T) {
	admin := itf.User(user.RoleAdmin)
	ctx, db := itf.Ctx(admin)
	pub := &testhelpers.Publisher{}
	svc := NewUserService(testhelpers.NewUserRepository(admin), pub)

	_, err := svc.Create(ctx, &user.CreateDTO{Email: "nope", Role: "pilot", Password: "short"})
	var verrs serrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "email")
	assert.Contains(t, verrs, "role")
	assert.Contains(t, verrs, "password")
	assert.Contains(t, verrs, "firstName")

	created, err := svc.Create(ctx, &user.CreateDTO{
		Email:     " New.Driver@Fleet.test ",
		FirstName: "New",
		LastName:  "Driver",
		Role:      "driver",
		Password:  "password1",
	})
	require.NoError(t, err)
	assert.Equal(t, "new.driver@fleet.test", created.Email())
	assert.True(t, created.CheckPassword("password1"))
	assert.True(t, db.LastTx().Committed())

	events := pub.Events()
	require.Len(t, events, 1)
	ev, ok := events[0].(*user.CreatedEvent)
	require.True(t, ok)
	assert.Equal(t, admin.ID(), ev.Sender.ID())

	_, err = svc.Create(ctx, &user.CreateDTO{
		Email: "new.driver@fleet.test", FirstName: "Again", LastName: "Driver", Role: "driver", Password: "password1",
	})
	assert.ErrorIs(t, err, user.ErrEmailTaken)
	assert.True(t, db.LastTx().RolledBack())
}

func TestUserService_CreateForbiddenForDriver(t *testing.T) {
	ctx, _ := itf.Ctx(itf.User(user.RoleDriver))
	svc := NewUserService(testhelpers.NewUserRepository(), &testhelpers.Publisher{})

	_, err := svc.Create(ctx, &user.CreateDTO{})
	assert.ErrorIs(t, err, authz.ErrForbidden)
}

func TestUserService_GetPaginatedWithTotal(t *testing.T) {
	admin := itf.User(user.RoleAdmin)
	repo := testhelpers.NewUserRepository(
		admin,
		user.New("maria@fleet.test", "Maria", "Gonzalez", user.RoleDriver),
		user.New("mark@fleet.test", "Mark", "Twain", user.RoleDriver),
		user.New("zed@fleet.test", "Zed", "Zulu", user.RoleDispatcher),
	)
	ctx, _ := itf.Ctx(admin)
	svc := NewUserService(repo, &testhelpers.Publisher{})

	items, total, err := svc.GetPaginatedWithTotal(ctx, &user.FindParams{Roles: []user.Role{user.RoleDriver}, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 1)

	items, total, err = svc.GetPaginatedWithTotal(ctx, &user.FindParams{Q: "gonzlez", Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "maria@fleet.test", items[0].Email())
}

func TestUserService_Update(t *testing.T) {
	admin := itf.User(user.RoleAdmin)
	target := user.New("t@fleet.test", "T", "User", user.RoleDriver)
	ctx, _ := itf.Ctx(admin)
	pub := &testhelpers.Publisher{}
	svc := NewUserService(testhelpers.NewUserRepository(admin, target), pub)

	inactive := false
	updated, err := svc.Update(ctx, target.ID(), &user.UpdateDTO{
		FirstName: "Tess", LastName: "User", Role: "dispatcher", Active: &inactive, Password: "newpassword",
	})
	require.NoError(t, err)
	assert.Equal(t, user.RoleDispatcher, updated.Role())
	assert.False(t, updated.Active())
	assert.True(t, updated.CheckPassword("newpassword"))
	require.Len(t, pub.Events(), 1)

	_, err = svc.Update(ctx, target.ID(), &user.UpdateDTO{FirstName: "x", LastName: "y", Role: "captain"})
	assert.Equal(t, serrors.KindInvalid, serrors.KindOf(err))
}

func TestUserService_UpdateRetiringDriverRunsHooks(t *testing.T) {
	admin := itf.User(user.RoleAdmin)
	driver := user.New("d@fleet.test", "D", "Driver", user.RoleDriver)
	dispatcher := user.New("p@fleet.test", "P", "Dispatcher", user.RoleDispatcher)
	repo := testhelpers.NewUserRepository(admin, driver, dispatcher)
	ctx, db := itf.Ctx(admin)
	svc := NewUserService(repo, &testhelpers.Publisher{})

	var retired []uuid.UUID
	busy := errors.New("busy")
	refuse := false
	svc.OnDriverRetired(func(ctx context.Context, id uuid.UUID) error {
		retired = append(retired, id)
		return nil
	})
	svc.OnDriverRetired(func(ctx context.Context, id uuid.UUID) error {
		if refuse {
			return busy
		}
		return nil
	})

	// profile edits and non-driver changes leave the hooks alone
	_, err := svc.Update(ctx, driver.ID(), &user.UpdateDTO{FirstName: "Dee", LastName: "Driver", Role: "driver"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, dispatcher.ID(), &user.UpdateDTO{FirstName: "P", LastName: "D", Role: "manager"})
	require.NoError(t, err)
	assert.Empty(t, retired)

	refuse = true
	inactive := false
	_, err = svc.Update(ctx, driver.ID(), &user.UpdateDTO{FirstName: "Dee", LastName: "Driver", Role: "driver", Active: &inactive})
	require.ErrorIs(t, err, busy)
	assert.True(t, db.LastTx().RolledBack())
	stored, err := repo.GetByID(ctx, driver.ID())
	require.NoError(t, err)
	assert.True(t, stored.Active())

	refuse = false
	updated, err := svc.Update(ctx, driver.ID(), &user.UpdateDTO{FirstName: "Dee", LastName: "Driver", Role: "dispatcher"})
	require.NoError(t, err)
	assert.Equal(t, user.RoleDispatcher, updated.Role())
	assert.Equal(t, []uuid.UUID{driver.ID(), driver.ID()}, retired)
}

func TestUserService_Delete(t *testing.T) {
	admin := itf.User(user.RoleAdmin)
	other := user.New("o@fleet.test", "O", "User", user.RoleDriver)
	repo := testhelpers.NewUserRepository(admin, other)
	ctx, _ := itf.Ctx(admin)
	pub := &testhelpers.Publisher{}
	svc := NewUserService(repo, pub)

	_, err := svc.Delete(ctx, admin.ID())
	assert.ErrorIs(t, err, user.ErrSelfDelete)

	deleted, err := svc.Delete(ctx, other.ID())
	require.NoError(t, err)
	assert.Equal(t, other.ID(), deleted.ID())
	_, err = repo.GetByID(ctx, other.ID())
	assert.ErrorIs(t, err, user.ErrNotFound)

	_, err = svc.Delete(ctx, other.ID())
	assert.ErrorIs(t, err, user.ErrNotFound)
	_, ok := pub.Events()[0].(*user.DeletedEvent)
	assert.True(t, ok)
}
