//go:build integration

package persistence_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/modules/core/domain/entities/session"
	"github.com/fleetdesk/fleetdesk/modules/core/domain/entities/upload"
	"github.com/fleetdesk/fleetdesk/modules/core/infrastructure/persistence"
	"github.com/fleetdesk/fleetdesk/pkg/itf"
)

func TestPgUserRepository(t *testing.T) {
	env := itf.Setup(t, nil)
	repo := persistence.NewUserRepository()

	driver, err := user.New("d@fleet.test", "Dan", "Driver", user.RoleDriver).SetPassword("password1")
	require.NoError(t, err)
	created, err := repo.Create(env.Ctx, driver)
	require.NoError(t, err)
	assert.Equal(t, driver.ID(), created.ID())
	assert.True(t, created.CheckPassword("password1"))

	_, err = repo.Create(env.Ctx, user.New("D@fleet.test", "Dup", "User", user.RoleAdmin))
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestPgUserRepository_Queries(t *testing.T) {
	env := itf.Setup(t, nil)
	repo := persistence.NewUserRepository()

	for _, u := range []user.User{
		user.New("a@fleet.test", "Amy", "Admin", user.RoleAdmin),
		user.New("b@fleet.test", "Bob", "Driver", user.RoleDriver),
		user.New("c@fleet.test", "Cid", "Driver", user.RoleDriver, user.WithActive(false)),
	} {
		_, err := repo.Create(env.Ctx, u)
		require.NoError(t, err)
	}

	active := true
	drivers, err := repo.GetPaginated(env.Ctx, &user.FindParams{Roles: []user.Role{user.RoleDriver}, Active: &active})
	require.NoError(t, err)
	require.Len(t, drivers, 1)
	assert.Equal(t, "b@fleet.test", drivers[0].Email())

	total, err := repo.Count(env.Ctx, &user.FindParams{Roles: []user.Role{user.RoleDriver}})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	byRole, err := repo.CountByRole(env.Ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, byRole[user.RoleDriver])
	assert.EqualValues(t, 0, byRole[user.RoleManager])

	got, err := repo.GetByEmail(env.Ctx, " A@FLEET.test ")
	require.NoError(t, err)
	require.NoError(t, repo.UpdateLastLogin(env.Ctx, got.ID()))
	got, err = repo.GetByID(env.Ctx, got.ID())
	require.NoError(t, err)
	assert.NotNil(t, got.LastLogin())

	updated, err := repo.Update(env.Ctx, got.SetRole(user.RoleManager))
	require.NoError(t, err)
	assert.Equal(t, user.RoleManager, updated.Role())

	require.NoError(t, repo.Delete(env.Ctx, got.ID()))
	_, err = repo.GetByID(env.Ctx, got.ID())
	assert.ErrorIs(t, err, user.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(env.Ctx, got.ID()), user.ErrNotFound)
}

func TestPgSessionRepository(t *testing.T) {
	env := itf.Setup(t, nil)
	u, err := persistence.NewUserRepository().Create(env.Ctx, user.New("s@fleet.test", "S", "S", user.RoleAdmin))
	require.NoError(t, err)

	repo := persistence.NewSessionRepository()
	live, err := session.New(u.ID(), "127.0.0.1", "test", time.Hour)
	require.NoError(t, err)
	stale, err := session.New(u.ID(), "127.0.0.1", "test", -time.Hour)
	require.NoError(t, err)
	require.NoError(t, repo.Create(env.Ctx, live))
	require.NoError(t, repo.Create(env.Ctx, stale))

	got, err := repo.GetByToken(env.Ctx, live.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID(), got.UserID)

	n, err := repo.DeleteExpired(env.Ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, repo.Delete(env.Ctx, live.Token))
	_, err = repo.GetByToken(env.Ctx, live.Token)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestPgUploadRepository_Dedupes(t *testing.T) {
	env := itf.Setup(t, nil)
	repo := persistence.NewUploadRepository()

	first := &upload.Upload{Hash: "abc", Name: "a.png", Path: "abc.png", Size: 3, Mimetype: "image/png", CreatedAt: time.Now()}
	first.ID = [16]byte{1}
	saved, err := repo.Create(env.Ctx, first)
	require.NoError(t, err)

	second := *first
	second.ID = [16]byte{2}
	second.Name = "b.png"
	again, err := repo.Create(env.Ctx, &second)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, again.ID)

	_, err = repo.GetByHash(env.Ctx, "missing")
	assert.ErrorIs(t, err, upload.ErrNotFound)
}
