package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

func TestNew_NormalizesEmail(t *testing.T) {
	u := New("  Jane.Doe@Example.COM ", " Jane ", "Doe ", RoleDispatcher)
	assert.Equal(t, "jane.doe@example.com", u.Email())
	assert.Equal(t, "Jane Doe", u.FullName())
	assert.True(t, u.Active())
	assert.NotEqual(t, "", u.ID().String())
}

func TestSetPassword(t *testing.T) {
	u := New("a@b.co", "A", "B", RoleDriver)

	_, err := u.SetPassword("short")
	require.ErrorIs(t, err, ErrPasswordTooShort)

	withPw, err := u.SetPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, withPw.CheckPassword("correct horse"))
	assert.False(t, withPw.CheckPassword("wrong horse"))
	assert.False(t, u.CheckPassword("correct horse"), "original is not mutated")
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" Manager ")
	require.NoError(t, err)
	assert.Equal(t, RoleManager, r)

	_, err = ParseRole("owner")
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestCreateDTO_Ok(t *testing.T) {
	dto := CreateDTO{Email: "not-an-email", FirstName: "A", Role: "pilot", Password: "123"}
	err := dto.Ok()
	require.Error(t, err)

	var verrs serrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "email")
	assert.Contains(t, verrs, "lastName")
	assert.Contains(t, verrs, "role")
	assert.Contains(t, verrs, "password")

	ok := CreateDTO{Email: "D@x.io", FirstName: "D", LastName: "R", Role: "Driver", Password: "password1"}
	require.NoError(t, ok.Ok())
	assert.Equal(t, "d@x.io", ok.Email)
	assert.Equal(t, "driver", ok.Role)
}

func TestUpdateDTO_Apply(t *testing.T) {
	u := New("a@b.co", "A", "B", RoleDriver)
	inactive := false
	dto := UpdateDTO{FirstName: "Alex", LastName: "Brown", Role: "dispatcher", Active: &inactive, Password: "newpassword"}
	require.NoError(t, dto.Ok())

	out, err := dto.Apply(u)
	require.NoError(t, err)
	assert.Equal(t, "Alex Brown", out.FullName())
	assert.Equal(t, RoleDispatcher, out.Role())
	assert.False(t, out.Active())
	assert.True(t, out.CheckPassword("newpassword"))
	assert.Equal(t, u.ID(), out.ID())
}
