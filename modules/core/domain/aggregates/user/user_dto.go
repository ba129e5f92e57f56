package user

import (
	"strings"

	"github.com/fleetdesk/fleetdesk/pkg/constants"
	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

type CreateDTO struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"max=32"`
	Role      string `json:"role" validate:"required,oneof=admin manager dispatcher driver"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
}

func (d *CreateDTO) Normalize() {
	d.Email = NormalizeEmail(d.Email)
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Role = strings.ToLower(strings.TrimSpace(d.Role))
}

func (d *CreateDTO) Ok() error {
	d.Normalize()
	return serrors.FromValidator(constants.Validate.Struct(d), nil)
}

func (d *CreateDTO) ToEntity() (User, error) {
	u := New(d.Email, d.FirstName, d.LastName, Role(d.Role), WithPhone(d.Phone))
	return u.SetPassword(d.Password)
}

type UpdateDTO struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Phone     string `json:"phone" validate:"max=32"`
	Role      string `json:"role" validate:"required,oneof=admin manager dispatcher driver"`
	Active    *bool  `json:"active"`
	Password  string `json:"password" validate:"omitempty,min=8,max=72"`
}

func (d *UpdateDTO) Normalize() {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Phone = strings.TrimSpace(d.Phone)
	d.Role = strings.ToLower(strings.TrimSpace(d.Role))
}

func (d *UpdateDTO) Ok() error {
	d.Normalize()
	return serrors.FromValidator(constants.Validate.Struct(d), nil)
}

func (d *UpdateDTO) Apply(u User) (User, error) {
	out := u.SetProfile(d.FirstName, d.LastName, d.Phone).SetRole(Role(d.Role))
	if d.Active != nil {
		out = out.SetActive(*d.Active)
	}
	if d.Password != "" {
		return out.SetPassword(d.Password)
	}
	return out, nil
}
