package user

import "strings"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleDispatcher Role = "dispatcher"
	RoleDriver     Role = "driver"
)

var Roles = []Role{RoleAdmin, RoleManager, RoleDispatcher, RoleDriver}

func ParseRole(v string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(v)))
	if !r.IsValid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleDispatcher, RoleDriver:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }
