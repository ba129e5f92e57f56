package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Option func(u *user)

func WithID(id uuid.UUID) Option {
	return func(u *user) { u.id = id }
}

func WithPhone(phone string) Option {
	return func(u *user) { u.phone = strings.TrimSpace(phone) }
}

func WithActive(active bool) Option {
	return func(u *user) { u.active = active }
}

func WithPasswordHash(hash string) Option {
	return func(u *user) { u.passwordHash = hash }
}

func WithLastLogin(t *time.Time) Option {
	return func(u *user) { u.lastLogin = t }
}

func WithCreatedAt(t time.Time) Option {
	return func(u *user) { u.createdAt = t }
}

func WithUpdatedAt(t time.Time) Option {
	return func(u *user) { u.updatedAt = t }
}

type User interface {
	ID() uuid.UUID
	Email() string
	FirstName() string
	LastName() string
	FullName() string
	Phone() string
	Role() Role
	Active() bool
	PasswordHash() string
	LastLogin() *time.Time
	CreatedAt() time.Time
	UpdatedAt() time.Time

	CheckPassword(password string) bool
	SetPassword(password string) (User, error)
	SetProfile(firstName, lastName, phone string) User
	SetRole(role Role) User
	SetActive(active bool) User
}

func New(email, firstName, lastName string, role Role, opts ...Option) User {
	now := time.Now().UTC()
	u := &user{
		id:        uuid.New(),
		email:     NormalizeEmail(email),
		firstName: strings.TrimSpace(firstName),
		lastName:  strings.TrimSpace(lastName),
		role:      role,
		active:    true,
		createdAt: now,
		updatedAt: now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type user struct {
	id           uuid.UUID
	email        string
	firstName    string
	lastName     string
	phone        string
	role         Role
	active       bool
	passwordHash string
	lastLogin    *time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

func (u *user) ID() uuid.UUID         { return u.id }
func (u *user) Email() string         { return u.email }
func (u *user) FirstName() string     { return u.firstName }
func (u *user) LastName() string      { return u.lastName }
func (u *user) Phone() string         { return u.phone }
func (u *user) Role() Role            { return u.role }
func (u *user) Active() bool          { return u.active }
func (u *user) PasswordHash() string  { return u.passwordHash }
func (u *user) LastLogin() *time.Time { return u.lastLogin }
func (u *user) CreatedAt() time.Time  { return u.createdAt }
func (u *user) UpdatedAt() time.Time  { return u.updatedAt }

func (u *user) FullName() string {
	return strings.TrimSpace(u.firstName + " " + u.lastName)
}

func (u *user) CheckPassword(password string) bool {
	if u.passwordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)) == nil
}

func (u *user) SetPassword(password string) (User, error) {
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	c := u.clone()
	c.passwordHash = string(hash)
	return c, nil
}

func (u *user) SetProfile(firstName, lastName, phone string) User {
	c := u.clone()
	c.firstName = strings.TrimSpace(firstName)
	c.lastName = strings.TrimSpace(lastName)
	c.phone = strings.TrimSpace(phone)
	return c
}

func (u *user) SetRole(role Role) User {
	c := u.clone()
	c.role = role
	return c
}

func (u *user) SetActive(active bool) User {
	c := u.clone()
	c.active = active
	return c
}

func (u *user) clone() *user {
	c := *u
	c.updatedAt = time.Now().UTC()
	return &c
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
