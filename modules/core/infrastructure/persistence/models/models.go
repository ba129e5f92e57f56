package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Email        string
	FirstName    string
	LastName     string
	Phone        string
	Role         string
	Active       bool
	PasswordHash string
	LastLogin    sql.NullTime
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Session struct {
	Token     string
	UserID    uuid.UUID
	IP        string
	UserAgent string
	ExpiresAt time.Time
	CreatedAt time.Time
}

type Upload struct {
	ID         uuid.UUID
	Hash       string
	Name       string
	Path       string
	Size       int64
	Mimetype   string
	UploaderID uuid.NullUUID
	CreatedAt  time.Time
}
