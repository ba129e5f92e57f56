package models

import (
	"time"

	"github.com/google/uuid"
)

type Contragent struct {
	ID            uuid.UUID
	Type          string
	Name          string
	Email         string
	Phone         string
	Address       string
	ContactPerson string
	Notes         string
	Details       []byte
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
