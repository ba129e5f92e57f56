package truck

import (
	"context"

	"github.com/google/uuid"
)

type FindParams struct {
	Q        string
	Statuses []Status
	Types    []Type
	DriverID *uuid.UUID
	IDs      []uuid.UUID
	Limit    int
	Offset   int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]*Truck, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Truck, error)
	GetByDriverID(ctx context.Context, driverID uuid.UUID) (*Truck, error)
	Create(ctx context.Context, t *Truck) (*Truck, error)
	Update(ctx context.Context, t *Truck) (*Truck, error)
	// ReleaseDriver clears driverID from every truck except keep.
	ReleaseDriver(ctx context.Context, driverID uuid.UUID, keep uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}
