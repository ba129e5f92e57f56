package contragent

import (
	"context"

	"github.com/google/uuid"
)

type FindParams struct {
	Q      string
	Types  []Type
	IDs    []uuid.UUID
	Limit  int
	Offset int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]*Contragent, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Contragent, error)
	Create(ctx context.Context, c *Contragent) (*Contragent, error)
	Update(ctx context.Context, c *Contragent) (*Contragent, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
