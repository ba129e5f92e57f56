package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type FindParams struct {
	Q            string
	Statuses     []Status
	Priorities   []Priority
	DriverID     *uuid.UUID
	TruckID      *uuid.UUID
	CustomerID   *uuid.UUID
	DispatcherID *uuid.UUID
	PickupFrom   *time.Time
	PickupTo     *time.Time
	IDs          []uuid.UUID
	Limit        int
	Offset       int
}

// StatusFilter narrows status counts to one driver or dispatcher.
type StatusFilter struct {
	DriverID     *uuid.UUID
	DispatcherID *uuid.UUID
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]*Dispatch, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	CountByStatus(ctx context.Context, filter StatusFilter) (map[Status]int64, error)
	// RevenueByCurrency sums rates of delivered dispatches per currency.
	RevenueByCurrency(ctx context.Context) (map[string]decimal.Decimal, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Dispatch, error)
	// CountByContragent counts dispatches naming id as customer or carrier.
	CountByContragent(ctx context.Context, id uuid.UUID) (int64, error)
	Create(ctx context.Context, d *Dispatch) (*Dispatch, error)
	Update(ctx context.Context, d *Dispatch) (*Dispatch, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddHistory(ctx context.Context, entry *HistoryEntry) error
	History(ctx context.Context, dispatchID uuid.UUID) ([]*HistoryEntry, error)
}
