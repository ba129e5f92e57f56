package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fleetdesk/fleetdesk/modules/dispatch/domain/aggregates/dispatch"
	"github.com/fleetdesk/fleetdesk/modules/dispatch/infrastructure/persistence/models"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/repo"
)

const (
	dispatchFindQuery = `
        SELECT
            d.id,
            d.number,
            d.origin,
            d.destination,
            d.pickup_at,
            d.delivery_at,
            d.status,
            d.priority,
            d.truck_id,
            d.driver_id,
            d.dispatcher_id,
            d.customer_id,
            d.carrier_id,
            d.rate,
            d.currency,
            d.weight_lbs,
            d.notes,
            d.created_at,
            d.updated_at,
            t.unit_number,
            NULLIF(TRIM(CONCAT(dr.first_name, ' ', dr.last_name)), ''),
            NULLIF(TRIM(CONCAT(ds.first_name, ' ', ds.last_name)), ''),
            cu.name,
            ca.name
        FROM dispatches d
        LEFT JOIN trucks t ON t.id = d.truck_id
        LEFT JOIN users dr ON dr.id = d.driver_id
        LEFT JOIN users ds ON ds.id = d.dispatcher_id
        LEFT JOIN contragents cu ON cu.id = d.customer_id
        LEFT JOIN contragents ca ON ca.id = d.carrier_id`

	dispatchCountQuery = `SELECT COUNT(d.id) FROM dispatches d`

	dispatchCountByContragentQuery = `SELECT COUNT(*) FROM dispatches WHERE customer_id = $1 OR carrier_id = $1`

	dispatchCountByStatusQuery = `SELECT d.status, COUNT(*) FROM dispatches d`

	dispatchRevenueQuery = `
        SELECT currency, COALESCE(SUM(rate), 0)
        FROM dispatches
        WHERE status = 'delivered'
        GROUP BY currency
        ORDER BY currency`

	dispatchDeleteQuery = `DELETE FROM dispatches WHERE id = $1`

	historyInsertQuery = `
        INSERT INTO dispatch_history (dispatch_id, actor_id, action, diff, created_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id`

	historyFindQuery = `
        SELECT
            h.id,
            h.dispatch_id,
            h.actor_id,
            NULLIF(TRIM(CONCAT(u.first_name, ' ', u.last_name)), ''),
            h.action,
            h.diff,
            h.created_at
        FROM dispatch_history h
        LEFT JOIN users u ON u.id = h.actor_id
        WHERE h.dispatch_id = $1
        ORDER BY h.id`

	dispatchTruckFKConstraint    = "dispatches_truck_id_fkey"
	dispatchDriverFKConstraint   = "dispatches_driver_id_fkey"
	dispatchCustomerFKConstraint = "dispatches_customer_id_fkey"
	dispatchCarrierFKConstraint  = "dispatches_carrier_id_fkey"
)

type PgDispatchRepository struct{}

func NewDispatchRepository() dispatch.Repository {
	return &PgDispatchRepository{}
}

// buildDispatchFilters ignores params.Q; the service ranks free-text matches.
func (g *PgDispatchRepository) buildDispatchFilters(params *dispatch.FindParams) *repo.Where {
	where := repo.NewWhere()
	repo.Any(where, "d.status", repo.Strings(params.Statuses))
	repo.Any(where, "d.priority", repo.Strings(params.Priorities))
	repo.Any(where, "d.id", params.IDs)
	if params.DriverID != nil {
		where.Eq("d.driver_id", *params.DriverID)
	}
	if params.TruckID != nil {
		where.Eq("d.truck_id", *params.TruckID)
	}
	if params.CustomerID != nil {
		where.Eq("d.customer_id", *params.CustomerID)
	}
	if params.DispatcherID != nil {
		where.Eq("d.dispatcher_id", *params.DispatcherID)
	}
	if params.PickupFrom != nil {
		where.Gte("d.pickup_at", *params.PickupFrom)
	}
	if params.PickupTo != nil {
		where.Lt("d.pickup_at", *params.PickupTo)
	}
	return where
}

func (g *PgDispatchRepository) GetPaginated(ctx context.Context, params *dispatch.FindParams) ([]*dispatch.Dispatch, error) {
	where := g.buildDispatchFilters(params)
	query := repo.Join(" ",
		dispatchFindQuery,
		where.String(),
		"ORDER BY d.pickup_at DESC, d.number DESC",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	out, err := g.queryDispatches(ctx, query, where.Args()...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get paginated dispatches")
	}
	return out, nil
}

func (g *PgDispatchRepository) Count(ctx context.Context, params *dispatch.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	where := g.buildDispatchFilters(params)
	var count int64
	if err := tx.QueryRow(ctx, repo.Join(" ", dispatchCountQuery, where.String()), where.Args()...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count dispatches")
	}
	return count, nil
}

func (g *PgDispatchRepository) CountByContragent(ctx context.Context, id uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	var count int64
	if err := tx.QueryRow(ctx, dispatchCountByContragentQuery, id).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count dispatches by contragent")
	}
	return count, nil
}

func (g *PgDispatchRepository) CountByStatus(ctx context.Context, filter dispatch.StatusFilter) (map[dispatch.Status]int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	where := repo.NewWhere()
	if filter.DriverID != nil {
		where.Eq("d.driver_id", *filter.DriverID)
	}
	if filter.DispatcherID != nil {
		where.Eq("d.dispatcher_id", *filter.DispatcherID)
	}
	query := repo.Join(" ", dispatchCountByStatusQuery, where.String(), "GROUP BY d.status")
	rows, err := tx.Query(ctx, query, where.Args()...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count dispatches by status")
	}
	defer rows.Close()

	out := make(map[dispatch.Status]int64, len(dispatch.Statuses))
	for _, s := range dispatch.Statuses {
		out[s] = 0
	}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, errors.Wrap(err, "failed to scan status count")
		}
		out[dispatch.Status(status)] = n
	}
	return out, rows.Err()
}

func (g *PgDispatchRepository) RevenueByCurrency(ctx context.Context) (map[string]decimal.Decimal, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	rows, err := tx.Query(ctx, dispatchRevenueQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sum revenue")
	}
	defer rows.Close()

	out := map[string]decimal.Decimal{}
	for rows.Next() {
		var currency string
		var sum decimal.Decimal
		if err := rows.Scan(&currency, &sum); err != nil {
			return nil, errors.Wrap(err, "failed to scan revenue row")
		}
		out[currency] = sum
	}
	return out, rows.Err()
}

func (g *PgDispatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*dispatch.Dispatch, error) {
	out, err := g.queryDispatches(ctx, dispatchFindQuery+" WHERE d.id = $1", id)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to query dispatch with id: %s", id))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("id: %s: %w", id, dispatch.ErrNotFound)
	}
	return out[0], nil
}

func dispatchFields() []string {
	return []string{
		"origin",
		"destination",
		"pickup_at",
		"delivery_at",
		"status",
		"priority",
		"truck_id",
		"driver_id",
		"customer_id",
		"carrier_id",
		"rate",
		"currency",
		"weight_lbs",
		"notes",
		"updated_at",
	}
}

func dispatchValues(d *models.Dispatch) []interface{} {
	return []interface{}{
		d.Origin,
		d.Destination,
		d.PickupAt,
		d.DeliveryAt,
		d.Status,
		d.Priority,
		d.TruckID,
		d.DriverID,
		d.CustomerID,
		d.CarrierID,
		d.Rate,
		d.Currency,
		d.WeightLbs,
		d.Notes,
		d.UpdatedAt,
	}
}

// Create lets the database assign the sequential number.
func (g *PgDispatchRepository) Create(ctx context.Context, data *dispatch.Dispatch) (*dispatch.Dispatch, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	m := ToDBDispatch(data)
	fields := append([]string{"id", "dispatcher_id", "created_at"}, dispatchFields()...)
	values := append([]interface{}{m.ID, m.DispatcherID, m.CreatedAt}, dispatchValues(m)...)
	if _, err := tx.Exec(ctx, repo.Insert("dispatches", fields), values...); err != nil {
		return nil, translateDispatchError(err, "failed to insert dispatch")
	}
	return g.GetByID(ctx, m.ID)
}

func (g *PgDispatchRepository) Update(ctx context.Context, data *dispatch.Dispatch) (*dispatch.Dispatch, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	m := ToDBDispatch(data)
	values := append(dispatchValues(m), m.ID)
	tag, err := tx.Exec(ctx, repo.Update("dispatches", dispatchFields(), fmt.Sprintf("id = $%d", len(values))), values...)
	if err != nil {
		return nil, translateDispatchError(err, "failed to update dispatch")
	}
	if tag.RowsAffected() == 0 {
		return nil, dispatch.ErrNotFound
	}
	return g.GetByID(ctx, m.ID)
}

func (g *PgDispatchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, dispatchDeleteQuery, id)
	if err != nil {
		return errors.Wrap(err, "failed to delete dispatch")
	}
	if tag.RowsAffected() == 0 {
		return dispatch.ErrNotFound
	}
	return nil
}

func (g *PgDispatchRepository) AddHistory(ctx context.Context, entry *dispatch.HistoryEntry) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	if err := tx.QueryRow(ctx, historyInsertQuery,
		entry.DispatchID,
		nullUUID(entry.ActorID),
		string(entry.Action),
		[]byte(entry.Diff),
		entry.CreatedAt,
	).Scan(&entry.ID); err != nil {
		return errors.Wrap(err, "failed to insert dispatch history")
	}
	return nil
}

func (g *PgDispatchRepository) History(ctx context.Context, dispatchID uuid.UUID) ([]*dispatch.HistoryEntry, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	rows, err := tx.Query(ctx, historyFindQuery, dispatchID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query dispatch history")
	}
	defer rows.Close()

	var out []*dispatch.HistoryEntry
	for rows.Next() {
		var h models.HistoryEntry
		if err := rows.Scan(&h.ID, &h.DispatchID, &h.ActorID, &h.ActorName, &h.Action, &h.Diff, &h.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "failed to scan history row")
		}
		out = append(out, ToDomainHistoryEntry(&h))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return out, nil
}

func translateDispatchError(err error, msg string) error {
	switch {
	case repo.IsForeignKeyViolation(err, dispatchTruckFKConstraint):
		return dispatch.ErrUnknownTruck
	case repo.IsForeignKeyViolation(err, dispatchDriverFKConstraint):
		return dispatch.ErrNotADriver
	case repo.IsForeignKeyViolation(err, dispatchCustomerFKConstraint):
		return dispatch.ErrNotCustomer
	case repo.IsForeignKeyViolation(err, dispatchCarrierFKConstraint):
		return dispatch.ErrNotCarrier
	}
	return errors.Wrap(err, msg)
}

func (g *PgDispatchRepository) queryDispatches(ctx context.Context, query string, args ...interface{}) ([]*dispatch.Dispatch, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var out []*dispatch.Dispatch
	for rows.Next() {
		var d models.Dispatch
		if err := rows.Scan(
			&d.ID,
			&d.Number,
			&d.Origin,
			&d.Destination,
			&d.PickupAt,
			&d.DeliveryAt,
			&d.Status,
			&d.Priority,
			&d.TruckID,
			&d.DriverID,
			&d.DispatcherID,
			&d.CustomerID,
			&d.CarrierID,
			&d.Rate,
			&d.Currency,
			&d.WeightLbs,
			&d.Notes,
			&d.CreatedAt,
			&d.UpdatedAt,
			&d.TruckUnit,
			&d.DriverName,
			&d.DispatcherName,
			&d.CustomerName,
			&d.CarrierName,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan dispatch row")
		}
		out = append(out, ToDomainDispatch(&d))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return out, nil
}
