package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/modules/fleet/domain/aggregates/truck"
	"github.com/fleetdesk/fleetdesk/modules/fleet/infrastructure/persistence/models"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/repo"
)

const (
	truckFindQuery = `
        SELECT
            t.id,
            t.unit_number,
            t.plate_number,
            t.vin,
            t.make,
            t.model,
            t.year,
            t.type,
            t.status,
            t.driver_id,
            t.capacity_lbs,
            t.location,
            t.photo_upload_id,
            t.notes,
            t.created_at,
            t.updated_at,
            NULLIF(TRIM(CONCAT(u.first_name, ' ', u.last_name)), ''),
            up.hash
        FROM trucks t
        LEFT JOIN users u ON u.id = t.driver_id
        LEFT JOIN uploads up ON up.id = t.photo_upload_id`

	truckCountQuery = `SELECT COUNT(t.id) FROM trucks t`

	truckCountByStatusQuery = `SELECT status, COUNT(*) FROM trucks GROUP BY status`

	truckReleaseDriverQuery = `UPDATE trucks SET driver_id = NULL, updated_at = NOW() WHERE driver_id = $1 AND id <> $2`

	truckDeleteQuery = `DELETE FROM trucks WHERE id = $1`

	truckUnitNumberConstraint = "trucks_unit_number_key"
	truckDriverConstraint     = "trucks_driver_id_key"
	truckDriverFKConstraint   = "trucks_driver_id_fkey"
	truckPhotoFKConstraint    = "trucks_photo_upload_id_fkey"
)

type PgTruckRepository struct{}

func NewTruckRepository() truck.Repository {
	return &PgTruckRepository{}
}

// buildTruckFilters ignores params.Q; the service ranks free-text matches.
func (g *PgTruckRepository) buildTruckFilters(params *truck.FindParams) *repo.Where {
	where := repo.NewWhere()
	repo.Any(where, "t.status", repo.Strings(params.Statuses))
	repo.Any(where, "t.type", repo.Strings(params.Types))
	repo.Any(where, "t.id", params.IDs)
	if params.DriverID != nil {
		where.Eq("t.driver_id", *params.DriverID)
	}
	return where
}

func (g *PgTruckRepository) GetPaginated(ctx context.Context, params *truck.FindParams) ([]*truck.Truck, error) {
	where := g.buildTruckFilters(params)
	query := repo.Join(" ",
		truckFindQuery,
		where.String(),
		"ORDER BY t.unit_number, t.id",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	trucks, err := g.queryTrucks(ctx, query, where.Args()...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get paginated trucks")
	}
	return trucks, nil
}

func (g *PgTruckRepository) Count(ctx context.Context, params *truck.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	where := g.buildTruckFilters(params)
	var count int64
	if err := tx.QueryRow(ctx, repo.Join(" ", truckCountQuery, where.String()), where.Args()...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count trucks")
	}
	return count, nil
}

func (g *PgTruckRepository) CountByStatus(ctx context.Context) (map[truck.Status]int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	rows, err := tx.Query(ctx, truckCountByStatusQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count trucks by status")
	}
	defer rows.Close()

	out := make(map[truck.Status]int64, len(truck.Statuses))
	for _, s := range truck.Statuses {
		out[s] = 0
	}
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, errors.Wrap(err, "failed to scan status count")
		}
		out[truck.Status(status)] = n
	}
	return out, rows.Err()
}

func (g *PgTruckRepository) GetByID(ctx context.Context, id uuid.UUID) (*truck.Truck, error) {
	trucks, err := g.queryTrucks(ctx, truckFindQuery+" WHERE t.id = $1", id)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to query truck with id: %s", id))
	}
	if len(trucks) == 0 {
		return nil, fmt.Errorf("id: %s: %w", id, truck.ErrNotFound)
	}
	return trucks[0], nil
}

func (g *PgTruckRepository) GetByDriverID(ctx context.Context, driverID uuid.UUID) (*truck.Truck, error) {
	trucks, err := g.queryTrucks(ctx, truckFindQuery+" WHERE t.driver_id = $1", driverID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query truck by driver")
	}
	if len(trucks) == 0 {
		return nil, truck.ErrNotFound
	}
	return trucks[0], nil
}

func truckFields() []string {
	return []string{
		"unit_number",
		"plate_number",
		"vin",
		"make",
		"model",
		"year",
		"type",
		"status",
		"driver_id",
		"capacity_lbs",
		"location",
		"photo_upload_id",
		"notes",
		"updated_at",
	}
}

func truckValues(t *models.Truck) []interface{} {
	return []interface{}{
		t.UnitNumber,
		t.PlateNumber,
		t.VIN,
		t.Make,
		t.Model,
		t.Year,
		t.Type,
		t.Status,
		t.DriverID,
		t.CapacityLbs,
		t.Location,
		t.PhotoUploadID,
		t.Notes,
		t.UpdatedAt,
	}
}

func (g *PgTruckRepository) Create(ctx context.Context, data *truck.Truck) (*truck.Truck, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	dbTruck := ToDBTruck(data)
	fields := append([]string{"id", "created_at"}, truckFields()...)
	values := append([]interface{}{dbTruck.ID, dbTruck.CreatedAt}, truckValues(dbTruck)...)
	if _, err := tx.Exec(ctx, repo.Insert("trucks", fields), values...); err != nil {
		return nil, translateTruckError(err, "failed to insert truck")
	}
	return g.GetByID(ctx, dbTruck.ID)
}

func (g *PgTruckRepository) Update(ctx context.Context, data *truck.Truck) (*truck.Truck, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	dbTruck := ToDBTruck(data)
	fields := truckFields()
	values := append(truckValues(dbTruck), dbTruck.ID)
	tag, err := tx.Exec(ctx, repo.Update("trucks", fields, fmt.Sprintf("id = $%d", len(values))), values...)
	if err != nil {
		return nil, translateTruckError(err, "failed to update truck")
	}
	if tag.RowsAffected() == 0 {
		return nil, truck.ErrNotFound
	}
	return g.GetByID(ctx, dbTruck.ID)
}

func (g *PgTruckRepository) ReleaseDriver(ctx context.Context, driverID uuid.UUID, keep uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	if _, err := tx.Exec(ctx, truckReleaseDriverQuery, driverID, keep); err != nil {
		return errors.Wrap(err, "failed to release driver")
	}
	return nil
}

func (g *PgTruckRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, truckDeleteQuery, id)
	if err != nil {
		if repo.IsForeignKeyViolation(err, "") {
			return truck.ErrInUse
		}
		return errors.Wrap(err, "failed to delete truck")
	}
	if tag.RowsAffected() == 0 {
		return truck.ErrNotFound
	}
	return nil
}

func translateTruckError(err error, msg string) error {
	switch {
	case repo.IsUniqueViolation(err, truckUnitNumberConstraint):
		return truck.ErrUnitNumberTaken
	case repo.IsUniqueViolation(err, truckDriverConstraint):
		return truck.ErrDriverTaken
	case repo.IsForeignKeyViolation(err, truckDriverFKConstraint):
		return truck.ErrNotADriver
	case repo.IsForeignKeyViolation(err, truckPhotoFKConstraint):
		return truck.ErrUnknownPhoto
	}
	return errors.Wrap(err, msg)
}

func (g *PgTruckRepository) queryTrucks(ctx context.Context, query string, args ...interface{}) ([]*truck.Truck, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var out []*truck.Truck
	for rows.Next() {
		var t models.Truck
		if err := rows.Scan(
			&t.ID,
			&t.UnitNumber,
			&t.PlateNumber,
			&t.VIN,
			&t.Make,
			&t.Model,
			&t.Year,
			&t.Type,
			&t.Status,
			&t.DriverID,
			&t.CapacityLbs,
			&t.Location,
			&t.PhotoUploadID,
			&t.Notes,
			&t.CreatedAt,
			&t.UpdatedAt,
			&t.DriverName,
			&t.PhotoHash,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan truck row")
		}
		out = append(out, ToDomainTruck(&t))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return out, nil
}
