package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/modules/contragents/domain/aggregates/contragent"
	"github.com/fleetdesk/fleetdesk/modules/contragents/infrastructure/persistence/models"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/repo"
)

const (
	contragentFindQuery = `
        SELECT
            c.id,
            c.type,
            c.name,
            c.email,
            c.phone,
            c.address,
            c.contact_person,
            c.notes,
            c.details,
            c.created_at,
            c.updated_at
        FROM contragents c`

	contragentCountQuery = `SELECT COUNT(c.id) FROM contragents c`

	contragentDeleteQuery = `DELETE FROM contragents WHERE id = $1`
)

type PgContragentRepository struct{}

func NewContragentRepository() contragent.Repository {
	return &PgContragentRepository{}
}

func (g *PgContragentRepository) buildFilters(params *contragent.FindParams) *repo.Where {
	where := repo.NewWhere()
	repo.Any(where, "c.type", repo.Strings(params.Types))
	repo.Any(where, "c.id", params.IDs)
	return where
}

func (g *PgContragentRepository) GetPaginated(ctx context.Context, params *contragent.FindParams) ([]*contragent.Contragent, error) {
	where := g.buildFilters(params)
	query := repo.Join(" ",
		contragentFindQuery,
		where.String(),
		"ORDER BY c.name, c.id",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	items, err := g.queryContragents(ctx, query, where.Args()...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get paginated contragents")
	}
	return items, nil
}

func (g *PgContragentRepository) Count(ctx context.Context, params *contragent.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	where := g.buildFilters(params)
	var count int64
	if err := tx.QueryRow(ctx, repo.Join(" ", contragentCountQuery, where.String()), where.Args()...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count contragents")
	}
	return count, nil
}

func (g *PgContragentRepository) GetByID(ctx context.Context, id uuid.UUID) (*contragent.Contragent, error) {
	items, err := g.queryContragents(ctx, contragentFindQuery+" WHERE c.id = $1", id)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to query contragent with id: %s", id))
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("id: %s: %w", id, contragent.ErrNotFound)
	}
	return items[0], nil
}

func (g *PgContragentRepository) Create(ctx context.Context, data *contragent.Contragent) (*contragent.Contragent, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	m, err := ToDBContragent(data)
	if err != nil {
		return nil, err
	}
	fields := []string{
		"id",
		"type",
		"name",
		"email",
		"phone",
		"address",
		"contact_person",
		"notes",
		"details",
		"created_at",
		"updated_at",
	}
	values := []interface{}{
		m.ID,
		m.Type,
		m.Name,
		m.Email,
		m.Phone,
		m.Address,
		m.ContactPerson,
		m.Notes,
		m.Details,
		m.CreatedAt,
		m.UpdatedAt,
	}
	if _, err := tx.Exec(ctx, repo.Insert("contragents", fields), values...); err != nil {
		return nil, errors.Wrap(err, "failed to insert contragent")
	}
	return g.GetByID(ctx, m.ID)
}

func (g *PgContragentRepository) Update(ctx context.Context, data *contragent.Contragent) (*contragent.Contragent, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	m, err := ToDBContragent(data)
	if err != nil {
		return nil, err
	}
	fields := []string{
		"type",
		"name",
		"email",
		"phone",
		"address",
		"contact_person",
		"notes",
		"details",
		"updated_at",
	}
	values := []interface{}{
		m.Type,
		m.Name,
		m.Email,
		m.Phone,
		m.Address,
		m.ContactPerson,
		m.Notes,
		m.Details,
		m.UpdatedAt,
		m.ID,
	}
	tag, err := tx.Exec(ctx, repo.Update("contragents", fields, fmt.Sprintf("id = $%d", len(values))), values...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update contragent")
	}
	if tag.RowsAffected() == 0 {
		return nil, contragent.ErrNotFound
	}
	return g.GetByID(ctx, m.ID)
}

func (g *PgContragentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, contragentDeleteQuery, id)
	if err != nil {
		if repo.IsForeignKeyViolation(err, "") {
			return contragent.ErrInUse
		}
		return errors.Wrap(err, "failed to delete contragent")
	}
	if tag.RowsAffected() == 0 {
		return contragent.ErrNotFound
	}
	return nil
}

func (g *PgContragentRepository) queryContragents(ctx context.Context, query string, args ...interface{}) ([]*contragent.Contragent, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var out []*contragent.Contragent
	for rows.Next() {
		var m models.Contragent
		if err := rows.Scan(
			&m.ID,
			&m.Type,
			&m.Name,
			&m.Email,
			&m.Phone,
			&m.Address,
			&m.ContactPerson,
			&m.Notes,
			&m.Details,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan contragent row")
		}
		c, err := ToDomainContragent(&m)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return out, nil
}
