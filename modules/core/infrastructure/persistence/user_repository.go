package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/modules/core/infrastructure/persistence/models"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/repo"
)

const (
	userFindQuery = `
        SELECT
            u.id,
            u.email,
            u.first_name,
            u.last_name,
            u.phone,
            u.role,
            u.active,
            u.password_hash,
            u.last_login,
            u.created_at,
            u.updated_at
        FROM users u`

	userCountQuery = `SELECT COUNT(u.id) FROM users u`

	userCountByRoleQuery = `SELECT role, COUNT(*) FROM users GROUP BY role`

	userUpdateLastLoginQuery = `UPDATE users SET last_login = NOW() WHERE id = $1`

	userDeleteQuery = `DELETE FROM users WHERE id = $1`

	userEmailConstraint = "users_email_key"
)

type PgUserRepository struct{}

func NewUserRepository() user.Repository {
	return &PgUserRepository{}
}

// buildUserFilters ignores params.Q: free-text search is ranked in memory
// by the service.
func (g *PgUserRepository) buildUserFilters(params *user.FindParams) *repo.Where {
	where := repo.NewWhere()
	repo.Any(where, "u.role", repo.Strings(params.Roles))
	repo.Any(where, "u.id", params.IDs)
	if params.Active != nil {
		where.Eq("u.active", *params.Active)
	}
	return where
}

func (g *PgUserRepository) GetPaginated(ctx context.Context, params *user.FindParams) ([]user.User, error) {
	where := g.buildUserFilters(params)
	query := repo.Join(" ",
		userFindQuery,
		where.String(),
		"ORDER BY u.last_name, u.first_name, u.id",
		repo.FormatLimitOffset(params.Limit, params.Offset),
	)
	users, err := g.queryUsers(ctx, query, where.Args()...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get paginated users")
	}
	return users, nil
}

func (g *PgUserRepository) Count(ctx context.Context, params *user.FindParams) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}
	where := g.buildUserFilters(params)
	var count int64
	if err := tx.QueryRow(ctx, repo.Join(" ", userCountQuery, where.String()), where.Args()...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count users")
	}
	return count, nil
}

func (g *PgUserRepository) CountByRole(ctx context.Context) (map[user.Role]int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	rows, err := tx.Query(ctx, userCountByRoleQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count users by role")
	}
	defer rows.Close()

	out := make(map[user.Role]int64, len(user.Roles))
	for _, r := range user.Roles {
		out[r] = 0
	}
	for rows.Next() {
		var role string
		var n int64
		if err := rows.Scan(&role, &n); err != nil {
			return nil, errors.Wrap(err, "failed to scan role count")
		}
		out[user.Role(role)] = n
	}
	return out, rows.Err()
}

func (g *PgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	users, err := g.queryUsers(ctx, userFindQuery+" WHERE u.id = $1", id)
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to query user with id: %s", id))
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("id: %s: %w", id, user.ErrNotFound)
	}
	return users[0], nil
}

func (g *PgUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	users, err := g.queryUsers(ctx, userFindQuery+" WHERE u.email = $1", user.NormalizeEmail(email))
	if err != nil {
		return nil, errors.Wrap(err, "failed to query user by email")
	}
	if len(users) == 0 {
		return nil, user.ErrNotFound
	}
	return users[0], nil
}

func (g *PgUserRepository) Create(ctx context.Context, data user.User) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	dbUser := ToDBUser(data)
	fields := []string{
		"id",
		"email",
		"first_name",
		"last_name",
		"phone",
		"role",
		"active",
		"password_hash",
		"created_at",
		"updated_at",
	}
	values := []interface{}{
		dbUser.ID,
		dbUser.Email,
		dbUser.FirstName,
		dbUser.LastName,
		dbUser.Phone,
		dbUser.Role,
		dbUser.Active,
		dbUser.PasswordHash,
		dbUser.CreatedAt,
		dbUser.UpdatedAt,
	}
	if _, err := tx.Exec(ctx, repo.Insert("users", fields), values...); err != nil {
		if repo.IsUniqueViolation(err, userEmailConstraint) {
			return nil, user.ErrEmailTaken
		}
		return nil, errors.Wrap(err, "failed to insert user")
	}
	return g.GetByID(ctx, dbUser.ID)
}

func (g *PgUserRepository) Update(ctx context.Context, data user.User) (user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	dbUser := ToDBUser(data)
	fields := []string{
		"first_name",
		"last_name",
		"phone",
		"role",
		"active",
		"password_hash",
		"updated_at",
	}
	values := []interface{}{
		dbUser.FirstName,
		dbUser.LastName,
		dbUser.Phone,
		dbUser.Role,
		dbUser.Active,
		dbUser.PasswordHash,
		dbUser.UpdatedAt,
		dbUser.ID,
	}
	tag, err := tx.Exec(ctx, repo.Update("users", fields, fmt.Sprintf("id = $%d", len(values))), values...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update user")
	}
	if tag.RowsAffected() == 0 {
		return nil, user.ErrNotFound
	}
	return g.GetByID(ctx, dbUser.ID)
}

func (g *PgUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	if _, err := tx.Exec(ctx, userUpdateLastLoginQuery, id); err != nil {
		return errors.Wrap(err, "failed to update last login")
	}
	return nil
}

func (g *PgUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}
	tag, err := tx.Exec(ctx, userDeleteQuery, id)
	if err != nil {
		if repo.IsForeignKeyViolation(err, "") {
			return user.ErrInUse
		}
		return errors.Wrap(err, "failed to delete user")
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (g *PgUserRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]user.User, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var dbUsers []*models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(
			&u.ID,
			&u.Email,
			&u.FirstName,
			&u.LastName,
			&u.Phone,
			&u.Role,
			&u.Active,
			&u.PasswordHash,
			&u.LastLogin,
			&u.CreatedAt,
			&u.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan user row")
		}
		dbUsers = append(dbUsers, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}

	users := make([]user.User, 0, len(dbUsers))
	for _, u := range dbUsers {
		users = append(users, ToDomainUser(u))
	}
	return users, nil
}
