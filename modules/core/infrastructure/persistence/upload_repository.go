package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/entities/upload"
	"github.com/fleetdesk/fleetdesk/modules/core/infrastructure/persistence/models"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/repo"
)

const (
	uploadFindQuery = `
        SELECT id, hash, name, path, size, mimetype, uploader_id, created_at
        FROM uploads`
)

type PgUploadRepository struct{}

func NewUploadRepository() upload.Repository {
	return &PgUploadRepository{}
}

func (g *PgUploadRepository) GetByID(ctx context.Context, id uuid.UUID) (*upload.Upload, error) {
	return g.queryOne(ctx, uploadFindQuery+" WHERE id = $1", id)
}

func (g *PgUploadRepository) GetByHash(ctx context.Context, hash string) (*upload.Upload, error) {
	return g.queryOne(ctx, uploadFindQuery+" WHERE hash = $1", hash)
}

// Create inserts the upload and returns the stored row. Content that is
// already stored resolves to the existing row.
func (g *PgUploadRepository) Create(ctx context.Context, data *upload.Upload) (*upload.Upload, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	u := ToDBUpload(data)
	q := repo.Insert("uploads", []string{"id", "hash", "name", "path", "size", "mimetype", "uploader_id", "created_at"}) +
		" ON CONFLICT (hash) DO NOTHING"
	if _, err := tx.Exec(ctx, q, u.ID, u.Hash, u.Name, u.Path, u.Size, u.Mimetype, u.UploaderID, u.CreatedAt); err != nil {
		return nil, errors.Wrap(err, "failed to insert upload")
	}
	return g.GetByHash(ctx, u.Hash)
}

func (g *PgUploadRepository) queryOne(ctx context.Context, query string, args ...interface{}) (*upload.Upload, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}
	var u models.Upload
	err = tx.QueryRow(ctx, query, args...).Scan(
		&u.ID,
		&u.Hash,
		&u.Name,
		&u.Path,
		&u.Size,
		&u.Mimetype,
		&u.UploaderID,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, upload.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to query upload")
	}
	return ToDomainUpload(&u), nil
}
