package services

import (
	"context"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/entities/upload"
	"github.com/fleetdesk/fleetdesk/pkg/authz"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/eventbus"
)

func authorizeUploads(ctx context.Context, action string) error {
	return authorizeCore(ctx, uploadsAuthzObject, action)
}

type UploadService struct {
	repo      upload.Repository
	storage   upload.Storage
	publisher eventbus.EventBus
	maxSize   int64
}

func NewUploadService(repo upload.Repository, storage upload.Storage, publisher eventbus.EventBus, maxSize int64) *UploadService {
	return &UploadService{
		repo:      repo,
		storage:   storage,
		publisher: publisher,
		maxSize:   maxSize,
	}
}

func (s *UploadService) GetByHash(ctx context.Context, hash string) (*upload.Upload, error) {
	if err := authorizeUploads(ctx, authz.ActionView); err != nil {
		return nil, err
	}
	return s.repo.GetByHash(ctx, hash)
}

// GetByID is used by modules referencing uploads and is not authorized.
func (s *UploadService) GetByID(ctx context.Context, id uuid.UUID) (*upload.Upload, error) {
	return s.repo.GetByID(ctx, id)
}

// Open returns the stored contents of u.
func (s *UploadService) Open(ctx context.Context, u *upload.Upload) (io.ReadSeekCloser, error) {
	return s.storage.Open(ctx, u.Path)
}

// Create stores the file. Identical content is stored once and returns
// the existing upload.
func (s *UploadService) Create(ctx context.Context, dto *upload.CreateDTO) (*upload.Upload, error) {
	if err := authorizeUploads(ctx, authz.ActionCreate); err != nil {
		return nil, err
	}
	if dto.MaxSize == 0 {
		dto.MaxSize = s.maxSize
	}
	entity, data, err := dto.ToEntity(currentUserID(ctx))
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByHash(ctx, entity.Hash)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, upload.ErrNotFound) {
		return nil, err
	}

	if err := s.storage.Save(ctx, entity.Path, data); err != nil {
		return nil, err
	}
	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (*upload.Upload, error) {
		return s.repo.Create(txCtx, entity)
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(&upload.CreatedEvent{Result: created})
	return created, nil
}

func currentUserID(ctx context.Context) *uuid.UUID {
	u, err := composables.UseUser(ctx)
	if err != nil {
		return nil
	}
	id := u.ID()
	return &id
}
