package upload

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

var (
	ErrNotFound        = serrors.NotFound("UPLOAD_NOT_FOUND", "upload not found")
	ErrUnsupportedType = serrors.Invalid("UPLOAD_UNSUPPORTED_TYPE", "file type is not allowed")
	ErrTooLarge        = serrors.Invalid("UPLOAD_TOO_LARGE", "file is too large")
	ErrEmpty           = serrors.Invalid("UPLOAD_EMPTY", "file is empty")
)

// AllowedTypes are matched against the sniffed content, never the
// client-supplied header.
var AllowedTypes = []string{
	"image/png",
	"image/jpeg",
	"image/webp",
	"image/gif",
	"application/pdf",
}

type Upload struct {
	ID         uuid.UUID
	Hash       string
	Name       string
	Path       string
	Size       int64
	Mimetype   string
	UploaderID *uuid.UUID
	CreatedAt  time.Time
}

// URL is where the upload is served from.
func (u *Upload) URL() string {
	return "/uploads/" + u.Hash
}

func (u *Upload) IsImage() bool {
	return strings.HasPrefix(u.Mimetype, "image/")
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Upload, error)
	GetByHash(ctx context.Context, hash string) (*Upload, error)
	Create(ctx context.Context, u *Upload) (*Upload, error)
}

// Storage persists upload contents by relative path.
type Storage interface {
	Save(ctx context.Context, path string, data []byte) error
	Open(ctx context.Context, path string) (io.ReadSeekCloser, error)
}

type CreateDTO struct {
	File    io.Reader
	Name    string
	MaxSize int64
}

// ToEntity reads the file, sniffs its type and computes the content hash.
// The returned bytes are the file contents.
func (d *CreateDTO) ToEntity(uploaderID *uuid.UUID) (*Upload, []byte, error) {
	r := d.File
	if d.MaxSize > 0 {
		r = io.LimitReader(d.File, d.MaxSize+1)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, nil, err
	}
	data := buf.Bytes()
	if len(data) == 0 {
		return nil, nil, ErrEmpty
	}
	if d.MaxSize > 0 && int64(len(data)) > d.MaxSize {
		return nil, nil, ErrTooLarge
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), AllowedTypes...) {
		return nil, nil, ErrUnsupportedType.WithTemplateData(map[string]string{"type": mt.String()})
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	return &Upload{
		ID:         uuid.New(),
		Hash:       hash,
		Name:       strings.TrimSpace(d.Name),
		Path:       hash + mt.Extension(),
		Size:       int64(len(data)),
		Mimetype:   mt.String(),
		UploaderID: uploaderID,
		CreatedAt:  time.Now().UTC(),
	}, data, nil
}

type CreatedEvent struct {
	Result *Upload
}
