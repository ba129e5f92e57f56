package persistence

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/entities/upload"
)

// FSStorage keeps upload contents under a root directory.
type FSStorage struct {
	root string
}

func NewFSStorage(root string) (*FSStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve uploads path")
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create uploads directory")
	}
	return &FSStorage{root: abs}, nil
}

func (s *FSStorage) resolve(path string) (string, error) {
	full := filepath.Join(s.root, filepath.Clean("/"+path))
	if !strings.HasPrefix(full, s.root+string(os.PathSeparator)) {
		return "", upload.ErrNotFound
	}
	return full, nil
}

// Save writes data atomically. Existing files are left untouched since
// paths are content addressed.
func (s *FSStorage) Save(ctx context.Context, path string, data []byte) error {
	full, err := s.resolve(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(full); err == nil {
		return nil
	}
	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "failed to write upload")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close upload")
	}
	return os.Rename(tmp.Name(), full)
}

func (s *FSStorage) Open(ctx context.Context, path string) (io.ReadSeekCloser, error) {
	full, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if errors.Is(err, os.ErrNotExist) {
		return nil, upload.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to open upload")
	}
	return f, nil
}
