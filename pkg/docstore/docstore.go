// Package docstore is a small collection/document/field store. Every
// document is a set of named JSON fields.
package docstore

import (
	"context"
	"encoding/json"

	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

var ErrNotFound = serrors.NotFound("DOCUMENT_NOT_FOUND", "document not found")

type Store interface {
	// Get returns every field of the document.
	Get(ctx context.Context, collection, key string) (map[string]json.RawMessage, error)
	GetField(ctx context.Context, collection, key, field string, dst any) error
	SetField(ctx context.Context, collection, key, field string, v any) error
	DeleteField(ctx context.Context, collection, key, field string) error
	Delete(ctx context.Context, collection, key string) error
	Ping(ctx context.Context) error
}
