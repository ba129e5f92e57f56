package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/fleetdesk/fleetdesk/pkg/httpapi"
)

// Resource is the CRUD surface of one collection, e.g. /api/trucks.
type Resource[T any] struct {
	client *Client
	path   string
}

func NewResource[T any](c *Client, path string) *Resource[T] {
	return &Resource[T]{client: c, path: path}
}

func (r *Resource[T]) item(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

func (r *Resource[T]) List(ctx context.Context, query url.Values) ([]T, httpapi.ListMeta, error) {
	var out []T
	meta, err := r.client.Do(ctx, http.MethodGet, r.path, query, nil, &out)
	if err != nil {
		return nil, httpapi.ListMeta{}, err
	}
	if meta == nil {
		meta = &httpapi.ListMeta{Total: int64(len(out)), Limit: len(out)}
	}
	return out, *meta, nil
}

func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	_, err := r.client.Do(ctx, http.MethodGet, r.item(id), nil, nil, &out)
	return out, err
}

func (r *Resource[T]) Create(ctx context.Context, in any) (T, error) {
	var out T
	_, err := r.client.Do(ctx, http.MethodPost, r.path, nil, in, &out)
	return out, err
}

func (r *Resource[T]) Update(ctx context.Context, id string, in any) (T, error) {
	var out T
	_, err := r.client.Do(ctx, http.MethodPut, r.item(id), nil, in, &out)
	return out, err
}

// Patch sends a JSON merge patch.
func (r *Resource[T]) Patch(ctx context.Context, id string, patch any) (T, error) {
	var out T
	_, err := r.client.Do(ctx, http.MethodPatch, r.item(id), nil, patch, &out)
	return out, err
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	_, err := r.client.Do(ctx, http.MethodDelete, r.item(id), nil, nil, nil)
	return err
}
