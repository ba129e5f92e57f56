package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fleetdesk/fleetdesk/pkg/authz"
	"github.com/fleetdesk/fleetdesk/pkg/composables"
	"github.com/fleetdesk/fleetdesk/pkg/docstore"
	"github.com/fleetdesk/fleetdesk/pkg/serrors"
)

const SavedFiltersCollection = "saved_filters"

var (
	ErrUnknownFilterView = serrors.NotFound("FILTER_VIEW_NOT_FOUND", "unknown list view")
	ErrInvalidFilter     = serrors.Invalid("FILTER_INVALID", "filter must be a JSON object")
)

// FilterViews are the list views a filter can be saved for.
var FilterViews = []string{"trucks", "dispatches", "contragents", "users"}

// SavedFilterService keeps one filter document per user, one field per
// list view.
type SavedFilterService struct {
	store docstore.Store
}

func NewSavedFilterService(store docstore.Store) *SavedFilterService {
	return &SavedFilterService{store: store}
}

func (s *SavedFilterService) key(ctx context.Context, view string, action string) (string, error) {
	if err := authorizeCore(ctx, filtersAuthzObject, action); err != nil {
		return "", err
	}
	if !isFilterView(view) {
		return "", ErrUnknownFilterView
	}
	u, err := composables.UseUser(ctx)
	if err != nil {
		return "", err
	}
	return u.ID().String(), nil
}

func isFilterView(view string) bool {
	for _, v := range FilterViews {
		if v == view {
			return true
		}
	}
	return false
}

// Get returns the saved filter, or an empty object when none is saved.
func (s *SavedFilterService) Get(ctx context.Context, view string) (json.RawMessage, error) {
	key, err := s.key(ctx, view, authz.ActionView)
	if err != nil {
		return nil, err
	}
	var out json.RawMessage
	err = s.store.GetField(ctx, SavedFiltersCollection, key, view, &out)
	if errors.Is(err, docstore.ErrNotFound) {
		return json.RawMessage(`{}`), nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Save replaces the saved filter.
func (s *SavedFilterService) Save(ctx context.Context, view string, filter json.RawMessage) (json.RawMessage, error) {
	key, err := s.key(ctx, view, authz.ActionUpdate)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal(filter, &obj); err != nil || obj == nil {
		return nil, ErrInvalidFilter
	}
	if err := s.store.SetField(ctx, SavedFiltersCollection, key, view, obj); err != nil {
		return nil, err
	}
	return json.Marshal(obj)
}

func (s *SavedFilterService) Delete(ctx context.Context, view string) error {
	key, err := s.key(ctx, view, authz.ActionDelete)
	if err != nil {
		return err
	}
	err = s.store.DeleteField(ctx, SavedFiltersCollection, key, view)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil
	}
	return err
}
