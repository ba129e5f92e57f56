package mappers

import (
	"time"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/modules/core/domain/entities/session"
	"github.com/fleetdesk/fleetdesk/modules/core/domain/entities/upload"
	"github.com/fleetdesk/fleetdesk/modules/core/presentation/viewmodels"
	"github.com/fleetdesk/fleetdesk/modules/core/services"
	"github.com/fleetdesk/fleetdesk/pkg/types"
)

// Timestamp renders t as RFC 3339 in UTC.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func OptionalTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := Timestamp(*t)
	return &s
}

func UserToViewModel(u user.User) *viewmodels.User {
	return &viewmodels.User{
		ID:        u.ID().String(),
		Email:     u.Email(),
		FirstName: u.FirstName(),
		LastName:  u.LastName(),
		FullName:  u.FullName(),
		Phone:     u.Phone(),
		Role:      u.Role().String(),
		Active:    u.Active(),
		LastLogin: OptionalTimestamp(u.LastLogin()),
		CreatedAt: Timestamp(u.CreatedAt()),
		UpdatedAt: Timestamp(u.UpdatedAt()),
	}
}

func UsersToViewModels(users []user.User) []*viewmodels.User {
	out := make([]*viewmodels.User, 0, len(users))
	for _, u := range users {
		out = append(out, UserToViewModel(u))
	}
	return out
}

func SessionToViewModel(sess *session.Session, u user.User) *viewmodels.Session {
	return &viewmodels.Session{
		Token:     sess.Token,
		ExpiresAt: Timestamp(sess.ExpiresAt),
		User:      UserToViewModel(u),
	}
}

func UploadToViewModel(u *upload.Upload) *viewmodels.Upload {
	return &viewmodels.Upload{
		ID:        u.ID.String(),
		Hash:      u.Hash,
		Name:      u.Name,
		URL:       u.URL(),
		Size:      u.Size,
		Mimetype:  u.Mimetype,
		IsImage:   u.IsImage(),
		CreatedAt: Timestamp(u.CreatedAt),
	}
}

func DashboardToViewModel(d *services.Dashboard) *viewmodels.Dashboard {
	nav := d.Navigation
	if nav == nil {
		nav = []types.NavigationItem{}
	}
	widgets := d.Widgets
	if widgets == nil {
		widgets = map[string]any{}
	}
	return &viewmodels.Dashboard{
		Role:       d.Role.String(),
		Widgets:    widgets,
		Navigation: nav,
	}
}
