package persistence

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/modules/core/domain/entities/session"
	"github.com/fleetdesk/fleetdesk/modules/core/domain/entities/upload"
	"github.com/fleetdesk/fleetdesk/modules/core/infrastructure/persistence/models"
)

func ToDomainUser(dbUser *models.User) user.User {
	opts := []user.Option{
		user.WithID(dbUser.ID),
		user.WithPhone(dbUser.Phone),
		user.WithActive(dbUser.Active),
		user.WithPasswordHash(dbUser.PasswordHash),
		user.WithCreatedAt(dbUser.CreatedAt),
		user.WithUpdatedAt(dbUser.UpdatedAt),
	}
	if dbUser.LastLogin.Valid {
		t := dbUser.LastLogin.Time
		opts = append(opts, user.WithLastLogin(&t))
	}
	return user.New(dbUser.Email, dbUser.FirstName, dbUser.LastName, user.Role(dbUser.Role), opts...)
}

func ToDBUser(u user.User) *models.User {
	var lastLogin sql.NullTime
	if t := u.LastLogin(); t != nil {
		lastLogin = sql.NullTime{Time: *t, Valid: true}
	}
	return &models.User{
		ID:           u.ID(),
		Email:        u.Email(),
		FirstName:    u.FirstName(),
		LastName:     u.LastName(),
		Phone:        u.Phone(),
		Role:         string(u.Role()),
		Active:       u.Active(),
		PasswordHash: u.PasswordHash(),
		LastLogin:    lastLogin,
		CreatedAt:    u.CreatedAt(),
		UpdatedAt:    u.UpdatedAt(),
	}
}

func ToDomainSession(s *models.Session) *session.Session {
	return &session.Session{
		Token:     s.Token,
		UserID:    s.UserID,
		IP:        s.IP,
		UserAgent: s.UserAgent,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
	}
}

func ToDBSession(s *session.Session) *models.Session {
	return &models.Session{
		Token:     s.Token,
		UserID:    s.UserID,
		IP:        s.IP,
		UserAgent: s.UserAgent,
		ExpiresAt: s.ExpiresAt,
		CreatedAt: s.CreatedAt,
	}
}

func ToDomainUpload(u *models.Upload) *upload.Upload {
	out := &upload.Upload{
		ID:        u.ID,
		Hash:      u.Hash,
		Name:      u.Name,
		Path:      u.Path,
		Size:      u.Size,
		Mimetype:  u.Mimetype,
		CreatedAt: u.CreatedAt,
	}
	if u.UploaderID.Valid {
		id := u.UploaderID.UUID
		out.UploaderID = &id
	}
	return out
}

func ToDBUpload(u *upload.Upload) *models.Upload {
	var uploader uuid.NullUUID
	if u.UploaderID != nil {
		uploader = uuid.NullUUID{UUID: *u.UploaderID, Valid: true}
	}
	return &models.Upload{
		ID:         u.ID,
		Hash:       u.Hash,
		Name:       u.Name,
		Path:       u.Path,
		Size:       u.Size,
		Mimetype:   u.Mimetype,
		UploaderID: uploader,
		CreatedAt:  u.CreatedAt,
	}
}
