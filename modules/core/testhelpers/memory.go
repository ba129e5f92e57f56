package testhelpers

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/fleetdesk/fleetdesk/modules/core/domain/aggregates/user"
	"github.com/fleetdesk/fleetdesk/modules/core/domain/entities/session"
	"github.com/fleetdesk/fleetdesk/modules/core/domain/entities/upload"
	"github.com/fleetdesk/fleetdesk/pkg/eventbus"
)

// Publisher records published events instead of dispatching them.
type Publisher struct {
	eventbus.EventBus
	mu     sync.Mutex
	events []any
}

func (p *Publisher) Publish(args ...any) {
	p.mu.Lock()
	p.events = append(p.events, args...)
	p.mu.Unlock()
}

func (p *Publisher) Events() []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]any(nil), p.events...)
}

type UserRepository struct {
	mu         sync.Mutex
	users      map[uuid.UUID]user.User
	LastLogins map[uuid.UUID]int
}

func NewUserRepository(users ...user.User) *UserRepository {
	r := &UserRepository{users: map[uuid.UUID]user.User{}, LastLogins: map[uuid.UUID]int{}}
	for _, u := range users {
		r.users[u.ID()] = u
	}
	return r
}

func (r *UserRepository) filtered(params *user.FindParams) []user.User {
	out := make([]user.User, 0, len(r.users))
	for _, u := range r.users {
		if len(params.Roles) > 0 && !containsRole(params.Roles, u.Role()) {
			continue
		}
		if params.Active != nil && u.Active() != *params.Active {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email() < out[j].Email() })
	return out
}

func containsRole(roles []user.Role, r user.Role) bool {
	for _, x := range roles {
		if x == r {
			return true
		}
	}
	return false
}

func (r *UserRepository) GetPaginated(ctx context.Context, params *user.FindParams) ([]user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.filtered(params)
	if params.Offset >= len(all) {
		return nil, nil
	}
	all = all[params.Offset:]
	if params.Limit > 0 && params.Limit < len(all) {
		all = all[:params.Limit]
	}
	return all, nil
}

func (r *UserRepository) Count(ctx context.Context, params *user.FindParams) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.filtered(params))), nil
}

func (r *UserRepository) CountByRole(ctx context.Context) (map[user.Role]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[user.Role]int64{}
	for _, u := range r.users {
		out[u.Role()]++
	}
	return out, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email() == user.NormalizeEmail(email) {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *UserRepository) Create(ctx context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email() == u.Email() {
			return nil, user.ErrEmailTaken
		}
	}
	r.users[u.ID()] = u
	return u, nil
}

func (r *UserRepository) Update(ctx context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID()]; !ok {
		return nil, user.ErrNotFound
	}
	r.users[u.ID()] = u
	return u, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.LastLogins[id]++
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type SessionRepository struct {
	mu       sync.Mutex
	Sessions map[string]*session.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{Sessions: map[string]*session.Session{}}
}

func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.Sessions[token]
	if !ok {
		return nil, session.ErrNotFound
	}
	return s, nil
}

func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Sessions[s.Token] = s
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.Sessions, token)
	return nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for k, s := range r.Sessions {
		if s.IsExpired() {
			delete(r.Sessions, k)
			n++
		}
	}
	return n, nil
}

type UploadRepository struct {
	mu      sync.Mutex
	uploads map[string]*upload.Upload
}

func NewUploadRepository() *UploadRepository {
	return &UploadRepository{uploads: map[string]*upload.Upload{}}
}

func (r *UploadRepository) GetByID(ctx context.Context, id uuid.UUID) (*upload.Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.uploads {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, upload.ErrNotFound
}

func (r *UploadRepository) GetByHash(ctx context.Context, hash string) (*upload.Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.uploads[hash]
	if !ok {
		return nil, upload.ErrNotFound
	}
	return u, nil
}

func (r *UploadRepository) Create(ctx context.Context, u *upload.Upload) (*upload.Upload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.uploads[u.Hash]; ok {
		return existing, nil
	}
	r.uploads[u.Hash] = u
	return u, nil
}

type Storage struct {
	mu    sync.Mutex
	files map[string][]byte
	Saves int
}

func NewStorage() *Storage {
	return &Storage{files: map[string][]byte{}}
}

func (s *Storage) Save(ctx context.Context, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Saves++
	s.files[path] = append([]byte(nil), data...)
	return nil
}

type nopCloser struct{ *bytes.Reader }

func (nopCloser) Close() error { return nil }

func (s *Storage) Open(ctx context.Context, path string) (io.ReadSeekCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.files[path]
	if !ok {
		return nil, upload.ErrNotFound
	}
	return nopCloser{bytes.NewReader(b)}, nil
}
