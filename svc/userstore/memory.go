package userstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/RPalaciosDev/Project2-CST438-01-2252-sub000/pkg/auth"
)

var _ auth.Store = (*Memory)(nil)

// Memory is an in-process auth.Store. The zero value is not usable; call NewMemory.
type Memory struct {
	mu    sync.RWMutex
	users map[string]*auth.User
	now   func() time.Time
}

// MemoryOption configures a Memory store.
type MemoryOption func(*Memory)

// WithMemoryClock overrides the clock used for CreatedAt and UpdatedAt.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory returns an empty Memory store.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		users: make(map[string]*auth.User),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Len returns the number of stored accounts.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users)
}

// FindByUsername returns the account with the exact username, or auth.ErrUserNotFound.
func (m *Memory) FindByUsername(ctx context.Context, username string) (*auth.User, error) {
	return m.find(ctx, func(u *auth.User) bool { return username != "" && u.Username == username })
}

// FindByEmail returns the account with the normalized email, or auth.ErrUserNotFound.
func (m *Memory) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	email = strings.ToLower(email)
	return m.find(ctx, func(u *auth.User) bool { return email != "" && u.Email == email })
}

// FindByProvider returns the account linked to the provider identity, or auth.ErrUserNotFound.
func (m *Memory) FindByProvider(ctx context.Context, provider, providerID string) (*auth.User, error) {
	return m.find(ctx, func(u *auth.User) bool {
		return providerID != "" && u.Provider == provider && u.ProviderID == providerID
	})
}

// ExistsByUsername reports whether the username is taken.
func (m *Memory) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return m.exists(m.FindByUsername(ctx, username))
}

// ExistsByEmail reports whether the normalized email is taken.
func (m *Memory) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return m.exists(m.FindByEmail(ctx, email))
}

// Save inserts or replaces u by ID and returns the stored copy.
func (m *Memory) Save(ctx context.Context, u *auth.User) (*auth.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, auth.StoreUnavailable("save", err)
	}

	rec := prepare(u, m.now())

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, other := range m.users {
		if id == rec.ID {
			continue
		}
		switch {
		case rec.Username != "" && other.Username == rec.Username:
			return nil, auth.UniqueViolation(auth.ErrUsernameTaken)
		case rec.Email != "" && other.Email == rec.Email:
			return nil, auth.UniqueViolation(auth.ErrEmailTaken)
		case rec.ProviderID != "" && other.Provider == rec.Provider && other.ProviderID == rec.ProviderID:
			return nil, auth.UniqueViolation(ErrProviderLinked)
		}
	}

	if prev, ok := m.users[rec.ID]; ok {
		rec.CreatedAt = prev.CreatedAt
	}
	m.users[rec.ID] = rec
	u.ID, u.CreatedAt, u.UpdatedAt = rec.ID, rec.CreatedAt, rec.UpdatedAt
	return rec.Clone(), nil
}

func (m *Memory) find(ctx context.Context, match func(*auth.User) bool) (*auth.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, auth.StoreUnavailable("find", err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if match(u) {
			return u.Clone(), nil
		}
	}
	return nil, auth.ErrUserNotFound
}

func (m *Memory) exists(u *auth.User, err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case isNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

// prepare returns the record to persist for u: a copy with ID, timestamps,
// default roles and normalized email applied.
func prepare(u *auth.User, now time.Time) *auth.User {
	rec := u.Clone()
	rec.Email = auth.NormalizeEmail(rec.Email)
	if rec.ID == "" {
		rec.ID = uuid.NewString()
		rec.Enabled = true
	}
	if len(rec.Roles) == 0 {
		rec.Roles = []string{auth.RoleUser}
	}
	rec.Touch(now)
	return rec
}
