// Package session binds opaque browser tokens to user identities.
//
// A session cookie holds a signed token carrying a random session id.
// The store maps that id to a user id with a TTL; the full user record
// is re-fetched from the database on every resolution so that membership
// changes are visible on the next request, never cached across requests.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/memberboard/memberboard-go/internal/crypto"
	"github.com/memberboard/memberboard-go/internal/model"
	"github.com/memberboard/memberboard-go/internal/repository"
)

const keyPrefix = "session:"

// UserSource loads the current user record for a session binding.
type UserSource interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// Manager creates, resolves and destroys sessions.
type Manager struct {
	store  Store
	users  UserSource
	secret string
	ttl    time.Duration
}

// NewManager creates a session Manager signing cookies with secret and
// expiring bindings after ttl.
func NewManager(store Store, users UserSource, secret string, ttl time.Duration) *Manager {
	return &Manager{
		store:  store,
		users:  users,
		secret: secret,
		ttl:    ttl,
	}
}

// Create establishes a new session for the user and returns the signed
// cookie value. Each login gets its own session id, so one user can hold
// sessions on several devices at once.
func (m *Manager) Create(ctx context.Context, user *model.User) (string, error) {
	sessionID := uuid.NewString()

	if err := m.store.Set(ctx, keyPrefix+sessionID, strconv.FormatInt(user.ID, 10), m.ttl); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}

	token, err := crypto.SignSessionID(sessionID, m.secret, m.ttl)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}

	return token, nil
}

// Resolve maps a cookie value back to the user it belongs to. A missing,
// tampered or expired token resolves to nil (anonymous), not an error;
// errors are reserved for backend failures.
func (m *Manager) Resolve(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, nil
	}

	sessionID, err := crypto.ParseSessionID(token, m.secret)
	if err != nil {
		return nil, nil
	}

	val, found, err := m.store.Get(ctx, keyPrefix+sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if !found {
		return nil, nil
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return nil, nil
	}

	user, err := m.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading session user: %w", err)
	}

	return user, nil
}

// Destroy removes the session binding for the cookie value. Destroying
// an unknown or malformed token is a no-op.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	sessionID, err := crypto.ParseSessionID(token, m.secret)
	if err != nil {
		return nil
	}

	return m.store.Del(ctx, keyPrefix+sessionID)
}
