package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Prefix scopes every key of this module within the shared session.
const Prefix = "oauth2client_"

// Session is the session of one user agent, with all keys scoped by Prefix.
type Session struct {
	id    string
	store Store
	// fresh is true if the user agent did not present a session cookie.
	fresh bool
	// destroyed is set by Destroy. The cookie of a destroyed session must be cleared.
	destroyed bool
}

// New returns the session with the given ID.
func New(id string, store Store, fresh bool) *Session {
	return &Session{id: id, store: store, fresh: fresh}
}

// ID returns the session ID.
func (s *Session) ID() string {
	return s.id
}

// CookiesAccepted reports whether the user agent sent back its session cookie.
func (s *Session) CookiesAccepted() bool {
	return !s.fresh
}

// Put sets the value of the given key.
func (s *Session) Put(ctx context.Context, key, value string) error {
	if err := s.store.Put(ctx, s.id, Prefix+key, value); err != nil {
		return fmt.Errorf("error in store.Put call: %w", err)
	}
	return nil
}

// Get returns the value of the given key, or the fallback if it is not set.
func (s *Session) Get(ctx context.Context, key, fallback string) (string, error) {
	value, err := s.store.Get(ctx, s.id, Prefix+key)
	if errors.Is(err, ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return "", fmt.Errorf("error in store.Get call: %w", err)
	}
	return value, nil
}

// Has reports whether the given key is set.
func (s *Session) Has(ctx context.Context, key string) (bool, error) {
	_, err := s.store.Get(ctx, s.id, Prefix+key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error in store.Get call: %w", err)
	}
	return true, nil
}

// Forget removes the given key.
func (s *Session) Forget(ctx context.Context, key string) error {
	if err := s.store.Forget(ctx, s.id, Prefix+key); err != nil {
		return fmt.Errorf("error in store.Forget call: %w", err)
	}
	return nil
}

// Regenerate moves the values of the session to a new random ID.
// The old ID is left without values, so whoever knew it gains nothing from the values written afterwards.
func (s *Session) Regenerate(ctx context.Context) error {
	newID := uuid.NewString()
	if err := s.store.Rename(ctx, s.id, newID); err != nil {
		return fmt.Errorf("error in store.Rename call: %w", err)
	}

	s.id = newID
	return nil
}

// Destroy removes all values of the session.
func (s *Session) Destroy(ctx context.Context) error {
	if err := s.store.Delete(ctx, s.id); err != nil {
		return fmt.Errorf("error in store.Delete call: %w", err)
	}

	s.destroyed = true
	return nil
}

// Destroyed reports whether Destroy was called.
func (s *Session) Destroyed() bool {
	return s.destroyed
}

type sessionKey struct{}

// WithSession returns a copy of the context that carries the session.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session carried by the context, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}
