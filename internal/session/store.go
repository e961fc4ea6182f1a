package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Store for an absent key.
var ErrNotFound = errors.New("session value not found")

// Store persists the key/value pairs of all sessions.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put sets the value of a key in the given session and refreshes the session's expiry.
	Put(ctx context.Context, sessionID, key, value string) error
	// Get returns the value of a key in the given session, or ErrNotFound.
	Get(ctx context.Context, sessionID, key string) (string, error)
	// Forget removes a key from the given session. Removing an absent key is not an error.
	Forget(ctx context.Context, sessionID, key string) error
	// Rename moves all the values of a session to a new ID. Renaming an absent session is not an error.
	Rename(ctx context.Context, oldID, newID string) error
	// Delete removes a session with all its values.
	Delete(ctx context.Context, sessionID string) error
}
