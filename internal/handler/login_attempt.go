package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shivanshkc/oauth2client/internal/session"
)

// loginAttemptKey is the session key of the running login attempt.
const loginAttemptKey = "login_attempt"

// LoginAttempt is the state of one login attempt, kept in the session between the two legs of the flow.
type LoginAttempt struct {
	ProviderName string `json:"provider_name"`
	// TargetURL is where the user goes after a successful login.
	TargetURL string `json:"target_url"`
	// State is the anti-forgery token handed to the provider. It is single use.
	State        string    `json:"state,omitempty"`
	CodeVerifier string    `json:"code_verifier,omitempty"`
	IssuedAt     time.Time `json:"issued_at"`
}

// clearState invalidates the state of the attempt.
func (a *LoginAttempt) clearState() {
	a.State, a.CodeVerifier, a.IssuedAt = "", "", time.Time{}
}

// expired reports whether the state is older than the given expiry.
func (a *LoginAttempt) expired(now time.Time, expiry time.Duration) bool {
	return expiry > 0 && now.Sub(a.IssuedAt) > expiry
}

// loadAttempt returns the login attempt of the session. An absent or corrupt attempt is returned as a zero value.
func loadAttempt(ctx context.Context, sess *session.Session) (LoginAttempt, error) {
	encoded, err := sess.Get(ctx, loginAttemptKey, "")
	if err != nil || encoded == "" {
		return LoginAttempt{}, err
	}

	var attempt LoginAttempt
	if err := json.Unmarshal([]byte(encoded), &attempt); err != nil {
		slog.WarnContext(ctx, "discarding corrupt login attempt", "error", err)
		return LoginAttempt{}, nil
	}

	return attempt, nil
}

// saveAttempt stores the login attempt in the session.
func saveAttempt(ctx context.Context, sess *session.Session, attempt LoginAttempt) error {
	encoded, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("error in json.Marshal call: %w", err)
	}
	return sess.Put(ctx, loginAttemptKey, string(encoded))
}

// clearAttempt removes the login attempt from the session.
func clearAttempt(ctx context.Context, sess *session.Session) error {
	return sess.Forget(ctx, loginAttemptKey)
}
