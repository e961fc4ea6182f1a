package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shivanshkc/oauth2client/internal/repository"
	"github.com/shivanshkc/oauth2client/internal/session"
	"github.com/shivanshkc/oauth2client/pkg/oauth"
)

// Session keys of a logged-in user.
const (
	sessionUserID       = "user_id"
	sessionUserName     = "user_name"
	sessionProviderName = "provider_name"
	sessionLanguage     = "language"
	sessionTheme        = "theme"
)

// localLogin logs the local user in, after checking that the session and the account allow it.
// Every rejection is written to the audit log.
func (h *Handler) localLogin(ctx context.Context, sess *session.Session, provider oauth.Provider,
	user *repository.User, identifier string, identity oauth.Identity, remoteAddr string,
) error {
	audit := func(message string) {
		h.auditLog(ctx, repository.AuthLogEntry{
			UserName:     identifier,
			ProviderName: provider.Name(),
			Message:      message,
			RemoteAddr:   remoteAddr,
		})
	}

	switch {
	case !sess.CookiesAccepted():
		audit("Login failed (no session cookies): " + identifier)
		return localLoginError(msgNoCookies, errors.New("session cookie was not sent back"))
	case !user.Flag(repository.PrefEmailVerified):
		audit("Login failed (not verified by user): " + identifier)
		return localLoginError(msgNotVerified, errors.New("email is not verified"))
	case !user.Flag(repository.PrefAccountApproved):
		audit("Login failed (not approved by admin): " + identifier)
		return localLoginError(msgNotApproved, errors.New("account is not approved"))
	}

	// Sync the fields the provider is authoritative for.
	if changed := provider.UpdateLocalUser(user, identity); len(changed) > 0 {
		slog.InfoContext(ctx, "syncing local user with provider data", "id", user.ID, "fields", changed)
	}

	if user.Changed() {
		err := h.repo.UpdateUser(ctx, user)
		if errors.Is(err, repository.ErrNotFound) {
			audit("Login failed (no such user/email): " + identifier)
			return localLoginError(msgNoSuchUser, err)
		}
		if err != nil {
			return localLoginError(msgLoginUnavailable, fmt.Errorf("error in UpdateUser call: %w", err))
		}
	}

	// Mark the account as active and logged in through a provider.
	prefs := map[string]string{
		repository.PrefTimestampActive: strconv.FormatInt(h.now().Unix(), 10),
		repository.PrefOAuth2Login:     "1",
	}
	for _, key := range []string{repository.PrefTimestampActive, repository.PrefOAuth2Login} {
		if err := h.repo.SetPreference(ctx, user.ID, key, prefs[key]); err != nil {
			return localLoginError(msgLoginUnavailable, fmt.Errorf("error in SetPreference call: %w", err))
		}
		user.Preferences[key] = prefs[key]
	}

	// A new session ID for the logged-in user. The ID the user agent came with may be known to others.
	if err := sess.Regenerate(ctx); err != nil {
		return err
	}

	values := map[string]string{
		sessionUserID:       strconv.FormatInt(user.ID, 10),
		sessionUserName:     user.UserName(),
		sessionProviderName: provider.Name(),
		sessionLanguage:     user.Preference(repository.PrefLanguage, ""),
		sessionTheme:        user.Preference(repository.PrefTheme, ""),
	}
	for _, key := range []string{sessionUserID, sessionUserName, sessionProviderName, sessionLanguage, sessionTheme} {
		if err := sess.Put(ctx, key, values[key]); err != nil {
			return err
		}
	}

	audit(fmt.Sprintf("Login: %s/%s", user.UserName(), user.RealName()))
	return nil
}

// auditLog writes a line to the authentication audit log. Failures are only logged.
func (h *Handler) auditLog(ctx context.Context, entry repository.AuthLogEntry) {
	slog.InfoContext(ctx, entry.Message, "provider", entry.ProviderName, "remote_addr", entry.RemoteAddr)

	if err := h.repo.AddAuthLog(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "error in AddAuthLog call", "error", err)
	}
}
