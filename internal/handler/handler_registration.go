package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shivanshkc/oauth2client/internal/session"
	"github.com/shivanshkc/oauth2client/internal/utils/errutils"
	"github.com/shivanshkc/oauth2client/internal/utils/httputils"
)

// registrationKey is the session key of the identity handed over to the registration page.
const registrationKey = "registration"

// Registration is the identity of an unknown user, kept for the registration page.
type Registration struct {
	UserName string `json:"username"`
	RealName string `json:"realname"`
	Email    string `json:"email"`
	// Password is the access token, usable as an initial password.
	Password     string `json:"password"`
	ProviderName string `json:"provider_name"`
}

func saveRegistration(ctx context.Context, sess *session.Session, registration Registration) error {
	encoded, err := json.Marshal(registration)
	if err != nil {
		return fmt.Errorf("error in json.Marshal call: %w", err)
	}
	return sess.Put(ctx, registrationKey, string(encoded))
}

// Registration returns the pending registration data of the session. It can be fetched only once.
func (h *Handler) Registration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess := session.FromContext(ctx)
	if sess == nil {
		slog.ErrorContext(ctx, "no session in request context")
		httputils.WriteErr(w, errutils.InternalServerError())
		return
	}

	encoded, err := sess.Get(ctx, registrationKey, "")
	if err != nil {
		slog.ErrorContext(ctx, "failed to read session", "error", err)
		httputils.WriteErr(w, errutils.InternalServerError())
		return
	}

	if encoded == "" {
		httputils.WriteErr(w, errutils.NotFound().WithReasonStr("no pending registration"))
		return
	}

	if err := sess.Forget(ctx, registrationKey); err != nil {
		slog.ErrorContext(ctx, "failed to update session", "error", err)
		httputils.WriteErr(w, errutils.InternalServerError())
		return
	}

	var registration Registration
	if err := json.Unmarshal([]byte(encoded), &registration); err != nil {
		slog.ErrorContext(ctx, "discarding corrupt registration data", "error", err)
		httputils.WriteErr(w, errutils.NotFound().WithReasonStr("no pending registration"))
		return
	}

	httputils.Write(w, http.StatusOK, nil, registration)
}
