package handler

import (
	"log/slog"
	"net/http"

	"github.com/shivanshkc/oauth2client/internal/session"
	"github.com/shivanshkc/oauth2client/internal/utils/errutils"
	"github.com/shivanshkc/oauth2client/internal/utils/httputils"
)

// Check performs an authentication check on the given request.
// A logged-in session gets 200 with the user in the response headers, anything else 401.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess := session.FromContext(ctx)
	if sess == nil || !sess.CookiesAccepted() {
		httputils.WriteErr(w, errutils.Unauthorized())
		return
	}

	userName, err := sess.Get(ctx, sessionUserName, "")
	if err != nil {
		slog.ErrorContext(ctx, "failed to read session", "error", err)
		httputils.WriteErr(w, errutils.InternalServerError())
		return
	}

	if userName == "" {
		httputils.WriteErr(w, errutils.Unauthorized())
		return
	}

	providerName, err := sess.Get(ctx, sessionProviderName, "")
	if err != nil {
		slog.ErrorContext(ctx, "failed to read session", "error", err)
		httputils.WriteErr(w, errutils.InternalServerError())
		return
	}

	headers := map[string]string{
		"X-Auth-User":     userName,
		"X-Auth-Provider": providerName,
	}

	httputils.Write(w, http.StatusOK, headers, nil)
}
