package handler

import (
	"log/slog"
	"net/http"

	"github.com/shivanshkc/oauth2client/internal/repository"
	"github.com/shivanshkc/oauth2client/internal/session"
	"github.com/shivanshkc/oauth2client/internal/utils/errutils"
	"github.com/shivanshkc/oauth2client/internal/utils/httputils"
)

// Logout ends the session of the user agent. The session cookie is cleared by the session middleware.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess := session.FromContext(ctx)
	if sess == nil {
		slog.ErrorContext(ctx, "no session in request context")
		httputils.WriteErr(w, errutils.InternalServerError())
		return
	}

	userName, err := sess.Get(ctx, sessionUserName, "")
	if err != nil {
		slog.ErrorContext(ctx, "failed to read session", "error", err)
		httputils.WriteErr(w, errutils.InternalServerError())
		return
	}

	providerName, err := sess.Get(ctx, sessionProviderName, "")
	if err != nil {
		slog.ErrorContext(ctx, "failed to read session", "error", err)
		httputils.WriteErr(w, errutils.InternalServerError())
		return
	}

	if err := sess.Destroy(ctx); err != nil {
		slog.ErrorContext(ctx, "error in Destroy call", "error", err)
		httputils.WriteErr(w, errutils.InternalServerError())
		return
	}

	if userName != "" {
		h.auditLog(ctx, repository.AuthLogEntry{
			UserName:     userName,
			ProviderName: providerName,
			Message:      "Logout: " + userName,
			RemoteAddr:   r.RemoteAddr,
		})
	}

	httputils.Write(w, http.StatusNoContent, nil, nil)
}
