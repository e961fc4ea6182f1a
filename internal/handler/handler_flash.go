package handler

import (
	"log/slog"
	"net/http"

	"github.com/shivanshkc/oauth2client/internal/session"
	"github.com/shivanshkc/oauth2client/internal/utils/errutils"
	"github.com/shivanshkc/oauth2client/internal/utils/httputils"
)

// Flash returns the queued flash messages of the session and removes them.
func (h *Handler) Flash(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess := session.FromContext(ctx)
	if sess == nil {
		slog.ErrorContext(ctx, "no session in request context")
		httputils.WriteErr(w, errutils.InternalServerError())
		return
	}

	flashes, err := sess.PopFlashes(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "error in PopFlashes call", "error", err)
		httputils.WriteErr(w, errutils.InternalServerError())
		return
	}

	if flashes == nil {
		flashes = []session.Flash{}
	}

	httputils.Write(w, http.StatusOK, nil, flashes)
}
