package handler

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/shivanshkc/oauth2client/internal/utils/httputils"
)

// providerView is a configured provider as shown in the sign-in menu.
type providerView struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	LoginURL string `json:"login_url"`
}

// Providers lists the providers that are completely and validly configured.
func (h *Handler) Providers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	views := []providerView{}
	for _, entry := range h.registry.ListProviders(ctx) {
		provider, err := h.registry.Make(ctx, entry.Key, h.redirectURI())
		if err != nil {
			slog.DebugContext(ctx, "provider is not available", "provider", entry.Key, "error", err)
			continue
		}

		if msg := provider.Validate(); msg != "" {
			slog.WarnContext(ctx, "provider has an invalid field authority", "provider", entry.Key, "error", msg)
			continue
		}

		query := url.Values{"provider_name": []string{entry.Key}}
		views = append(views, providerView{
			Key:      entry.Key,
			Label:    provider.SignInLabel(),
			LoginURL: h.redirectURI() + "?" + query.Encode(),
		})
	}

	httputils.Write(w, http.StatusOK, nil, views)
}
