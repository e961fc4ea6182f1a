package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/shivanshkc/oauth2client/internal/metrics"
	"github.com/shivanshkc/oauth2client/internal/registry"
	"github.com/shivanshkc/oauth2client/internal/repository"
	"github.com/shivanshkc/oauth2client/internal/utils/errutils"
	"github.com/shivanshkc/oauth2client/internal/utils/httputils"
	"github.com/shivanshkc/oauth2client/pkg/config"
	"github.com/shivanshkc/oauth2client/pkg/oauth"
)

// LoginPath is the route of the login endpoint. The provider callback lands here as well.
const LoginPath = "/api/oauth2/login"

// ProviderRegistry resolves configured providers by name.
type ProviderRegistry interface {
	ListProviders(ctx context.Context) []registry.Entry
	Registered(name string) bool
	Make(ctx context.Context, name, redirectURI string) (oauth.Provider, error)
}

// unknownProvider is the metrics label of provider names that match no provider.
const unknownProvider = "unknown"

// Handler encapsulates all REST handlers.
type Handler struct {
	config   config.Config
	registry ProviderRegistry
	repo     repository.Repository
	metrics  *metrics.Metrics

	// now is replaceable for testing purposes.
	now func() time.Time
}

// NewHandler creates a new Handler instance.
func NewHandler(conf config.Config, reg ProviderRegistry, repo repository.Repository, m *metrics.Metrics) *Handler {
	return &Handler{config: conf, registry: reg, repo: repo, metrics: m, now: time.Now}
}

// NotFound handler can be used to serve any unrecognized routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	httputils.WriteErr(w, errutils.NotFound())
}

// Health returns 200 if everything is running fine.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	info := map[string]string{}
	httputils.Write(w, http.StatusOK, nil, info)
}

// metricLabel returns the provider label of the metrics. Client supplied names never become labels.
func (h *Handler) metricLabel(providerName string) string {
	if h.registry.Registered(providerName) {
		return providerName
	}
	return unknownProvider
}

// redirectURI is the callback URL handed to the providers.
func (h *Handler) redirectURI() string {
	return h.config.Application.BaseURL + LoginPath
}
