package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/shivanshkc/oauth2client/internal/handler"
	"github.com/shivanshkc/oauth2client/internal/metrics"
	"github.com/shivanshkc/oauth2client/internal/middleware"
	"github.com/shivanshkc/oauth2client/internal/registry"
	"github.com/shivanshkc/oauth2client/internal/repository"
	"github.com/shivanshkc/oauth2client/internal/session"
	"github.com/shivanshkc/oauth2client/pkg/config"
)

// stubRepository knows at most one user, who is verified and approved.
type stubRepository struct {
	userName string
}

func (s stubRepository) FindUserByIdentifier(_ context.Context, identifier string) (*repository.User, error) {
	if s.userName == "" {
		return nil, repository.ErrNotFound
	}

	user := repository.NewUser(7, s.userName, "John Doe", identifier)
	user.Preferences[repository.PrefEmailVerified] = "1"
	user.Preferences[repository.PrefAccountApproved] = "1"
	return user, nil
}

func (stubRepository) UpdateUser(context.Context, *repository.User) error         { return nil }
func (stubRepository) SetPreference(context.Context, int64, string, string) error { return nil }
func (stubRepository) AddAuthLog(context.Context, repository.AuthLogEntry) error  { return nil }

// newOAuthServer serves the token and user info endpoints of a Generic provider.
func newOAuthServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "mockAccessToken", "token_type": "Bearer"})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"id": 7, "username": "jdoe", "email": "jdoe@example.com"})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestServer(t *testing.T, repo repository.Repository) *Server {
	t.Helper()

	oauthServer := newOAuthServer(t)
	source := registry.MapSource{
		"Generic_clientId":                "mockClientID",
		"Generic_clientSecret":            "mockClientSecret",
		"Generic_urlAuthorize":            oauthServer.URL + "/authorize",
		"Generic_urlAccessToken":          oauthServer.URL + "/token",
		"Generic_urlResourceOwnerDetails": oauthServer.URL + "/userinfo",
	}

	conf := config.LoadMock()
	promRegistry := prometheus.NewRegistry()

	return &Server{
		Config: conf,
		Middleware: middleware.Middleware{
			AllowedOrigins: conf.AllowedRedirectURLs,
			SessionStore:   session.NewMemoryStore(time.Hour),
			CookieName:     conf.Session.CookieName,
			SessionTTL:     conf.Session.TTL,
		},
		Handler: handler.NewHandler(conf, registry.New(source, oauthServer.Client()), repo,
			metrics.New(promRegistry)),
		Gatherer: promRegistry,
	}
}

func TestServer_Routes(t *testing.T) {
	router := newTestServer(t, stubRepository{}).getHandler()

	for _, tc := range []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{name: "Health", method: http.MethodGet, path: "/health", expectedStatus: http.StatusOK},
		{name: "Metrics", method: http.MethodGet, path: "/metrics", expectedStatus: http.StatusOK},
		{name: "Providers", method: http.MethodGet, path: "/api/oauth2/providers", expectedStatus: http.StatusOK},
		{name: "Flash", method: http.MethodGet, path: "/api/oauth2/flash", expectedStatus: http.StatusOK},
		{name: "Session of a new user agent", method: http.MethodGet, path: "/api/oauth2/session",
			expectedStatus: http.StatusUnauthorized},
		{name: "Login start", method: http.MethodGet, path: "/api/oauth2/login?provider_name=Generic",
			expectedStatus: http.StatusFound},
		{name: "Logout", method: http.MethodPost, path: "/api/oauth2/logout", expectedStatus: http.StatusNoContent},
		{name: "No pending registration", method: http.MethodGet, path: "/api/oauth2/registration",
			expectedStatus: http.StatusNotFound},
		{name: "Unknown route", method: http.MethodGet, path: "/api/unknown", expectedStatus: http.StatusNotFound},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			require.Equal(t, tc.expectedStatus, w.Code)
		})
	}
}

func TestServer_LoginFlow(t *testing.T) {
	router := newTestServer(t, stubRepository{}).getHandler()

	// First leg: the user agent has no session yet.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/oauth2/login?provider_name=Generic", nil))
	require.Equal(t, http.StatusFound, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)

	// Second leg: the provider redirects back with the session cookie.
	query := url.Values{"code": {"mockCode"}, "state": {state}}
	r := httptest.NewRequest(http.MethodGet, "/api/oauth2/login?"+query.Encode(), nil)
	r.AddCookie(cookies[0])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	require.Equal(t, http.StatusFound, w.Code)

	// The repository knows no users, so the user is sent to the registration page.
	location, err = url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/register", location.Path)
	require.Equal(t, "jdoe@example.com", location.Query().Get("email"))
	require.Equal(t, "jdoe", location.Query().Get("username"))
}

// serve sends a request with the given cookie through the router.
func serve(router http.Handler, method, target string, cookie *http.Cookie) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, target, nil)
	if cookie != nil {
		r.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

// sessionCookie returns the session cookie set by the response.
func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == config.LoadMock().Session.CookieName {
			return cookie
		}
	}

	require.Fail(t, "no session cookie in response")
	return nil
}

func TestServer_LoginRotatesPlantedSession(t *testing.T) {
	router := newTestServer(t, stubRepository{userName: "jdoe"}).getHandler()

	// A session ID chosen by someone else.
	planted := &http.Cookie{Name: config.LoadMock().Session.CookieName, Value: uuid.NewString()}

	w := serve(router, http.MethodGet, "/api/oauth2/login?provider_name=Generic", planted)
	require.Equal(t, http.StatusFound, w.Code)

	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)

	query := url.Values{"code": {"mockCode"}, "state": {location.Query().Get("state")}}
	w = serve(router, http.MethodGet, "/api/oauth2/login?"+query.Encode(), planted)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))

	issued := sessionCookie(t, w)
	require.NotEqual(t, planted.Value, issued.Value)

	// The planted ID is not logged in.
	w = serve(router, http.MethodGet, "/api/oauth2/session", planted)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// The issued one is.
	w = serve(router, http.MethodGet, "/api/oauth2/session", issued)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "jdoe", w.Header().Get("X-Auth-User"))

	// Logout clears the cookie and ends the session.
	w = serve(router, http.MethodPost, "/api/oauth2/logout", issued)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Empty(t, sessionCookie(t, w).Value)

	w = serve(router, http.MethodGet, "/api/oauth2/session", issued)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
