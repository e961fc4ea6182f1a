package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/shivanshkc/oauth2client/internal/metrics"
	"github.com/shivanshkc/oauth2client/internal/registry"
	"github.com/shivanshkc/oauth2client/internal/session"
	"github.com/shivanshkc/oauth2client/pkg/config"
	"github.com/shivanshkc/oauth2client/pkg/oauth"
)

const (
	mValidCode   = "validCode"
	mAccessToken = "mockAccessToken"
	mTarget      = "/dashboard"
)

// fakeProvider is an OAuth2 server that accepts mValidCode and serves the configured user info.
type fakeProvider struct {
	server *httptest.Server

	mu          sync.Mutex
	accessToken string
	userInfo    map[string]any
	// revoked makes the user info endpoint reject every token.
	revoked bool
}

func (fp *fakeProvider) setAccessToken(token string) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.accessToken = token
}

func (fp *fakeProvider) revokeTokens() {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	fp.revoked = true
}

func newFakeProvider(t *testing.T, userInfo map[string]any) *fakeProvider {
	t.Helper()
	fp := &fakeProvider{accessToken: mAccessToken, userInfo: userInfo}

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		fp.mu.Lock()
		defer fp.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if err := r.ParseForm(); err != nil || r.PostForm.Get("code") != mValidCode {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":             "invalid_grant",
				"error_description": "Code was already redeemed.",
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": fp.accessToken, "token_type": "Bearer"})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		fp.mu.Lock()
		defer fp.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if fp.revoked || r.Header.Get("Authorization") != "Bearer "+fp.accessToken {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_token", "error_description": "Token revoked"})
			return
		}
		_ = json.NewEncoder(w).Encode(fp.userInfo)
	})

	fp.server = httptest.NewServer(mux)
	t.Cleanup(fp.server.Close)
	return fp
}

// options returns the provider options that point the Generic provider to the fake server.
func (fp *fakeProvider) options() registry.MapSource {
	return registry.MapSource{
		"Generic_clientId":                "mockClientID",
		"Generic_clientSecret":            "mockClientSecret",
		"Generic_urlAuthorize":            fp.server.URL + "/authorize",
		"Generic_urlAccessToken":          fp.server.URL + "/token",
		"Generic_urlResourceOwnerDetails": fp.server.URL + "/userinfo",
	}
}

// testEnv bundles a Handler with its collaborators.
type testEnv struct {
	handler  *Handler
	repo     *mockRepository
	store    *session.MemoryStore
	provider *fakeProvider
}

func newTestEnv(t *testing.T, userInfo map[string]any) *testEnv {
	t.Helper()

	fp := newFakeProvider(t, userInfo)
	reg := registry.New(fp.options(), fp.server.Client())
	return newTestEnvWithRegistry(t, fp, reg)
}

func newTestEnvWithRegistry(t *testing.T, fp *fakeProvider, reg ProviderRegistry) *testEnv {
	t.Helper()

	repo := &mockRepository{}
	t.Cleanup(func() { repo.AssertExpectations(t) })

	return &testEnv{
		handler:  NewHandler(config.LoadMock(), reg, repo, metrics.New(prometheus.NewRegistry())),
		repo:     repo,
		store:    session.NewMemoryStore(time.Hour),
		provider: fp,
	}
}

// session returns a session of the env's store. A fresh session did not send a cookie.
func (e *testEnv) session(id string, fresh bool) *session.Session {
	return session.New(id, e.store, fresh)
}

// login calls the Login handler with the given query.
func (e *testEnv) login(sess *session.Session, query url.Values) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, LoginPath+"?"+query.Encode(), nil)
	r = r.WithContext(session.WithSession(r.Context(), sess))

	w := httptest.NewRecorder()
	e.handler.Login(w, r)
	return w
}

// start runs the first leg of the flow and returns the state handed to the provider.
func (e *testEnv) start(t *testing.T, sess *session.Session) string {
	t.Helper()

	w := e.login(sess, url.Values{"provider_name": {oauth.GenericName}, "url": {mTarget}})
	require.Equal(t, http.StatusFound, w.Code)

	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	return location.Query().Get("state")
}

// callback runs the second leg of the flow.
func (e *testEnv) callback(sess *session.Session, code, state string) *httptest.ResponseRecorder {
	return e.login(sess, url.Values{"code": {code}, "state": {state}})
}

// requireLoginRedirect asserts a redirect to the login page that preserves the target, with the given flash error.
func requireLoginRedirect(t *testing.T, w *httptest.ResponseRecorder, sess *session.Session, target, errMsg string) {
	t.Helper()

	require.Equal(t, http.StatusFound, w.Code)
	expected := "/login"
	if target != "" {
		expected += "?" + url.Values{"url": {target}}.Encode()
	}
	require.Equal(t, expected, w.Header().Get("Location"))

	flashes, err := sess.PopFlashes(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, flashes)

	last := flashes[len(flashes)-1]
	require.Equal(t, session.FlashError, last.Level)
	require.Equal(t, errMsg, last.Message)
}

// storedAttempt returns the login attempt of the session.
func storedAttempt(t *testing.T, sess *session.Session) LoginAttempt {
	t.Helper()
	attempt, err := loadAttempt(context.Background(), sess)
	require.NoError(t, err)
	return attempt
}

// defaultUserInfo is the user info of the fake provider unless a test says otherwise.
func defaultUserInfo() map[string]any {
	return map[string]any{"id": 1, "username": "jdoe", "name": "John Doe", "email": "jdoe@example.com"}
}

// newFormRequest returns a POST request to the login endpoint with a form body.
// A nil session is not attached to the context.
func newFormRequest(sess *session.Session, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, LoginPath, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sess != nil {
		r = r.WithContext(session.WithSession(r.Context(), sess))
	}
	return r
}

// pendingRegistration fetches the registration data of the session through the Registration handler.
func pendingRegistration(t *testing.T, env *testEnv, sess *session.Session) Registration {
	t.Helper()

	r := httptest.NewRequest(http.MethodGet, "/api/oauth2/registration", nil)
	r = r.WithContext(session.WithSession(r.Context(), sess))

	w := httptest.NewRecorder()
	env.handler.Registration(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	var registration Registration
	require.NoError(t, json.NewDecoder(w.Body).Decode(&registration))
	return registration
}
