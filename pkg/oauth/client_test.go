package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// newTokenServer returns a token endpoint that accepts only the given code.
// If wantVerifier is not empty, the PKCE verifier must match it as well.
func newTokenServer(t *testing.T, validCode, wantVerifier string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		w.Header().Set("Content-Type", "application/json")

		if r.PostForm.Get("code") != validCode || r.PostForm.Get("code_verifier") != wantVerifier {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":             "invalid_grant",
				"error_description": "The authorization code is invalid or expired.",
			})
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "mockAccessToken",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	}))

	t.Cleanup(server.Close)
	return server
}

func genericOptionsFor(serverURL string) Options {
	return Options{
		OptClientID:                "mockClientID",
		OptClientSecret:            "mockClientSecret",
		OptURLAuthorize:            serverURL + "/authorize",
		OptURLAccessToken:          serverURL + "/token",
		OptURLResourceOwnerDetails: serverURL + "/userinfo",
	}
}

func TestClient_AuthorizationURL(t *testing.T) {
	provider := NewGeneric(Config{
		RedirectURI: "https://application.com/api/oauth2/login",
		Options:     genericOptionsFor("https://provider.com"),
	})

	authURL := provider.AuthorizationURL()
	parsed, err := url.Parse(authURL)
	require.NoError(t, err, "Expected URL parsing to succeed")

	require.Equal(t, "https://provider.com/authorize", parsed.Scheme+"://"+parsed.Host+parsed.Path)

	// Match query params.
	query := parsed.Query()
	require.Equal(t, "mockClientID", query.Get("client_id"), "Incorrect Client ID")
	require.Equal(t, "code", query.Get("response_type"), "Incorrect Response Type")
	require.Equal(t, "https://application.com/api/oauth2/login", query.Get("redirect_uri"), "Incorrect Redirect URI")
	require.Equal(t, provider.State(), query.Get("state"), "Incorrect state")
	require.Empty(t, query.Get("code_challenge"), "PKCE must be off by default")
	require.Empty(t, provider.CodeVerifier())
}

func TestClient_AuthorizationURL_UniqueState(t *testing.T) {
	for _, def := range Definitions() {
		t.Run(def.Name, func(t *testing.T) {
			provider := def.New(Config{Options: Options{OptGraphAPIVersion: "v19.0"}})

			_ = provider.AuthorizationURL()
			first := provider.State()
			_ = provider.AuthorizationURL()
			second := provider.State()

			require.NotEmpty(t, first)
			require.NotEmpty(t, second)
			require.NotEqual(t, first, second)
		})
	}
}

func TestClient_AuthorizationURL_PKCE(t *testing.T) {
	opts := genericOptionsFor("https://provider.com")
	opts[OptUsePKCE] = "1"
	opts[OptScopes] = "openid email"

	provider := NewGeneric(Config{Options: opts})
	parsed, err := url.Parse(provider.AuthorizationURL())
	require.NoError(t, err)

	require.NotEmpty(t, provider.CodeVerifier())
	require.Equal(t, "S256", parsed.Query().Get("code_challenge_method"))
	require.Equal(t, oauth2.S256ChallengeFromVerifier(provider.CodeVerifier()), parsed.Query().Get("code_challenge"))
	require.Equal(t, "openid email", parsed.Query().Get("scope"))
}

func TestClient_ExchangeCode(t *testing.T) {
	for _, tc := range []struct {
		name            string
		code            string
		verifier        string
		serverVerifier  string
		errExpected     bool
		expectedMessage string
	}{
		{
			name: "Valid code",
			code: "validCode",
		},
		{
			name:           "Valid code with PKCE",
			code:           "validCode",
			verifier:       "mockVerifier",
			serverVerifier: "mockVerifier",
		},
		{
			name:            "Invalid code",
			code:            "invalidCode",
			errExpected:     true,
			expectedMessage: "The authorization code is invalid or expired.",
		},
		{
			name:            "Wrong verifier",
			code:            "validCode",
			verifier:        "otherVerifier",
			serverVerifier:  "mockVerifier",
			errExpected:     true,
			expectedMessage: "The authorization code is invalid or expired.",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			server := newTokenServer(t, "validCode", tc.serverVerifier)
			provider := NewGeneric(Config{Options: genericOptionsFor(server.URL), HTTPClient: server.Client()})

			token, err := provider.ExchangeCode(context.Background(), tc.code, tc.verifier)
			if !tc.errExpected {
				require.NoError(t, err)
				require.Equal(t, "mockAccessToken", token.AccessToken)
				return
			}

			var ipErr *IdentityProviderError
			require.ErrorAs(t, err, &ipErr)
			require.Equal(t, GenericName, ipErr.Provider)
			require.Equal(t, OpExchange, ipErr.Op)
			require.Equal(t, tc.expectedMessage, ipErr.Message)
		})
	}
}

func TestReasonFromBody(t *testing.T) {
	for _, tc := range []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{name: "OAuth style", status: 401, body: `{"error":"invalid_token","error_description":"Token expired"}`, expected: "Token expired"},
		{name: "Error code only", status: 401, body: `{"error":"invalid_token"}`, expected: "invalid_token"},
		{name: "GitHub style", status: 401, body: `{"message":"Bad credentials"}`, expected: "Bad credentials"},
		{name: "Graph API style", status: 400, body: `{"error":{"message":"Invalid OAuth access token."}}`, expected: "Invalid OAuth access token."},
		{name: "Plain text", status: 500, body: "upstream down\n", expected: "upstream down"},
		{name: "Empty body", status: 503, body: "", expected: "503 Service Unavailable"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, reasonFromBody(tc.status, []byte(tc.body)))
		})
	}
}

func TestRawMessage(t *testing.T) {
	require.Equal(t, "boom", rawMessage(errors.New("boom")))
	require.Equal(t, "bad_code", rawMessage(&oauth2.RetrieveError{ErrorCode: "bad_code"}))
	require.Equal(t, "raw body", rawMessage(&oauth2.RetrieveError{Body: []byte("raw body")}))
	require.Equal(t, "described", rawMessage(&oauth2.RetrieveError{ErrorCode: "x", ErrorDescription: "described"}))
}

func TestIdentityProviderError(t *testing.T) {
	inner := errors.New("inner")
	err := &IdentityProviderError{Provider: "Github", Op: OpUserInfo, Message: "Bad credentials", Err: inner}
	require.Equal(t, "Github userinfo failed: Bad credentials", err.Error())
	require.ErrorIs(t, err, inner)
}
