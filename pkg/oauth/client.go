package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"golang.org/x/oauth2"

	"github.com/shivanshkc/oauth2client/internal/utils/httputils"
)

// maxErrorBody limits how much of a failed response is kept as the error reason.
const maxErrorBody = 1 << 10

// clientParams are the provider specific inputs of newClient.
type clientParams struct {
	name            string
	requiredOptions []string
	authority       FieldAuthority
	endpoint        oauth2.Endpoint
	userInfoURL     string
	defaultScopes   []string
}

// client implements everything a Provider needs except for the user info mapping.
// The provider variants embed it.
type client struct {
	name            string
	label           string
	requiredOptions []string
	authority       FieldAuthority
	userInfoURL     string
	usePKCE         bool

	oauthConfig *oauth2.Config
	httpClient  *http.Client

	// Generated per AuthorizationURL call.
	state    string
	verifier string
}

func newClient(cfg Config, params clientParams) *client {
	scopes := params.defaultScopes
	if s := cfg.Options[OptScopes]; s != "" {
		scopes = strings.Fields(s)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &client{
		name:            params.name,
		label:           cfg.Options.Get(OptSignInButtonLabel, params.name),
		requiredOptions: params.requiredOptions,
		authority:       params.authority,
		userInfoURL:     params.userInfoURL,
		usePKCE:         cfg.Options.Bool(OptUsePKCE),
		httpClient:      httpClient,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.Options[OptClientID],
			ClientSecret: cfg.Options[OptClientSecret],
			Endpoint:     params.endpoint,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       scopes,
		},
	}
}

func (c *client) Name() string {
	return c.name
}

func (c *client) SignInLabel() string {
	return c.label
}

func (c *client) AuthorizationURL() string {
	c.state = uuid.NewString()
	c.verifier = ""

	var opts []oauth2.AuthCodeOption
	if c.usePKCE {
		c.verifier = oauth2.GenerateVerifier()
		opts = append(opts, oauth2.S256ChallengeOption(c.verifier))
	}

	return c.oauthConfig.AuthCodeURL(c.state, opts...)
}

func (c *client) State() string {
	return c.state
}

func (c *client) CodeVerifier() string {
	return c.verifier
}

func (c *client) ExchangeCode(ctx context.Context, code, codeVerifier string) (*oauth2.Token, error) {
	var opts []oauth2.AuthCodeOption
	if codeVerifier != "" {
		opts = append(opts, oauth2.VerifierOption(codeVerifier))
	}

	token, err := c.oauthConfig.Exchange(c.withHTTPClient(ctx), code, opts...)
	if err != nil {
		return nil, newIdentityProviderError(c.name, OpExchange, err)
	}

	return token, nil
}

func (c *client) RequiredOptions() []string {
	return c.requiredOptions
}

func (c *client) FieldAuthority() FieldAuthority {
	return c.authority
}

func (c *client) Validate() string {
	return c.authority.Validate()
}

func (c *client) UpdateLocalUser(user LocalUser, identity Identity) []Field {
	return c.authority.Apply(user, identity)
}

// withHTTPClient makes the oauth2 package use the configured HTTP client.
func (c *client) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// resourceOwner fetches the user info object of the token's owner from the given URL.
func (c *client) resourceOwner(ctx context.Context, token *oauth2.Token, url string) (map[string]any, error) {
	var raw map[string]any
	if err := c.getJSON(ctx, token, url, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// getJSON performs an authenticated GET request and decodes the JSON response into the target.
func (c *client) getJSON(ctx context.Context, token *oauth2.Token, url string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return newIdentityProviderError(c.name, OpUserInfo, fmt.Errorf("error in http.NewRequestWithContext call: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.oauthConfig.Client(c.withHTTPClient(ctx), token).Do(req)
	if err != nil {
		return newIdentityProviderError(c.name, OpUserInfo, fmt.Errorf("error in httpClient.Do call: %w", err))
	}
	// Close response body upon return.
	defer func() { _ = res.Body.Close() }()

	if !httputils.Is2xx(res.StatusCode) {
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return &IdentityProviderError{
			Provider: c.name,
			Op:       OpUserInfo,
			Message:  reasonFromBody(res.StatusCode, body),
			Err:      fmt.Errorf("request failed with status code: %d", res.StatusCode),
		}
	}

	decoder := json.NewDecoder(res.Body)
	// Numeric ids must not be turned into floats.
	decoder.UseNumber()

	if err := decoder.Decode(target); err != nil {
		return newIdentityProviderError(c.name, OpUserInfo, fmt.Errorf("error in json Decode call: %w", err))
	}

	return nil
}

// invalidUserData is returned when the user info lacks the data needed to identify the user.
func (c *client) invalidUserData(raw map[string]any) error {
	encoded, _ := json.Marshal(raw)
	return &IdentityProviderError{
		Provider: c.name,
		Op:       OpUserInfo,
		Message: "Invalid user data received from the authorization provider: " + string(encoded) +
			". Check the setting for " + OptURLResourceOwnerDetails + " in the provider configuration.",
		Err: errors.New("user info has no id"),
	}
}

// reasonFromBody extracts a human-readable reason from a failed user info response.
func reasonFromBody(status int, body []byte) string {
	var payload struct {
		Error            any    `json:"error"`
		ErrorDescription string `json:"error_description"`
		Message          string `json:"message"`
	}

	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.ErrorDescription != "":
			return payload.ErrorDescription
		case payload.Message != "":
			return payload.Message
		}

		switch e := payload.Error.(type) {
		case string:
			if e != "" {
				return e
			}
		// Graph API style: {"error": {"message": "..."}}
		case map[string]any:
			if msg, ok := e["message"].(string); ok && msg != "" {
				return msg
			}
		}
	}

	if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
		return trimmed
	}

	return fmt.Sprintf("%d %s", status, http.StatusText(status))
}

// decodeUserData maps the raw user info onto a provider specific struct with json tags.
// Numbers and strings are converted into each other as needed.
func decodeUserData(raw map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		TagName:          "json",
		Result:           target,
	})
	if err != nil {
		return fmt.Errorf("error in mapstructure.NewDecoder call: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("error in decoder.Decode call: %w", err)
	}

	return nil
}
