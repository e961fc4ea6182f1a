package oauth

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// Option names understood by the providers.
const (
	OptClientID                = "clientId"
	OptClientSecret            = "clientSecret"
	OptURLAuthorize            = "urlAuthorize"
	OptURLAccessToken          = "urlAccessToken"
	OptURLResourceOwnerDetails = "urlResourceOwnerDetails"
	OptSignInButtonLabel       = "signInButtonLabel"
	OptGraphAPIVersion         = "graphApiVersion"
	OptScopes                  = "scopes"
	OptUsePKCE                 = "usePkce"
)

// OptionalOptions can be set for every provider but are never required.
var OptionalOptions = []string{OptScopes, OptSignInButtonLabel, OptUsePKCE}

// Provider is an OAuth2 authorization provider that yields a canonical Identity.
//
// An instance serves a single login attempt: AuthorizationURL generates the state of that attempt.
type Provider interface {
	// Name is the registry key of the provider, example: "Github".
	Name() string
	// SignInLabel is shown on the sign-in button.
	SignInLabel() string

	// AuthorizationURL returns the consent page URL of the provider.
	// Every call generates a fresh state (and a PKCE verifier if enabled).
	AuthorizationURL() string
	// State returns the state generated by the last AuthorizationURL call.
	State() string
	// CodeVerifier returns the PKCE verifier generated by the last AuthorizationURL call.
	// It is empty if PKCE is disabled.
	CodeVerifier() string

	// ExchangeCode exchanges the authorization code for a token.
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*oauth2.Token, error)
	// FetchIdentity retrieves the user info with the given token and normalizes it.
	FetchIdentity(ctx context.Context, token *oauth2.Token) (Identity, error)

	// RequiredOptions are the configuration keys that must be present for this provider.
	RequiredOptions() []string
	// FieldAuthority declares which identity fields the provider is authoritative for.
	FieldAuthority() FieldAuthority
	// Validate returns a human-readable configuration error, or an empty string.
	Validate() string
	// UpdateLocalUser syncs the mandatory fields of the identity onto the local user.
	UpdateLocalUser(user LocalUser, identity Identity) []Field
}

// Options are the configured options of a provider, keyed by option name.
type Options map[string]string

// Get returns the value of the given option, or the fallback if it is empty.
func (o Options) Get(name, fallback string) string {
	if v := o[name]; v != "" {
		return v
	}
	return fallback
}

// Bool interprets the given option as a flag.
func (o Options) Bool(name string) bool {
	switch strings.ToLower(o[name]) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Config is everything a provider needs to be constructed.
type Config struct {
	// RedirectURI is the callback URL registered with the provider.
	RedirectURI string
	Options     Options
	// HTTPClient is used for all calls to the provider. Defaults to http.DefaultClient.
	HTTPClient *http.Client
}

// Definition is a statically registered provider implementation.
type Definition struct {
	// Name is the registry key.
	Name string
	// RequiredOptions must all be configured before the provider can be constructed.
	RequiredOptions []string
	// New constructs the provider. It must not perform network I/O.
	New func(cfg Config) Provider
}

// Definitions returns all provider implementations.
func Definitions() []Definition {
	return []Definition{
		{Name: GenericName, RequiredOptions: genericOptions, New: func(c Config) Provider { return NewGeneric(c) }},
		{Name: JoomlaName, RequiredOptions: joomlaOptions, New: func(c Config) Provider { return NewJoomla(c) }},
		{Name: GithubName, RequiredOptions: githubOptions, New: func(c Config) Provider { return NewGithub(c) }},
		{Name: GoogleName, RequiredOptions: googleOptions, New: func(c Config) Provider { return NewGoogle(c) }},
		{Name: FacebookName, RequiredOptions: facebookOptions, New: func(c Config) Provider { return NewFacebook(c) }},
		{Name: WordPressName, RequiredOptions: wordPressOptions, New: func(c Config) Provider { return NewWordPress(c) }},
		{Name: InstagramName, RequiredOptions: instagramOptions, New: func(c Config) Provider { return NewInstagram(c) }},
	}
}
