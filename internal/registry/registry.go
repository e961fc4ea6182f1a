package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/shivanshkc/oauth2client/pkg/oauth"
)

var (
	// ErrUnknownProvider is returned for a name that matches no provider implementation.
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrIncompleteConfig is returned when a required option of the provider is not configured.
	ErrIncompleteConfig = errors.New("incomplete provider configuration")
)

// Entry is a provider as listed for the UI.
type Entry struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
}

// Registry maps provider names to their implementations and resolves their configuration.
type Registry struct {
	definitions map[string]oauth.Definition
	source      OptionsSource
	httpClient  *http.Client
}

// New returns a Registry of all the built-in providers.
func New(source OptionsSource, httpClient *http.Client) *Registry {
	return NewWithDefinitions(oauth.Definitions(), source, httpClient)
}

// NewWithDefinitions returns a Registry of the given provider definitions.
func NewWithDefinitions(definitions []oauth.Definition, source OptionsSource, httpClient *http.Client) *Registry {
	defMap := make(map[string]oauth.Definition, len(definitions))
	for _, def := range definitions {
		defMap[def.Name] = def
	}

	return &Registry{definitions: defMap, source: source, httpClient: httpClient}
}

// ListProviders returns all available providers, sorted by key.
// The display name is the configured sign-in label, or the key if there is none.
func (r *Registry) ListProviders(ctx context.Context) []Entry {
	values, err := r.source.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to load provider options, listing keys only", "error", err)
		values = map[string]string{}
	}

	entries := make([]Entry, 0, len(r.definitions))
	for name := range r.definitions {
		label := strings.TrimSpace(values[optionKey(name, oauth.OptSignInButtonLabel)])
		if label == "" {
			label = name
		}
		entries = append(entries, Entry{Key: name, DisplayName: label})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

// Registered reports whether a provider implementation exists for the name. It reads no configuration.
func (r *Registry) Registered(name string) bool {
	_, exists := r.definitions[name]
	return exists
}

// ResolveConfig loads the options of the named provider.
//
// It fails with ErrIncompleteConfig if any required option is missing or empty.
// A partially configured provider is never used with defaults.
func (r *Registry) ResolveConfig(ctx context.Context, name string) (oauth.Options, error) {
	def, exists := r.definitions[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}

	values, err := r.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("error in source.Load call: %w", err)
	}

	options := oauth.Options{}
	var missing []string

	for _, opt := range def.RequiredOptions {
		value := strings.TrimSpace(values[optionKey(name, opt)])
		if value == "" {
			missing = append(missing, opt)
			continue
		}
		options[opt] = value
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s is missing %s", ErrIncompleteConfig, name, strings.Join(missing, ", "))
	}

	for _, opt := range oauth.OptionalOptions {
		if value := strings.TrimSpace(values[optionKey(name, opt)]); value != "" {
			options[opt] = value
		}
	}

	return options, nil
}

// Make constructs a provider bound to the given redirect URI. It performs no network I/O.
func (r *Registry) Make(ctx context.Context, name, redirectURI string) (oauth.Provider, error) {
	options, err := r.ResolveConfig(ctx, name)
	if err != nil {
		return nil, err
	}

	return r.definitions[name].New(oauth.Config{
		RedirectURI: redirectURI,
		Options:     options,
		HTTPClient:  r.httpClient,
	}), nil
}

// optionKey returns the flat configuration key of a provider option.
func optionKey(provider, option string) string {
	return provider + "_" + option
}
