package registry

import (
	"context"
	"fmt"

	"gopkg.in/ini.v1"
)

// OptionsSource provides the flat provider configuration, keyed as "<ProviderName>_<option>".
type OptionsSource interface {
	Load(ctx context.Context) (map[string]string, error)
}

// INISource reads the provider configuration from an INI file.
//
// The file is read on every Load call, so that changes apply to the next login attempt without a restart.
type INISource struct {
	path string
}

// NewINISource returns an INISource for the given file.
func NewINISource(path string) *INISource {
	return &INISource{path: path}
}

// Load implements the OptionsSource interface.
func (s *INISource) Load(_ context.Context) (map[string]string, error) {
	file, err := ini.LoadSources(ini.LoadOptions{IgnoreInlineComment: true}, s.path)
	if err != nil {
		return nil, fmt.Errorf("error in ini.LoadSources call: %w", err)
	}

	values := map[string]string{}
	// Only the default section is used. Keys carry the provider name instead.
	for _, key := range file.Section(ini.DefaultSection).Keys() {
		values[key.Name()] = key.String()
	}

	return values, nil
}

// MapSource is an in-memory OptionsSource.
type MapSource map[string]string

// Load implements the OptionsSource interface.
func (m MapSource) Load(_ context.Context) (map[string]string, error) {
	values := make(map[string]string, len(m))
	for k, v := range m {
		values[k] = v
	}
	return values, nil
}
