package main

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/shivanshkc/oauth2client/internal/registry"
)

func TestPrintProviders(t *testing.T) {
	source := registry.MapSource{
		"Github_clientId":          "mockClientID",
		"Github_clientSecret":      "mockClientSecret",
		"Github_signInButtonLabel": "Sign in with GitHub",
		"Instagram_clientId":       "mockClientID",
	}

	out := &bytes.Buffer{}
	cmd := &cobra.Command{}
	cmd.SetOut(out)
	cmd.SetContext(context.Background())

	require.NoError(t, printProviders(cmd, registry.New(source, http.DefaultClient)))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	// Header plus one line per built-in provider.
	require.Len(t, lines, 8)
	require.True(t, strings.HasPrefix(lines[0], "KEY"))

	var github, instagram string
	for _, line := range lines[1:] {
		switch {
		case strings.HasPrefix(line, "Github "):
			github = line
		case strings.HasPrefix(line, "Instagram "):
			instagram = line
		}
	}

	require.Contains(t, github, "Sign in with GitHub")
	require.Contains(t, github, "configured")
	require.Contains(t, instagram, "incomplete provider configuration")
}
