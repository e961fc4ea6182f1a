package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	content := `
application:
  name: test-app
  base_url: https://test.com
urls:
  login: /signin
login:
  state_expiry: 2m
session:
  backend: redis
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))

	// Viper looks in the working directory.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(wd) }()

	t.Setenv("OAUTH2CLIENT_HTTP_SERVER_ADDR", "0.0.0.0:9090")

	cfg := Load()
	require.Equal(t, "test-app", cfg.Application.Name)
	require.Equal(t, "https://test.com", cfg.Application.BaseURL)
	require.Equal(t, "/signin", cfg.URLs.Login)
	require.Equal(t, "/register", cfg.URLs.Register, "Expected default value")
	require.Equal(t, 2*time.Minute, cfg.Login.StateExpiry)
	require.Equal(t, "redis", cfg.Session.Backend)
	require.Equal(t, "0.0.0.0:9090", cfg.HTTPServer.Addr, "Expected env override")
	require.True(t, cfg.Registration.Enabled)
}
