package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// envPrefix is the prefix of all environment variables that override the config file.
const envPrefix = "OAUTH2CLIENT"

// loadWithViper reads the config file and the environment into a Config. It panics upon failure.
func loadWithViper() Config {
	// A .env file is optional. It only helps during local development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	// Environment variables, example: OAUTH2CLIENT_HTTP_SERVER_ADDR
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic(fmt.Errorf("error in viper.ReadInConfig call: %w", err))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, withYAMLTags); err != nil {
		panic(fmt.Errorf("error in viper.Unmarshal call: %w", err))
	}

	return cfg
}

// withYAMLTags makes viper honour the yaml tags of the Config struct.
func withYAMLTags(dc *mapstructure.DecoderConfig) {
	dc.TagName = "yaml"
	dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
}

// setDefaults registers every key so that AutomaticEnv can override it even if the file omits it.
func setDefaults(v *viper.Viper) {
	mock := LoadMock()

	v.SetDefault("application.name", "oauth2client")
	v.SetDefault("application.base_url", "http://localhost:8080")
	v.SetDefault("application.pprof", false)
	v.SetDefault("http_server.addr", mock.HTTPServer.Addr)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.pretty", false)
	v.SetDefault("urls.login", mock.URLs.Login)
	v.SetDefault("urls.register", mock.URLs.Register)
	v.SetDefault("urls.home", mock.URLs.Home)
	v.SetDefault("allowed_redirect_urls", []string{})
	v.SetDefault("registration.enabled", true)
	v.SetDefault("login.state_expiry", mock.Login.StateExpiry)
	v.SetDefault("providers.config_file", mock.Providers.ConfigFile)
	v.SetDefault("providers.http_timeout", mock.Providers.HTTPTimeout)
	v.SetDefault("session.backend", mock.Session.Backend)
	v.SetDefault("session.cookie_name", mock.Session.CookieName)
	v.SetDefault("session.ttl", mock.Session.TTL)
	v.SetDefault("session.redis_addr", "localhost:6379")
	v.SetDefault("session.redis_password", "")
	v.SetDefault("session.redis_db", 0)
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.migrate", true)
}
