package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/shivanshkc/oauth2client/internal/database"
	"github.com/shivanshkc/oauth2client/internal/handler"
	httpserver "github.com/shivanshkc/oauth2client/internal/http"
	"github.com/shivanshkc/oauth2client/internal/metrics"
	"github.com/shivanshkc/oauth2client/internal/middleware"
	"github.com/shivanshkc/oauth2client/internal/registry"
	"github.com/shivanshkc/oauth2client/internal/repository"
	"github.com/shivanshkc/oauth2client/internal/session"
	"github.com/shivanshkc/oauth2client/pkg/config"
	"github.com/shivanshkc/oauth2client/pkg/logger"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	// Initialize basic dependencies.
	conf := config.Load()
	logger.Init(os.Stdout, conf.Logger.Level, conf.Logger.Pretty)

	if conf.Database.DSN == "" {
		return fmt.Errorf("database.dsn is not configured")
	}

	db, err := database.Connect(ctx, conf.Database.DSN)
	if err != nil {
		return fmt.Errorf("error in database.Connect call: %w", err)
	}
	defer func() { _ = db.Close() }()

	if conf.Database.Migrate {
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("error in database.Migrate call: %w", err)
		}
		slog.Info("database migrations applied")
	}

	store, err := newSessionStore(ctx, conf)
	if err != nil {
		return err
	}

	providerClient := &http.Client{Timeout: conf.Providers.HTTPTimeout}
	reg := registry.New(registry.NewINISource(conf.Providers.ConfigFile), providerClient)

	server := &httpserver.Server{
		Config: conf,
		Middleware: middleware.Middleware{
			AllowedOrigins: conf.AllowedRedirectURLs,
			SessionStore:   store,
			CookieName:     conf.Session.CookieName,
			SessionTTL:     conf.Session.TTL,
			SecureCookies:  strings.HasPrefix(conf.Application.BaseURL, "https://"),
		},
		Handler: handler.NewHandler(conf, reg, repository.NewRepository(db),
			metrics.New(prometheus.DefaultRegisterer)),
		Gatherer: prometheus.DefaultGatherer,
	}

	// This internally calls ListenAndServe.
	// This is a blocking call and will panic if the server is unable to start.
	server.Start()
	return nil
}

// newSessionStore creates the configured session backend.
func newSessionStore(ctx context.Context, conf config.Config) (session.Store, error) {
	switch conf.Session.Backend {
	case "memory":
		return session.NewMemoryStore(conf.Session.TTL), nil
	case "redis":
		client, err := session.NewRedisClient(ctx, conf.Session.RedisAddr, conf.Session.RedisPassword,
			conf.Session.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("error in session.NewRedisClient call: %w", err)
		}
		return session.NewRedisStore(client, conf.Session.TTL), nil
	default:
		return nil, fmt.Errorf("unknown session backend: %q", conf.Session.Backend)
	}
}
