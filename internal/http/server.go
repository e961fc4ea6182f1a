package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"runtime"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shivanshkc/oauth2client/internal/handler"
	"github.com/shivanshkc/oauth2client/internal/middleware"
	"github.com/shivanshkc/oauth2client/pkg/config"
	"github.com/shivanshkc/oauth2client/pkg/utils/signals"
)

// Server is the HTTP server of this application.
type Server struct {
	Config     config.Config
	Middleware middleware.Middleware
	Handler    *handler.Handler
	// Gatherer serves the /metrics route. It is skipped if nil.
	Gatherer   prometheus.Gatherer
	httpServer *http.Server
}

// Start sets up all the dependencies and routes on the server, and calls ListenAndServe on it.
func (s *Server) Start() {
	// Create the HTTP server.
	s.httpServer = &http.Server{
		Addr:              s.Config.HTTPServer.Addr,
		ReadHeaderTimeout: time.Minute,
		Handler:           s.getHandler(),
	}

	// Gracefully shut down upon interruption.
	signals.OnSignal(func(_ os.Signal) {
		slog.Info("interruption detected, gracefully shutting down the server")
		// Graceful shutdown.
		if err := s.httpServer.Shutdown(context.Background()); err != nil {
			slog.Error("failed to gracefully shutdown the server", "err", err)
		}
	})

	slog.Info("starting http server", "name", s.Config.Application.Name, "addr", s.Config.HTTPServer.Addr)
	// Start the HTTP server.
	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		slog.Error("error in ListenAndServe call", "err", err)
		panic(err)
	}
}

// getHandler attaches middleware and REST methods to the router.
func (s *Server) getHandler() http.Handler {
	router := mux.NewRouter()

	// Attach middleware.
	router.Use(s.Middleware.Recovery)
	router.Use(s.Middleware.AccessLogger)
	router.Use(s.Middleware.CORS)
	router.Use(s.Middleware.Security)

	// Routes that need the user agent's session.
	api := router.PathPrefix("/api/oauth2").Subrouter()
	api.Use(s.Middleware.Session)

	// Sign-in, and the provider callback.
	api.HandleFunc("/login", s.Handler.Login).Methods(http.MethodGet, http.MethodPost)
	// Providers for the sign-in menu.
	api.HandleFunc("/providers", s.Handler.Providers).Methods(http.MethodGet)
	// Pending flash messages.
	api.HandleFunc("/flash", s.Handler.Flash).Methods(http.MethodGet)
	// Whether the session is logged in. Suitable for reverse proxy auth requests.
	api.HandleFunc("/session", s.Handler.Check).Methods(http.MethodGet, http.MethodHead)
	// Ends the session.
	api.HandleFunc("/logout", s.Handler.Logout).Methods(http.MethodPost)
	// One-time handover of an unknown user's data to the registration page.
	api.HandleFunc("/registration", s.Handler.Registration).Methods(http.MethodGet)

	router.HandleFunc("/health", s.Handler.Health).Methods(http.MethodGet)

	if s.Gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{})).
			Methods(http.MethodGet)
	}

	// Enable profiling if configured.
	if s.Config.Application.PProf {
		s.addProfilingRoutes(router)
	}

	// Handle 404.
	router.PathPrefix("/").HandlerFunc(s.Handler.NotFound)

	return router
}

// addProfilingRoutes adds all the pprof routes to the router.
func (s *Server) addProfilingRoutes(router *mux.Router) {
	// Enable block profiling.
	runtime.SetBlockProfileRate(1)
	// Enable mutex profiling.
	runtime.SetMutexProfileFraction(1)

	// Manually add support for paths linked to by index page at /debug/pprof
	router.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	router.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	router.Handle("/debug/pprof/threadcreate", pprof.Handler("threadcreate"))
	router.Handle("/debug/pprof/block", pprof.Handler("block"))

	router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	router.HandleFunc("/debug/pprof/profile", pprof.Profile)
	router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	router.HandleFunc("/debug/pprof/trace", pprof.Trace)
	router.HandleFunc("/debug/pprof", pprof.Index)

	slog.Info("pprof endpoints available at: /debug/pprof")
}
