package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/shivanshkc/oauth2client/internal/session"
	"github.com/shivanshkc/oauth2client/internal/utils/httputils"
)

// Middleware implements all the REST middleware methods.
type Middleware struct {
	// AllowedOrigins are the origins that may call the API with credentials.
	AllowedOrigins []string

	// SessionStore backs the sessions attached by the Session middleware.
	SessionStore  session.Store
	CookieName    string
	SessionTTL    time.Duration
	SecureCookies bool
}

func (m Middleware) Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			// Recover the panic.
			errAny := recover()
			if errAny == nil {
				return
			}

			// Stack for debugging.
			stack := string(debug.Stack())
			// Log.
			slog.ErrorContext(r.Context(), "panic occurred during request execution",
				"err", errAny, "stack", stack)

			// Convert to error for handling.
			err, ok := errAny.(error)
			if !ok {
				err = fmt.Errorf("recover returned a non-error type value: %v", errAny)
			}

			// Response.
			httputils.WriteErr(w, err)
		}()

		// Next middleware or handler.
		next.ServeHTTP(w, r)
	})
}

// CORS middleware attaches the necessary CORS headers for the allowed origins.
func (m Middleware) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && m.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			// Allow credentials (cookies, HTTP authentication).
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			// Cache preflight requests for 1 hour
			w.Header().Set("Access-Control-Max-Age", "3600")

			// Allow the methods of this API.
			w.Header().Set("Access-Control-Allow-Methods", fmt.Sprintf("%s, %s, %s", http.MethodGet,
				http.MethodPost, http.MethodOptions))

			// Allow common headers.
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, "+
				"Accept-Encoding, Authorization, X-Requested-With")
		}

		// Handle preflight requests.
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		// Next middleware or handler.
		next.ServeHTTP(w, r)
	})
}

// originAllowed reports whether the origin is the scheme and host of an allowed URL.
func (m Middleware) originAllowed(origin string) bool {
	for _, allowed := range m.AllowedOrigins {
		if origin == allowed || strings.HasPrefix(allowed, origin+"/") {
			return true
		}
	}
	return false
}

// AccessLogger logs every request with its response status and latency.
func (m Middleware) AccessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		// Next middleware or handler.
		next.ServeHTTP(recorder, r)

		slog.InfoContext(r.Context(), "request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"latency", time.Since(start).String(),
			"remote_addr", r.RemoteAddr)
	})
}

// statusRecorder captures the status code written by the next handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}
