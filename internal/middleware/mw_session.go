package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/shivanshkc/oauth2client/internal/session"
)

// Session attaches the session of the user agent to the request context.
//
// A request without a valid session cookie gets a new session, which is marked fresh
// until the user agent sends the cookie back. The cookie is issued when the response is written,
// so that a regenerated ID or a destroyed session reaches the user agent.
func (m Middleware) Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, fresh := "", false

		cookie, err := r.Cookie(m.CookieName)
		if err == nil && uuid.Validate(cookie.Value) == nil {
			sessionID = cookie.Value
		} else {
			sessionID, fresh = uuid.NewString(), true
		}

		sess := session.New(sessionID, m.SessionStore, fresh)
		writer := &cookieWriter{ResponseWriter: w, issue: func() { m.setCookie(w, sess) }}

		next.ServeHTTP(writer, r.WithContext(session.WithSession(r.Context(), sess)))

		// Handlers that write nothing.
		writer.issueCookie()
	})
}

// setCookie issues the cookie of the session, or clears it if the session was destroyed.
func (m Middleware) setCookie(w http.ResponseWriter, sess *session.Session) {
	value, maxAge := sess.ID(), int(m.SessionTTL.Seconds())
	if sess.Destroyed() {
		value, maxAge = "", -1
	}

	// Sliding expiry, the cookie lives as long as the stored session.
	http.SetCookie(w, &http.Cookie{
		Name:     m.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.SecureCookies,
		// Lax, so that the cookie is sent on the redirect back from the provider.
		SameSite: http.SameSiteLaxMode,
	})
}

// cookieWriter issues the session cookie right before the response header is written.
type cookieWriter struct {
	http.ResponseWriter
	issue  func()
	issued bool
}

func (c *cookieWriter) issueCookie() {
	if c.issued {
		return
	}
	c.issued = true
	c.issue()
}

func (c *cookieWriter) WriteHeader(status int) {
	c.issueCookie()
	c.ResponseWriter.WriteHeader(status)
}

func (c *cookieWriter) Write(b []byte) (int, error) {
	c.issueCookie()
	return c.ResponseWriter.Write(b)
}
