package middleware

import (
	"net/http"
)

const (
	xContentTypeOptions   = "X-Content-Type-Options"
	cacheControl          = "Cache-Control"
	xFrameOptions         = "X-Frame-Options"
	contentSecurityPolicy = "Content-Security-Policy"
)

// Security adds essential security headers.
//
// NOTE: This middleware does not include headers like "Strict-Transport-Security" and "Referrer-Policy"
// because they are better managed by a reverse proxy.
func (m Middleware) Security(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Browsers should not try to guess the Content-Type if it is not provided.
		// This mitigates the following vulnerabilities:
		// - Cross-site scripting (XSS) attacks through file uploads.
		// - Malicious code execution in trusted contexts.
		// - Information leakage across origins.
		w.Header().Set(xContentTypeOptions, "nosniff")

		// Prevent caching of sensitive data.
		// With this header, a malicious entity will not be able to use browser history or back button
		// to get access to any sensitive data.
		w.Header().Set(cacheControl, "no-store, max-age=0")

		// The login pages must not be rendered in a <frame>, <iframe>, <embed> or <object> tag.
		w.Header().Set(xFrameOptions, "DENY")
		w.Header().Set(contentSecurityPolicy, "frame-ancestors 'none'")

		// Call the next handler
		next.ServeHTTP(w, r)
	})
}
