package httputils

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shivanshkc/oauth2client/internal/utils/errutils"
)

// Write writes the given status code, headers and body to the response writer.
// The body is JSON encoded if it is not nil.
func Write(w http.ResponseWriter, status int, headers map[string]string, body any) {
	for key, value := range headers {
		w.Header().Set(key, value)
	}

	if body == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to write response body", "err", err)
	}
}

// WriteErr converts the given error to an HTTP error and writes it to the response writer.
func WriteErr(w http.ResponseWriter, err error) {
	httpErr := errutils.ToHTTPError(err)
	Write(w, httpErr.Status, nil, httpErr)
}

// Redirect writes a 302 response with the given location.
func Redirect(w http.ResponseWriter, location string) {
	Write(w, http.StatusFound, map[string]string{"Location": location}, nil)
}

// Is2xx returns true if the given status code is in the 2xx range.
func Is2xx(status int) bool {
	return status >= 200 && status < 300
}
