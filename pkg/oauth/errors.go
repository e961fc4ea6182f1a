package oauth

import (
	"errors"
	"fmt"

	"golang.org/x/oauth2"
)

// Operations that can fail at the provider.
const (
	OpExchange = "exchange"
	OpUserInfo = "userinfo"
)

// IdentityProviderError is returned when the provider rejects a token exchange or a user info request.
type IdentityProviderError struct {
	Provider string
	Op       string
	// Message is the provider's raw reason.
	Message string
	Err     error
}

// Error implements the error interface.
func (e *IdentityProviderError) Error() string {
	return fmt.Sprintf("%s %s failed: %s", e.Provider, e.Op, e.Message)
}

// Unwrap returns the underlying error.
func (e *IdentityProviderError) Unwrap() error {
	return e.Err
}

// newIdentityProviderError classifies the given error and extracts the provider's reason from it.
func newIdentityProviderError(provider, op string, err error) *IdentityProviderError {
	return &IdentityProviderError{Provider: provider, Op: op, Message: rawMessage(err), Err: err}
}

// rawMessage returns the most specific reason the provider gave for the failure.
func rawMessage(err error) string {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		return err.Error()
	}

	switch {
	case retrieveErr.ErrorDescription != "":
		return retrieveErr.ErrorDescription
	case retrieveErr.ErrorCode != "":
		return retrieveErr.ErrorCode
	case len(retrieveErr.Body) > 0:
		return string(retrieveErr.Body)
	default:
		return retrieveErr.Error()
	}
}
