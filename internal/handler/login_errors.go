package handler

import (
	"errors"
	"fmt"
)

// Kind classifies a failed login.
type Kind string

const (
	// KindConfiguration is an unknown provider, missing options or an invalid field authority.
	KindConfiguration Kind = "configuration"
	// KindProtocol is a missing or mismatched state.
	KindProtocol Kind = "protocol"
	// KindIdentityProvider is a failed token exchange or user info request.
	KindIdentityProvider Kind = "identity_provider"
	// KindIdentityData is an identity without a usable primary field.
	KindIdentityData Kind = "identity_data"
	// KindLocalLogin is a rejected login of the local account.
	KindLocalLogin Kind = "local_login"
)

// User-visible messages.
const (
	msgProviderNotFound = "The requested authorization provider could not be found: %s"
	msgInvalidState     = "Invalid state in communication with authorization provider."
	msgProviderFailed   = "Failed to get the access token or the user details from the authorization provider: %s"
	msgNoAccountData    = "No valid user account data received from authorization provider. Username or email missing."
	msgNoCookies        = "You cannot sign in because your browser does not accept cookies."
	msgNoSuchUser       = "The username or password is incorrect."
	msgNotVerified      = "This account has not been verified. Please check your email for a verification message."
	msgNotApproved      = "This account has not been approved. Please wait for an administrator to approve it."
	msgLoginUnavailable = "The login could not be completed. Please try again later."
	msgTruncated        = `The length of the "%s" exceeded the maximum length of %d and was reduced to %d characters.`
)

// LoginError is a terminal failure of a login attempt.
// Its Message is shown to the user, Err is only logged.
type LoginError struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *LoginError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Message, e.Err.Error())
}

// Unwrap returns the underlying error.
func (e *LoginError) Unwrap() error {
	return e.Err
}

func configurationError(msg string, err error) *LoginError {
	return &LoginError{Kind: KindConfiguration, Message: msg, Err: err}
}

func protocolError(err error) *LoginError {
	return &LoginError{Kind: KindProtocol, Message: msgInvalidState, Err: err}
}

func identityProviderError(reason string, err error) *LoginError {
	return &LoginError{Kind: KindIdentityProvider, Message: fmt.Sprintf(msgProviderFailed, reason), Err: err}
}

func identityDataError(err error) *LoginError {
	return &LoginError{Kind: KindIdentityData, Message: msgNoAccountData, Err: err}
}

func localLoginError(msg string, err error) *LoginError {
	return &LoginError{Kind: KindLocalLogin, Message: msg, Err: err}
}

// asLoginError returns the LoginError in the chain of err, or nil.
func asLoginError(err error) *LoginError {
	var loginErr *LoginError
	if errors.As(err, &loginErr) {
		return loginErr
	}
	return nil
}
