package handler

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"github.com/shivanshkc/oauth2client/internal/metrics"
	"github.com/shivanshkc/oauth2client/internal/repository"
	"github.com/shivanshkc/oauth2client/internal/session"
	"github.com/shivanshkc/oauth2client/internal/utils/errutils"
	"github.com/shivanshkc/oauth2client/internal/utils/httputils"
	"github.com/shivanshkc/oauth2client/pkg/oauth"
)

// errRegistrationDisabled is returned for unknown users when registration is turned off.
var errRegistrationDisabled = errutils.NotFound().WithReasonStr("registration is disabled")

// loginParams are the inputs of the login endpoint.
type loginParams struct {
	ProviderName string
	TargetURL    string
	Code         string
	State        string
	// Error and ErrorDescription are set by the provider when the authorization failed.
	Error            string
	ErrorDescription string
}

// callback reports whether the request is the provider calling back.
func (p loginParams) callback() bool {
	return p.Code != "" || p.Error != ""
}

// loginResult is the successful end of a login request.
type loginResult struct {
	location string
	outcome  string
}

// Login drives the authorization code flow. It serves both the request that starts the flow
// and the provider callback, and always ends with a redirect.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess := session.FromContext(ctx)
	if sess == nil {
		slog.ErrorContext(ctx, "no session in request context")
		httputils.WriteErr(w, errutils.InternalServerError())
		return
	}

	// Query and form values are both accepted.
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(ctx, "failed to parse request form", "error", err)
		httputils.WriteErr(w, errutils.BadRequest().WithReasonErr(err))
		return
	}

	params := loginParams{
		ProviderName:     r.Form.Get("provider_name"),
		TargetURL:        r.Form.Get("url"),
		Code:             r.Form.Get("code"),
		State:            r.Form.Get("state"),
		Error:            r.Form.Get("error"),
		ErrorDescription: r.Form.Get("error_description"),
	}

	attempt, err := loadAttempt(ctx, sess)
	if err != nil {
		slog.ErrorContext(ctx, "error in loadAttempt call", "error", err)
		httputils.WriteErr(w, errutils.InternalServerError())
		return
	}

	result, err := h.login(ctx, sess, &attempt, params, r.RemoteAddr)
	if err == nil {
		h.metrics.IncrementOutcome(h.metricLabel(attempt.ProviderName), result.outcome)
		httputils.Redirect(w, result.location)
		return
	}

	// Unknown users with registration turned off.
	if errors.Is(err, errRegistrationDisabled) {
		slog.InfoContext(ctx, "registration is disabled", "provider", attempt.ProviderName)
		h.metrics.IncrementOutcome(h.metricLabel(attempt.ProviderName), metrics.OutcomeFailed)
		httputils.WriteErr(w, errRegistrationDisabled)
		return
	}

	loginErr := asLoginError(err)
	if loginErr == nil {
		// Broken infrastructure, there is no point in flashing a message.
		slog.ErrorContext(ctx, "unexpected error during login", "provider", attempt.ProviderName, "error", err)
		httputils.WriteErr(w, errutils.InternalServerError())
		return
	}

	h.loginFailed(ctx, w, sess, attempt, loginErr)
}

// login runs the flow up to its redirect target. Every failure is returned, nothing is written to the response.
func (h *Handler) login(ctx context.Context, sess *session.Session, attempt *LoginAttempt,
	params loginParams, remoteAddr string,
) (loginResult, error) {
	// The request that starts the flow names the provider. The callback relies on the session.
	if params.ProviderName != "" {
		if err := validateProvider(params.ProviderName); err != nil {
			return loginResult{}, configurationError(fmt.Sprintf(msgProviderNotFound, params.ProviderName), err)
		}

		attempt.ProviderName = params.ProviderName
		attempt.TargetURL = safeTargetURL(params.TargetURL, h.config.AllowedRedirectURLs, h.config.URLs.Home)
		if err := saveAttempt(ctx, sess, *attempt); err != nil {
			return loginResult{}, err
		}
	}

	// A callback without a running attempt.
	if attempt.ProviderName == "" && params.callback() {
		return loginResult{}, protocolError(errors.New("no login attempt in session"))
	}

	provider, err := h.registry.Make(ctx, attempt.ProviderName, h.redirectURI())
	if err != nil {
		return loginResult{}, configurationError(fmt.Sprintf(msgProviderNotFound, attempt.ProviderName), err)
	}

	if msg := provider.Validate(); msg != "" {
		return loginResult{}, configurationError(msg, errors.New("invalid field authority"))
	}

	// First leg, send the user to the provider.
	if !params.callback() {
		authURL := provider.AuthorizationURL()

		attempt.State = provider.State()
		attempt.CodeVerifier = provider.CodeVerifier()
		attempt.IssuedAt = h.now()
		if err := saveAttempt(ctx, sess, *attempt); err != nil {
			return loginResult{}, err
		}

		slog.InfoContext(ctx, "redirecting to authorization provider", "provider", provider.Name())
		return loginResult{location: authURL, outcome: metrics.OutcomeRedirected}, nil
	}

	codeVerifier, err := h.consumeState(ctx, sess, attempt, params.State)
	if err != nil {
		return loginResult{}, err
	}

	// The provider denied the authorization.
	if params.Error != "" {
		reason := params.ErrorDescription
		if reason == "" {
			reason = params.Error
		}
		return loginResult{}, identityProviderError(reason, errors.New("provider called back with error: "+params.Error))
	}

	if err := validateAuthCode(params.Code); err != nil {
		return loginResult{}, identityProviderError(err.Error(), err)
	}

	token, identity, err := h.authenticate(ctx, provider, params.Code, codeVerifier)
	if err != nil {
		return loginResult{}, err
	}

	accessToken, err := h.truncateIdentity(ctx, sess, &identity, token.AccessToken)
	if err != nil {
		return loginResult{}, err
	}

	// The lookup key of the local account.
	primary, _ := provider.FieldAuthority().Primary()
	identifier := identity.Get(primary)
	if identifier == "" || !identity.Usable() {
		return loginResult{}, identityDataError(fmt.Errorf("identity has no %s", primary))
	}

	user, err := h.repo.FindUserByIdentifier(ctx, identifier)
	if errors.Is(err, repository.ErrNotFound) {
		return h.register(ctx, sess, provider.Name(), identity, accessToken)
	}
	if err != nil {
		return loginResult{}, localLoginError(msgLoginUnavailable, fmt.Errorf("error in FindUserByIdentifier call: %w", err))
	}

	if err := h.localLogin(ctx, sess, provider, user, identifier, identity, remoteAddr); err != nil {
		return loginResult{}, err
	}

	if err := clearAttempt(ctx, sess); err != nil {
		return loginResult{}, err
	}

	return loginResult{location: attempt.TargetURL, outcome: metrics.OutcomeLoggedIn}, nil
}

// consumeState checks the state sent by the provider against the stored one and invalidates the stored state,
// whether it matched or not. It returns the PKCE verifier of the attempt.
func (h *Handler) consumeState(ctx context.Context, sess *session.Session, attempt *LoginAttempt,
	state string,
) (string, error) {
	stored, codeVerifier, issuedAt := attempt.State, attempt.CodeVerifier, attempt.IssuedAt
	expired := attempt.expired(h.now(), h.config.Login.StateExpiry)

	attempt.clearState()
	if err := saveAttempt(ctx, sess, *attempt); err != nil {
		return "", err
	}

	switch {
	case state == "":
		return "", protocolError(errors.New("state parameter is empty"))
	case stored == "":
		return "", protocolError(errors.New("no state in session"))
	case subtle.ConstantTimeCompare([]byte(state), []byte(stored)) != 1:
		return "", protocolError(errors.New("state mismatch"))
	case expired:
		return "", protocolError(fmt.Errorf("state issued at %s has expired", issuedAt.Format(time.RFC3339)))
	}

	return codeVerifier, nil
}

// authenticate exchanges the code for a token and fetches the identity with it.
func (h *Handler) authenticate(ctx context.Context, provider oauth.Provider, code, codeVerifier string,
) (*oauth2.Token, oauth.Identity, error) {
	start := time.Now()
	token, err := provider.ExchangeCode(ctx, code, codeVerifier)
	h.metrics.ObserveProviderCall(provider.Name(), oauth.OpExchange, start)
	if err != nil {
		return nil, oauth.Identity{}, identityProviderError(providerReason(err), err)
	}

	start = time.Now()
	identity, err := provider.FetchIdentity(ctx, token)
	h.metrics.ObserveProviderCall(provider.Name(), oauth.OpUserInfo, start)
	if err != nil {
		return nil, oauth.Identity{}, identityProviderError(providerReason(err), err)
	}

	return token, identity, nil
}

// providerReason returns the provider's raw message of the error.
func providerReason(err error) string {
	var ipErr *oauth.IdentityProviderError
	if errors.As(err, &ipErr) {
		return ipErr.Message
	}
	return err.Error()
}

// register sends an unknown user to the registration page, pre-filled with the identity.
// The access token is not part of the URL. The registration page fetches it once from the session.
func (h *Handler) register(ctx context.Context, sess *session.Session, providerName string,
	identity oauth.Identity, accessToken string,
) (loginResult, error) {
	if !h.config.Registration.Enabled {
		return loginResult{}, errRegistrationDisabled
	}

	registerURL, err := url.Parse(h.config.URLs.Register)
	if err != nil {
		return loginResult{}, fmt.Errorf("error in url.Parse call: %w", err)
	}

	registration := Registration{
		UserName:     identity.UserName,
		RealName:     identity.RealName,
		Email:        identity.Email,
		Password:     accessToken,
		ProviderName: providerName,
	}
	if err := saveRegistration(ctx, sess, registration); err != nil {
		return loginResult{}, err
	}

	query := registerURL.Query()
	query.Set("email", registration.Email)
	query.Set("realname", registration.RealName)
	query.Set("username", registration.UserName)
	query.Set("provider_name", registration.ProviderName)
	registerURL.RawQuery = query.Encode()

	if err := clearAttempt(ctx, sess); err != nil {
		return loginResult{}, err
	}

	slog.InfoContext(ctx, "unknown user, redirecting to registration", "provider", providerName)
	return loginResult{location: registerURL.String(), outcome: metrics.OutcomeRegistration}, nil
}

// loginFailed logs the failure, flashes its message and sends the user back to the login page.
func (h *Handler) loginFailed(ctx context.Context, w http.ResponseWriter, sess *session.Session,
	attempt LoginAttempt, loginErr *LoginError,
) {
	slog.ErrorContext(ctx, "login failed", "provider", attempt.ProviderName, "kind", loginErr.Kind,
		"error", loginErr)
	h.metrics.IncrementOutcome(h.metricLabel(attempt.ProviderName), metrics.OutcomeFailed)

	if err := sess.AddFlash(ctx, session.FlashError, loginErr.Message); err != nil {
		slog.ErrorContext(ctx, "error in AddFlash call", "error", err)
	}

	loginURL, err := url.Parse(h.config.URLs.Login)
	if err != nil {
		slog.ErrorContext(ctx, "invalid login URL in config", "error", err)
		httputils.WriteErr(w, errutils.InternalServerError())
		return
	}

	// Preserve the target for the next attempt.
	if attempt.TargetURL != "" {
		query := loginURL.Query()
		query.Set("url", attempt.TargetURL)
		loginURL.RawQuery = query.Encode()
	}

	httputils.Redirect(w, loginURL.String())
}
