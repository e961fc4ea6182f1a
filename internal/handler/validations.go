package handler

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

var (
	errInvalidProvider = errors.New("provider_name must be upto 32 characters and must include only A-Z, a-z, 0-9, - and _")
	errInvalidCode     = errors.New("code must be upto 2048 characters")
)

var (
	providerRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
)

// validateProvider validates the provider name parameter when received from an external user.
func validateProvider(p string) error {
	if len(p) == 0 || len(p) > 32 {
		return errInvalidProvider
	}

	if !providerRegex.MatchString(p) {
		return errInvalidProvider
	}

	return nil
}

// validateAuthCode validates the authorization code sent by the provider.
func validateAuthCode(code string) error {
	if len(code) > 2048 {
		return errInvalidCode
	}
	return nil
}

// safeTargetURL returns the target if it is a local path or starts with an allowed URL, and the fallback otherwise.
func safeTargetURL(target string, allowed []string, fallback string) string {
	if target == "" || len(target) > 2048 {
		return fallback
	}

	// Browsers drop tabs and newlines from a Location and read backslashes as slashes,
	// which turns "/\t/host" into "//host".
	if strings.ContainsFunc(target, unicode.IsControl) || strings.Contains(target, `\`) {
		return fallback
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return fallback
	}

	// Local path, but not protocol relative.
	if parsed.Scheme == "" && parsed.Host == "" {
		if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") {
			return target
		}
		return fallback
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return fallback
	}

	for _, prefix := range allowed {
		if prefix != "" && (target == prefix || strings.HasPrefix(target, strings.TrimSuffix(prefix, "/")+"/")) {
			return target
		}
	}

	return fallback
}
