package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// GoogleName is the registry key of the Google provider.
const GoogleName = "Google"

// Source: https://developers.google.com/identity/openid-connect/openid-connect#discovery
const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

var googleOptions = []string{OptClientID, OptClientSecret}

// Google is the provider for Google accounts.
//
// Google has no user names, so the email is the only usable key.
type Google struct {
	*client
}

// NewGoogle returns a new Google provider.
func NewGoogle(cfg Config) *Google {
	return &Google{client: newClient(cfg, clientParams{
		name:            GoogleName,
		requiredOptions: googleOptions,
		authority: FieldAuthority{
			FieldUserName: Optional,
			FieldRealName: Optional,
			FieldEmail:    Primary,
		},
		endpoint:      endpoints.Google,
		userInfoURL:   googleUserInfoURL,
		defaultScopes: []string{"openid", "profile", "email"},
	})}
}

type googleUser struct {
	Sub   string `json:"sub"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (g *Google) FetchIdentity(ctx context.Context, token *oauth2.Token) (Identity, error) {
	raw, err := g.resourceOwner(ctx, token, g.userInfoURL)
	if err != nil {
		return Identity{}, err
	}

	var user googleUser
	if err := decodeUserData(raw, &user); err != nil {
		return Identity{}, newIdentityProviderError(g.name, OpUserInfo, fmt.Errorf("error in decodeUserData call: %w", err))
	}

	if user.Sub == "" {
		return Identity{}, g.invalidUserData(raw)
	}

	return Identity{ExternalID: user.Sub, RealName: user.Name, Email: user.Email}, nil
}
