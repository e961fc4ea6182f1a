package oauth

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/oauth2"
)

// FacebookName is the registry key of the Facebook provider.
const FacebookName = "Facebook"

var facebookOptions = []string{OptClientID, OptClientSecret, OptGraphAPIVersion}

// Facebook is the provider for Facebook Login. The Graph API version is part of every endpoint.
type Facebook struct {
	*client
}

// NewFacebook returns a new Facebook provider.
func NewFacebook(cfg Config) *Facebook {
	version := cfg.Options[OptGraphAPIVersion]

	fields := url.Values{"fields": []string{"id,name,email"}}
	userInfoURL := fmt.Sprintf("https://graph.facebook.com/%s/me?%s", version, fields.Encode())

	return &Facebook{client: newClient(cfg, clientParams{
		name:            FacebookName,
		requiredOptions: facebookOptions,
		authority: FieldAuthority{
			FieldUserName: Optional,
			FieldRealName: Optional,
			FieldEmail:    Primary,
		},
		endpoint: oauth2.Endpoint{
			AuthURL:  fmt.Sprintf("https://www.facebook.com/%s/dialog/oauth", version),
			TokenURL: fmt.Sprintf("https://graph.facebook.com/%s/oauth/access_token", version),
		},
		userInfoURL:   userInfoURL,
		defaultScopes: []string{"public_profile", "email"},
	})}
}

type facebookUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (f *Facebook) FetchIdentity(ctx context.Context, token *oauth2.Token) (Identity, error) {
	raw, err := f.resourceOwner(ctx, token, f.userInfoURL)
	if err != nil {
		return Identity{}, err
	}

	var user facebookUser
	if err := decodeUserData(raw, &user); err != nil {
		return Identity{}, newIdentityProviderError(f.name, OpUserInfo, fmt.Errorf("error in decodeUserData call: %w", err))
	}

	// Facebook has no user names.
	return Identity{ExternalID: user.ID, RealName: user.Name, Email: user.Email}, nil
}
