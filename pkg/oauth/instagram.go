package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// InstagramName is the registry key of the Instagram provider.
const InstagramName = "Instagram"

const instagramUserURL = "https://graph.instagram.com/me?fields=id,username"

var instagramOptions = []string{OptClientID, OptClientSecret}

// Instagram is the provider for Instagram accounts. Instagram does not share emails.
type Instagram struct {
	*client
}

// NewInstagram returns a new Instagram provider.
func NewInstagram(cfg Config) *Instagram {
	return &Instagram{client: newClient(cfg, clientParams{
		name:            InstagramName,
		requiredOptions: instagramOptions,
		authority: FieldAuthority{
			FieldUserName: Primary,
			FieldRealName: Optional,
			FieldEmail:    Unused,
		},
		endpoint:      endpoints.Instagram,
		userInfoURL:   instagramUserURL,
		defaultScopes: []string{"user_profile"},
	})}
}

type instagramUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (i *Instagram) FetchIdentity(ctx context.Context, token *oauth2.Token) (Identity, error) {
	raw, err := i.resourceOwner(ctx, token, i.userInfoURL)
	if err != nil {
		return Identity{}, err
	}

	var user instagramUser
	if err := decodeUserData(raw, &user); err != nil {
		return Identity{}, newIdentityProviderError(i.name, OpUserInfo, fmt.Errorf("error in decodeUserData call: %w", err))
	}

	return Identity{ExternalID: user.ID, UserName: user.Username, RealName: user.Username}, nil
}
