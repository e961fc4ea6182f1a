package oauth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
)

// WordPressName is the registry key of the WordPress provider.
const WordPressName = "WordPress"

var wordPressOptions = []string{
	OptClientID,
	OptClientSecret,
	OptURLAuthorize,
	OptURLAccessToken,
	OptURLResourceOwnerDetails,
}

// WordPress is the provider for the WP OAuth Server plugin.
type WordPress struct {
	*client
}

// NewWordPress returns a new WordPress provider.
func NewWordPress(cfg Config) *WordPress {
	return &WordPress{client: newClient(cfg, clientParams{
		name:            WordPressName,
		requiredOptions: wordPressOptions,
		authority: FieldAuthority{
			FieldUserName: Primary,
			FieldRealName: Optional,
			FieldEmail:    Mandatory,
		},
		endpoint: oauth2.Endpoint{
			AuthURL:  cfg.Options[OptURLAuthorize],
			TokenURL: cfg.Options[OptURLAccessToken],
		},
		userInfoURL:   cfg.Options[OptURLResourceOwnerDetails],
		defaultScopes: []string{"openid", "profile", "email"},
	})}
}

type wordPressUser struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DisplayName string `json:"display_name"`
}

func (w *WordPress) FetchIdentity(ctx context.Context, token *oauth2.Token) (Identity, error) {
	raw, err := w.resourceOwner(ctx, token, w.userInfoURL)
	if err != nil {
		return Identity{}, err
	}

	var user wordPressUser
	if err := decodeUserData(raw, &user); err != nil {
		return Identity{}, newIdentityProviderError(w.name, OpUserInfo, fmt.Errorf("error in decodeUserData call: %w", err))
	}

	return Identity{
		ExternalID: user.ID,
		UserName:   firstNonEmpty(user.Username, user.Email),
		RealName:   wordPressRealName(user),
		Email:      user.Email,
	}, nil
}

// wordPressRealName joins the first and the last name, falling back to the display name.
func wordPressRealName(user wordPressUser) string {
	realName := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if realName == "" {
		return user.DisplayName
	}
	return realName
}
