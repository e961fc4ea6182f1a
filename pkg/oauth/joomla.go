package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// JoomlaName is the registry key of the Joomla provider.
const JoomlaName = "Joomla"

var joomlaOptions = []string{OptClientID, OptClientSecret, OptURLAuthorize}

// Joomla is a provider for the Joomla OAuth2 server extension.
// The extension serves the authorization, the token and the user info on the same URL.
type Joomla struct {
	*client
}

// NewJoomla returns a new Joomla provider.
func NewJoomla(cfg Config) *Joomla {
	url := cfg.Options[OptURLAuthorize]

	return &Joomla{client: newClient(cfg, clientParams{
		name:            JoomlaName,
		requiredOptions: joomlaOptions,
		authority: FieldAuthority{
			FieldUserName: Primary,
			FieldRealName: Optional,
			FieldEmail:    Mandatory,
		},
		endpoint:    oauth2.Endpoint{AuthURL: url, TokenURL: url},
		userInfoURL: url,
	})}
}

type joomlaUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

func (j *Joomla) FetchIdentity(ctx context.Context, token *oauth2.Token) (Identity, error) {
	raw, err := j.resourceOwner(ctx, token, j.userInfoURL)
	if err != nil {
		return Identity{}, err
	}

	var user joomlaUser
	if err := decodeUserData(raw, &user); err != nil {
		return Identity{}, newIdentityProviderError(j.name, OpUserInfo, fmt.Errorf("error in decodeUserData call: %w", err))
	}

	return Identity{
		ExternalID: user.ID,
		UserName:   user.Username,
		RealName:   firstNonEmpty(user.Name, user.Username),
		Email:      user.Email,
	}, nil
}
