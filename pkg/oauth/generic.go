package oauth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
)

// GenericName is the registry key of the Generic provider.
const GenericName = "Generic"

var genericOptions = []string{
	OptClientID,
	OptClientSecret,
	OptURLAuthorize,
	OptURLAccessToken,
	OptURLResourceOwnerDetails,
}

// Generic is a provider for any standard OAuth2 server whose endpoints are configured explicitly.
type Generic struct {
	*client
}

// NewGeneric returns a new Generic provider.
func NewGeneric(cfg Config) *Generic {
	return &Generic{client: newClient(cfg, clientParams{
		name:            GenericName,
		requiredOptions: genericOptions,
		authority: FieldAuthority{
			FieldUserName: Mandatory,
			FieldRealName: Optional,
			FieldEmail:    Primary,
		},
		endpoint: oauth2.Endpoint{
			AuthURL:  cfg.Options[OptURLAuthorize],
			TokenURL: cfg.Options[OptURLAccessToken],
		},
		userInfoURL: cfg.Options[OptURLResourceOwnerDetails],
	})}
}

// genericUser is the user info of a standard OAuth2 or OpenID Connect server.
type genericUser struct {
	ID       string `json:"id"`
	Sub      string `json:"sub"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

func (g *Generic) FetchIdentity(ctx context.Context, token *oauth2.Token) (Identity, error) {
	raw, err := g.resourceOwner(ctx, token, g.userInfoURL)
	if err != nil {
		return Identity{}, err
	}

	var user genericUser
	if err := decodeUserData(raw, &user); err != nil {
		return Identity{}, newIdentityProviderError(g.name, OpUserInfo, fmt.Errorf("error in decodeUserData call: %w", err))
	}

	return Identity{
		ExternalID: firstNonEmpty(user.ID, user.Sub),
		UserName:   firstNonEmpty(user.Username, user.Email),
		RealName:   user.Name,
		Email:      user.Email,
	}, nil
}

// firstNonEmpty returns the first non-empty value.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
