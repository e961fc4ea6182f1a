package oauth

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

// GithubName is the registry key of the GitHub provider.
const GithubName = "Github"

const (
	githubUserURL   = "https://api.github.com/user"
	githubEmailsURL = "https://api.github.com/user/emails"
)

var githubOptions = []string{OptClientID, OptClientSecret}

// Github is the provider for GitHub OAuth apps.
//
// Read documentation here: https://docs.github.com/en/apps/oauth-apps/building-oauth-apps/authorizing-oauth-apps
type Github struct {
	*client
	emailsURL string
}

// NewGithub returns a new GitHub provider.
func NewGithub(cfg Config) *Github {
	return &Github{
		client: newClient(cfg, clientParams{
			name:            GithubName,
			requiredOptions: githubOptions,
			authority: FieldAuthority{
				FieldUserName: Mandatory,
				FieldRealName: Optional,
				FieldEmail:    Primary,
			},
			endpoint:      endpoints.GitHub,
			userInfoURL:   githubUserURL,
			defaultScopes: []string{"read:user", "user:email"},
		}),
		emailsURL: githubEmailsURL,
	}
}

type githubUser struct {
	ID    string `json:"id"`
	Login string `json:"login"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (g *Github) FetchIdentity(ctx context.Context, token *oauth2.Token) (Identity, error) {
	raw, err := g.resourceOwner(ctx, token, g.userInfoURL)
	if err != nil {
		return Identity{}, err
	}

	var user githubUser
	if err := decodeUserData(raw, &user); err != nil {
		return Identity{}, newIdentityProviderError(g.name, OpUserInfo, fmt.Errorf("error in decodeUserData call: %w", err))
	}

	// The profile only shows a public email. Private ones need the emails endpoint.
	if user.Email == "" {
		user.Email = g.primaryEmail(ctx, token)
	}

	return Identity{
		ExternalID: user.ID,
		UserName:   user.Login,
		RealName:   firstNonEmpty(user.Name, user.Login),
		Email:      user.Email,
	}, nil
}

// primaryEmail returns the primary verified email of the user, or an empty string.
func (g *Github) primaryEmail(ctx context.Context, token *oauth2.Token) string {
	var emails []githubEmail
	if err := g.getJSON(ctx, token, g.emailsURL, &emails); err != nil {
		// Not fatal, the email is simply missing then.
		slog.WarnContext(ctx, "failed to fetch github emails", "error", err)
		return ""
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email
		}
	}

	return ""
}
