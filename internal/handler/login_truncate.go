package handler

import (
	"context"
	"fmt"

	"github.com/shivanshkc/oauth2client/internal/session"
	"github.com/shivanshkc/oauth2client/internal/utils/miscutils"
	"github.com/shivanshkc/oauth2client/pkg/oauth"
)

// Maximum field lengths of the local user store.
const (
	maxUserNameLength = 32
	maxPasswordLength = 128
	maxTextLength     = 64
)

// truncateIdentity shortens the identity fields and the access token to the lengths the user store accepts.
// The user is warned about every shortened field. It returns the shortened access token.
func (h *Handler) truncateIdentity(ctx context.Context, sess *session.Session, identity *oauth.Identity,
	accessToken string,
) (string, error) {
	fields := []struct {
		label string
		value *string
		limit int
	}{
		{label: "username", value: &identity.UserName, limit: maxUserNameLength},
		{label: "real name", value: &identity.RealName, limit: maxTextLength},
		{label: "email", value: &identity.Email, limit: maxTextLength},
		{label: "password", value: &accessToken, limit: maxPasswordLength},
	}

	for _, f := range fields {
		truncated, ok := miscutils.Truncate(*f.value, f.limit)
		if !ok {
			continue
		}

		*f.value = truncated
		msg := fmt.Sprintf(msgTruncated, f.label, f.limit, f.limit)
		if err := sess.AddFlash(ctx, session.FlashWarning, msg); err != nil {
			return "", err
		}
	}

	return accessToken, nil
}
