package oauth

// Identity is the normalized result of a successful authentication.
//
// All fields may be empty. Which of them must be present depends on the FieldAuthority of the provider.
type Identity struct {
	// ExternalID is the user's identifier at the provider.
	ExternalID string `json:"external_id"`
	UserName   string `json:"user_name"`
	RealName   string `json:"real_name"`
	Email      string `json:"email"`
}

// Get returns the value of the given field.
func (i Identity) Get(field Field) string {
	switch field {
	case FieldUserName:
		return i.UserName
	case FieldRealName:
		return i.RealName
	case FieldEmail:
		return i.Email
	default:
		return ""
	}
}

// Usable reports whether the identity carries at least a user name or an email.
func (i Identity) Usable() bool {
	return i.UserName != "" || i.Email != ""
}

// LocalUser is the application's user record as seen by the providers.
// It is owned by the host application; the providers only read and overwrite its fields.
type LocalUser interface {
	UserName() string
	RealName() string
	Email() string

	SetUserName(string)
	SetRealName(string)
	SetEmail(string)
}
