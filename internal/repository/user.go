package repository

// Preference keys of a user.
const (
	PrefEmailVerified   = "email_verified"
	PrefAccountApproved = "account_approved"
	PrefLanguage        = "language"
	PrefTheme           = "theme"
	PrefTimestampActive = "timestamp_active"
	PrefOAuth2Login     = "oauth2_login"
)

// User represents a single user in the database.
//
// It implements the oauth.LocalUser interface.
type User struct {
	ID          int64
	Preferences map[string]string

	userName string
	realName string
	email    string
	changed  bool
}

// NewUser returns a User with the given account data.
func NewUser(id int64, userName, realName, email string) *User {
	return &User{ID: id, userName: userName, realName: realName, email: email, Preferences: map[string]string{}}
}

func (u *User) UserName() string { return u.userName }
func (u *User) RealName() string { return u.realName }
func (u *User) Email() string    { return u.email }

func (u *User) SetUserName(v string) {
	u.changed = u.changed || u.userName != v
	u.userName = v
}

func (u *User) SetRealName(v string) {
	u.changed = u.changed || u.realName != v
	u.realName = v
}

func (u *User) SetEmail(v string) {
	u.changed = u.changed || u.email != v
	u.email = v
}

// Changed reports whether any account field was modified since the user was loaded.
func (u *User) Changed() bool {
	return u.changed
}

// Preference returns the value of a preference, or the fallback if it is not set.
func (u *User) Preference(key, fallback string) string {
	if v, ok := u.Preferences[key]; ok {
		return v
	}
	return fallback
}

// Flag interprets a preference as a boolean flag.
func (u *User) Flag(key string) bool {
	return u.Preference(key, "") == "1"
}

// AuthLogEntry is a line of the authentication audit log.
type AuthLogEntry struct {
	UserName     string
	ProviderName string
	Message      string
	RemoteAddr   string
}
