package oauth

// Field is a canonical identity field that a provider can be authoritative for.
type Field string

const (
	FieldUserName Field = "user_name"
	FieldRealName Field = "real_name"
	FieldEmail    Field = "email"
)

// Fields lists all canonical fields in a stable order.
var Fields = []Field{FieldUserName, FieldRealName, FieldEmail}

// Authority declares how a provider's value for a Field is treated.
type Authority string

const (
	// Primary fields are the lookup key for the local account.
	Primary Authority = "primary"
	// Mandatory fields overwrite the local value whenever it differs.
	Mandatory Authority = "mandatory"
	// Optional fields are only used when an account gets created.
	Optional Authority = "optional"
	// Unused fields are ignored.
	Unused Authority = "unused"
)

// Validation errors of a FieldAuthority.
const (
	msgNoPrimary       = "Cannot use the login data of the authorization provider. No primary key defined for the user data."
	msgMultiplePrimary = "Cannot use the login data of the authorization provider. More than one primary key defined for the user data."
	msgPrimaryNotKey   = "Cannot use the login data of the authorization provider. Neither username nor email is a primary key."
)

// FieldAuthority maps every canonical field to its Authority. Absent fields are Unused.
type FieldAuthority map[Field]Authority

// Of returns the authority of the given field.
func (f FieldAuthority) Of(field Field) Authority {
	if a, ok := f[field]; ok {
		return a
	}
	return Unused
}

// Primary returns the primary field. The boolean is false unless there is exactly one.
func (f FieldAuthority) Primary() (Field, bool) {
	var primary Field
	var count int

	for _, field := range Fields {
		if f.Of(field) == Primary {
			primary = field
			count++
		}
	}

	return primary, count == 1
}

// Validate returns a human-readable error if the map is unusable, and an empty string otherwise.
//
// A map is usable only if exactly one field is primary and that field is the user name or the email.
func (f FieldAuthority) Validate() string {
	var count int
	for _, field := range Fields {
		if f.Of(field) == Primary {
			count++
		}
	}

	switch {
	case count == 0:
		return msgNoPrimary
	case count > 1:
		return msgMultiplePrimary
	case f.Of(FieldUserName) != Primary && f.Of(FieldEmail) != Primary:
		return msgPrimaryNotKey
	}

	return ""
}

// Apply overwrites every mandatory field of the local user whose value differs from the received identity.
//
// The primary field is never overwritten because it is the lookup key of the running login.
func (f FieldAuthority) Apply(user LocalUser, received Identity) []Field {
	var changed []Field

	for _, field := range Fields {
		if f.Of(field) != Mandatory {
			continue
		}

		value := received.Get(field)
		switch field {
		case FieldUserName:
			if user.UserName() != value {
				user.SetUserName(value)
				changed = append(changed, field)
			}
		case FieldRealName:
			if user.RealName() != value {
				user.SetRealName(value)
				changed = append(changed, field)
			}
		case FieldEmail:
			if user.Email() != value {
				user.SetEmail(value)
				changed = append(changed, field)
			}
		}
	}

	return changed
}
