package session

// LoginType records which credential family produced the current session.
type LoginType uint8

const (
	// LoginNone is an exported constant or variable used by session state.
	LoginNone LoginType = iota
	// LoginPhone is an exported constant or variable used by session state.
	LoginPhone
	// LoginEmail is an exported constant or variable used by session state.
	LoginEmail
	// LoginFederated is an exported constant or variable used by session state.
	LoginFederated
)

// String describes the string operation and its observable behavior.
//
// String does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (t LoginType) String() string {
	switch t {
	case LoginPhone:
		return "phone"
	case LoginEmail:
		return "email"
	case LoginFederated:
		return "federated"
	default:
		return "none"
	}
}

// Profile carries the identity fields handed over by the provider after a
// successful sign-in. Missing fields stay empty.
type Profile struct {
	UserID      string
	DisplayName string
	Phone       string
	Email       string
}

// Snapshot is the complete persisted session record. The zero value is the
// signed-out state.
type Snapshot struct {
	UserID      string
	DisplayName string
	Phone       string
	Email       string

	LoginType          LoginType
	LastLoginUnixMilli int64
	LoggedIn           bool
}

// Valid reports whether the snapshot represents a usable signed-in session:
// the logged-in flag is set and a user ID is present. Both are written
// together, so a half-formed record never validates.
//
// Valid does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s Snapshot) Valid() bool {
	return s.LoggedIn && s.UserID != ""
}

// DisplayIdentifier returns the sign-in identifier for the session: the
// phone number for phone logins, the email address for everything else.
// The display name is presentation data and never substitutes for the
// identifier.
//
// DisplayIdentifier does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s Snapshot) DisplayIdentifier() string {
	if s.LoginType == LoginPhone {
		return s.Phone
	}
	return s.Email
}
