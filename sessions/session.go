package sessions

import "time"

// AuthenticationRecord is the provider's view of a completed login, resolved
// from an opaque session token. The freshness policy reads only the
// authentication date; everything else is informational.
type AuthenticationRecord struct {
	// Token is the opaque session token the record was stored under.
	Token string

	// Subject identifies the authenticated principal.
	Subject string

	// AuthenticationDate is when the login completed, in UTC.
	AuthenticationDate time.Time
}
