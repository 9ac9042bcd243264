// Package profiles models the identity attribute bundle received from an
// upstream provider for a federated login.
package profiles

import (
	"fmt"
	"time"
)

// AuthenticationDateAttribute is the well-known attribute carrying the
// timestamp of the upstream authentication, as an ISO 8601 string.
const AuthenticationDateAttribute = "authenticationDate"

// FederatedProfile is an attribute bundle asserted for an authenticated
// principal. It is a read-only view; this module never mutates profiles.
type FederatedProfile struct {
	Subject    string
	Attributes map[string]string
}

// Attribute returns the named attribute and whether it is present.
func (p FederatedProfile) Attribute(key string) (string, bool) {
	value, ok := p.Attributes[key]
	return value, ok
}

// AuthenticationDate extracts the authentication timestamp from the profile.
// A missing attribute is reported as absent (false, nil error). An attribute
// that is present but does not parse returns a *TimestampParseError: unlike
// an unparsable max_age, a corrupt timestamp in an identity assertion is a
// hard failure the caller must reject.
func (p FederatedProfile) AuthenticationDate() (time.Time, bool, error) {
	raw, ok := p.Attribute(AuthenticationDateAttribute)
	if !ok {
		return time.Time{}, false, nil
	}

	date, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false, &TimestampParseError{Value: raw, Err: err}
	}
	return date.UTC(), true, nil
}

// TimestampParseError reports a profile timestamp attribute that was present
// but could not be parsed.
type TimestampParseError struct {
	Value string
	Err   error
}

func (e *TimestampParseError) Error() string {
	return fmt.Sprintf("unparsable authentication timestamp %q: %v", e.Value, e.Err)
}

func (e *TimestampParseError) Unwrap() error {
	return e.Err
}
