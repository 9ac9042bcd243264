package sessions

import (
	"context"
	"time"

	"github.com/oidckit/authfresh/authreq"
)

// Store resolves opaque session tokens to authentication records.
// Implementations own the persistence; callers never see their internals.
type Store interface {
	// Lookup resolves a token to its authentication record. A token the
	// store does not know returns (nil, nil): absence is a normal outcome,
	// not a failure.
	Lookup(ctx context.Context, token string) (*AuthenticationRecord, error)
}

// Issuer mints a session token for a completed login. The freshness policy
// never issues tokens itself; this is endpoint plumbing.
type Issuer interface {
	Issue(ctx context.Context, subject string, authDate time.Time) (string, error)
}

// TokenReader extracts the session token from an incoming request.
// A blank return means the request carries no session.
type TokenReader interface {
	SessionToken(r authreq.Request) string
}

// CookieTokenReader reads the session token from a named cookie.
type CookieTokenReader struct {
	Name string
}

func (c CookieTokenReader) SessionToken(r authreq.Request) string {
	return r.Cookie(c.Name)
}
