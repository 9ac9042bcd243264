package authreq

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
)

// ErrMalformedURL is returned when a request URL cannot be parsed. Callers
// must reject the authorization request; this is never recovered locally.
var ErrMalformedURL = errors.New("malformed request url")

// MalformedURLError wraps a parse failure for the given URL so that
// errors.Is(err, ErrMalformedURL) holds.
func MalformedURLError(rawURL string, cause error) error {
	return pkgerrors.Wrapf(ErrMalformedURL, "%q: %v", rawURL, cause)
}
