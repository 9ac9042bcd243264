package profiles

import (
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
)

// FromIDToken builds a federated profile from a verified upstream ID token.
// The auth_time claim becomes the authentication date attribute; providers
// that omit auth_time fall back to the token's issue time.
func FromIDToken(idToken *oidc.IDToken) (FederatedProfile, error) {
	var claims struct {
		AuthTime int64  `json:"auth_time"`
		Email    string `json:"email"`
		Name     string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return FederatedProfile{}, errors.Wrap(err, "[profiles.FromIDToken] extract claims")
	}

	authDate := idToken.IssuedAt
	if claims.AuthTime > 0 {
		authDate = time.Unix(claims.AuthTime, 0)
	}

	attributes := map[string]string{
		AuthenticationDateAttribute: authDate.UTC().Format(time.RFC3339),
	}
	if claims.Email != "" {
		attributes["email"] = claims.Email
	}
	if claims.Name != "" {
		attributes["name"] = claims.Name
	}

	return FederatedProfile{
		Subject:    idToken.Subject,
		Attributes: attributes,
	}, nil
}
