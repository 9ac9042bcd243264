// Package federation handles the upstream half of a federated login: sending
// the user to an external OpenID provider and turning the callback into a
// federated profile.
package federation

import (
	"context"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/oidckit/authfresh/profiles"
)

// Client wraps a single upstream OpenID provider.
type Client struct {
	provider     *oidc.Provider
	oauth2Config *oauth2.Config
	verifier     *oidc.IDTokenVerifier
}

// New discovers the upstream provider's configuration from its issuer URL.
func New(ctx context.Context, issuer, clientID, clientSecret, redirectURL string) (*Client, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, errors.Wrap(err, "[federation.New] provider discovery")
	}

	return &Client{
		provider: provider,
		oauth2Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  redirectURL,
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

// AuthCodeURL builds the URL that starts the upstream login.
func (c *Client) AuthCodeURL(state, nonce string, opts ...oauth2.AuthCodeOption) string {
	opts = append(opts, oidc.Nonce(nonce))
	return c.oauth2Config.AuthCodeURL(state, opts...)
}

// Exchange trades the callback code for tokens, verifies the ID token and
// returns the federated profile it asserts.
func (c *Client) Exchange(ctx context.Context, code, nonce string) (profiles.FederatedProfile, error) {
	oauth2Token, err := c.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return profiles.FederatedProfile{}, errors.Wrap(err, "[federation.Exchange] token exchange")
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return profiles.FederatedProfile{}, errors.New("[federation.Exchange] no ID token in response")
	}

	idToken, err := c.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return profiles.FederatedProfile{}, errors.Wrap(err, "[federation.Exchange] ID token verification")
	}

	// Validate nonce to prevent replay attacks
	if idToken.Nonce != nonce {
		return profiles.FederatedProfile{}, errors.New("[federation.Exchange] invalid nonce")
	}

	return profiles.FromIDToken(idToken)
}
