// Package jwtstore resolves session tokens that are themselves signed JWTs,
// so no server-side session state is needed. The authentication date travels
// in the auth_time claim.
package jwtstore

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/oidckit/authfresh/sessions"
)

var (
	_ sessions.Store  = (*Store)(nil)
	_ sessions.Issuer = (*Store)(nil)
)

// Store mints and resolves HMAC-signed session tokens. A token that fails
// parsing or signature verification resolves to no session rather than an
// error: an unverifiable token and no token are the same thing to callers.
type Store struct {
	key      []byte
	issuer   string
	lifetime time.Duration
	nowTime  func() time.Time
}

// Option modifies a Store.
type Option func(*Store)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

func New(key []byte, issuer string, lifetime time.Duration, options ...Option) (*Store, error) {
	if len(key) == 0 {
		return nil, errors.New("[jwtstore.New] signing key is required")
	}

	store := &Store{
		key:      key,
		issuer:   issuer,
		lifetime: lifetime,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(store)
	}
	return store, nil
}

type sessionClaims struct {
	AuthTime int64 `json:"auth_time"`
	jwt.RegisteredClaims
}

func (s *Store) Lookup(_ context.Context, token string) (*sessions.AuthenticationRecord, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.key, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.nowTime))
	if err != nil || !parsed.Valid {
		return nil, nil
	}

	authDate := time.Unix(claims.AuthTime, 0).UTC()
	if claims.AuthTime == 0 && claims.IssuedAt != nil {
		authDate = claims.IssuedAt.Time.UTC()
	}

	return &sessions.AuthenticationRecord{
		Token:              token,
		Subject:            claims.Subject,
		AuthenticationDate: authDate,
	}, nil
}

func (s *Store) Issue(_ context.Context, subject string, authDate time.Time) (string, error) {
	now := s.nowTime()
	claims := sessionClaims{
		AuthTime: authDate.UTC().Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", errors.Wrap(err, "[jwtstore.Issue] sign token")
	}
	return token, nil
}
