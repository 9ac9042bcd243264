// Package freshness decides whether an existing authenticated session still
// satisfies the max_age constraint of an incoming authorization request.
package freshness

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/oidckit/authfresh/authreq"
	"github.com/oidckit/authfresh/profiles"
	"github.com/oidckit/authfresh/sessions"
)

// Evaluator applies the freshness policy. It is stateless: every method is a
// pure function of the request, the injected clock and one store lookup, so
// concurrent use needs no locking.
type Evaluator struct {
	tokens   sessions.TokenReader
	sessions sessions.Store
	log      zerolog.Logger
	nowTime  func() time.Time
}

// Option modifies an Evaluator.
type Option func(*Evaluator)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(e *Evaluator) {
		e.nowTime = nowFunc
	}
}

// WithLogger sets the logger used for the too-old observability event.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Evaluator) {
		e.log = log
	}
}

// NewEvaluator initializes an Evaluator with its required collaborators.
func NewEvaluator(tokens sessions.TokenReader, store sessions.Store, options ...Option) (*Evaluator, error) {
	if tokens == nil {
		return nil, errors.New("[NewEvaluator] token reader is required")
	}
	if store == nil {
		return nil, errors.New("[NewEvaluator] session store is required")
	}

	evaluator := &Evaluator{
		tokens:   tokens,
		sessions: store,
		log:      zerolog.Nop(),
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(evaluator)
	}
	return evaluator, nil
}

// IsAuthenticationTooOld is the policy primitive: it reports whether an
// authentication performed at authDate violates the request's max_age. An
// absent, invalid or zero max_age never forces re-authentication; only an
// enforceable value compared against elapsed UTC seconds can.
func (e *Evaluator) IsAuthenticationTooOld(maxAge authreq.MaxAge, authDate time.Time) bool {
	if !maxAge.Enforceable() {
		return false
	}

	now := e.nowTime().UTC().Unix()
	authTime := authDate.UTC().Unix()
	elapsed := now - authTime
	if elapsed > maxAge.Seconds {
		e.log.Info().
			Int64("auth_time", authTime).
			Int64("elapsed_seconds", elapsed).
			Msg("authentication is too old for the requested max_age")
		return true
	}
	return false
}

// IsRecordTooOld reports whether the given authentication record is too old
// for the request's max_age.
func (e *Evaluator) IsRecordTooOld(r authreq.Request, record *sessions.AuthenticationRecord) (bool, error) {
	maxAge, err := authreq.ParseMaxAge(r.RequestURL())
	if err != nil {
		return false, err
	}
	return e.IsAuthenticationTooOld(maxAge, record.AuthenticationDate), nil
}

// IsRequestTooOld resolves the request's current authentication and reports
// whether it is too old. A request with no session reports false: absence is
// not staleness, and callers needing the stronger semantics check
// CurrentAuthentication separately.
func (e *Evaluator) IsRequestTooOld(ctx context.Context, r authreq.Request) (bool, error) {
	record, err := e.CurrentAuthentication(ctx, r)
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, nil
	}
	return e.IsRecordTooOld(r, record)
}

// IsProfileTooOld reports whether the authentication asserted by a federated
// profile is too old for the request's max_age. A profile with no timestamp
// attribute reports false; an unparsable timestamp propagates as a
// *profiles.TimestampParseError.
func (e *Evaluator) IsProfileTooOld(r authreq.Request, profile profiles.FederatedProfile) (bool, error) {
	authDate, ok, err := profile.AuthenticationDate()
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	maxAge, err := authreq.ParseMaxAge(r.RequestURL())
	if err != nil {
		return false, err
	}
	return e.IsAuthenticationTooOld(maxAge, authDate), nil
}

// CurrentAuthentication resolves the request's session token to its
// authentication record. A blank token or an unknown token returns (nil, nil);
// only a failed store round-trip is an error.
func (e *Evaluator) CurrentAuthentication(ctx context.Context, r authreq.Request) (*sessions.AuthenticationRecord, error) {
	token := e.tokens.SessionToken(r)
	if token == "" {
		return nil, nil
	}

	record, err := e.sessions.Lookup(ctx, token)
	if err != nil {
		return nil, errors.Wrap(err, "[CurrentAuthentication] session lookup")
	}
	return record, nil
}
