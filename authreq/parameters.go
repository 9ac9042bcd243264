package authreq

import (
	"net/url"
	"strconv"
	"strings"
)

// OIDC authorization request parameter names read by this package.
const (
	// PromptParameter lists the interaction modes the relying party asks for,
	// as space-delimited tokens.
	PromptParameter = "prompt"

	// MaxAgeParameter bounds, in seconds, how old an existing authentication
	// may be before the provider must re-authenticate the user.
	MaxAgeParameter = "max_age"
)

// Well-known prompt tokens.
const (
	PromptLogin         = "login"
	PromptNone          = "none"
	PromptConsent       = "consent"
	PromptSelectAccount = "select_account"
)

// PromptSet is the deduplicated set of prompt tokens from an authorization request.
type PromptSet map[string]struct{}

// Contains reports whether the given prompt token was requested.
func (s PromptSet) Contains(token string) bool {
	_, ok := s[token]
	return ok
}

// MaxAgeKind distinguishes the three states a max_age parameter can be in.
// An unparsable value is deliberately not an error: it downgrades to
// MaxAgeInvalid, which the freshness policy treats as "no constraint".
// Callers must never conflate MaxAgeInvalid with MaxAgeAbsent.
type MaxAgeKind int

const (
	// MaxAgeAbsent means no max_age parameter was present on the request.
	MaxAgeAbsent MaxAgeKind = iota
	// MaxAgeInvalid means a max_age parameter was present but was not a
	// non-negative integer.
	MaxAgeInvalid
	// MaxAgeSpecified means max_age carried a usable value in Seconds.
	MaxAgeSpecified
)

// MaxAge is the parsed max_age parameter of an authorization request.
type MaxAge struct {
	Kind    MaxAgeKind
	Seconds int64
}

// Enforceable reports whether this max_age can force re-authentication.
// Absent, invalid and zero values never do.
func (m MaxAge) Enforceable() bool {
	return m.Kind == MaxAgeSpecified && m.Seconds > 0
}

// PromptTokens extracts the prompt tokens from an authorization request URL.
// Every prompt parameter is split on single spaces and the tokens are
// collected into a set. The set is empty when no prompt parameter exists.
func PromptTokens(rawURL string) (PromptSet, error) {
	query, err := requestQuery(rawURL)
	if err != nil {
		return nil, err
	}

	tokens := make(PromptSet)
	for _, value := range query[PromptParameter] {
		for _, token := range strings.Split(value, " ") {
			if token == "" {
				continue
			}
			tokens[token] = struct{}{}
		}
	}
	return tokens, nil
}

// ParseMaxAge extracts the first max_age parameter from an authorization
// request URL.
func ParseMaxAge(rawURL string) (MaxAge, error) {
	query, err := requestQuery(rawURL)
	if err != nil {
		return MaxAge{}, err
	}

	values, ok := query[MaxAgeParameter]
	if !ok || len(values) == 0 {
		return MaxAge{Kind: MaxAgeAbsent}, nil
	}

	seconds, err := strconv.ParseInt(values[0], 10, 64)
	if err != nil || seconds < 0 {
		return MaxAge{Kind: MaxAgeInvalid}, nil
	}
	return MaxAge{Kind: MaxAgeSpecified, Seconds: seconds}, nil
}

// RemovePrompt strips the prompt parameter from an authorization request URL,
// so a flow resumed after a forced login does not force it again.
func RemovePrompt(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", MalformedURLError(rawURL, err)
	}
	query, err := url.ParseQuery(parsed.RawQuery)
	if err != nil {
		return "", MalformedURLError(rawURL, err)
	}
	query.Del(PromptParameter)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func requestQuery(rawURL string) (url.Values, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, MalformedURLError(rawURL, err)
	}
	query, err := url.ParseQuery(parsed.RawQuery)
	if err != nil {
		return nil, MalformedURLError(rawURL, err)
	}
	return query, nil
}
