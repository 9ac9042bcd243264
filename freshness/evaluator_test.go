package freshness_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oidckit/authfresh/authreq"
	"github.com/oidckit/authfresh/freshness"
	"github.com/oidckit/authfresh/profiles"
	"github.com/oidckit/authfresh/sessions"
)

const (
	testCookieName = "authfresh_session"
	authorizeURL   = "https://idp.example.com/oauth2/authorize"
)

var testNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

// stubRequest is a Request with a fixed URL and cookie set.
type stubRequest struct {
	url     string
	cookies map[string]string
}

func (r stubRequest) RequestURL() string { return r.url }

func (r stubRequest) Cookie(name string) string { return r.cookies[name] }

func newTestEvaluator(t *testing.T, store sessions.Store) *freshness.Evaluator {
	t.Helper()

	evaluator, err := freshness.NewEvaluator(
		sessions.CookieTokenReader{Name: testCookieName},
		store,
		freshness.WithNowTime(func() time.Time { return testNow }),
	)
	require.NoError(t, err)
	return evaluator
}

func TestIsAuthenticationTooOld(t *testing.T) {
	evaluator := newTestEvaluator(t, sessions.NewInMemoryStore())

	tenYearsAgo := testNow.AddDate(-10, 0, 0)

	tests := []struct {
		name     string
		maxAge   authreq.MaxAge
		authDate time.Time
		want     bool
	}{
		{
			name:     "absent max_age never stale, even after ten years",
			maxAge:   authreq.MaxAge{Kind: authreq.MaxAgeAbsent},
			authDate: tenYearsAgo,
			want:     false,
		},
		{
			name:     "invalid max_age never stale",
			maxAge:   authreq.MaxAge{Kind: authreq.MaxAgeInvalid},
			authDate: tenYearsAgo,
			want:     false,
		},
		{
			name:     "zero max_age never stale",
			maxAge:   authreq.MaxAge{Kind: authreq.MaxAgeSpecified, Seconds: 0},
			authDate: tenYearsAgo,
			want:     false,
		},
		{
			name:     "within max_age",
			maxAge:   authreq.MaxAge{Kind: authreq.MaxAgeSpecified, Seconds: 60},
			authDate: testNow.Add(-30 * time.Second),
			want:     false,
		},
		{
			name:     "beyond max_age",
			maxAge:   authreq.MaxAge{Kind: authreq.MaxAgeSpecified, Seconds: 60},
			authDate: testNow.Add(-120 * time.Second),
			want:     true,
		},
		{
			name:     "exactly max_age is not stale",
			maxAge:   authreq.MaxAge{Kind: authreq.MaxAgeSpecified, Seconds: 60},
			authDate: testNow.Add(-60 * time.Second),
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, evaluator.IsAuthenticationTooOld(tt.maxAge, tt.authDate))
		})
	}
}

func TestIsRecordTooOld(t *testing.T) {
	evaluator := newTestEvaluator(t, sessions.NewInMemoryStore())
	record := &sessions.AuthenticationRecord{
		Subject:            "casuser",
		AuthenticationDate: testNow.Add(-120 * time.Second),
	}

	tooOld, err := evaluator.IsRecordTooOld(stubRequest{url: authorizeURL + "?max_age=60"}, record)
	require.NoError(t, err)
	require.True(t, tooOld)

	tooOld, err = evaluator.IsRecordTooOld(stubRequest{url: authorizeURL + "?max_age=300"}, record)
	require.NoError(t, err)
	require.False(t, tooOld)

	_, err = evaluator.IsRecordTooOld(stubRequest{url: authorizeURL + "?max_age=%zz"}, record)
	require.ErrorIs(t, err, authreq.ErrMalformedURL)
}

func TestCurrentAuthentication(t *testing.T) {
	store := sessions.NewInMemoryStore()
	store.Save(&sessions.AuthenticationRecord{
		Token:              "token-1",
		Subject:            "casuser",
		AuthenticationDate: testNow.Add(-time.Hour),
	})
	evaluator := newTestEvaluator(t, store)

	record, err := evaluator.CurrentAuthentication(context.Background(), stubRequest{
		url:     authorizeURL,
		cookies: map[string]string{testCookieName: "token-1"},
	})
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, "casuser", record.Subject)

	// No cookie at all: absence, not an error.
	record, err = evaluator.CurrentAuthentication(context.Background(), stubRequest{url: authorizeURL})
	require.NoError(t, err)
	require.Nil(t, record)

	// Cookie pointing to a token the store has never seen: same.
	record, err = evaluator.CurrentAuthentication(context.Background(), stubRequest{
		url:     authorizeURL,
		cookies: map[string]string{testCookieName: "unknown-token"},
	})
	require.NoError(t, err)
	require.Nil(t, record)
}

func TestIsRequestTooOldWithoutSession(t *testing.T) {
	evaluator := newTestEvaluator(t, sessions.NewInMemoryStore())

	tooOld, err := evaluator.IsRequestTooOld(context.Background(), stubRequest{url: authorizeURL + "?max_age=60"})
	require.NoError(t, err)
	require.False(t, tooOld)
}

func TestIsRequestTooOldWithSession(t *testing.T) {
	store := sessions.NewInMemoryStore()
	store.Save(&sessions.AuthenticationRecord{
		Token:              "stale-token",
		Subject:            "casuser",
		AuthenticationDate: testNow.Add(-time.Hour),
	})
	store.Save(&sessions.AuthenticationRecord{
		Token:              "fresh-token",
		Subject:            "casuser",
		AuthenticationDate: testNow.Add(-30 * time.Second),
	})
	evaluator := newTestEvaluator(t, store)

	tooOld, err := evaluator.IsRequestTooOld(context.Background(), stubRequest{
		url:     authorizeURL + "?max_age=60",
		cookies: map[string]string{testCookieName: "stale-token"},
	})
	require.NoError(t, err)
	require.True(t, tooOld)

	tooOld, err = evaluator.IsRequestTooOld(context.Background(), stubRequest{
		url:     authorizeURL + "?max_age=60",
		cookies: map[string]string{testCookieName: "fresh-token"},
	})
	require.NoError(t, err)
	require.False(t, tooOld)
}

func TestIsProfileTooOld(t *testing.T) {
	evaluator := newTestEvaluator(t, sessions.NewInMemoryStore())
	request := stubRequest{url: authorizeURL + "?max_age=60"}

	// Profile without the timestamp attribute: never stale.
	tooOld, err := evaluator.IsProfileTooOld(request, profiles.FederatedProfile{Subject: "casuser"})
	require.NoError(t, err)
	require.False(t, tooOld)

	// Stale upstream authentication.
	tooOld, err = evaluator.IsProfileTooOld(request, profiles.FederatedProfile{
		Subject: "casuser",
		Attributes: map[string]string{
			profiles.AuthenticationDateAttribute: testNow.Add(-time.Hour).Format(time.RFC3339),
		},
	})
	require.NoError(t, err)
	require.True(t, tooOld)

	// Present but unparsable: hard failure, not a silent default.
	_, err = evaluator.IsProfileTooOld(request, profiles.FederatedProfile{
		Subject: "casuser",
		Attributes: map[string]string{
			profiles.AuthenticationDateAttribute: "garbage",
		},
	})
	var parseErr *profiles.TimestampParseError
	require.ErrorAs(t, err, &parseErr)
}

func TestEvaluatorConcurrentUse(t *testing.T) {
	store := sessions.NewInMemoryStore()
	for i := 0; i < 10; i++ {
		store.Save(&sessions.AuthenticationRecord{
			Token:              fmt.Sprintf("token-%d", i),
			Subject:            fmt.Sprintf("user-%d", i),
			AuthenticationDate: testNow.Add(-time.Duration(i*20) * time.Second),
		})
	}
	evaluator := newTestEvaluator(t, store)

	results := make(chan error, 500)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		for j := 0; j < 50; j++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				tooOld, err := evaluator.IsRequestTooOld(context.Background(), stubRequest{
					url:     authorizeURL + "?max_age=60",
					cookies: map[string]string{testCookieName: fmt.Sprintf("token-%d", i)},
				})
				if err != nil {
					results <- err
					return
				}
				if want := i*20 > 60; tooOld != want {
					results <- fmt.Errorf("token-%d: got %v, want %v", i, tooOld, want)
				}
			}(i)
		}
	}
	wg.Wait()
	close(results)
	for err := range results {
		require.NoError(t, err)
	}
}
