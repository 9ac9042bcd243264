package server

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
)

const (
	// loginStateCookieName tracks the upstream login state across the redirect.
	loginStateCookieName = "login_state"
	// loginNonceCookieName carries the ID-token nonce across the redirect.
	loginNonceCookieName = "login_nonce"
	// returnToCookieName remembers the original authorize URL across the login.
	returnToCookieName = "return_to"

	// loginFlowCookieMaxAge bounds the whole upstream round-trip.
	loginFlowCookieMaxAge = 300
)

// generateRandomString creates a random base64url string
func generateRandomString(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetSessionCookieName(),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   requestIsSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) setLoginFlowCookie(w http.ResponseWriter, r *http.Request, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   requestIsSecure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   loginFlowCookieMaxAge,
	})
}

func (s *Server) clearLoginFlowCookies(w http.ResponseWriter) {
	for _, name := range []string{loginStateCookieName, loginNonceCookieName, returnToCookieName} {
		http.SetCookie(w, &http.Cookie{Name: name, Path: "/", MaxAge: -1})
	}
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func requestIsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return r.Header.Get("X-Forwarded-Proto") == "https"
}
