package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/oidckit/authfresh/authreq"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Authorize validates the freshness of the caller's session against the
// authorization request and either lets the flow continue or forces a login.
func (s *Server) Authorize() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := authreq.FromHTTP(r)

		prompts, err := authreq.PromptTokens(req.RequestURL())
		if err != nil {
			s.protocolError(w, "invalid_request", err)
			return
		}

		record, err := s.evaluator.CurrentAuthentication(r.Context(), req)
		if err != nil {
			s.log.Err(err).Msg("session lookup failed")
			http.Error(w, "session lookup failed", http.StatusInternalServerError)
			return
		}

		tooOld := false
		if record != nil {
			if tooOld, err = s.evaluator.IsRecordTooOld(req, record); err != nil {
				s.protocolError(w, "invalid_request", err)
				return
			}
		}

		mustLogin := record == nil || tooOld || prompts.Contains(authreq.PromptLogin)
		if !mustLogin {
			w.Header().Set("Content-Type", contentTypeJSON)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"subject":   record.Subject,
				"auth_time": record.AuthenticationDate.Unix(),
			})
			return
		}

		// prompt=none forbids any interaction, so a missing or stale session
		// is a protocol error rather than a login redirect.
		if prompts.Contains(authreq.PromptNone) {
			s.protocolError(w, "login_required", nil)
			return
		}

		// Strip prompt before saving the resume URL so the forced login does
		// not retrigger itself on the way back.
		returnTo, err := authreq.RemovePrompt(req.RequestURL())
		if err != nil {
			s.protocolError(w, "invalid_request", err)
			return
		}
		s.setLoginFlowCookie(w, r, returnToCookieName, returnTo)
		http.Redirect(w, r, RouteLogin, http.StatusSeeOther)
	}
}

// Login starts the upstream federated login.
func (s *Server) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.upstream == nil {
			http.Error(w, "no upstream identity provider configured", http.StatusServiceUnavailable)
			return
		}

		state := generateRandomString(32)
		nonce := generateRandomString(32)
		s.setLoginFlowCookie(w, r, loginStateCookieName, state)
		s.setLoginFlowCookie(w, r, loginNonceCookieName, nonce)

		http.Redirect(w, r, s.upstream.AuthCodeURL(state, nonce), http.StatusSeeOther)
	}
}

// Callback completes the upstream login: it verifies the returned identity,
// re-checks freshness against the original authorization request, mints the
// local session and resumes the flow.
func (s *Server) Callback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.upstream == nil {
			http.Error(w, "no upstream identity provider configured", http.StatusServiceUnavailable)
			return
		}

		if errorParam := r.FormValue("error"); errorParam != "" {
			s.protocolError(w, errorParam, errors.New(r.FormValue("error_description")))
			return
		}

		code := r.FormValue("code")
		state := r.FormValue("state")
		if code == "" || state == "" || state != cookieValue(r, loginStateCookieName) {
			s.protocolError(w, "invalid_request", errors.New("missing or mismatched code/state"))
			return
		}

		profile, err := s.upstream.Exchange(r.Context(), code, cookieValue(r, loginNonceCookieName))
		if err != nil {
			s.log.Err(err).Msg("upstream exchange failed")
			http.Error(w, "upstream exchange failed", http.StatusBadGateway)
			return
		}

		returnTo := cookieValue(r, returnToCookieName)
		if returnTo == "" {
			returnTo = RouteAuthorize
		}

		// A present-but-unparsable profile timestamp propagates from the
		// evaluator and rejects the request; it never defaults to fresh.
		tooOld, err := s.evaluator.IsProfileTooOld(authreq.FromURL(returnTo), profile)
		if err != nil {
			s.protocolError(w, "invalid_request", err)
			return
		}

		// The upstream SSO session itself is too old for the requested
		// max_age: send the user back with a forced interactive login.
		if tooOld {
			state := generateRandomString(32)
			nonce := generateRandomString(32)
			s.setLoginFlowCookie(w, r, loginStateCookieName, state)
			s.setLoginFlowCookie(w, r, loginNonceCookieName, nonce)
			url := s.upstream.AuthCodeURL(state, nonce, oauth2.SetAuthURLParam("prompt", "login"))
			http.Redirect(w, r, url, http.StatusSeeOther)
			return
		}

		authDate := time.Now().UTC()
		if date, ok, _ := profile.AuthenticationDate(); ok {
			authDate = date
		}

		token, err := s.issuer.Issue(r.Context(), profile.Subject, authDate)
		if err != nil {
			s.log.Err(err).Msg("failed to issue session")
			http.Error(w, "failed to issue session", http.StatusInternalServerError)
			return
		}

		s.setSessionCookie(w, r, token)
		s.clearLoginFlowCookies(w)
		http.Redirect(w, r, returnTo, http.StatusSeeOther)
	}
}

// protocolError rejects the request with an OAuth-style error document.
// There is never a silent "fresh" default on a failed validation.
func (s *Server) protocolError(w http.ResponseWriter, code string, err error) {
	if err != nil {
		s.log.Warn().Err(err).Str("error_code", code).Msg("rejecting authorization request")
	}
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(http.StatusBadRequest)
	resp := map[string]string{"error": code}
	if err != nil {
		resp["error_description"] = err.Error()
	}
	_ = json.NewEncoder(w).Encode(resp)
}
