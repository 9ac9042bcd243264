package authreq

import (
	"net/http"
	"net/url"
)

// Request is the view of an incoming authorization request this module needs:
// the full request URL and named cookie values. Each transport implements it
// once; nothing downstream ever narrows it to a concrete request type.
type Request interface {
	// RequestURL returns the full URL the authorization request was made to,
	// including the query string.
	RequestURL() string

	// Cookie returns the value of the named cookie, or the empty string if
	// the cookie is not present.
	Cookie(name string) string
}

// FromURL adapts a bare URL to the Request capability interface, for callers
// that hold the authorization request URL but no transport request (for
// example a federation callback replaying the original request). It carries
// no cookies.
func FromURL(rawURL string) Request {
	return urlRequest(rawURL)
}

type urlRequest string

func (u urlRequest) RequestURL() string { return string(u) }

func (u urlRequest) Cookie(name string) string { return "" }

type httpRequest struct {
	r *http.Request
}

// FromHTTP adapts a net/http request to the Request capability interface.
func FromHTTP(r *http.Request) Request {
	return httpRequest{r: r}
}

func (h httpRequest) RequestURL() string {
	u := url.URL{
		Scheme:   requestScheme(h.r),
		Host:     h.r.Host,
		Path:     h.r.URL.Path,
		RawQuery: h.r.URL.RawQuery,
	}
	return u.String()
}

func (h httpRequest) Cookie(name string) string {
	cookie, err := h.r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// requestScheme determines the scheme (http/https), honouring proxies.
func requestScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
