package server

// Routes served by this endpoint.
const (
	RouteAuthorize = "/oauth2/authorize"
	RouteLogin     = "/login"
	RouteCallback  = "/login/callback"
)
