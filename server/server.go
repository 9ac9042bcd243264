package server

import (
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/oidckit/authfresh/federation"
	"github.com/oidckit/authfresh/freshness"
	"github.com/oidckit/authfresh/internal/config"
	"github.com/oidckit/authfresh/sessions"
)

// Server hosts the authorization endpoint and the login plumbing around the
// freshness evaluator.
type Server struct {
	mux       *http.ServeMux
	config    config.Config
	evaluator *freshness.Evaluator
	issuer    sessions.Issuer
	upstream  *federation.Client
	log       zerolog.Logger
}

func New(cfg config.Config, store sessions.Store, issuer sessions.Issuer, upstream *federation.Client, log zerolog.Logger) (*Server, error) {
	evaluator, err := freshness.NewEvaluator(
		sessions.CookieTokenReader{Name: cfg.GetSessionCookieName()},
		store,
		freshness.WithLogger(log),
	)
	if err != nil {
		return nil, errors.Wrap(err, "[server.New] create evaluator")
	}

	s := &Server{
		mux:       http.NewServeMux(),
		config:    cfg,
		evaluator: evaluator,
		issuer:    issuer,
		upstream:  upstream,
		log:       log,
	}
	s.initRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) initRoutes() {
	s.mux.HandleFunc("GET "+RouteAuthorize, s.Authorize())
	s.mux.HandleFunc("GET "+RouteLogin, s.Login())
	s.mux.HandleFunc("GET "+RouteCallback, s.Callback())
}
