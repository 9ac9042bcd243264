package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/oidckit/authfresh/federation"
	"github.com/oidckit/authfresh/internal/config"
	"github.com/oidckit/authfresh/server"
	"github.com/oidckit/authfresh/sessions"
	"github.com/oidckit/authfresh/sessions/jwtstore"
	"github.com/oidckit/authfresh/sessions/redisstore"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("error running server")
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	store, issuer, err := buildSessionStore(c)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}

	upstream, err := buildUpstream(c)
	if err != nil {
		return fmt.Errorf("upstream provider: %w", err)
	}

	handler, err := server.New(c, store, issuer, upstream, logger)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: handler}
	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

func buildSessionStore(c config.Config) (sessions.Store, sessions.Issuer, error) {
	ttl := time.Duration(c.GetSessionTTL()) * time.Second

	switch c.GetSessionBackend() {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: c.GetRedisAddr()})
		store := redisstore.New(client, ttl)
		return store, store, nil
	case "jwt":
		store, err := jwtstore.New([]byte(c.GetSessionSigningKey()), c.GetBaseURL(), ttl)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	default:
		store := sessions.NewInMemoryStore()
		return store, store, nil
	}
}

func buildUpstream(c config.Config) (*federation.Client, error) {
	if c.GetUpstreamIssuer() == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return federation.New(
		ctx,
		c.GetUpstreamIssuer(),
		c.GetUpstreamClientID(),
		c.GetUpstreamClientSecret(),
		c.GetBaseURL()+server.RouteCallback,
	)
}

func listenAndServe(server *http.Server) {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
