package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	portEnvVar    = "PORT"
	appNameVar    = "APP_NAME"
	baseURLVar    = "BASE_URL"
	cookieNameVar = "SESSION_COOKIE_NAME"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port != "" || port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Auth Fresh")
}

// GetBaseURL returns the base URL this endpoint is served from
// (e.g., "https://auth.example.com"), used for the upstream redirect URI.
func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8080")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func (EnvVars) GetSessionCookieName() string {
	return GetEnv(cookieNameVar, "authfresh_session")
}

// GetSessionBackend selects the session store: "memory", "redis" or "jwt".
func (EnvVars) GetSessionBackend() string {
	return GetEnv("SESSION_BACKEND", "memory")
}

// GetSessionTTL returns the session lifetime in seconds.
func (EnvVars) GetSessionTTL() int {
	ttl, err := strconv.Atoi(GetEnv("SESSION_TTL", "28800"))
	if err != nil {
		return 28800
	}
	return ttl
}

func (EnvVars) GetSessionSigningKey() string {
	return GetEnv("SESSION_SIGNING_KEY", "")
}

func (EnvVars) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (EnvVars) GetUpstreamIssuer() string {
	return GetEnv("UPSTREAM_ISSUER", "")
}

func (EnvVars) GetUpstreamClientID() string {
	return GetEnv("UPSTREAM_CLIENT_ID", "")
}

func (EnvVars) GetUpstreamClientSecret() string {
	return GetEnv("UPSTREAM_CLIENT_SECRET", "")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
