package config

type Config interface {
	EnvConfig
	SessionConfig
	UpstreamConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetBaseURL() string
	GetEnv() string
}

type SessionConfig interface {
	GetSessionCookieName() string
	GetSessionBackend() string
	GetSessionTTL() int
	GetSessionSigningKey() string
	GetRedisAddr() string
}

type UpstreamConfig interface {
	GetUpstreamIssuer() string
	GetUpstreamClientID() string
	GetUpstreamClientSecret() string
}

type mainConfig struct {
	EnvVars
}

func New() Config {
	return mainConfig{}
}
