// Package redisstore is a Redis implementation of the session store, for
// deployments where authentication records are shared across instances.
package redisstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/oidckit/authfresh/sessions"
)

const defaultKeyPrefix = "authfresh:session:"

var (
	_ sessions.Store  = (*Store)(nil)
	_ sessions.Issuer = (*Store)(nil)
)

// Store resolves session tokens against Redis. Records are stored as JSON
// under a prefixed key and expire after TTL.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{
		client: client,
		prefix: defaultKeyPrefix,
		ttl:    ttl,
	}
}

func (s *Store) Lookup(ctx context.Context, token string) (*sessions.AuthenticationRecord, error) {
	payload, err := s.client.Get(ctx, s.prefix+token).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "[redisstore.Lookup] redis get")
	}

	var record sessions.AuthenticationRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, errors.Wrap(err, "[redisstore.Lookup] unmarshal record")
	}
	return &record, nil
}

func (s *Store) Issue(ctx context.Context, subject string, authDate time.Time) (string, error) {
	token := uuid.New().String()

	payload, err := json.Marshal(&sessions.AuthenticationRecord{
		Token:              token,
		Subject:            subject,
		AuthenticationDate: authDate.UTC(),
	})
	if err != nil {
		return "", errors.Wrap(err, "[redisstore.Issue] marshal record")
	}

	if err := s.client.Set(ctx, s.prefix+token, payload, s.ttl).Err(); err != nil {
		return "", errors.Wrap(err, "[redisstore.Issue] redis set")
	}
	return token, nil
}
