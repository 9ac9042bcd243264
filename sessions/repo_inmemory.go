package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	_ Store  = (*InMemoryStore)(nil)
	_ Issuer = (*InMemoryStore)(nil)
)

// InMemoryStore keeps authentication records in a map. Suitable for single
// instance deployments and tests.
type InMemoryStore struct {
	records map[string]*AuthenticationRecord
	lock    sync.RWMutex
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string]*AuthenticationRecord),
	}
}

func (s *InMemoryStore) Lookup(_ context.Context, token string) (*AuthenticationRecord, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	record, ok := s.records[token]
	if !ok {
		return nil, nil
	}
	return record, nil
}

func (s *InMemoryStore) Issue(_ context.Context, subject string, authDate time.Time) (string, error) {
	token := uuid.New().String()

	s.lock.Lock()
	defer s.lock.Unlock()

	s.records[token] = &AuthenticationRecord{
		Token:              token,
		Subject:            subject,
		AuthenticationDate: authDate.UTC(),
	}
	return token, nil
}

// Save stores a pre-built record under its token.
func (s *InMemoryStore) Save(record *AuthenticationRecord) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.records[record.Token] = record
}
