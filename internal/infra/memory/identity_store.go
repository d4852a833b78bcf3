package memory

import (
	"context"
	"sync"

	"daily-quiz-service/internal/domain"
)

// IdentityStore keeps identifiers in process memory.
type IdentityStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewIdentityStore() *IdentityStore {
	return &IdentityStore{values: make(map[string]string)}
}

func (s *IdentityStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return "", domain.ErrIdentityNotFound
	}
	return v, nil
}

func (s *IdentityStore) SetIfAbsent(_ context.Context, key, value string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[key]; ok {
		return v, nil
	}
	s.values[key] = value
	return value, nil
}
