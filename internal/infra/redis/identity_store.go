package redis

import (
	"context"

	"daily-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// IdentityStore keeps user identifiers in Redis without expiry.
type IdentityStore struct {
	client *redis.Client
	prefix string
}

func NewIdentityStore(client *redis.Client) *IdentityStore {
	return &IdentityStore{client: client, prefix: "quiz:identity:"}
}

func (s *IdentityStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return "", domain.ErrIdentityNotFound
	}
	return v, err
}

// SetIfAbsent relies on SETNX so concurrent first visits agree on one value.
func (s *IdentityStore) SetIfAbsent(ctx context.Context, key, value string) (string, error) {
	ok, err := s.client.SetNX(ctx, s.prefix+key, value, 0).Result()
	if err != nil {
		return "", err
	}
	if ok {
		return value, nil
	}
	return s.Get(ctx, key)
}
