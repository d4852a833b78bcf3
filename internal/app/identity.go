package app

import (
	"context"
	"errors"
	"fmt"

	"daily-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// DefaultIdentityKey is the fixed key the user identifier lives under.
const DefaultIdentityKey = "quiz_user_id"

// IdentityStore is a tiny key-value capability holding opaque identifiers.
type IdentityStore interface {
	// Get returns domain.ErrIdentityNotFound when key is absent.
	Get(ctx context.Context, key string) (string, error)
	// SetIfAbsent stores value unless key already exists and returns the stored value.
	SetIfAbsent(ctx context.Context, key, value string) (string, error)
}

// IdentityResolver hands out the analytics user identifier, creating it once.
type IdentityResolver struct {
	store IdentityStore
	key   string
	newID func() string
}

func NewIdentityResolver(store IdentityStore, key string) *IdentityResolver {
	if key == "" {
		key = DefaultIdentityKey
	}
	return &IdentityResolver{store: store, key: key, newID: uuid.NewString}
}

// ForDevice scopes the resolver to one client device. An empty device ID
// returns the resolver unchanged.
func (r *IdentityResolver) ForDevice(deviceID string) *IdentityResolver {
	if deviceID == "" {
		return r
	}
	return &IdentityResolver{store: r.store, key: r.key + ":" + deviceID, newID: r.newID}
}

// Key is the storage key used by this resolver.
func (r *IdentityResolver) Key() string {
	return r.key
}

// Resolve returns the stored identifier or generates and persists a new one.
func (r *IdentityResolver) Resolve(ctx context.Context) (string, error) {
	id, err := r.store.Get(ctx, r.key)
	if err == nil && id != "" {
		return id, nil
	}
	if err != nil && !errors.Is(err, domain.ErrIdentityNotFound) {
		return "", fmt.Errorf("read identity: %w", err)
	}
	stored, err := r.store.SetIfAbsent(ctx, r.key, r.newID())
	if err != nil {
		return "", fmt.Errorf("store identity: %w", err)
	}
	return stored, nil
}
