package redis

import (
	"context"
	"errors"
	"testing"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestIdentityStoreKeepsFirstValue(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := NewIdentityStore(newClient(mr))

	if _, err := store.Get(ctx, "quiz_user_id"); !errors.Is(err, domain.ErrIdentityNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if v, err := store.SetIfAbsent(ctx, "quiz_user_id", "first"); err != nil || v != "first" {
		t.Fatalf("expected first, got %q (%v)", v, err)
	}
	if v, err := store.SetIfAbsent(ctx, "quiz_user_id", "second"); err != nil || v != "first" {
		t.Fatalf("expected first kept, got %q (%v)", v, err)
	}
	if got, _ := mr.Get("quiz:identity:quiz_user_id"); got != "first" {
		t.Fatalf("unexpected raw value %q", got)
	}
}

func TestIdentityResolverOverRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	resolver := app.NewIdentityResolver(NewIdentityStore(newClient(mr)), "")
	first, err := resolver.ForDevice("laptop").Resolve(context.Background())
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	again, err := resolver.ForDevice("laptop").Resolve(context.Background())
	if err != nil {
		t.Fatalf("resolve again: %v", err)
	}
	if first == "" || first != again {
		t.Fatalf("expected stable identifier, got %q then %q", first, again)
	}
	other, _ := resolver.ForDevice("phone").Resolve(context.Background())
	if other == first {
		t.Fatalf("expected separate identifier per device")
	}
}
