package memory

import (
	"testing"

	"daily-quiz-service/internal/app"
)

func TestSessionStoreLifecycle(t *testing.T) {
	store := NewSessionStore()

	controller, err := app.NewController(sampleQuestion(), 30, "u1")
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	session := app.NewSession("s1", controller)
	store.Put(session)

	got, ok := store.Get("s1")
	if !ok || got != session {
		t.Fatalf("expected session present")
	}
	store.Touch(session)

	store.Delete("s1")
	if _, ok := store.Get("s1"); ok {
		t.Fatalf("expected session removed")
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
}
