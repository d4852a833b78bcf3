package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
)

func TestSessionStoreWritesAndClearsSnapshots(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)
	controller, err := app.NewController(sampleQuestion(), 30, "u1")
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	session := app.NewSession("s1", controller)

	store.Put(session)
	if !mr.Exists("quiz:session:s1") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("quiz:session:s1"); ttl != time.Minute {
		t.Fatalf("expected ttl of one minute, got %v", ttl)
	}

	if _, err := controller.SelectOption("c"); err != nil {
		t.Fatalf("select: %v", err)
	}
	controller.Submit()
	store.Touch(session)

	snap, err := store.LoadSnapshot(context.Background(), "s1")
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if snap.Phase != domain.PhaseSubmitted || snap.State.IsCorrect == nil || !*snap.State.IsCorrect {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	store.Delete("s1")
	if mr.Exists("quiz:session:s1") {
		t.Fatalf("expected redis key to be removed")
	}
	if _, ok := store.Get("s1"); ok {
		t.Fatalf("expected local session removed")
	}
	if _, err := store.LoadSnapshot(context.Background(), "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}
