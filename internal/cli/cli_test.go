package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/config"
	"daily-quiz-service/internal/infra/memory"
)

func idleTicker(time.Duration) (<-chan time.Time, func()) {
	return make(chan time.Time), func() {}
}

func TestPlaySessionCorrectAnswer(t *testing.T) {
	ctx := context.Background()
	service, backends, err := buildService(ctx, config.Config{}, memory.NewIdentityStore(), idleTicker)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	defer backends.Close()

	var out bytes.Buffer
	in := strings.NewReader("s\nz\nc\ns\nq\n")
	if err := playSession(ctx, service, app.StartRequest{QuestionID: "red-planet"}, in, &out); err != nil {
		t.Fatalf("play: %v", err)
	}

	text := out.String()
	for _, want := range []string{
		"Which planet is known as the Red Planet?",
		"error: option not found",
		"selected: c",
		"Correct! Nicely done.",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
}

func TestBuildNotifierKinds(t *testing.T) {
	var cfg config.Config
	b := &backends{}

	if n, err := buildNotifier(cfg, b); err != nil || n != nil {
		t.Fatalf("expected notifications disabled, got %v %v", n, err)
	}

	cfg.Notify.Kind = "http"
	if _, err := buildNotifier(cfg, b); err == nil {
		t.Fatalf("expected error without url")
	}
	cfg.Notify.URL = "http://localhost:9/hits"
	if n, err := buildNotifier(cfg, b); err != nil || n == nil {
		t.Fatalf("expected http notifier, got %v %v", n, err)
	}

	cfg.Notify.Kind = "carrier-pigeon"
	if _, err := buildNotifier(cfg, b); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"start", "migrate", "play"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Fatalf("expected %s subcommand, got %v (%v)", name, cmd, err)
		}
	}
}
