package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"daily-quiz-service/internal/domain"
)

func TestQuestionRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		QuestionLoader: NewStaticQuestionLoader(map[string]domain.Question{
			"red-planet": sampleQuestion(),
		}),
	}
	repo := NewQuestionRepository(loader, time.Minute)

	if _, err := repo.GetQuestion(context.Background(), "red-planet"); err != nil {
		t.Fatalf("get question: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader once, got %d", loader.count())
	}

	if _, err := repo.GetQuestion(context.Background(), "red-planet"); err != nil {
		t.Fatalf("get question 2: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.count())
	}
}

func TestQuestionRepositoryExpires(t *testing.T) {
	loader := &countingLoader{
		QuestionLoader: NewStaticQuestionLoader(map[string]domain.Question{
			"red-planet": sampleQuestion(),
		}),
	}
	repo := NewQuestionRepository(loader, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetQuestion(context.Background(), "red-planet")
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetQuestion(context.Background(), "red-planet")
	if loader.count() != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.count())
	}
}

func TestQuestionRepositoryUnknown(t *testing.T) {
	repo := NewQuestionRepository(NewStaticQuestionLoader(nil), time.Minute)
	_, err := repo.GetQuestion(context.Background(), "missing")
	if !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected question not found, got %v", err)
	}
}

type countingLoader struct {
	QuestionLoader
	mu    sync.Mutex
	calls int
}

func (l *countingLoader) LoadQuestion(ctx context.Context, questionID string) (domain.Question, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.QuestionLoader.LoadQuestion(ctx, questionID)
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func sampleQuestion() domain.Question {
	return domain.Question{
		ID:       "red-planet",
		Category: "Space & Science",
		Prompt:   "Which planet is known as the Red Planet?",
		Options: []domain.Option{
			{ID: "a", Label: "A", Text: "Venus"},
			{ID: "b", Label: "B", Text: "Saturn"},
			{ID: "c", Label: "C", Text: "Mars"},
			{ID: "d", Label: "D", Text: "Mercury"},
		},
		CorrectAnswer: "c",
	}
}
