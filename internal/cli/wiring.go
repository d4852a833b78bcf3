package cli

import (
	"context"
	"fmt"
	"log"
	"time"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/config"
	"daily-quiz-service/internal/domain"
	"daily-quiz-service/internal/infra/file"
	"daily-quiz-service/internal/infra/memory"
	"daily-quiz-service/internal/infra/notify"
	pgloader "daily-quiz-service/internal/infra/postgres"
	redisinfra "daily-quiz-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

// backends holds everything buildService opened so it can be released.
type backends struct {
	closers []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// buildService wires stores, loader and notifier from config. Redis and
// Postgres are optional; without them everything stays in memory. An
// identities store passed in belongs to a single local player.
func buildService(ctx context.Context, cfg config.Config, identities app.IdentityStore, ticker app.TickerFunc) (*app.QuizService, *backends, error) {
	b := &backends{}
	singlePlayer := identities != nil

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { _ = redisClient.Close() })
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(sampleQuestions())
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, nil, err
		}
		b.closers = append(b.closers, pool.Close)
		loader = pgloader.NewQuestionLoader(pool)
	}

	questionTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)
	var questions app.QuestionRepository
	var sessions app.SessionRepository
	if redisClient != nil {
		questions = redisinfra.NewQuestionRepository(redisClient, loader, questionTTL)
		sessions = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		questions = memory.NewQuestionRepository(loader, questionTTL)
		sessions = memory.NewSessionStore()
	}

	if identities == nil {
		switch {
		case redisClient != nil:
			identities = redisinfra.NewIdentityStore(redisClient)
		case cfg.Identity.File != "":
			identities = file.NewIdentityStore(cfg.Identity.File)
		default:
			identities = memory.NewIdentityStore()
		}
	}

	notifier, err := buildNotifier(cfg, b)
	if err != nil {
		b.Close()
		return nil, nil, err
	}

	service := app.NewQuizService(sessions, questions, identities, notifier, app.Options{
		TimerSeconds:  cfg.TimerSeconds(),
		Ticker:        ticker,
		NotifyTimeout: config.TTLDuration(cfg.Notify.Timeout, 5*time.Second),
		SinglePlayer:  singlePlayer,
	})
	return service, b, nil
}

func buildNotifier(cfg config.Config, b *backends) (app.Notifier, error) {
	timeout := config.TTLDuration(cfg.Notify.Timeout, 5*time.Second)
	switch cfg.Notify.Kind {
	case "":
		return nil, nil
	case "http":
		if cfg.Notify.URL == "" {
			return nil, fmt.Errorf("notify.url required for http notifier")
		}
		return notify.NewHTTPNotifier(cfg.Notify.URL, timeout), nil
	case "amqp":
		if cfg.Notify.URL == "" || cfg.Notify.Exchange == "" {
			return nil, fmt.Errorf("notify.url and notify.exchange required for amqp notifier")
		}
		n, err := notify.NewAMQPNotifier(cfg.Notify.URL, cfg.Notify.Exchange)
		if err != nil {
			// Notifications never gate the quiz; run without them.
			log.Printf("amqp notifier unavailable, session starts will not be reported: %v", err)
			return nil, nil
		}
		b.closers = append(b.closers, n.Close)
		return n, nil
	default:
		return nil, fmt.Errorf("unknown notify kind %q", cfg.Notify.Kind)
	}
}

// sampleQuestions seeds the static loader used when Postgres is not configured.
func sampleQuestions() map[string]domain.Question {
	return map[string]domain.Question{
		"red-planet": {
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
		},
		"largest-planet": {
			ID:       "largest-planet",
			Category: "Space & Science",
			Prompt:   "Which planet is the largest in our solar system?",
			Options: []domain.Option{
				{ID: "a", Label: "A", Text: "Earth"},
				{ID: "b", Label: "B", Text: "Jupiter"},
				{ID: "c", Label: "C", Text: "Neptune"},
				{ID: "d", Label: "D", Text: "Uranus"},
			},
			CorrectAnswer: "b",
		},
	}
}
