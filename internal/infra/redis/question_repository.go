package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"daily-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches question content from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadQuestion(ctx context.Context, questionID string) (domain.Question, error)
}

// QuestionRepository caches questions in Redis (hash per question) and falls back to a loader on cache miss.
// Stored as: HSET question:{id} category .. prompt .. correct .. options <json>
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rndMu  sync.Mutex
	rnd    *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) GetQuestion(ctx context.Context, questionID string) (domain.Question, error) {
	if q, ok := r.fromCache(ctx, questionID); ok {
		return q, nil
	}

	result, err, _ := r.sf.Do(questionID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if q, ok := r.fromCache(ctx, questionID); ok {
			return q, nil
		}

		question, err := r.loader.LoadQuestion(ctx, questionID)
		if err != nil {
			return domain.Question{}, err
		}

		options, err := json.Marshal(question.Options)
		if err != nil {
			return domain.Question{}, err
		}
		key := r.key(questionID)
		pipe := r.client.Pipeline()
		pipe.HSet(ctx, key,
			"category", question.Category,
			"prompt", question.Prompt,
			"correct", question.CorrectAnswer,
			"options", string(options),
		)
		if ttl := r.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		// cache fill is best effort
		_, _ = pipe.Exec(ctx)

		return question, nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	return result.(domain.Question), nil
}

func (r *QuestionRepository) fromCache(ctx context.Context, questionID string) (domain.Question, bool) {
	fields, err := r.client.HGetAll(ctx, r.key(questionID)).Result()
	if err != nil || len(fields) == 0 {
		return domain.Question{}, false
	}
	var options []domain.Option
	if err := json.Unmarshal([]byte(fields["options"]), &options); err != nil {
		return domain.Question{}, false
	}
	return domain.Question{
		ID:            questionID,
		Category:      fields["category"],
		Prompt:        fields["prompt"],
		Options:       options,
		CorrectAnswer: fields["correct"],
	}, true
}

func (r *QuestionRepository) key(questionID string) string {
	return "question:" + questionID
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
