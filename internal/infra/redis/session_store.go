package redis

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Notes:
//   - Live sessions (controller, countdown, subscribers) stay in a local map;
//     they own goroutines and cannot move between processes.
//   - Every state change writes a JSON snapshot with TTL so other instances and
//     operators can inspect a session, and stale keys expire on their own.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

// Snapshot is the persisted form of a session.
type Snapshot struct {
	SessionID  string              `json:"sessionId"`
	QuestionID string              `json:"questionId"`
	Phase      domain.Phase        `json:"phase"`
	State      domain.SessionState `json:"state"`
	CreatedAt  time.Time           `json:"createdAt"`
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Put(session *app.Session) {
	s.mu.Lock()
	s.sessions[session.ID()] = session
	s.mu.Unlock()
	s.Touch(session)
}

func (s *SessionStore) Get(sessionID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

// Touch writes the session snapshot. Failures are logged and otherwise ignored.
func (s *SessionStore) Touch(session *app.Session) {
	view := session.View()
	data, err := json.Marshal(Snapshot{
		SessionID:  session.ID(),
		QuestionID: view.QuestionID,
		Phase:      view.Phase,
		State:      session.State(),
		CreatedAt:  session.CreatedAt(),
	})
	if err != nil {
		log.Printf("marshal session snapshot: %v", err)
		return
	}
	if err := s.client.Set(context.Background(), s.key(session.ID()), data, s.ttl).Err(); err != nil {
		log.Printf("store session snapshot %s: %v", session.ID(), err)
	}
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
}

// LoadSnapshot reads the persisted snapshot of a session.
func (s *SessionStore) LoadSnapshot(ctx context.Context, sessionID string) (Snapshot, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if err == redis.Nil {
		return Snapshot{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s *SessionStore) key(sessionID string) string {
	return "quiz:session:" + sessionID
}
