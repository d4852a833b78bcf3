package app

import (
	"context"
	"sync"
	"time"

	"daily-quiz-service/internal/domain"
	"daily-quiz-service/internal/metrics"
	"github.com/google/uuid"
)

// SessionRepository abstracts where live quiz sessions are tracked (in-memory, Redis, etc).
type SessionRepository interface {
	Put(session *Session)
	Get(sessionID string) (*Session, bool)
	// Touch is called after every state change so stores can persist a snapshot.
	Touch(session *Session)
	Delete(sessionID string)
}

// QuestionRepository loads question content (from cache/backing store).
type QuestionRepository interface {
	GetQuestion(ctx context.Context, questionID string) (domain.Question, error)
}

// Options tunes a QuizService. Zero values fall back to sensible defaults.
type Options struct {
	TimerSeconds  int
	TickInterval  time.Duration
	Ticker        TickerFunc
	NotifyTimeout time.Duration
	// SinglePlayer marks the identity store as belonging to one local
	// player, so starts without a DeviceID share the bare identity key.
	// A shared store instead gives every anonymous start its own identifier.
	SinglePlayer bool
}

// QuizService contains the quiz session use cases.
type QuizService struct {
	sessions   SessionRepository
	questions  QuestionRepository
	identities *IdentityResolver
	notifier   Notifier
	opts       Options
	now        func() time.Time
}

// NewQuizService wires the use cases. identities and notifier may be nil:
// without a store every session gets a fresh identifier, without a notifier
// nothing is reported.
func NewQuizService(store SessionRepository, questions QuestionRepository, identities IdentityStore, notifier Notifier, opts Options) *QuizService {
	if opts.TimerSeconds <= 0 {
		opts.TimerSeconds = domain.DefaultTimerDuration
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.Ticker == nil {
		opts.Ticker = RealTicker
	}
	s := &QuizService{
		sessions:  store,
		questions: questions,
		notifier:  notifier,
		opts:      opts,
		now:       time.Now,
	}
	if identities != nil {
		s.identities = NewIdentityResolver(identities, DefaultIdentityKey)
	}
	return s
}

// StartRequest describes a session to open.
type StartRequest struct {
	QuestionID string
	// UserID skips identity resolution when set.
	UserID   string
	DeviceID string
	// Location is the client location the notification segment is taken from.
	Location string
}

// Start opens a session, starts its countdown and reports it to the notifier.
func (s *QuizService) Start(ctx context.Context, req StartRequest) (domain.View, error) {
	userID, err := s.resolveUser(ctx, req)
	if err != nil {
		return domain.View{}, err
	}

	question, err := s.questions.GetQuestion(ctx, req.QuestionID)
	if err != nil {
		return domain.View{}, err
	}

	controller, err := NewController(question, s.opts.TimerSeconds, userID)
	if err != nil {
		return domain.View{}, err
	}

	// The session outlives the request that opened it.
	sessionCtx, cancel := context.WithCancel(context.Background())
	session := newSession(uuid.NewString(), controller, cancel, s.now())
	session.countdown = NewCountdown(controller, s.opts.TickInterval, s.opts.Ticker, func(domain.SessionState) {
		s.publish(session)
	})

	s.sessions.Put(session)
	session.countdown.Start(sessionCtx)
	metrics.SessionsStarted.Inc()
	metrics.ActiveSessions.Inc()

	if s.notifier != nil {
		event := SessionStartEvent{
			SessionID:  session.ID(),
			UserID:     userID,
			QuestionID: question.ID,
			Segment:    PathSegment(req.Location),
			StartedAt:  session.CreatedAt(),
		}
		go notifySessionStart(sessionCtx, s.notifier, s.opts.NotifyTimeout, event)
	}

	return session.View(), nil
}

func (s *QuizService) resolveUser(ctx context.Context, req StartRequest) (string, error) {
	if req.UserID != "" {
		return req.UserID, nil
	}
	if s.identities == nil {
		return uuid.NewString(), nil
	}
	if req.DeviceID == "" && !s.opts.SinglePlayer {
		return uuid.NewString(), nil
	}
	return s.identities.ForDevice(req.DeviceID).Resolve(ctx)
}

// Select records a choice. Ignored transitions return the unchanged view.
func (s *QuizService) Select(_ context.Context, sessionID, optionID string) (domain.View, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.View{}, domain.ErrSessionNotFound
	}
	changed, err := session.controller.SelectOption(optionID)
	if err != nil {
		return session.View(), err
	}
	if changed {
		s.publish(session)
	}
	return session.View(), nil
}

// Submit grades the current selection.
func (s *QuizService) Submit(_ context.Context, sessionID string) (domain.View, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.View{}, domain.ErrSessionNotFound
	}
	if session.controller.Submit() {
		state := session.controller.State()
		result := "incorrect"
		if state.IsCorrect != nil && *state.IsCorrect {
			result = "correct"
		}
		metrics.Submissions.WithLabelValues(result).Inc()
		s.publish(session)
	}
	return session.View(), nil
}

// Reset restores the session to its initial values on the same question.
func (s *QuizService) Reset(_ context.Context, sessionID string) (domain.View, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.View{}, domain.ErrSessionNotFound
	}
	session.controller.Reset()
	s.publish(session)
	return session.View(), nil
}

// Next advances to questionID and resets the attempt. An empty questionID
// behaves like Reset.
func (s *QuizService) Next(ctx context.Context, sessionID, questionID string) (domain.View, error) {
	if questionID == "" {
		return s.Reset(ctx, sessionID)
	}
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.View{}, domain.ErrSessionNotFound
	}
	question, err := s.questions.GetQuestion(ctx, questionID)
	if err != nil {
		return session.View(), err
	}
	if err := session.controller.Advance(question); err != nil {
		return session.View(), err
	}
	s.publish(session)
	return session.View(), nil
}

// State returns the current view of a session.
func (s *QuizService) State(_ context.Context, sessionID string) (domain.View, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return domain.View{}, domain.ErrSessionNotFound
	}
	return session.View(), nil
}

// Subscribe returns a channel that receives view updates for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, sessionID string) (<-chan domain.View, func(), error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	ch, cancel := session.subscribe()
	return ch, cancel, nil
}

// End stops the countdown, abandons a pending notification and forgets the session.
func (s *QuizService) End(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	// Stop ticking before deleting so no snapshot is written after removal.
	if session.close() {
		metrics.ActiveSessions.Dec()
	}
	s.sessions.Delete(sessionID)
}

func (s *QuizService) publish(session *Session) {
	session.broadcast()
	s.sessions.Touch(session)
}

// Session is one live quiz attempt together with the resources it owns.
type Session struct {
	id         string
	createdAt  time.Time
	controller *Controller
	countdown  *Countdown
	cancel     context.CancelFunc

	mu          sync.Mutex
	closed      bool
	subscribers map[chan domain.View]struct{}
}

func newSession(id string, controller *Controller, cancel context.CancelFunc, createdAt time.Time) *Session {
	return &Session{
		id:          id,
		createdAt:   createdAt,
		controller:  controller,
		cancel:      cancel,
		subscribers: make(map[chan domain.View]struct{}),
	}
}

// NewSession is exported for infrastructure tests that need a standalone
// session without a running countdown.
func NewSession(id string, controller *Controller) *Session {
	return newSession(id, controller, func() {}, time.Now())
}

func (s *Session) ID() string { return s.id }

func (s *Session) CreatedAt() time.Time { return s.createdAt }

// State returns the controller state.
func (s *Session) State() domain.SessionState {
	return s.controller.State()
}

// View returns the display state tagged with the session ID.
func (s *Session) View() domain.View {
	view := s.controller.View()
	view.SessionID = s.id
	return view
}

func (s *Session) subscribe() (<-chan domain.View, func()) {
	ch := make(chan domain.View, 8)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	ch <- s.View()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// broadcast computes the view under the lock so subscribers see updates in order.
func (s *Session) broadcast() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || len(s.subscribers) == 0 {
		return
	}
	view := s.View()
	for ch := range s.subscribers {
		select {
		case ch <- view:
		default:
			// Slow subscriber: drop its oldest update so the latest one lands.
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
}

// close releases the countdown and notification and closes subscriber
// channels. It reports whether this call did the closing.
func (s *Session) close() bool {
	if s.countdown != nil {
		s.countdown.Stop()
	}
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
	return true
}
