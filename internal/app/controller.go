package app

import (
	"sync"

	"daily-quiz-service/internal/domain"
)

const (
	helperActive  = "Tap an option to lock in your answer."
	helperExpired = "Time is up! Your selection is locked in."
	helperCorrect = "Correct! Nicely done."
	helperWrong   = "Not quite. Better luck on the next one."
)

// Controller owns the state of a single quiz attempt and exposes the only
// transitions allowed on it. Preconditions that do not hold turn an
// operation into a silent no-op.
type Controller struct {
	mu       sync.RWMutex
	question domain.Question
	duration int
	state    domain.SessionState
}

// NewController builds a controller for question with a countdown of
// duration seconds. A non-positive duration falls back to the default.
func NewController(question domain.Question, duration int, userID string) (*Controller, error) {
	if err := question.Validate(); err != nil {
		return nil, err
	}
	if duration <= 0 {
		duration = domain.DefaultTimerDuration
	}
	c := &Controller{question: question, duration: duration}
	c.state.UserID = userID
	c.resetLocked()
	return c, nil
}

// Tick counts the timer down by one second, stopping at zero.
func (c *Controller) Tick() domain.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.SecondsRemaining > 0 {
		c.state.SecondsRemaining--
	}
	return copyState(c.state)
}

// SelectOption records optionID as the current choice. It reports whether
// the state changed; an ID outside the question fails with ErrInvalidOption.
func (c *Controller) SelectOption(optionID string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.question.HasOption(optionID) {
		return false, domain.ErrInvalidOption
	}
	if c.state.Submitted || c.state.SecondsRemaining == 0 {
		return false, nil
	}
	c.state.SelectedOptionID = optionID
	return true, nil
}

// Submit locks in the current selection and grades it.
// Once time has expired the submit control is gone, so this is a no-op.
func (c *Controller) Submit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.SelectedOptionID == "" || c.state.Submitted || c.state.SecondsRemaining == 0 {
		return false
	}
	correct := c.state.SelectedOptionID == c.question.CorrectAnswer
	c.state.IsCorrect = &correct
	c.state.Submitted = true
	return true
}

// Reset returns the attempt to its initial values. The user identifier is
// kept because it is not part of the quiz state.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// Advance swaps in the next question and resets the attempt.
func (c *Controller) Advance(question domain.Question) error {
	if err := question.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.question = question
	c.resetLocked()
	return nil
}

func (c *Controller) resetLocked() {
	c.state = domain.SessionState{
		SecondsRemaining: c.duration,
		UserID:           c.state.UserID,
	}
}

// State returns a copy of the current session state.
func (c *Controller) State() domain.SessionState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyState(c.state)
}

// Question returns the question being played.
func (c *Controller) Question() domain.Question {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.question
}

// Phase reports the state machine position.
func (c *Controller) Phase() domain.Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return domain.PhaseOf(c.state)
}

// View derives the display state.
func (c *Controller) View() domain.View {
	c.mu.RLock()
	defer c.mu.RUnlock()

	st := copyState(c.state)
	phase := domain.PhaseOf(st)
	view := domain.View{
		QuestionID:       c.question.ID,
		Category:         c.question.Category,
		Prompt:           c.question.Prompt,
		Options:          append([]domain.Option(nil), c.question.Options...),
		Phase:            phase,
		SecondsRemaining: st.SecondsRemaining,
		TimerPercent:     float64(st.SecondsRemaining) / float64(c.duration) * 100,
		OptionsEnabled:   phase == domain.PhaseActive,
		SubmitEnabled:    phase == domain.PhaseActive && st.SelectedOptionID != "",
		SelectedOptionID: st.SelectedOptionID,
		Submitted:        st.Submitted,
		IsCorrect:        st.IsCorrect,
		UserID:           st.UserID,
	}
	switch phase {
	case domain.PhaseSubmitted:
		if st.IsCorrect != nil && *st.IsCorrect {
			view.HelperText = helperCorrect
		} else {
			view.HelperText = helperWrong
		}
	case domain.PhaseTimeExpired:
		view.HelperText = helperExpired
	default:
		view.HelperText = helperActive
	}
	return view
}

func copyState(st domain.SessionState) domain.SessionState {
	if st.IsCorrect != nil {
		v := *st.IsCorrect
		st.IsCorrect = &v
	}
	return st
}
