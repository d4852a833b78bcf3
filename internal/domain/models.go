package domain

import "fmt"

// DefaultTimerDuration is the countdown length of a session in seconds.
const DefaultTimerDuration = 30

// Option is one selectable answer choice.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Question models a single-answer MCQ. It is never mutated after loading.
type Question struct {
	ID            string   `json:"id"`
	Category      string   `json:"category"`
	Prompt        string   `json:"prompt"`
	Options       []Option `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}

// HasOption reports whether optionID names one of the question's options.
func (q Question) HasOption(optionID string) bool {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

// Validate rejects questions that could never be answered correctly.
func (q Question) Validate() error {
	if len(q.Options) == 0 {
		return fmt.Errorf("%w: question %q has no options", ErrInvalidQuestion, q.ID)
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, opt := range q.Options {
		if opt.ID == "" {
			return fmt.Errorf("%w: question %q has an option without id", ErrInvalidQuestion, q.ID)
		}
		if _, dup := seen[opt.ID]; dup {
			return fmt.Errorf("%w: question %q repeats option %q", ErrInvalidQuestion, q.ID, opt.ID)
		}
		seen[opt.ID] = struct{}{}
	}
	if _, ok := seen[q.CorrectAnswer]; !ok {
		return fmt.Errorf("%w: question %q correct answer %q is not an option", ErrInvalidQuestion, q.ID, q.CorrectAnswer)
	}
	return nil
}

// SessionState is the mutable part of one quiz attempt.
type SessionState struct {
	SecondsRemaining int    `json:"secondsRemaining"`
	SelectedOptionID string `json:"selectedOptionId,omitempty"`
	Submitted        bool   `json:"submitted"`
	IsCorrect        *bool  `json:"isCorrect,omitempty"`
	UserID           string `json:"userId,omitempty"`
}

// Phase is the state machine position derived from SessionState.
type Phase string

const (
	PhaseActive      Phase = "active"
	PhaseTimeExpired Phase = "time_expired"
	PhaseSubmitted   Phase = "submitted"
)

// PhaseOf derives the phase. Submitted wins over an expired timer.
func PhaseOf(state SessionState) Phase {
	switch {
	case state.Submitted:
		return PhaseSubmitted
	case state.SecondsRemaining == 0:
		return PhaseTimeExpired
	default:
		return PhaseActive
	}
}

// View is the display state a client renders.
type View struct {
	SessionID        string   `json:"sessionId,omitempty"`
	QuestionID       string   `json:"questionId"`
	Category         string   `json:"category"`
	Prompt           string   `json:"prompt"`
	Options          []Option `json:"options"`
	Phase            Phase    `json:"phase"`
	SecondsRemaining int      `json:"secondsRemaining"`
	TimerPercent     float64  `json:"timerPercent"`
	OptionsEnabled   bool     `json:"optionsEnabled"`
	SubmitEnabled    bool     `json:"submitEnabled"`
	SelectedOptionID string   `json:"selectedOptionId,omitempty"`
	Submitted        bool     `json:"submitted"`
	IsCorrect        *bool    `json:"isCorrect,omitempty"`
	HelperText       string   `json:"helperText"`
	UserID           string   `json:"userId,omitempty"`
}
