package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a quiz session has not been started or already ended.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrQuestionNotFound indicates the question content could not be loaded.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidOption indicates a selected option ID is not part of the current question.
	ErrInvalidOption = errors.New("option not found")
	// ErrInvalidQuestion is returned for question content that cannot be played.
	ErrInvalidQuestion = errors.New("invalid question")
	// ErrIdentityNotFound is returned by identity stores when the key is absent.
	ErrIdentityNotFound = errors.New("identity not found")
)
