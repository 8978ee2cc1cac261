package app_errors

import (
	"errors"
	"fmt"
)

// Kinds. Every error surfaced to a client wraps exactly one of these.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrPersistence  = errors.New("persistence failure")
)

var ErrUserExists = fmt.Errorf("email or username already registered: %w", ErrConflict)
var ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
var ErrIncorrectCredentials = fmt.Errorf("incorrect email or password: %w", ErrUnauthorized)
var ErrWeakPassword = &ValidationError{Field: "password", Reason: "must be at least 8 characters"}

var ErrTokenExpired = fmt.Errorf("token expired: %w", ErrUnauthorized)
var ErrInvalidSignature = fmt.Errorf("token signature invalid: %w", ErrUnauthorized)
var ErrMalformedToken = fmt.Errorf("token malformed: %w", ErrUnauthorized)

var ErrCourseNotFound = fmt.Errorf("course %w", ErrNotFound)
var ErrCourseExists = fmt.Errorf("course with this title already exists: %w", ErrConflict)
var ErrChapterNotFound = fmt.Errorf("chapter %w", ErrNotFound)
var ErrQuestionNotFound = fmt.Errorf("question %w", ErrNotFound)
var ErrOptionNotFound = fmt.Errorf("option %w", ErrNotFound)
var ErrMultipleCorrect = fmt.Errorf("question already has a correct option: %w", ErrConflict)
var ErrOptionMismatch = &ValidationError{Field: "selected_option_id", Reason: "option does not belong to question"}

var ErrExamNotFound = fmt.Errorf("exam %w", ErrNotFound)
var ErrSessionNotFound = fmt.Errorf("exam session %w", ErrNotFound)
var ErrSessionCompleted = fmt.Errorf("exam session already completed: %w", ErrConflict)
var ErrExamTimeUp = fmt.Errorf("exam time limit exceeded: %w", ErrConflict)

// ValidationError describes malformed client or ingestion input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Persistence marks err as an unexpected storage failure while keeping it unwrappable.
func Persistence(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
