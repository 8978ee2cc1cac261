package question

import (
	"context"

	"github.com/J0na555/ExitPrep/internal/app_errors"
	"github.com/J0na555/ExitPrep/internal/models"
	"github.com/google/uuid"
)

const (
	defaultAttemptLimit = 20
	maxAttemptLimit     = 100
)

type attemptRepo interface {
	CreateAttempt(ctx context.Context, attempt *models.StudyAttempt) error
	AttemptsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.StudyAttempt, error)
}

type AttemptResult struct {
	Attempt         models.StudyAttempt `json:"attempt"`
	CorrectOptionID *uuid.UUID          `json:"correct_option_id"`
}

// RecordAttempt stores a study attempt. A nil selection counts as a wrong answer.
func (s *QuestionService) RecordAttempt(ctx context.Context, userID, questionID uuid.UUID, selected *uuid.UUID) (*AttemptResult, error) {
	question, err := s.questionRepo.QuestionByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	correct, err := CheckSelection(question, selected)
	if err != nil {
		return nil, err
	}

	attempt := models.StudyAttempt{
		UserID:           userID,
		QuestionID:       questionID,
		SelectedOptionID: selected,
		IsCorrect:        correct,
	}
	if err := s.attemptRepo.CreateAttempt(ctx, &attempt); err != nil {
		return nil, err
	}
	return &AttemptResult{Attempt: attempt, CorrectOptionID: question.CorrectOptionID}, nil
}

// Attempts lists the user's attempts, newest first.
func (s *QuestionService) Attempts(ctx context.Context, userID uuid.UUID, limit int) ([]models.StudyAttempt, error) {
	if limit <= 0 {
		limit = defaultAttemptLimit
	}
	if limit > maxAttemptLimit {
		limit = maxAttemptLimit
	}
	return s.attemptRepo.AttemptsByUser(ctx, userID, limit)
}

// CheckSelection reports whether selected is the question's correct option.
// A selection that is not one of the question's options is rejected.
func CheckSelection(question *models.Question, selected *uuid.UUID) (bool, error) {
	if selected == nil {
		return false, nil
	}
	for _, o := range question.Options {
		if o.ID == *selected {
			return o.IsCorrect, nil
		}
	}
	return false, app_errors.ErrOptionMismatch
}
