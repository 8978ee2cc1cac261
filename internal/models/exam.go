package models

import (
	"time"

	"github.com/google/uuid"
)

type Exam struct {
	ID               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	Description      *string   `json:"description"`
	TimeLimitMinutes int       `json:"time_limit_minutes"`
	CreatedAt        time.Time `json:"created_at"`
}

func (e Exam) TimeLimit() time.Duration {
	return time.Duration(e.TimeLimitMinutes) * time.Minute
}

type ExamSession struct {
	ID           uuid.UUID    `json:"id"`
	UserID       uuid.UUID    `json:"user_id"`
	ExamID       uuid.UUID    `json:"exam_id"`
	StartedAt    time.Time    `json:"started_at"`
	CompletedAt  *time.Time   `json:"completed_at"`
	ScorePercent *float64     `json:"score_percent"`
	Answers      []ExamAnswer `json:"answers,omitempty"`
}

func (s ExamSession) Completed() bool {
	return s.CompletedAt != nil
}

type ExamAnswer struct {
	ID               uuid.UUID  `json:"id"`
	SessionID        uuid.UUID  `json:"session_id"`
	QuestionID       uuid.UUID  `json:"question_id"`
	SelectedOptionID *uuid.UUID `json:"selected_option_id"`
	IsCorrect        bool       `json:"is_correct"`
}

type StudyAttempt struct {
	ID               uuid.UUID  `json:"id"`
	UserID           uuid.UUID  `json:"user_id"`
	QuestionID       uuid.UUID  `json:"question_id"`
	SelectedOptionID *uuid.UUID `json:"selected_option_id"`
	IsCorrect        bool       `json:"is_correct"`
	CreatedAt        time.Time  `json:"created_at"`
}

// ScorePercent is correct/answered*100, or 0 when nothing was answered.
func ScorePercent(answers []ExamAnswer) float64 {
	if len(answers) == 0 {
		return 0
	}
	correct := 0
	for _, a := range answers {
		if a.IsCorrect {
			correct++
		}
	}
	return float64(correct) / float64(len(answers)) * 100
}
