package models

import (
	"time"

	"github.com/google/uuid"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type Source string

const (
	SourceGenerated Source = "generated"
	SourcePastPaper Source = "past_paper"
	SourceManual    Source = "manual"
)

func (s Source) Valid() bool {
	switch s {
	case SourceGenerated, SourcePastPaper, SourceManual:
		return true
	}
	return false
}

type Question struct {
	ID              uuid.UUID  `json:"id"`
	ChapterID       uuid.UUID  `json:"chapter_id"`
	QuestionText    string     `json:"question_text"`
	Difficulty      Difficulty `json:"difficulty"`
	Source          Source     `json:"source"`
	Explanation     *string    `json:"explanation"`
	CorrectOptionID *uuid.UUID `json:"correct_option_id"`
	CreatedAt       time.Time  `json:"created_at"`
	Options         []Option   `json:"options"`
}

type QuestionUpdate struct {
	ChapterID    *uuid.UUID
	QuestionText *string
	Difficulty   *Difficulty
	Explanation  *string
}

type Option struct {
	ID         uuid.UUID `json:"id"`
	QuestionID uuid.UUID `json:"question_id"`
	Text       string    `json:"text"`
	IsCorrect  bool      `json:"is_correct"`
}

type OptionUpdate struct {
	Text *string
}

// CorrectOptions counts options flagged correct.
func CorrectOptions(opts []Option) int {
	n := 0
	for _, o := range opts {
		if o.IsCorrect {
			n++
		}
	}
	return n
}
