package question

import (
	"context"
	"fmt"
	"strings"

	"github.com/J0na555/ExitPrep/internal/app_errors"
	"github.com/J0na555/ExitPrep/internal/models"
	"github.com/J0na555/ExitPrep/pkg/logger"
	"github.com/google/uuid"
)

const (
	defaultSearchSize = 10
	maxSearchSize     = 50
)

type chapterRepo interface {
	ChapterByID(ctx context.Context, id uuid.UUID) (*models.Chapter, error)
}

type questionRepo interface {
	CreateQuestion(ctx context.Context, question *models.Question) error
	QuestionByID(ctx context.Context, id uuid.UUID) (*models.Question, error)
	QuestionsByChapter(ctx context.Context, chapterID uuid.UUID) ([]models.Question, error)
	QuestionsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Question, error)
	SearchQuestions(ctx context.Context, query string, limit int) ([]models.Question, error)
	UpdateQuestion(ctx context.Context, id uuid.UUID, upd models.QuestionUpdate) (*models.Question, error)
	DeleteQuestion(ctx context.Context, id uuid.UUID) error

	OptionByID(ctx context.Context, id uuid.UUID) (*models.Option, error)
	AddOption(ctx context.Context, opt *models.Option) error
	UpdateOption(ctx context.Context, id uuid.UUID, upd models.OptionUpdate) (*models.Option, error)
	DeleteOption(ctx context.Context, id uuid.UUID) error
	MarkCorrect(ctx context.Context, optionID uuid.UUID) (*models.Question, error)
}

// SearchIndex is the optional full-text index kept in step with stored questions.
type SearchIndex interface {
	IndexQuestion(ctx context.Context, question *models.Question) error
	DeleteQuestion(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, size int) ([]uuid.UUID, error)
}

type QuestionService struct {
	log          logger.Log
	chapterRepo  chapterRepo
	questionRepo questionRepo
	searchRepo   SearchIndex
	attemptRepo  attemptRepo
}

// NewQuestionService builds the service. searchRepo may be nil, in which case
// search falls back to a text match in the database.
func NewQuestionService(log logger.Log, chapterRepo chapterRepo, questionRepo questionRepo, searchRepo SearchIndex, attemptRepo attemptRepo) *QuestionService {
	return &QuestionService{
		log:          log.With("service", "question"),
		chapterRepo:  chapterRepo,
		questionRepo: questionRepo,
		searchRepo:   searchRepo,
		attemptRepo:  attemptRepo,
	}
}

// CreateQuestion stores the question with its options. At most one option may be
// flagged correct; it becomes the question's correct option.
func (s *QuestionService) CreateQuestion(ctx context.Context, question *models.Question) error {
	question.QuestionText = strings.TrimSpace(question.QuestionText)
	if question.QuestionText == "" {
		return app_errors.Invalid("question_text", "is required")
	}
	if question.Difficulty == "" {
		question.Difficulty = models.DifficultyMedium
	}
	if !question.Difficulty.Valid() {
		return app_errors.Invalid("difficulty", "must be one of easy, medium, hard")
	}
	if question.Source == "" {
		question.Source = models.SourceManual
	}
	if !question.Source.Valid() {
		return app_errors.Invalid("source", "must be one of generated, past_paper, manual")
	}
	for i := range question.Options {
		question.Options[i].Text = strings.TrimSpace(question.Options[i].Text)
		if question.Options[i].Text == "" {
			return app_errors.Invalid(fmt.Sprintf("options[%d].text", i), "is required")
		}
	}
	if models.CorrectOptions(question.Options) > 1 {
		return app_errors.ErrMultipleCorrect
	}
	if _, err := s.chapterRepo.ChapterByID(ctx, question.ChapterID); err != nil {
		return err
	}

	if err := s.questionRepo.CreateQuestion(ctx, question); err != nil {
		return err
	}
	s.log.Info("question created", "question_id", question.ID, "chapter_id", question.ChapterID)
	s.index(ctx, question)
	return nil
}

func (s *QuestionService) Question(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	return s.questionRepo.QuestionByID(ctx, id)
}

func (s *QuestionService) QuestionsByChapter(ctx context.Context, chapterID uuid.UUID) ([]models.Question, error) {
	if _, err := s.chapterRepo.ChapterByID(ctx, chapterID); err != nil {
		return nil, err
	}
	return s.questionRepo.QuestionsByChapter(ctx, chapterID)
}

func (s *QuestionService) UpdateQuestion(ctx context.Context, id uuid.UUID, upd models.QuestionUpdate) (*models.Question, error) {
	if upd.QuestionText != nil {
		text := strings.TrimSpace(*upd.QuestionText)
		if text == "" {
			return nil, app_errors.Invalid("question_text", "must not be empty")
		}
		upd.QuestionText = &text
	}
	if upd.Difficulty != nil && !upd.Difficulty.Valid() {
		return nil, app_errors.Invalid("difficulty", "must be one of easy, medium, hard")
	}
	if upd.ChapterID != nil {
		if _, err := s.chapterRepo.ChapterByID(ctx, *upd.ChapterID); err != nil {
			return nil, err
		}
	}

	question, err := s.questionRepo.UpdateQuestion(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	s.index(ctx, question)
	return question, nil
}

func (s *QuestionService) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	if err := s.questionRepo.DeleteQuestion(ctx, id); err != nil {
		return err
	}
	if s.searchRepo != nil {
		if err := s.searchRepo.DeleteQuestion(ctx, id); err != nil {
			s.log.ErrorErr("failed to remove question from index", err, "question_id", id)
		}
	}
	return nil
}

// Search returns questions matching query, best match first.
func (s *QuestionService) Search(ctx context.Context, query string, size int) ([]models.Question, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, app_errors.Invalid("q", "is required")
	}
	if size <= 0 {
		size = defaultSearchSize
	}
	if size > maxSearchSize {
		size = maxSearchSize
	}

	if s.searchRepo == nil {
		return s.questionRepo.SearchQuestions(ctx, query, size)
	}
	ids, err := s.searchRepo.Search(ctx, query, size)
	if err != nil {
		return nil, fmt.Errorf("question search failed: %w", err)
	}
	return s.questionRepo.QuestionsByIDs(ctx, ids)
}

// AddOption appends an option to the question. A second correct option is a conflict.
func (s *QuestionService) AddOption(ctx context.Context, questionID uuid.UUID, opt *models.Option) (*models.Question, error) {
	opt.Text = strings.TrimSpace(opt.Text)
	if opt.Text == "" {
		return nil, app_errors.Invalid("text", "is required")
	}
	question, err := s.questionRepo.QuestionByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if opt.IsCorrect && models.CorrectOptions(question.Options) > 0 {
		return nil, app_errors.ErrMultipleCorrect
	}

	opt.QuestionID = questionID
	if err := s.questionRepo.AddOption(ctx, opt); err != nil {
		return nil, err
	}
	return s.reload(ctx, questionID)
}

func (s *QuestionService) UpdateOption(ctx context.Context, id uuid.UUID, upd models.OptionUpdate) (*models.Option, error) {
	if upd.Text != nil {
		text := strings.TrimSpace(*upd.Text)
		if text == "" {
			return nil, app_errors.Invalid("text", "must not be empty")
		}
		upd.Text = &text
	}
	opt, err := s.questionRepo.UpdateOption(ctx, id, upd)
	if err != nil {
		return nil, err
	}
	if _, err := s.reload(ctx, opt.QuestionID); err != nil {
		s.log.ErrorErr("failed to reload question after option update", err, "option_id", id)
	}
	return opt, nil
}

func (s *QuestionService) DeleteOption(ctx context.Context, id uuid.UUID) error {
	opt, err := s.questionRepo.OptionByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.questionRepo.DeleteOption(ctx, id); err != nil {
		return err
	}
	if _, err := s.reload(ctx, opt.QuestionID); err != nil {
		s.log.ErrorErr("failed to reload question after option delete", err, "option_id", id)
	}
	return nil
}

// MarkCorrect makes the option its question's only correct option.
func (s *QuestionService) MarkCorrect(ctx context.Context, optionID uuid.UUID) (*models.Question, error) {
	return s.questionRepo.MarkCorrect(ctx, optionID)
}

// reload fetches the question and refreshes its search document.
func (s *QuestionService) reload(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	question, err := s.questionRepo.QuestionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.index(ctx, question)
	return question, nil
}

func (s *QuestionService) index(ctx context.Context, question *models.Question) {
	if s.searchRepo == nil {
		return
	}
	if err := s.searchRepo.IndexQuestion(ctx, question); err != nil {
		s.log.ErrorErr("failed to index question", err, "question_id", question.ID)
	}
}
