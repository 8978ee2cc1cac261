package exam

import (
	"context"
	"strings"
	"time"

	"github.com/J0na555/ExitPrep/internal/app_errors"
	"github.com/J0na555/ExitPrep/internal/models"
	"github.com/J0na555/ExitPrep/internal/service/question"
	"github.com/J0na555/ExitPrep/pkg/logger"
	"github.com/google/uuid"
)

type examRepo interface {
	CreateExam(ctx context.Context, exam *models.Exam) error
	Exams(ctx context.Context) ([]models.Exam, error)
	ExamByID(ctx context.Context, id uuid.UUID) (*models.Exam, error)
	CreateSession(ctx context.Context, session *models.ExamSession) error
	SessionByID(ctx context.Context, id uuid.UUID) (*models.ExamSession, error)
	SaveAnswer(ctx context.Context, answer *models.ExamAnswer) error
	CompleteSession(ctx context.Context, id uuid.UUID, completedAt time.Time, score float64) (*models.ExamSession, error)
}

type questionRepo interface {
	QuestionByID(ctx context.Context, id uuid.UUID) (*models.Question, error)
}

type ExamService struct {
	log          logger.Log
	examRepo     examRepo
	questionRepo questionRepo
	now          func() time.Time
}

func NewExamService(log logger.Log, examRepo examRepo, questionRepo questionRepo) *ExamService {
	return &ExamService{
		log:          log.With("service", "exam"),
		examRepo:     examRepo,
		questionRepo: questionRepo,
		now:          time.Now,
	}
}

// WithClock replaces the time source used for session timing.
func (s *ExamService) WithClock(now func() time.Time) *ExamService {
	s.now = now
	return s
}

func (s *ExamService) CreateExam(ctx context.Context, exam *models.Exam) error {
	exam.Title = strings.TrimSpace(exam.Title)
	if exam.Title == "" {
		return app_errors.Invalid("title", "is required")
	}
	if exam.TimeLimitMinutes <= 0 {
		return app_errors.Invalid("time_limit_minutes", "must be positive")
	}
	return s.examRepo.CreateExam(ctx, exam)
}

func (s *ExamService) Exams(ctx context.Context) ([]models.Exam, error) {
	return s.examRepo.Exams(ctx)
}

func (s *ExamService) Exam(ctx context.Context, id uuid.UUID) (*models.Exam, error) {
	return s.examRepo.ExamByID(ctx, id)
}

func (s *ExamService) StartSession(ctx context.Context, userID, examID uuid.UUID) (*models.ExamSession, error) {
	if _, err := s.examRepo.ExamByID(ctx, examID); err != nil {
		return nil, err
	}
	session := &models.ExamSession{
		UserID:    userID,
		ExamID:    examID,
		StartedAt: s.now().UTC(),
		Answers:   []models.ExamAnswer{},
	}
	if err := s.examRepo.CreateSession(ctx, session); err != nil {
		return nil, err
	}
	s.log.Info("exam session started", "session_id", session.ID, "exam_id", examID, "user_id", userID)
	return session, nil
}

// Session returns one of the user's sessions. Sessions of other users are reported as not found.
func (s *ExamService) Session(ctx context.Context, userID, sessionID uuid.UUID) (*models.ExamSession, error) {
	session, err := s.examRepo.SessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, app_errors.ErrSessionNotFound
	}
	return session, nil
}

// Answer records the selected option for a question, replacing an earlier answer.
func (s *ExamService) Answer(ctx context.Context, userID, sessionID, questionID uuid.UUID, selected *uuid.UUID) (*models.ExamAnswer, error) {
	session, err := s.Session(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Completed() {
		return nil, app_errors.ErrSessionCompleted
	}
	exam, err := s.examRepo.ExamByID(ctx, session.ExamID)
	if err != nil {
		return nil, err
	}
	if s.now().After(session.StartedAt.Add(exam.TimeLimit())) {
		return nil, app_errors.ErrExamTimeUp
	}

	q, err := s.questionRepo.QuestionByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	correct, err := question.CheckSelection(q, selected)
	if err != nil {
		return nil, err
	}

	answer := &models.ExamAnswer{
		SessionID:        sessionID,
		QuestionID:       questionID,
		SelectedOptionID: selected,
		IsCorrect:        correct,
	}
	if err := s.examRepo.SaveAnswer(ctx, answer); err != nil {
		return nil, err
	}
	return answer, nil
}

// Complete closes the session and stores its score.
func (s *ExamService) Complete(ctx context.Context, userID, sessionID uuid.UUID) (*models.ExamSession, error) {
	session, err := s.Session(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Completed() {
		return nil, app_errors.ErrSessionCompleted
	}

	score := models.ScorePercent(session.Answers)
	completed, err := s.examRepo.CompleteSession(ctx, sessionID, s.now().UTC(), score)
	if err != nil {
		return nil, err
	}
	completed.Answers = session.Answers
	s.log.Info("exam session completed", "session_id", sessionID, "score_percent", score)
	return completed, nil
}
