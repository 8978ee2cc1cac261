package exam

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/J0na555/ExitPrep/internal/app_errors"
	"github.com/J0na555/ExitPrep/internal/models"
	"github.com/J0na555/ExitPrep/pkg/logger"
	"github.com/google/uuid"
)

type memExamRepo struct {
	exams    map[uuid.UUID]models.Exam
	sessions map[uuid.UUID]models.ExamSession
}

func newMemExamRepo() *memExamRepo {
	return &memExamRepo{exams: map[uuid.UUID]models.Exam{}, sessions: map[uuid.UUID]models.ExamSession{}}
}

func (m *memExamRepo) CreateExam(_ context.Context, e *models.Exam) error {
	e.ID = uuid.New()
	m.exams[e.ID] = *e
	return nil
}

func (m *memExamRepo) Exams(context.Context) ([]models.Exam, error) {
	out := make([]models.Exam, 0, len(m.exams))
	for _, e := range m.exams {
		out = append(out, e)
	}
	return out, nil
}

func (m *memExamRepo) ExamByID(_ context.Context, id uuid.UUID) (*models.Exam, error) {
	e, ok := m.exams[id]
	if !ok {
		return nil, app_errors.ErrExamNotFound
	}
	return &e, nil
}

func (m *memExamRepo) CreateSession(_ context.Context, s *models.ExamSession) error {
	s.ID = uuid.New()
	m.sessions[s.ID] = *s
	return nil
}

func (m *memExamRepo) SessionByID(_ context.Context, id uuid.UUID) (*models.ExamSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, app_errors.ErrSessionNotFound
	}
	s.Answers = append([]models.ExamAnswer(nil), s.Answers...)
	return &s, nil
}

func (m *memExamRepo) SaveAnswer(_ context.Context, a *models.ExamAnswer) error {
	s := m.sessions[a.SessionID]
	for i := range s.Answers {
		if s.Answers[i].QuestionID == a.QuestionID {
			a.ID = s.Answers[i].ID
			s.Answers[i] = *a
			m.sessions[s.ID] = s
			return nil
		}
	}
	a.ID = uuid.New()
	s.Answers = append(s.Answers, *a)
	m.sessions[s.ID] = s
	return nil
}

func (m *memExamRepo) CompleteSession(_ context.Context, id uuid.UUID, at time.Time, score float64) (*models.ExamSession, error) {
	s := m.sessions[id]
	if s.CompletedAt != nil {
		return nil, app_errors.ErrSessionCompleted
	}
	s.CompletedAt = &at
	s.ScorePercent = &score
	m.sessions[id] = s
	return &s, nil
}

type memQuestions map[uuid.UUID]models.Question

func (m memQuestions) QuestionByID(_ context.Context, id uuid.UUID) (*models.Question, error) {
	q, ok := m[id]
	if !ok {
		return nil, app_errors.ErrQuestionNotFound
	}
	return &q, nil
}

type fixture struct {
	svc      *ExamService
	repo     *memExamRepo
	now      time.Time
	user     uuid.UUID
	exam     models.Exam
	question models.Question
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo: newMemExamRepo(),
		now:  time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC),
		user: uuid.New(),
	}
	qid := uuid.New()
	right, wrong := uuid.New(), uuid.New()
	f.question = models.Question{
		ID:              qid,
		QuestionText:    "2 + 2?",
		CorrectOptionID: &right,
		Options: []models.Option{
			{ID: right, QuestionID: qid, Text: "4", IsCorrect: true},
			{ID: wrong, QuestionID: qid, Text: "5"},
		},
	}
	f.svc = NewExamService(logger.NewNop(), f.repo, memQuestions{qid: f.question}).
		WithClock(func() time.Time { return f.now })

	f.exam = models.Exam{Title: "Midterm", TimeLimitMinutes: 30}
	if err := f.svc.CreateExam(context.Background(), &f.exam); err != nil {
		t.Fatalf("CreateExam: %v", err)
	}
	return f
}

func TestCreateExamValidation(t *testing.T) {
	f := newFixture(t)
	tests := map[string]models.Exam{
		"blank title":     {Title: "  ", TimeLimitMinutes: 10},
		"zero time limit": {Title: "Final", TimeLimitMinutes: 0},
	}
	for name, e := range tests {
		t.Run(name, func(t *testing.T) {
			if err := f.svc.CreateExam(context.Background(), &e); !errors.Is(err, app_errors.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestSessionScoring(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.svc.StartSession(ctx, f.user, f.exam.ID)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	wrong := f.question.Options[1].ID
	if _, err := f.svc.Answer(ctx, f.user, session.ID, f.question.ID, &wrong); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	right := f.question.Options[0].ID
	ans, err := f.svc.Answer(ctx, f.user, session.ID, f.question.ID, &right)
	if err != nil {
		t.Fatalf("re-Answer: %v", err)
	}
	if !ans.IsCorrect {
		t.Fatal("correct option graded wrong")
	}

	done, err := f.svc.Complete(ctx, f.user, session.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(done.Answers) != 1 {
		t.Fatalf("answers = %d, want 1 after re-answering", len(done.Answers))
	}
	if done.ScorePercent == nil || *done.ScorePercent != 100 {
		t.Fatalf("score = %v, want 100", done.ScorePercent)
	}

	if _, err := f.svc.Complete(ctx, f.user, session.ID); !errors.Is(err, app_errors.ErrConflict) {
		t.Fatalf("second Complete: expected conflict, got %v", err)
	}
	if _, err := f.svc.Answer(ctx, f.user, session.ID, f.question.ID, &right); !errors.Is(err, app_errors.ErrSessionCompleted) {
		t.Fatalf("answer after completion: got %v", err)
	}
}

func TestCompleteWithoutAnswersScoresZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session, err := f.svc.StartSession(ctx, f.user, f.exam.ID)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	done, err := f.svc.Complete(ctx, f.user, session.ID)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if done.ScorePercent == nil || *done.ScorePercent != 0 {
		t.Fatalf("score = %v, want 0", done.ScorePercent)
	}
}

func TestAnswerAfterTimeLimitConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session, err := f.svc.StartSession(ctx, f.user, f.exam.ID)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	f.now = f.now.Add(30*time.Minute + time.Second)
	right := f.question.Options[0].ID
	_, err = f.svc.Answer(ctx, f.user, session.ID, f.question.ID, &right)
	if !errors.Is(err, app_errors.ErrExamTimeUp) || !errors.Is(err, app_errors.ErrConflict) {
		t.Fatalf("expected time-up conflict, got %v", err)
	}
}

func TestAnswerRejectsForeignOption(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session, err := f.svc.StartSession(ctx, f.user, f.exam.ID)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	other := uuid.New()
	if _, err := f.svc.Answer(ctx, f.user, session.ID, f.question.ID, &other); !errors.Is(err, app_errors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestOtherUsersSessionIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session, err := f.svc.StartSession(ctx, f.user, f.exam.ID)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}

	intruder := uuid.New()
	if _, err := f.svc.Session(ctx, intruder, session.ID); !errors.Is(err, app_errors.ErrNotFound) {
		t.Fatalf("Session: expected not found, got %v", err)
	}
	if _, err := f.svc.Complete(ctx, intruder, session.ID); !errors.Is(err, app_errors.ErrNotFound) {
		t.Fatalf("Complete: expected not found, got %v", err)
	}
}

func TestStartSessionUnknownExam(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.StartSession(context.Background(), f.user, uuid.New()); !errors.Is(err, app_errors.ErrExamNotFound) {
		t.Fatalf("expected exam not found, got %v", err)
	}
}
