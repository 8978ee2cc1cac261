package postgres

import (
	"context"
	"time"

	"github.com/J0na555/ExitPrep/internal/app_errors"
	"github.com/J0na555/ExitPrep/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ExamPostgres struct {
	db *pgxpool.Pool
}

func NewExamPostgres(db *pgxpool.Pool) *ExamPostgres {
	return &ExamPostgres{db: db}
}

const (
	examColumns    = `id, title, description, time_limit_minutes, created_at`
	sessionColumns = `id, user_id, exam_id, started_at, completed_at, score_percent`
)

func scanExam(row pgx.Row, e *models.Exam) error {
	return row.Scan(&e.ID, &e.Title, &e.Description, &e.TimeLimitMinutes, &e.CreatedAt)
}

func scanSession(row pgx.Row, s *models.ExamSession) error {
	return row.Scan(&s.ID, &s.UserID, &s.ExamID, &s.StartedAt, &s.CompletedAt, &s.ScorePercent)
}

func (r *ExamPostgres) CreateExam(ctx context.Context, exam *models.Exam) error {
	const query = `
        INSERT INTO exams (title, description, time_limit_minutes)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, exam.Title, exam.Description, exam.TimeLimitMinutes).Scan(&exam.ID, &exam.CreatedAt)
	if err != nil {
		return app_errors.Persistence("insert exam", err)
	}
	return nil
}

func (r *ExamPostgres) Exams(ctx context.Context) ([]models.Exam, error) {
	rows, err := r.db.Query(ctx, `SELECT `+examColumns+` FROM exams ORDER BY created_at DESC`)
	if err != nil {
		return nil, app_errors.Persistence("select exams", err)
	}
	defer rows.Close()

	exams := make([]models.Exam, 0)
	for rows.Next() {
		var e models.Exam
		if err := scanExam(rows, &e); err != nil {
			return nil, app_errors.Persistence("scan exam", err)
		}
		exams = append(exams, e)
	}
	if err := rows.Err(); err != nil {
		return nil, app_errors.Persistence("iterate exams", err)
	}
	return exams, nil
}

func (r *ExamPostgres) ExamByID(ctx context.Context, id uuid.UUID) (*models.Exam, error) {
	exam := &models.Exam{}
	if err := scanExam(r.db.QueryRow(ctx, `SELECT `+examColumns+` FROM exams WHERE id = $1`, id), exam); err != nil {
		return nil, mapRowErr("select exam", err, app_errors.ErrExamNotFound)
	}
	return exam, nil
}

func (r *ExamPostgres) CreateSession(ctx context.Context, session *models.ExamSession) error {
	const query = `
        INSERT INTO exam_sessions (user_id, exam_id, started_at)
        VALUES ($1, $2, $3)
        RETURNING id`
	err := r.db.QueryRow(ctx, query, session.UserID, session.ExamID, session.StartedAt).Scan(&session.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return app_errors.ErrExamNotFound
		}
		return app_errors.Persistence("insert exam session", err)
	}
	return nil
}

// SessionByID returns the session with its answers.
func (r *ExamPostgres) SessionByID(ctx context.Context, id uuid.UUID) (*models.ExamSession, error) {
	session := &models.ExamSession{}
	err := scanSession(r.db.QueryRow(ctx, `SELECT `+sessionColumns+` FROM exam_sessions WHERE id = $1`, id), session)
	if err != nil {
		return nil, mapRowErr("select exam session", err, app_errors.ErrSessionNotFound)
	}

	const answersQuery = `
        SELECT id, session_id, question_id, selected_option_id, is_correct
          FROM exam_answers
         WHERE session_id = $1
         ORDER BY id`
	rows, err := r.db.Query(ctx, answersQuery, id)
	if err != nil {
		return nil, app_errors.Persistence("select exam answers", err)
	}
	defer rows.Close()

	session.Answers = make([]models.ExamAnswer, 0)
	for rows.Next() {
		var a models.ExamAnswer
		if err := rows.Scan(&a.ID, &a.SessionID, &a.QuestionID, &a.SelectedOptionID, &a.IsCorrect); err != nil {
			return nil, app_errors.Persistence("scan exam answer", err)
		}
		session.Answers = append(session.Answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, app_errors.Persistence("iterate exam answers", err)
	}
	return session, nil
}

// SaveAnswer records the answer for (session, question), replacing an earlier one.
func (r *ExamPostgres) SaveAnswer(ctx context.Context, answer *models.ExamAnswer) error {
	const query = `
        INSERT INTO exam_answers (session_id, question_id, selected_option_id, is_correct)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (session_id, question_id)
        DO UPDATE SET selected_option_id = EXCLUDED.selected_option_id,
                      is_correct         = EXCLUDED.is_correct
        RETURNING id`
	err := r.db.QueryRow(ctx, query, answer.SessionID, answer.QuestionID, answer.SelectedOptionID, answer.IsCorrect).
		Scan(&answer.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return app_errors.ErrQuestionNotFound
		}
		return app_errors.Persistence("upsert exam answer", err)
	}
	return nil
}

// CompleteSession closes an open session. A session that is already closed yields ErrSessionCompleted.
func (r *ExamPostgres) CompleteSession(ctx context.Context, id uuid.UUID, completedAt time.Time, score float64) (*models.ExamSession, error) {
	const query = `
        UPDATE exam_sessions
           SET completed_at  = $2,
               score_percent = $3
         WHERE id = $1 AND completed_at IS NULL
     RETURNING ` + sessionColumns
	session := &models.ExamSession{}
	if err := scanSession(r.db.QueryRow(ctx, query, id, completedAt, score), session); err != nil {
		return nil, mapRowErr("complete exam session", err, app_errors.ErrSessionCompleted)
	}
	return session, nil
}
