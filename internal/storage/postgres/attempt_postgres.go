package postgres

import (
	"context"

	"github.com/J0na555/ExitPrep/internal/app_errors"
	"github.com/J0na555/ExitPrep/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AttemptPostgres struct {
	db *pgxpool.Pool
}

func NewAttemptPostgres(db *pgxpool.Pool) *AttemptPostgres {
	return &AttemptPostgres{db: db}
}

func (r *AttemptPostgres) CreateAttempt(ctx context.Context, attempt *models.StudyAttempt) error {
	const query = `
        INSERT INTO study_attempts (user_id, question_id, selected_option_id, is_correct)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query, attempt.UserID, attempt.QuestionID, attempt.SelectedOptionID, attempt.IsCorrect).
		Scan(&attempt.ID, &attempt.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return app_errors.ErrQuestionNotFound
		}
		return app_errors.Persistence("insert study attempt", err)
	}
	return nil
}

// AttemptsByUser lists the user's attempts, newest first.
func (r *AttemptPostgres) AttemptsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.StudyAttempt, error) {
	const query = `
        SELECT id, user_id, question_id, selected_option_id, is_correct, created_at
          FROM study_attempts
         WHERE user_id = $1
         ORDER BY created_at DESC, id
         LIMIT $2`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, app_errors.Persistence("select study attempts", err)
	}
	defer rows.Close()

	attempts := make([]models.StudyAttempt, 0)
	for rows.Next() {
		var a models.StudyAttempt
		if err := rows.Scan(&a.ID, &a.UserID, &a.QuestionID, &a.SelectedOptionID, &a.IsCorrect, &a.CreatedAt); err != nil {
			return nil, app_errors.Persistence("scan study attempt", err)
		}
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, app_errors.Persistence("iterate study attempts", err)
	}
	return attempts, nil
}
