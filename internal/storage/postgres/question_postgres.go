package postgres

import (
	"context"
	"strings"

	"github.com/J0na555/ExitPrep/internal/app_errors"
	"github.com/J0na555/ExitPrep/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type QuestionPostgres struct {
	db *pgxpool.Pool
}

func NewQuestionPostgres(db *pgxpool.Pool) *QuestionPostgres {
	return &QuestionPostgres{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const questionColumns = `id, chapter_id, question_text, difficulty::text, source::text, explanation, correct_option_id, created_at`

func scanQuestion(row pgx.Row, q *models.Question) error {
	return row.Scan(&q.ID, &q.ChapterID, &q.QuestionText, &q.Difficulty, &q.Source, &q.Explanation, &q.CorrectOptionID, &q.CreatedAt)
}

// CreateQuestion inserts the question and its options in one transaction and
// points correct_option_id at the option flagged correct, if any.
func (r *QuestionPostgres) CreateQuestion(ctx context.Context, question *models.Question) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		return insertQuestionWithOptions(ctx, tx, question)
	})
}

func (r *QuestionPostgres) QuestionByID(ctx context.Context, id uuid.UUID) (*models.Question, error) {
	return questionByID(ctx, r.db, id)
}

func (r *QuestionPostgres) QuestionsByChapter(ctx context.Context, chapterID uuid.UUID) ([]models.Question, error) {
	const query = `
        SELECT ` + questionColumns + `
          FROM questions
         WHERE chapter_id = $1
         ORDER BY created_at, id`
	return r.selectQuestions(ctx, query, chapterID)
}

// QuestionsByIDs returns the questions found for ids, in the order of ids.
func (r *QuestionPostgres) QuestionsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Question, error) {
	if len(ids) == 0 {
		return []models.Question{}, nil
	}
	const query = `SELECT ` + questionColumns + ` FROM questions WHERE id = ANY($1)`
	found, err := r.selectQuestions(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Question, len(found))
	for _, q := range found {
		byID[q.ID] = q
	}
	ordered := make([]models.Question, 0, len(found))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

// SearchQuestions is a substring match on question text, used when no search index is configured.
func (r *QuestionPostgres) SearchQuestions(ctx context.Context, query string, limit int) ([]models.Question, error) {
	const stmt = `
        SELECT ` + questionColumns + `
          FROM questions
         WHERE question_text ILIKE '%' || $1 || '%'
         ORDER BY created_at DESC
         LIMIT $2`
	return r.selectQuestions(ctx, stmt, escapeLike(query), limit)
}

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *QuestionPostgres) QuestionExistsByText(ctx context.Context, text string) (bool, error) {
	return questionExistsByText(ctx, r.db, text)
}

func (r *QuestionPostgres) UpdateQuestion(ctx context.Context, id uuid.UUID, upd models.QuestionUpdate) (*models.Question, error) {
	const query = `
        UPDATE questions
           SET chapter_id    = COALESCE($2, chapter_id),
               question_text = COALESCE($3, question_text),
               difficulty    = COALESCE($4::text::question_difficulty, difficulty),
               explanation   = COALESCE($5, explanation)
         WHERE id = $1
     RETURNING ` + questionColumns
	var difficulty *string
	if upd.Difficulty != nil {
		d := string(*upd.Difficulty)
		difficulty = &d
	}

	question := &models.Question{}
	err := scanQuestion(r.db.QueryRow(ctx, query, id, upd.ChapterID, upd.QuestionText, difficulty, upd.Explanation), question)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, app_errors.ErrChapterNotFound
		}
		return nil, mapRowErr("update question", err, app_errors.ErrQuestionNotFound)
	}
	if question.Options, err = optionsByQuestion(ctx, r.db, question.ID); err != nil {
		return nil, err
	}
	return question, nil
}

func (r *QuestionPostgres) DeleteQuestion(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return app_errors.Persistence("delete question", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrQuestionNotFound
	}
	return nil
}

func (r *QuestionPostgres) OptionByID(ctx context.Context, id uuid.UUID) (*models.Option, error) {
	const query = `SELECT id, question_id, option_text, is_correct FROM options WHERE id = $1`
	opt := &models.Option{}
	err := r.db.QueryRow(ctx, query, id).Scan(&opt.ID, &opt.QuestionID, &opt.Text, &opt.IsCorrect)
	if err != nil {
		return nil, mapRowErr("select option", err, app_errors.ErrOptionNotFound)
	}
	return opt, nil
}

// AddOption appends an option to its question. A correct option also becomes
// the question's correct_option_id.
func (r *QuestionPostgres) AddOption(ctx context.Context, opt *models.Option) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		var position int
		err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(position) + 1, 0) FROM options WHERE question_id = $1`, opt.QuestionID).
			Scan(&position)
		if err != nil {
			return app_errors.Persistence("next option position", err)
		}
		if err := insertOption(ctx, tx, opt, position); err != nil {
			return err
		}
		if opt.IsCorrect {
			return setCorrectOption(ctx, tx, opt.QuestionID, opt.ID)
		}
		return nil
	})
}

func (r *QuestionPostgres) UpdateOption(ctx context.Context, id uuid.UUID, upd models.OptionUpdate) (*models.Option, error) {
	const query = `
        UPDATE options
           SET option_text = COALESCE($2, option_text)
         WHERE id = $1
     RETURNING id, question_id, option_text, is_correct`
	opt := &models.Option{}
	err := r.db.QueryRow(ctx, query, id, upd.Text).Scan(&opt.ID, &opt.QuestionID, &opt.Text, &opt.IsCorrect)
	if err != nil {
		return nil, mapRowErr("update option", err, app_errors.ErrOptionNotFound)
	}
	return opt, nil
}

// DeleteOption clears any correct_option_id pointing at the option before removing it.
func (r *QuestionPostgres) DeleteOption(ctx context.Context, id uuid.UUID) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE questions SET correct_option_id = NULL WHERE correct_option_id = $1`, id); err != nil {
			return app_errors.Persistence("clear correct option", err)
		}
		cmdTag, err := tx.Exec(ctx, `DELETE FROM options WHERE id = $1`, id)
		if err != nil {
			return app_errors.Persistence("delete option", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return app_errors.ErrOptionNotFound
		}
		return nil
	})
}

// MarkCorrect makes the option the only correct one of its question.
func (r *QuestionPostgres) MarkCorrect(ctx context.Context, optionID uuid.UUID) (*models.Question, error) {
	var questionID uuid.UUID
	err := inTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `SELECT question_id FROM options WHERE id = $1 FOR UPDATE`, optionID).Scan(&questionID)
		if err != nil {
			return mapRowErr("select option", err, app_errors.ErrOptionNotFound)
		}
		const clear = `UPDATE options SET is_correct = false WHERE question_id = $1 AND is_correct AND id <> $2`
		if _, err := tx.Exec(ctx, clear, questionID, optionID); err != nil {
			return app_errors.Persistence("clear correct flags", err)
		}
		if _, err := tx.Exec(ctx, `UPDATE options SET is_correct = true WHERE id = $1`, optionID); err != nil {
			return app_errors.Persistence("flag correct option", err)
		}
		return setCorrectOption(ctx, tx, questionID, optionID)
	})
	if err != nil {
		return nil, err
	}
	return questionByID(ctx, r.db, questionID)
}

func (r *QuestionPostgres) selectQuestions(ctx context.Context, query string, args ...any) ([]models.Question, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, app_errors.Persistence("select questions", err)
	}
	defer rows.Close()

	questions := make([]models.Question, 0)
	ids := make([]uuid.UUID, 0)
	for rows.Next() {
		var q models.Question
		if err := scanQuestion(rows, &q); err != nil {
			return nil, app_errors.Persistence("scan question", err)
		}
		questions = append(questions, q)
		ids = append(ids, q.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, app_errors.Persistence("iterate questions", err)
	}

	options, err := optionsByQuestions(ctx, r.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		questions[i].Options = options[questions[i].ID]
		if questions[i].Options == nil {
			questions[i].Options = []models.Option{}
		}
	}
	return questions, nil
}

func questionByID(ctx context.Context, db DBTX, id uuid.UUID) (*models.Question, error) {
	const query = `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`
	question := &models.Question{}
	if err := scanQuestion(db.QueryRow(ctx, query, id), question); err != nil {
		return nil, mapRowErr("select question", err, app_errors.ErrQuestionNotFound)
	}
	opts, err := optionsByQuestion(ctx, db, id)
	if err != nil {
		return nil, err
	}
	question.Options = opts
	return question, nil
}

func questionExistsByText(ctx context.Context, db DBTX, text string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM questions WHERE md5(question_text) = md5($1) AND question_text = $1)`
	var exists bool
	if err := db.QueryRow(ctx, query, text).Scan(&exists); err != nil {
		return false, app_errors.Persistence("question exists", err)
	}
	return exists, nil
}

func insertQuestionWithOptions(ctx context.Context, db DBTX, question *models.Question) error {
	if question.Difficulty == "" {
		question.Difficulty = models.DifficultyMedium
	}
	if question.Source == "" {
		question.Source = models.SourceManual
	}
	const query = `
        INSERT INTO questions (chapter_id, question_text, difficulty, source, explanation)
        VALUES ($1, $2, $3::text::question_difficulty, $4::text::question_source, $5)
        RETURNING id, created_at`
	err := db.QueryRow(ctx, query,
		question.ChapterID,
		question.QuestionText,
		string(question.Difficulty),
		string(question.Source),
		question.Explanation,
	).Scan(&question.ID, &question.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return app_errors.ErrChapterNotFound
		}
		return app_errors.Persistence("insert question", err)
	}

	question.CorrectOptionID = nil
	for i := range question.Options {
		opt := &question.Options[i]
		opt.QuestionID = question.ID
		if err := insertOption(ctx, db, opt, i); err != nil {
			return err
		}
		if opt.IsCorrect {
			if err := setCorrectOption(ctx, db, question.ID, opt.ID); err != nil {
				return err
			}
			id := opt.ID
			question.CorrectOptionID = &id
		}
	}
	return nil
}

func insertOption(ctx context.Context, db DBTX, opt *models.Option, position int) error {
	const query = `
        INSERT INTO options (question_id, option_text, is_correct, position)
        VALUES ($1, $2, $3, $4)
        RETURNING id`
	err := db.QueryRow(ctx, query, opt.QuestionID, opt.Text, opt.IsCorrect, position).Scan(&opt.ID)
	if err != nil {
		switch {
		case isUniqueViolation(err) && violatedConstraint(err) == constraintOneCorrect:
			return app_errors.ErrMultipleCorrect
		case isForeignKeyViolation(err):
			return app_errors.ErrQuestionNotFound
		}
		return app_errors.Persistence("insert option", err)
	}
	return nil
}

func setCorrectOption(ctx context.Context, db DBTX, questionID, optionID uuid.UUID) error {
	cmdTag, err := db.Exec(ctx, `UPDATE questions SET correct_option_id = $2 WHERE id = $1`, questionID, optionID)
	if err != nil {
		if isForeignKeyViolation(err) && violatedConstraint(err) == constraintCorrectOption {
			return app_errors.ErrOptionMismatch
		}
		return app_errors.Persistence("set correct option", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrQuestionNotFound
	}
	return nil
}

func optionsByQuestion(ctx context.Context, db DBTX, questionID uuid.UUID) ([]models.Option, error) {
	byQuestion, err := optionsByQuestions(ctx, db, []uuid.UUID{questionID})
	if err != nil {
		return nil, err
	}
	if opts := byQuestion[questionID]; opts != nil {
		return opts, nil
	}
	return []models.Option{}, nil
}

func optionsByQuestions(ctx context.Context, db DBTX, questionIDs []uuid.UUID) (map[uuid.UUID][]models.Option, error) {
	out := make(map[uuid.UUID][]models.Option, len(questionIDs))
	if len(questionIDs) == 0 {
		return out, nil
	}
	const query = `
        SELECT id, question_id, option_text, is_correct
          FROM options
         WHERE question_id = ANY($1)
         ORDER BY question_id, position, id`
	rows, err := db.Query(ctx, query, questionIDs)
	if err != nil {
		return nil, app_errors.Persistence("select options", err)
	}
	defer rows.Close()

	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.ID, &opt.QuestionID, &opt.Text, &opt.IsCorrect); err != nil {
			return nil, app_errors.Persistence("scan option", err)
		}
		out[opt.QuestionID] = append(out[opt.QuestionID], opt)
	}
	if err := rows.Err(); err != nil {
		return nil, app_errors.Persistence("iterate options", err)
	}
	return out, nil
}
