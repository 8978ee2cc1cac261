package postgres

import (
	"context"

	"github.com/J0na555/ExitPrep/internal/app_errors"
	"github.com/J0na555/ExitPrep/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ChapterPostgres struct {
	db *pgxpool.Pool
}

func NewChapterPostgres(db *pgxpool.Pool) *ChapterPostgres {
	return &ChapterPostgres{db: db}
}

const chapterColumns = `id, course_id, title, description, order_index, created_at`

func scanChapter(row pgx.Row, ch *models.Chapter) error {
	return row.Scan(&ch.ID, &ch.CourseID, &ch.Title, &ch.Description, &ch.OrderIndex, &ch.CreatedAt)
}

func (r *ChapterPostgres) CreateChapter(ctx context.Context, chapter *models.Chapter) error {
	return insertChapter(ctx, r.db, chapter)
}

func (r *ChapterPostgres) ChapterByID(ctx context.Context, id uuid.UUID) (*models.Chapter, error) {
	const query = `SELECT ` + chapterColumns + ` FROM chapters WHERE id = $1`
	chapter := &models.Chapter{}
	if err := scanChapter(r.db.QueryRow(ctx, query, id), chapter); err != nil {
		return nil, mapRowErr("select chapter", err, app_errors.ErrChapterNotFound)
	}
	return chapter, nil
}

// ChaptersByCourse lists a course's chapters by order_index, then creation time.
func (r *ChapterPostgres) ChaptersByCourse(ctx context.Context, courseID uuid.UUID) ([]models.Chapter, error) {
	const query = `
        SELECT ` + chapterColumns + `
          FROM chapters
         WHERE course_id = $1
         ORDER BY order_index, created_at`
	rows, err := r.db.Query(ctx, query, courseID)
	if err != nil {
		return nil, app_errors.Persistence("select chapters", err)
	}
	defer rows.Close()

	chapters := make([]models.Chapter, 0)
	for rows.Next() {
		var ch models.Chapter
		if err := scanChapter(rows, &ch); err != nil {
			return nil, app_errors.Persistence("scan chapter", err)
		}
		chapters = append(chapters, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, app_errors.Persistence("iterate chapters", err)
	}
	return chapters, nil
}

func (r *ChapterPostgres) UpdateChapter(ctx context.Context, id uuid.UUID, upd models.ChapterUpdate) (*models.Chapter, error) {
	const query = `
        UPDATE chapters
           SET course_id   = COALESCE($2, course_id),
               title       = COALESCE($3, title),
               description = COALESCE($4, description),
               order_index = COALESCE($5, order_index)
         WHERE id = $1
     RETURNING ` + chapterColumns
	chapter := &models.Chapter{}
	err := scanChapter(r.db.QueryRow(ctx, query, id, upd.CourseID, upd.Title, upd.Description, upd.OrderIndex), chapter)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, app_errors.ErrCourseNotFound
		}
		return nil, mapRowErr("update chapter", err, app_errors.ErrChapterNotFound)
	}
	return chapter, nil
}

func (r *ChapterPostgres) DeleteChapter(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM chapters WHERE id = $1`, id)
	if err != nil {
		return app_errors.Persistence("delete chapter", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrChapterNotFound
	}
	return nil
}

func insertChapter(ctx context.Context, db DBTX, chapter *models.Chapter) error {
	const query = `
        INSERT INTO chapters (course_id, title, description, order_index)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at`
	err := db.QueryRow(ctx, query, chapter.CourseID, chapter.Title, chapter.Description, chapter.OrderIndex).
		Scan(&chapter.ID, &chapter.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return app_errors.ErrCourseNotFound
		}
		return app_errors.Persistence("insert chapter", err)
	}
	return nil
}

// chapterByTitle returns the earliest chapter of a course with the given title.
func chapterByTitle(ctx context.Context, db DBTX, courseID uuid.UUID, title string) (*models.Chapter, error) {
	const query = `
        SELECT ` + chapterColumns + `
          FROM chapters
         WHERE course_id = $1 AND title = $2
         ORDER BY order_index, created_at
         LIMIT 1`
	chapter := &models.Chapter{}
	if err := scanChapter(db.QueryRow(ctx, query, courseID, title), chapter); err != nil {
		return nil, mapRowErr("select chapter by title", err, app_errors.ErrChapterNotFound)
	}
	return chapter, nil
}
