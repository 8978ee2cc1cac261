package postgres

import (
	"context"

	"github.com/J0na555/ExitPrep/internal/ingestion"
	"github.com/J0na555/ExitPrep/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IngestPostgres backs the ingestion pipeline; every record runs in its own transaction.
type IngestPostgres struct {
	db *pgxpool.Pool
}

func NewIngestPostgres(db *pgxpool.Pool) *IngestPostgres {
	return &IngestPostgres{db: db}
}

func (r *IngestPostgres) InTx(ctx context.Context, fn func(repo ingestion.Repo) error) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(&ingestTx{tx: tx})
	})
}

type ingestTx struct {
	tx pgx.Tx
}

func (t *ingestTx) QuestionExists(ctx context.Context, text string) (bool, error) {
	return questionExistsByText(ctx, t.tx, text)
}

func (t *ingestTx) CourseByTitle(ctx context.Context, title string) (*models.Course, error) {
	return courseByTitle(ctx, t.tx, title)
}

func (t *ingestTx) CreateCourse(ctx context.Context, course *models.Course) error {
	return insertCourse(ctx, t.tx, course)
}

func (t *ingestTx) ChapterByTitle(ctx context.Context, courseID uuid.UUID, title string) (*models.Chapter, error) {
	return chapterByTitle(ctx, t.tx, courseID, title)
}

func (t *ingestTx) CreateChapter(ctx context.Context, chapter *models.Chapter) error {
	return insertChapter(ctx, t.tx, chapter)
}

func (t *ingestTx) CreateQuestion(ctx context.Context, question *models.Question) error {
	return insertQuestionWithOptions(ctx, t.tx, question)
}
