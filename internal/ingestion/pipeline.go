package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/J0na555/ExitPrep/internal/app_errors"
	"github.com/J0na555/ExitPrep/internal/models"
	"github.com/J0na555/ExitPrep/pkg/logger"
	"github.com/google/uuid"
)

// Repo is the storage a single record needs. All calls made through one Repo
// share a transaction.
type Repo interface {
	QuestionExists(ctx context.Context, text string) (bool, error)
	CourseByTitle(ctx context.Context, title string) (*models.Course, error)
	CreateCourse(ctx context.Context, course *models.Course) error
	ChapterByTitle(ctx context.Context, courseID uuid.UUID, title string) (*models.Chapter, error)
	CreateChapter(ctx context.Context, chapter *models.Chapter) error
	CreateQuestion(ctx context.Context, question *models.Question) error
}

// Store commits fn's writes when it returns nil and discards them otherwise.
type Store interface {
	InTx(ctx context.Context, fn func(repo Repo) error) error
}

type Indexer interface {
	IndexQuestion(ctx context.Context, question *models.Question) error
}

type Report struct {
	FilesProcessed   int `json:"files_processed"`
	FilesFailed      int `json:"files_failed"`
	Inserted         int `json:"inserted"`
	SkippedDuplicate int `json:"skipped_duplicate"`
	SkippedInvalid   int `json:"skipped_invalid"`
	Failed           int `json:"failed"`
}

func (r Report) String() string {
	return fmt.Sprintf("files: %d processed, %d failed; records: %d inserted, %d duplicate, %d invalid, %d failed",
		r.FilesProcessed, r.FilesFailed, r.Inserted, r.SkippedDuplicate, r.SkippedInvalid, r.Failed)
}

const DefaultChapterTitle = "General"

var errDuplicate = errors.New("question already exists")

type Pipeline struct {
	log          logger.Log
	store        Store
	index        Indexer
	chapterTitle string
}

// NewPipeline builds a pipeline. index may be nil.
func NewPipeline(l logger.Log, store Store, index Indexer, chapterTitle string) *Pipeline {
	if chapterTitle == "" {
		chapterTitle = DefaultChapterTitle
	}
	return &Pipeline{
		log:          l.With("component", "ingestion"),
		store:        store,
		index:        index,
		chapterTitle: chapterTitle,
	}
}

// Run ingests every file of src in order. Only a failure to list src is returned;
// per-file and per-record problems are logged and counted in the report.
func (p *Pipeline) Run(ctx context.Context, src Source) (Report, error) {
	var report Report
	names, err := src.List(ctx)
	if err != nil {
		return report, err
	}
	if len(names) == 0 {
		p.log.Warn("no batch files found")
		return report, nil
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		data, err := src.Read(ctx, name)
		if err != nil {
			report.FilesFailed++
			p.log.ErrorErr("failed to read batch file", err, "file", name)
			continue
		}
		if err := p.IngestFile(ctx, name, data, &report); err != nil {
			report.FilesFailed++
			p.log.ErrorErr("skipping batch file", err, "file", name)
			continue
		}
		report.FilesProcessed++
	}

	p.log.Info("ingestion complete", "report", report.String())
	return report, nil
}

// IngestFile ingests one batch. It fails only when data is not a JSON list.
func (p *Pipeline) IngestFile(ctx context.Context, name string, data []byte, report *Report) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("top-level JSON must be a list of questions: %w", err)
	}
	if items == nil {
		return errors.New("top-level JSON must be a list of questions")
	}
	p.log.Info("processing batch file", "file", name, "items", len(items))

	for i, raw := range items {
		idx := i + 1
		rec, err := ParseRecord(raw)
		if err != nil {
			report.SkippedInvalid++
			p.log.Warn("skipping item: validation error", "file", name, "item", idx, "reason", err.Error())
			continue
		}

		question, err := p.ingestRecord(ctx, rec)
		switch {
		case errors.Is(err, errDuplicate):
			report.SkippedDuplicate++
			p.log.Info("skipped existing question", "file", name, "item", idx, "question", preview(rec.QuestionText))
		case err != nil:
			report.Failed++
			p.log.ErrorErr("failed to insert question", err, "file", name, "item", idx)
		default:
			report.Inserted++
			p.log.Info("inserted question", "file", name, "item", idx, "question", preview(rec.QuestionText), "course", rec.CourseName)
			p.indexQuestion(ctx, question)
		}
	}
	return nil
}

func (p *Pipeline) ingestRecord(ctx context.Context, rec Record) (*models.Question, error) {
	var question *models.Question
	err := p.store.InTx(ctx, func(repo Repo) error {
		exists, err := repo.QuestionExists(ctx, rec.QuestionText)
		if err != nil {
			return err
		}
		if exists {
			return errDuplicate
		}

		course, err := p.courseFor(ctx, repo, rec.CourseName)
		if err != nil {
			return err
		}
		chapter, err := p.chapterFor(ctx, repo, course.ID)
		if err != nil {
			return err
		}

		correct := rec.CorrectIndex()
		q := &models.Question{
			ChapterID:    chapter.ID,
			QuestionText: rec.QuestionText,
			Difficulty:   models.DifficultyMedium,
			Source:       models.SourceGenerated,
			Options:      make([]models.Option, len(rec.Options)),
		}
		for i, o := range rec.Options {
			q.Options[i] = models.Option{Text: o.Text, IsCorrect: i == correct}
		}
		if err := repo.CreateQuestion(ctx, q); err != nil {
			return err
		}
		question = q
		return nil
	})
	if err != nil {
		return nil, err
	}
	return question, nil
}

func (p *Pipeline) courseFor(ctx context.Context, repo Repo, title string) (*models.Course, error) {
	course, err := repo.CourseByTitle(ctx, title)
	if err == nil {
		return course, nil
	}
	if !errors.Is(err, app_errors.ErrCourseNotFound) {
		return nil, err
	}
	course = &models.Course{Title: title}
	if err := repo.CreateCourse(ctx, course); err != nil {
		return nil, err
	}
	p.log.Info("created course", "course", title)
	return course, nil
}

func (p *Pipeline) chapterFor(ctx context.Context, repo Repo, courseID uuid.UUID) (*models.Chapter, error) {
	chapter, err := repo.ChapterByTitle(ctx, courseID, p.chapterTitle)
	if err == nil {
		return chapter, nil
	}
	if !errors.Is(err, app_errors.ErrChapterNotFound) {
		return nil, err
	}
	chapter = &models.Chapter{CourseID: courseID, Title: p.chapterTitle, OrderIndex: 0}
	if err := repo.CreateChapter(ctx, chapter); err != nil {
		return nil, err
	}
	return chapter, nil
}

func (p *Pipeline) indexQuestion(ctx context.Context, question *models.Question) {
	if p.index == nil || question == nil {
		return
	}
	if err := p.index.IndexQuestion(ctx, question); err != nil {
		p.log.ErrorErr("failed to index question", err, "question_id", question.ID)
	}
}

func preview(text string) string {
	const limit = 60
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return string(r[:limit])
}
