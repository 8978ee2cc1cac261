package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/J0na555/ExitPrep/internal/app_errors"
	"github.com/J0na555/ExitPrep/internal/ingestion"
	"github.com/J0na555/ExitPrep/internal/models"
	"github.com/J0na555/ExitPrep/pkg/logger"
	"github.com/google/uuid"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	pg, err := NewPostgresPool(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pg.Close)
	if err := pg.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return pg
}

func createCourseWithChapter(t *testing.T, pg *Storage) (*models.Course, *models.Chapter) {
	t.Helper()
	ctx := context.Background()
	course := &models.Course{Title: "Course " + uuid.NewString()}
	if err := NewCoursePostgres(pg.Pool).CreateCourse(ctx, course); err != nil {
		t.Fatalf("create course: %v", err)
	}
	t.Cleanup(func() { _ = NewCoursePostgres(pg.Pool).DeleteCourse(context.Background(), course.ID) })

	chapter := &models.Chapter{CourseID: course.ID, Title: "Chapter 1"}
	if err := NewChapterPostgres(pg.Pool).CreateChapter(ctx, chapter); err != nil {
		t.Fatalf("create chapter: %v", err)
	}
	return course, chapter
}

func TestCourseDeleteCascades(t *testing.T) {
	pg := openTestStorage(t)
	ctx := context.Background()
	course, chapter := createCourseWithChapter(t, pg)
	questions := NewQuestionPostgres(pg.Pool)

	q := &models.Question{
		ChapterID:    chapter.ID,
		QuestionText: "What is a deadlock? " + uuid.NewString(),
		Options:      []models.Option{{Text: "A wait cycle", IsCorrect: true}, {Text: "A crash"}},
	}
	if err := questions.CreateQuestion(ctx, q); err != nil {
		t.Fatalf("create question: %v", err)
	}
	if q.CorrectOptionID == nil || *q.CorrectOptionID != q.Options[0].ID {
		t.Fatalf("correct option not set: %+v", q)
	}

	if err := NewCoursePostgres(pg.Pool).DeleteCourse(ctx, course.ID); err != nil {
		t.Fatalf("delete course: %v", err)
	}
	if _, err := NewChapterPostgres(pg.Pool).ChapterByID(ctx, chapter.ID); !errors.Is(err, app_errors.ErrChapterNotFound) {
		t.Fatalf("chapter survived: %v", err)
	}
	if _, err := questions.QuestionByID(ctx, q.ID); !errors.Is(err, app_errors.ErrQuestionNotFound) {
		t.Fatalf("question survived: %v", err)
	}
	if _, err := questions.OptionByID(ctx, q.Options[1].ID); !errors.Is(err, app_errors.ErrOptionNotFound) {
		t.Fatalf("option survived: %v", err)
	}
}

func TestOneCorrectOptionConstraint(t *testing.T) {
	pg := openTestStorage(t)
	ctx := context.Background()
	_, chapter := createCourseWithChapter(t, pg)
	questions := NewQuestionPostgres(pg.Pool)

	twoCorrect := &models.Question{
		ChapterID:    chapter.ID,
		QuestionText: "Two correct " + uuid.NewString(),
		Options:      []models.Option{{Text: "a", IsCorrect: true}, {Text: "b", IsCorrect: true}},
	}
	if err := questions.CreateQuestion(ctx, twoCorrect); !errors.Is(err, app_errors.ErrMultipleCorrect) {
		t.Fatalf("err = %v, want ErrMultipleCorrect", err)
	}
	if exists, _ := questions.QuestionExistsByText(ctx, twoCorrect.QuestionText); exists {
		t.Fatal("failed insert was not rolled back")
	}

	q := &models.Question{
		ChapterID:    chapter.ID,
		QuestionText: "One correct " + uuid.NewString(),
		Options:      []models.Option{{Text: "a", IsCorrect: true}, {Text: "b"}},
	}
	if err := questions.CreateQuestion(ctx, q); err != nil {
		t.Fatalf("create: %v", err)
	}
	extra := &models.Option{QuestionID: q.ID, Text: "c", IsCorrect: true}
	if err := questions.AddOption(ctx, extra); !errors.Is(err, app_errors.ErrMultipleCorrect) {
		t.Fatalf("AddOption err = %v, want ErrMultipleCorrect", err)
	}

	updated, err := questions.MarkCorrect(ctx, q.Options[1].ID)
	if err != nil {
		t.Fatalf("MarkCorrect: %v", err)
	}
	if *updated.CorrectOptionID != q.Options[1].ID || models.CorrectOptions(updated.Options) != 1 || !updated.Options[1].IsCorrect {
		t.Fatalf("after MarkCorrect: %+v", updated)
	}
}

func TestIngestionIsIdempotent(t *testing.T) {
	pg := openTestStorage(t)
	ctx := context.Background()

	run := uuid.NewString()
	course := "Ingested " + run
	t.Cleanup(func() {
		if c, err := NewCoursePostgres(pg.Pool).CourseByTitle(context.Background(), course); err == nil {
			_ = NewCoursePostgres(pg.Pool).DeleteCourse(context.Background(), c.ID)
		}
	})

	dir := t.TempDir()
	batch := fmt.Sprintf(`[
  {"course_name": %q, "question_text": "What does TCP guarantee? %s", "options": [{"text": "Ordering", "is_correct": true}, {"text": "Nothing", "is_correct": false}]},
  {"course_name": %q, "question_text": "What does UDP guarantee? %s", "options": [{"text": "Nothing", "is_correct": false}, {"text": "Ordering", "is_correct": false}]},
  {"course_name": %q, "question_text": 7, "options": []}
]`, course, run, course, run, course)
	if err := os.WriteFile(filepath.Join(dir, "batch.json"), []byte(batch), 0o644); err != nil {
		t.Fatal(err)
	}

	pipeline := ingestion.NewPipeline(logger.NewNop(), NewIngestPostgres(pg.Pool), nil, "")
	first, err := pipeline.Run(ctx, ingestion.DirSource{Dir: dir})
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.Inserted != 2 || first.SkippedInvalid != 1 {
		t.Fatalf("first run report = %s", first)
	}

	second, err := pipeline.Run(ctx, ingestion.DirSource{Dir: dir})
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Inserted != 0 || second.SkippedDuplicate != 2 {
		t.Fatalf("second run report = %s", second)
	}

	c, err := NewCoursePostgres(pg.Pool).CourseByTitle(ctx, course)
	if err != nil {
		t.Fatalf("course not created: %v", err)
	}
	chapters, err := NewChapterPostgres(pg.Pool).ChaptersByCourse(ctx, c.ID)
	if err != nil || len(chapters) != 1 || chapters[0].Title != ingestion.DefaultChapterTitle {
		t.Fatalf("chapters = %+v err = %v", chapters, err)
	}
	questions, err := NewQuestionPostgres(pg.Pool).QuestionsByChapter(ctx, chapters[0].ID)
	if err != nil || len(questions) != 2 {
		t.Fatalf("questions = %d err = %v", len(questions), err)
	}
	for _, q := range questions {
		if q.CorrectOptionID == nil || models.CorrectOptions(q.Options) != 1 {
			t.Fatalf("question %q has no single correct option", q.QuestionText)
		}
	}
}
