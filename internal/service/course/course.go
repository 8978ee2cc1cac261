package course

import (
	"context"
	"strings"

	"github.com/J0na555/ExitPrep/internal/app_errors"
	"github.com/J0na555/ExitPrep/internal/models"
	"github.com/J0na555/ExitPrep/pkg/logger"
	"github.com/google/uuid"
)

type courseRepo interface {
	CreateCourse(ctx context.Context, course *models.Course) error
	Courses(ctx context.Context) ([]models.Course, error)
	CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	UpdateCourse(ctx context.Context, id uuid.UUID, upd models.CourseUpdate) (*models.Course, error)
	DeleteCourse(ctx context.Context, id uuid.UUID) error
}

type chapterRepo interface {
	CreateChapter(ctx context.Context, chapter *models.Chapter) error
	ChapterByID(ctx context.Context, id uuid.UUID) (*models.Chapter, error)
	ChaptersByCourse(ctx context.Context, courseID uuid.UUID) ([]models.Chapter, error)
	UpdateChapter(ctx context.Context, id uuid.UUID, upd models.ChapterUpdate) (*models.Chapter, error)
	DeleteChapter(ctx context.Context, id uuid.UUID) error
}

type CourseService struct {
	log         logger.Log
	courseRepo  courseRepo
	chapterRepo chapterRepo
}

func NewCourseService(log logger.Log, courseRepo courseRepo, chapterRepo chapterRepo) *CourseService {
	return &CourseService{
		log:         log.With("service", "course"),
		courseRepo:  courseRepo,
		chapterRepo: chapterRepo,
	}
}

func (s *CourseService) CreateCourse(ctx context.Context, course *models.Course) error {
	course.Title = strings.TrimSpace(course.Title)
	if course.Title == "" {
		return app_errors.Invalid("title", "is required")
	}
	if err := s.courseRepo.CreateCourse(ctx, course); err != nil {
		return err
	}
	s.log.Info("course created", "course_id", course.ID)
	return nil
}

func (s *CourseService) Courses(ctx context.Context) ([]models.Course, error) {
	return s.courseRepo.Courses(ctx)
}

func (s *CourseService) Course(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	return s.courseRepo.CourseByID(ctx, id)
}

func (s *CourseService) UpdateCourse(ctx context.Context, id uuid.UUID, upd models.CourseUpdate) (*models.Course, error) {
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, app_errors.Invalid("title", "must not be empty")
		}
		upd.Title = &title
	}
	return s.courseRepo.UpdateCourse(ctx, id, upd)
}

func (s *CourseService) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	if err := s.courseRepo.DeleteCourse(ctx, id); err != nil {
		return err
	}
	s.log.Info("course deleted", "course_id", id)
	return nil
}

func (s *CourseService) CreateChapter(ctx context.Context, chapter *models.Chapter) error {
	chapter.Title = strings.TrimSpace(chapter.Title)
	if chapter.Title == "" {
		return app_errors.Invalid("title", "is required")
	}
	if chapter.OrderIndex < 0 {
		return app_errors.Invalid("order_index", "must not be negative")
	}
	if _, err := s.courseRepo.CourseByID(ctx, chapter.CourseID); err != nil {
		return err
	}
	return s.chapterRepo.CreateChapter(ctx, chapter)
}

// Chapters lists a course's chapters in order.
func (s *CourseService) Chapters(ctx context.Context, courseID uuid.UUID) ([]models.Chapter, error) {
	if _, err := s.courseRepo.CourseByID(ctx, courseID); err != nil {
		return nil, err
	}
	return s.chapterRepo.ChaptersByCourse(ctx, courseID)
}

func (s *CourseService) Chapter(ctx context.Context, id uuid.UUID) (*models.Chapter, error) {
	return s.chapterRepo.ChapterByID(ctx, id)
}

func (s *CourseService) UpdateChapter(ctx context.Context, id uuid.UUID, upd models.ChapterUpdate) (*models.Chapter, error) {
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return nil, app_errors.Invalid("title", "must not be empty")
		}
		upd.Title = &title
	}
	if upd.OrderIndex != nil && *upd.OrderIndex < 0 {
		return nil, app_errors.Invalid("order_index", "must not be negative")
	}
	if upd.CourseID != nil {
		if _, err := s.courseRepo.CourseByID(ctx, *upd.CourseID); err != nil {
			return nil, err
		}
	}
	return s.chapterRepo.UpdateChapter(ctx, id, upd)
}

func (s *CourseService) DeleteChapter(ctx context.Context, id uuid.UUID) error {
	return s.chapterRepo.DeleteChapter(ctx, id)
}
