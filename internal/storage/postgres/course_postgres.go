package postgres

import (
	"context"

	"github.com/J0na555/ExitPrep/internal/app_errors"
	"github.com/J0na555/ExitPrep/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CoursePostgres struct {
	db *pgxpool.Pool
}

func NewCoursePostgres(db *pgxpool.Pool) *CoursePostgres {
	return &CoursePostgres{db: db}
}

const courseColumns = `id, title, description, created_at`

func (r *CoursePostgres) CreateCourse(ctx context.Context, course *models.Course) error {
	return insertCourse(ctx, r.db, course)
}

func (r *CoursePostgres) Courses(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT ` + courseColumns + ` FROM courses ORDER BY title`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, app_errors.Persistence("select courses", err)
	}
	defer rows.Close()

	courses := make([]models.Course, 0)
	for rows.Next() {
		var c models.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.CreatedAt); err != nil {
			return nil, app_errors.Persistence("scan course", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, app_errors.Persistence("iterate courses", err)
	}
	return courses, nil
}

func (r *CoursePostgres) CourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	const query = `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	course := &models.Course{}
	err := r.db.QueryRow(ctx, query, id).Scan(&course.ID, &course.Title, &course.Description, &course.CreatedAt)
	if err != nil {
		return nil, mapRowErr("select course", err, app_errors.ErrCourseNotFound)
	}
	return course, nil
}

func (r *CoursePostgres) CourseByTitle(ctx context.Context, title string) (*models.Course, error) {
	return courseByTitle(ctx, r.db, title)
}

func (r *CoursePostgres) UpdateCourse(ctx context.Context, id uuid.UUID, upd models.CourseUpdate) (*models.Course, error) {
	const query = `
        UPDATE courses
           SET title       = COALESCE($2, title),
               description = COALESCE($3, description)
         WHERE id = $1
     RETURNING ` + courseColumns
	course := &models.Course{}
	err := r.db.QueryRow(ctx, query, id, upd.Title, upd.Description).
		Scan(&course.ID, &course.Title, &course.Description, &course.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, app_errors.ErrCourseExists
		}
		return nil, mapRowErr("update course", err, app_errors.ErrCourseNotFound)
	}
	return course, nil
}

// DeleteCourse removes the course; chapters, questions and options go with it.
func (r *CoursePostgres) DeleteCourse(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return app_errors.Persistence("delete course", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return app_errors.ErrCourseNotFound
	}
	return nil
}

func insertCourse(ctx context.Context, db DBTX, course *models.Course) error {
	const query = `INSERT INTO courses (title, description) VALUES ($1, $2) RETURNING id, created_at`
	err := db.QueryRow(ctx, query, course.Title, course.Description).Scan(&course.ID, &course.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) && violatedConstraint(err) == constraintCourseTitle {
			return app_errors.ErrCourseExists
		}
		return app_errors.Persistence("insert course", err)
	}
	return nil
}

func courseByTitle(ctx context.Context, db DBTX, title string) (*models.Course, error) {
	const query = `SELECT ` + courseColumns + ` FROM courses WHERE title = $1`
	course := &models.Course{}
	err := db.QueryRow(ctx, query, title).Scan(&course.ID, &course.Title, &course.Description, &course.CreatedAt)
	if err != nil {
		return nil, mapRowErr("select course by title", err, app_errors.ErrCourseNotFound)
	}
	return course, nil
}
