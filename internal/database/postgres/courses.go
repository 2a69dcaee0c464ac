package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/rollmark/rollmark/internal/database"
)

// CourseRepository provides PostgreSQL-backed course storage.
type CourseRepository struct {
	pool *Pool
}

// NewCourseRepository creates a new PostgreSQL course repository.
func NewCourseRepository(pool *Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

// GetCourse retrieves a course by code, returns nil if not found.
func (r *CourseRepository) GetCourse(ctx context.Context, courseCode string) (*database.Course, error) {
	query := `
		SELECT course_code, course_title, teacher_ids, students
		FROM courses
		WHERE course_code = $1
	`

	var course database.Course
	err := r.pool.QueryRow(ctx, query, courseCode).Scan(
		&course.Code,
		&course.Title,
		pq.Array(&course.TeacherIDs),
		pq.Array(&course.Students),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query course: %w", err)
	}
	return &course, nil
}

// GetCourseForTeacher retrieves a course only when the teacher is
// assigned to it, returns nil otherwise.
func (r *CourseRepository) GetCourseForTeacher(ctx context.Context, teacherID, courseCode string) (*database.Course, error) {
	query := `
		SELECT course_code, course_title, teacher_ids, students
		FROM courses
		WHERE course_code = $1 AND $2 = ANY(teacher_ids)
	`

	var course database.Course
	err := r.pool.QueryRow(ctx, query, courseCode, teacherID).Scan(
		&course.Code,
		&course.Title,
		pq.Array(&course.TeacherIDs),
		pq.Array(&course.Students),
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query course for teacher: %w", err)
	}
	return &course, nil
}

// UpsertCourse creates or replaces a course definition.
func (r *CourseRepository) UpsertCourse(ctx context.Context, course database.Course) error {
	query := `
		INSERT INTO courses (course_code, course_title, teacher_ids, students)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (course_code) DO UPDATE SET
			course_title = EXCLUDED.course_title,
			teacher_ids = EXCLUDED.teacher_ids,
			students = EXCLUDED.students,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		course.Code,
		course.Title,
		textArray(course.TeacherIDs),
		textArray(course.Students),
	)
	if err != nil {
		return fmt.Errorf("upsert course: %w", err)
	}
	return nil
}
