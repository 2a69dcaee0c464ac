// Package sis provides read-only access to the student information
// system's MySQL mirror, used to import course rosters and student names.
package sis

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/rollmark/rollmark/internal/database"
)

// Pool manages a MySQL connection pool to the SIS mirror.
type Pool struct {
	db *sql.DB
}

// NewPool creates a new SIS connection pool.
func NewPool(dsn string) (*Pool, error) {
	if dsn == "" {
		return nil, errors.New("SIS DSN is required")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SIS database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping SIS database: %w", err)
	}

	return &Pool{db: db}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("closing SIS connection: %w", err)
		}
	}
	return nil
}

// Student is a student record as the SIS exposes it.
type Student struct {
	StudentID  string
	GivenName  string
	FamilyName string
}

// Students returns every student in the SIS mirror.
func (p *Pool) Students(ctx context.Context) ([]Student, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT student_no, given_name, family_name
		FROM students
		ORDER BY student_no
	`)
	if err != nil {
		return nil, fmt.Errorf("query SIS students: %w", err)
	}
	defer rows.Close()

	var students []Student
	for rows.Next() {
		var s Student
		if err := rows.Scan(&s.StudentID, &s.GivenName, &s.FamilyName); err != nil {
			return nil, fmt.Errorf("scan SIS student: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate SIS students: %w", err)
	}
	return students, nil
}

// Courses returns every course with its teachers and enrolled students.
func (p *Pool) Courses(ctx context.Context) ([]database.Course, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT course_code, course_title
		FROM courses
		ORDER BY course_code
	`)
	if err != nil {
		return nil, fmt.Errorf("query SIS courses: %w", err)
	}
	defer rows.Close()

	var courses []database.Course
	for rows.Next() {
		var c database.Course
		if err := rows.Scan(&c.Code, &c.Title); err != nil {
			return nil, fmt.Errorf("scan SIS course: %w", err)
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate SIS courses: %w", err)
	}

	for i := range courses {
		teachers, err := p.courseMembers(ctx, `
			SELECT teacher_id FROM course_teachers WHERE course_code = ? ORDER BY teacher_id
		`, courses[i].Code)
		if err != nil {
			return nil, err
		}
		courses[i].TeacherIDs = teachers

		students, err := p.courseMembers(ctx, `
			SELECT student_no FROM enrollments WHERE course_code = ? ORDER BY student_no
		`, courses[i].Code)
		if err != nil {
			return nil, err
		}
		courses[i].Students = students
	}
	return courses, nil
}

func (p *Pool) courseMembers(ctx context.Context, query, courseCode string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, query, courseCode)
	if err != nil {
		return nil, fmt.Errorf("query SIS course members: %w", err)
	}
	defer rows.Close()

	var members []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan SIS course member: %w", err)
		}
		members = append(members, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate SIS course members: %w", err)
	}
	return members, nil
}
