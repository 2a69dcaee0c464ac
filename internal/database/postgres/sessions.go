package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/rollmark/rollmark/internal/database"
)

// SessionRepository provides PostgreSQL-backed class session storage.
type SessionRepository struct {
	pool *Pool
}

// NewSessionRepository creates a new PostgreSQL session repository.
func NewSessionRepository(pool *Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `id, course_code, course_title, teacher_id, status, session_date, roster, present, created_at`

func scanSession(scanner interface{ Scan(...any) error }) (*database.Session, error) {
	var s database.Session
	err := scanner.Scan(
		&s.ID,
		&s.CourseCode,
		&s.CourseTitle,
		&s.TeacherID,
		&s.Status,
		&s.Date,
		pq.Array(&s.Roster),
		pq.Array(&s.Present),
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) querySessions(ctx context.Context, query string, args ...any) ([]database.Session, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []database.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// GetSession retrieves a session by ID, returns nil if not found.
func (r *SessionRepository) GetSession(ctx context.Context, sessionID string) (*database.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM class_sessions WHERE id = $1`

	s, err := scanSession(r.pool.QueryRow(ctx, query, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	return s, nil
}

// ActiveForStudent returns active sessions whose roster contains the student.
func (r *SessionRepository) ActiveForStudent(ctx context.Context, studentID string) ([]database.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM class_sessions
		WHERE status = 'active' AND $1 = ANY(roster)
		ORDER BY session_date, created_at
	`
	return r.querySessions(ctx, query, studentID)
}

// ByCourse returns every session for the course regardless of status.
func (r *SessionRepository) ByCourse(ctx context.Context, courseCode string) ([]database.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM class_sessions
		WHERE course_code = $1
		ORDER BY session_date, created_at
	`
	return r.querySessions(ctx, query, courseCode)
}

// ByTeacherCourse returns every session for the teacher/course pair
// regardless of status.
func (r *SessionRepository) ByTeacherCourse(ctx context.Context, teacherID, courseCode string) ([]database.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM class_sessions
		WHERE teacher_id = $1 AND course_code = $2
		ORDER BY session_date, created_at
	`
	return r.querySessions(ctx, query, teacherID, courseCode)
}

// CoursesForStudent returns distinct course codes of sessions whose
// roster contains the student.
func (r *SessionRepository) CoursesForStudent(ctx context.Context, studentID string) ([]string, error) {
	query := `
		SELECT DISTINCT course_code
		FROM class_sessions
		WHERE $1 = ANY(roster)
		ORDER BY course_code
	`

	rows, err := r.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("query student courses: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan course code: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate course codes: %w", err)
	}
	return codes, nil
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, session database.Session) error {
	query := `
		INSERT INTO class_sessions (id, course_code, course_title, teacher_id, status, session_date, roster, present)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.CourseCode,
		session.CourseTitle,
		session.TeacherID,
		session.Status,
		session.Date,
		textArray(session.Roster),
		textArray(session.Present),
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// SetStatus transitions the session status.
func (r *SessionRepository) SetStatus(ctx context.Context, sessionID string, status database.SessionStatus) error {
	result, err := r.pool.Exec(ctx, "UPDATE class_sessions SET status = $2 WHERE id = $1", sessionID, status)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("session status rows affected: %w", err)
	}
	if affected == 0 {
		return database.ErrSessionNotFound
	}
	return nil
}

// AddPresent marks the student present with set-union semantics. The
// guarded single-statement append means two racing calls for the same
// (session, student) pair cannot both report an added row.
func (r *SessionRepository) AddPresent(ctx context.Context, sessionID, studentID string) (bool, error) {
	query := `
		UPDATE class_sessions
		SET present = array_append(present, $2)
		WHERE id = $1 AND NOT ($2 = ANY(present))
	`

	result, err := r.pool.Exec(ctx, query, sessionID, studentID)
	if err != nil {
		return false, fmt.Errorf("mark present: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark present rows affected: %w", err)
	}
	if affected > 0 {
		return true, nil
	}

	// No row changed: either the student is already present or the
	// session does not exist.
	var exists bool
	err = r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM class_sessions WHERE id = $1)", sessionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check session exists: %w", err)
	}
	if !exists {
		return false, database.ErrSessionNotFound
	}
	return false, nil
}
