package database

import (
	"context"
	"time"
)

// IdentityReader provides read-only access to enrolled identities.
type IdentityReader interface {
	// Get retrieves an identity by student ID, returns nil if not found
	Get(ctx context.Context, studentID string) (*Identity, error)
	// AllEnrolled returns every identity with a non-nil embedding.
	// The result is a fresh scan in stable enrollment order; no cursor
	// state is retained between calls.
	AllEnrolled(ctx context.Context) ([]Identity, error)
	// Count returns the total number of identities stored
	Count(ctx context.Context) (int, error)
}

// IdentityWriter provides write access to identities.
type IdentityWriter interface {
	IdentityReader

	// Upsert creates the identity or overwrites its names and embedding.
	// A non-empty photo ref is appended to the existing photo list.
	// Returns true when a new identity was created. Atomic per student ID.
	Upsert(ctx context.Context, identity Identity) (created bool, err error)

	// UpsertName creates or updates an identity's names without touching
	// its embedding or photo refs. Used by roster synchronization.
	UpsertName(ctx context.Context, studentID, givenName, familyName string) error
}

// SessionReader provides read-only access to class sessions.
type SessionReader interface {
	// GetSession retrieves a session by ID, returns nil if not found
	GetSession(ctx context.Context, sessionID string) (*Session, error)
	// ActiveForStudent returns active sessions whose roster contains the student
	ActiveForStudent(ctx context.Context, studentID string) ([]Session, error)
	// ByCourse returns every session for the course regardless of status
	ByCourse(ctx context.Context, courseCode string) ([]Session, error)
	// ByTeacherCourse returns every session for the teacher/course pair
	// regardless of status
	ByTeacherCourse(ctx context.Context, teacherID, courseCode string) ([]Session, error)
	// CoursesForStudent returns the distinct course codes of sessions
	// whose roster contains the student
	CoursesForStudent(ctx context.Context, studentID string) ([]string, error)
}

// SessionWriter provides write access to class sessions.
type SessionWriter interface {
	SessionReader

	// Create stores a new session
	Create(ctx context.Context, session Session) error

	// SetStatus transitions the session status.
	// Returns ErrSessionNotFound for unknown sessions.
	SetStatus(ctx context.Context, sessionID string, status SessionStatus) error

	// AddPresent marks the student present in the session with set-union
	// semantics: the first call for a (session, student) pair returns
	// true, every repeat returns false and leaves the present set
	// unchanged. Atomic per (session, student) against concurrent
	// callers. Returns ErrSessionNotFound for unknown sessions.
	AddPresent(ctx context.Context, sessionID, studentID string) (added bool, err error)
}

// CourseReader provides read-only access to course definitions.
type CourseReader interface {
	// GetCourse retrieves a course by code, returns nil if not found
	GetCourse(ctx context.Context, courseCode string) (*Course, error)
	// GetCourseForTeacher retrieves a course only when the teacher is
	// assigned to it, returns nil otherwise
	GetCourseForTeacher(ctx context.Context, teacherID, courseCode string) (*Course, error)
}

// CourseWriter provides write access to course definitions.
type CourseWriter interface {
	CourseReader

	// UpsertCourse creates or replaces a course definition
	UpsertCourse(ctx context.Context, course Course) error
}

// VerificationStore persists short-lived e-mail verification codes.
type VerificationStore interface {
	// SaveCode stores a verification code
	SaveCode(ctx context.Context, code VerificationCode) error

	// ConsumeCode atomically deletes a matching unexpired code and
	// reports whether one existed. A consumed code cannot be used again.
	ConsumeCode(ctx context.Context, email, code string, now time.Time) (bool, error)
}
