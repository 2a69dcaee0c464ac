package database

import "errors"

// Sentinel errors shared by all storage backends. Callers match these with
// errors.Is to distinguish caller-correctable conditions from transport
// failures, which are returned wrapped and unmatched.
var (
	// ErrInvalidEmbedding is returned when an embedding does not have
	// exactly EmbeddingDim components.
	ErrInvalidEmbedding = errors.New("embedding must have exactly 128 components")

	// ErrIdentityNotFound is returned when a student ID does not resolve
	// to an enrolled identity.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrSessionNotFound is returned when a session ID does not resolve
	// to an existing session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrCourseNotFound is returned when a course code (or a
	// teacher/course pairing) does not resolve to a course.
	ErrCourseNotFound = errors.New("course not found")

	// ErrNotOnRoster is returned by roster-enforcing attendance policies
	// when the student is not on the session roster.
	ErrNotOnRoster = errors.New("student is not on the session roster")
)
