package database

import (
	"time"
)

// EmbeddingDim is the number of components in a face embedding.
// The dlib-based extractor produces 128-dimensional vectors; embeddings
// of any other length are rejected on enrollment and skipped during matching.
const EmbeddingDim = 128

// Identity represents an enrolled student with an optional face embedding.
type Identity struct {
	StudentID  string
	GivenName  string
	FamilyName string
	Embedding  []float32 // nil until the student enrolls a face
	PhotoRefs  []string  // references to stored enrollment captures, oldest first
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FullName returns the display name for the identity.
func (i *Identity) FullName() string {
	if i.GivenName == "" {
		return i.FamilyName
	}
	if i.FamilyName == "" {
		return i.GivenName
	}
	return i.GivenName + " " + i.FamilyName
}

// SessionStatus is the lifecycle state of a class session.
type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionClosed SessionStatus = "closed"
)

// Session represents a single occurrence of a course during which
// attendance may be recorded.
type Session struct {
	ID          string
	CourseCode  string
	CourseTitle string
	TeacherID   string
	Status      SessionStatus
	Date        time.Time
	Roster      []string // student IDs expected in this session
	Present     []string // student IDs marked present, insertion order
	CreatedAt   time.Time
}

// OnRoster reports whether the student is on the session roster.
func (s *Session) OnRoster(studentID string) bool {
	for _, id := range s.Roster {
		if id == studentID {
			return true
		}
	}
	return false
}

// IsPresent reports whether the student has been marked present.
func (s *Session) IsPresent(studentID string) bool {
	for _, id := range s.Present {
		if id == studentID {
			return true
		}
	}
	return false
}

// Course represents a course definition with its teacher and roster.
type Course struct {
	Code       string
	Title      string
	TeacherIDs []string
	Students   []string
}

// HasTeacher reports whether the teacher is assigned to the course.
func (c *Course) HasTeacher(teacherID string) bool {
	for _, id := range c.TeacherIDs {
		if id == teacherID {
			return true
		}
	}
	return false
}

// VerificationCode is a short-lived single-use e-mail verification code.
type VerificationCode struct {
	Email     string
	Code      string
	CreatedAt time.Time
	ExpiresAt time.Time
}
