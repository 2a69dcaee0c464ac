// Package mock provides an in-memory implementation of the database
// interfaces for testing.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/rollmark/rollmark/internal/database"
)

// Store is an in-memory store implementing database.IdentityWriter,
// database.SessionWriter, database.CourseWriter and
// database.VerificationStore. All operations are safe for concurrent
// use; mutators hold the store lock for their whole critical section,
// which gives the same per-key atomicity the SQL backend provides.
type Store struct {
	mu sync.RWMutex

	identities    map[string]*database.Identity
	identityOrder []string // enrollment order, drives AllEnrolled enumeration
	sessions      map[string]*database.Session
	courses       map[string]*database.Course
	codes         []database.VerificationCode

	// Error injection
	UpsertError     error
	GetError        error
	AllEnrolledErr  error
	SessionError    error
	AddPresentError error
	CourseError     error
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		identities: make(map[string]*database.Identity),
		sessions:   make(map[string]*database.Session),
		courses:    make(map[string]*database.Course),
	}
}

// Get retrieves an identity by student ID.
func (s *Store) Get(ctx context.Context, studentID string) (*database.Identity, error) {
	if s.GetError != nil {
		return nil, s.GetError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[studentID]
	if !ok {
		return nil, nil
	}
	copied := *identity
	return &copied, nil
}

// AllEnrolled returns identities with embeddings in enrollment order.
func (s *Store) AllEnrolled(ctx context.Context) ([]database.Identity, error) {
	if s.AllEnrolledErr != nil {
		return nil, s.AllEnrolledErr
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []database.Identity
	for _, id := range s.identityOrder {
		identity := s.identities[id]
		if identity == nil || identity.Embedding == nil {
			continue
		}
		result = append(result, *identity)
	}
	return result, nil
}

// Count returns the number of stored identities.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.identities), nil
}

// Upsert creates or overwrites an identity.
func (s *Store) Upsert(ctx context.Context, identity database.Identity) (bool, error) {
	if s.UpsertError != nil {
		return false, s.UpsertError
	}
	if len(identity.Embedding) != 0 && len(identity.Embedding) != database.EmbeddingDim {
		return false, database.ErrInvalidEmbedding
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	existing, ok := s.identities[identity.StudentID]
	if !ok {
		created := identity
		created.CreatedAt = now
		created.UpdatedAt = now
		s.identities[identity.StudentID] = &created
		s.identityOrder = append(s.identityOrder, identity.StudentID)
		return true, nil
	}

	existing.GivenName = identity.GivenName
	existing.FamilyName = identity.FamilyName
	existing.Embedding = identity.Embedding
	existing.PhotoRefs = append(existing.PhotoRefs, identity.PhotoRefs...)
	existing.UpdatedAt = now
	return false, nil
}

// UpsertName creates or updates an identity's names only.
func (s *Store) UpsertName(ctx context.Context, studentID, givenName, familyName string) error {
	if s.UpsertError != nil {
		return s.UpsertError
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if existing, ok := s.identities[studentID]; ok {
		existing.GivenName = givenName
		existing.FamilyName = familyName
		existing.UpdatedAt = now
		return nil
	}
	s.identities[studentID] = &database.Identity{
		StudentID:  studentID,
		GivenName:  givenName,
		FamilyName: familyName,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.identityOrder = append(s.identityOrder, studentID)
	return nil
}

// AddIdentity seeds an identity without Upsert's validation, so tests
// can model corrupted gallery rows.
func (s *Store) AddIdentity(identity database.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := identity
	s.identities[identity.StudentID] = &copied
	s.identityOrder = append(s.identityOrder, identity.StudentID)
}

// AddSession seeds a session into the store.
func (s *Store) AddSession(session database.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := session
	s.sessions[session.ID] = &copied
}

// AddCourse seeds a course into the store.
func (s *Store) AddCourse(course database.Course) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := course
	s.courses[course.Code] = &copied
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*database.Session, error) {
	if s.SessionError != nil {
		return nil, s.SessionError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

// ActiveForStudent returns active sessions whose roster contains the student.
func (s *Store) ActiveForStudent(ctx context.Context, studentID string) ([]database.Session, error) {
	if s.SessionError != nil {
		return nil, s.SessionError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []database.Session
	for _, session := range s.sessions {
		if session.Status == database.SessionActive && session.OnRoster(studentID) {
			result = append(result, *session)
		}
	}
	return result, nil
}

// ByCourse returns every session for the course regardless of status.
func (s *Store) ByCourse(ctx context.Context, courseCode string) ([]database.Session, error) {
	if s.SessionError != nil {
		return nil, s.SessionError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []database.Session
	for _, session := range s.sessions {
		if session.CourseCode == courseCode {
			result = append(result, *session)
		}
	}
	return result, nil
}

// ByTeacherCourse returns every session for the teacher/course pair.
func (s *Store) ByTeacherCourse(ctx context.Context, teacherID, courseCode string) ([]database.Session, error) {
	if s.SessionError != nil {
		return nil, s.SessionError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []database.Session
	for _, session := range s.sessions {
		if session.CourseCode == courseCode && session.TeacherID == teacherID {
			result = append(result, *session)
		}
	}
	return result, nil
}

// CoursesForStudent returns distinct course codes from the student's sessions.
func (s *Store) CoursesForStudent(ctx context.Context, studentID string) ([]string, error) {
	if s.SessionError != nil {
		return nil, s.SessionError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var codes []string
	for _, session := range s.sessions {
		if session.OnRoster(studentID) && !seen[session.CourseCode] {
			seen[session.CourseCode] = true
			codes = append(codes, session.CourseCode)
		}
	}
	return codes, nil
}

// Create stores a new session.
func (s *Store) Create(ctx context.Context, session database.Session) error {
	if s.SessionError != nil {
		return s.SessionError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := session
	s.sessions[session.ID] = &copied
	return nil
}

// SetStatus transitions a session status.
func (s *Store) SetStatus(ctx context.Context, sessionID string, status database.SessionStatus) error {
	if s.SessionError != nil {
		return s.SessionError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return database.ErrSessionNotFound
	}
	session.Status = status
	return nil
}

// AddPresent marks the student present with set-union semantics.
func (s *Store) AddPresent(ctx context.Context, sessionID, studentID string) (bool, error) {
	if s.AddPresentError != nil {
		return false, s.AddPresentError
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return false, database.ErrSessionNotFound
	}
	if session.IsPresent(studentID) {
		return false, nil
	}
	session.Present = append(session.Present, studentID)
	return true, nil
}

// GetCourse retrieves a course by code.
func (s *Store) GetCourse(ctx context.Context, courseCode string) (*database.Course, error) {
	if s.CourseError != nil {
		return nil, s.CourseError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	course, ok := s.courses[courseCode]
	if !ok {
		return nil, nil
	}
	copied := *course
	return &copied, nil
}

// GetCourseForTeacher retrieves a course only when the teacher is assigned to it.
func (s *Store) GetCourseForTeacher(ctx context.Context, teacherID, courseCode string) (*database.Course, error) {
	course, err := s.GetCourse(ctx, courseCode)
	if err != nil || course == nil {
		return nil, err
	}
	if !course.HasTeacher(teacherID) {
		return nil, nil
	}
	return course, nil
}

// UpsertCourse creates or replaces a course definition.
func (s *Store) UpsertCourse(ctx context.Context, course database.Course) error {
	if s.CourseError != nil {
		return s.CourseError
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := course
	s.courses[course.Code] = &copied
	return nil
}

// SaveCode stores a verification code. Codes that expired before the
// new code was created are dropped so the store does not grow without
// bound.
func (s *Store) SaveCode(ctx context.Context, code database.VerificationCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.codes[:0]
	for _, c := range s.codes {
		if c.ExpiresAt.After(code.CreatedAt) {
			kept = append(kept, c)
		}
	}
	s.codes = append(kept, code)
	return nil
}

// CodeCount returns the number of stored verification codes.
func (s *Store) CodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.codes)
}

// ConsumeCode deletes a matching unexpired code and reports whether one existed.
func (s *Store) ConsumeCode(ctx context.Context, email, code string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, c := range s.codes {
		if c.Email == email && c.Code == code && c.ExpiresAt.After(now) {
			s.codes = append(s.codes[:i], s.codes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}
