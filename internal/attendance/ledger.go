// Package attendance records who attended which class session and
// derives attendance ratios from the recorded sessions.
package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rollmark/rollmark/internal/database"
)

// Ledger marks students present in class sessions and manages the
// session lifecycle.
type Ledger struct {
	sessions database.SessionWriter
	courses  database.CourseReader
	students database.IdentityReader

	// enforceRoster rejects check-ins from students outside the session
	// roster. Off by default; the permissive behavior lets a teacher
	// mark a walk-in who was never rostered.
	enforceRoster bool
}

// NewLedger creates an attendance ledger.
func NewLedger(sessions database.SessionWriter, courses database.CourseReader, students database.IdentityReader, enforceRoster bool) *Ledger {
	return &Ledger{
		sessions:      sessions,
		courses:       courses,
		students:      students,
		enforceRoster: enforceRoster,
	}
}

// MarkPresent records the student in the session's present set.
// Returns true on the first call for a (session, student) pair and
// false on every repeat; the present set never holds duplicates.
func (l *Ledger) MarkPresent(ctx context.Context, sessionID, studentID string) (bool, error) {
	if strings.TrimSpace(studentID) == "" {
		return false, fmt.Errorf("student ID is required")
	}

	if l.enforceRoster {
		session, err := l.sessions.GetSession(ctx, sessionID)
		if err != nil {
			return false, fmt.Errorf("failed to load session: %w", err)
		}
		if session == nil {
			return false, database.ErrSessionNotFound
		}
		if !session.OnRoster(studentID) {
			return false, database.ErrNotOnRoster
		}
	}

	added, err := l.sessions.AddPresent(ctx, sessionID, studentID)
	if err != nil {
		return false, fmt.Errorf("failed to mark present: %w", err)
	}
	return added, nil
}

// ActiveCourse is an active session a student may check in to.
type ActiveCourse struct {
	SessionID   string `json:"session_id"`
	CourseCode  string `json:"course_code"`
	CourseTitle string `json:"course_title"`
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name,omitempty"`
	CheckedIn   bool   `json:"checked_in"`
}

// ActiveCourses lists the active sessions whose roster contains the
// student, annotated with whether the student already checked in.
func (l *Ledger) ActiveCourses(ctx context.Context, studentID string) ([]ActiveCourse, error) {
	sessions, err := l.sessions.ActiveForStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}

	result := make([]ActiveCourse, 0, len(sessions))
	for i := range sessions {
		session := &sessions[i]
		result = append(result, ActiveCourse{
			SessionID:   session.ID,
			CourseCode:  session.CourseCode,
			CourseTitle: session.CourseTitle,
			TeacherID:   session.TeacherID,
			TeacherName: l.teacherName(ctx, session.TeacherID),
			CheckedIn:   session.IsPresent(studentID),
		})
	}
	return result, nil
}

// teacherName is best-effort; sessions stay listable when the teacher
// was never imported.
func (l *Ledger) teacherName(ctx context.Context, teacherID string) string {
	if l.students == nil || teacherID == "" {
		return ""
	}
	identity, err := l.students.Get(ctx, teacherID)
	if err != nil || identity == nil {
		return ""
	}
	return identity.FullName()
}

// OpenSession creates an active session for the course on the given
// date, rostered from the course definition. Returns the new session.
func (l *Ledger) OpenSession(ctx context.Context, courseCode, teacherID string, date time.Time) (*database.Session, error) {
	course, err := l.courses.GetCourse(ctx, courseCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}
	if course == nil {
		return nil, database.ErrCourseNotFound
	}

	session := database.Session{
		ID:          uuid.NewString(),
		CourseCode:  course.Code,
		CourseTitle: course.Title,
		TeacherID:   teacherID,
		Status:      database.SessionActive,
		Date:        date,
		Roster:      append([]string(nil), course.Students...),
	}
	if err := l.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &session, nil
}

// CloseSession transitions the session to closed, ending check-ins via
// ActiveCourses. MarkPresent intentionally still works on a closed
// session so a teacher can correct the record afterwards.
func (l *Ledger) CloseSession(ctx context.Context, sessionID string) error {
	if err := l.sessions.SetStatus(ctx, sessionID, database.SessionClosed); err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	return nil
}
