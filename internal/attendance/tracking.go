package attendance

import (
	"context"
	"fmt"
	"math"

	"github.com/rollmark/rollmark/internal/database"
)

// CourseRatio summarizes one student's attendance in one course.
type CourseRatio struct {
	CourseCode   string `json:"course_code"`
	CourseTitle  string `json:"course_title"`
	Total        int    `json:"total"`
	Present      int    `json:"present"`
	Absent       int    `json:"absent"`
	RatioPercent int    `json:"ratio_percent"`
}

// StudentRatio summarizes one rostered student for a teacher's course view.
type StudentRatio struct {
	StudentID    string `json:"student_id"`
	Name         string `json:"name"`
	Total        int    `json:"total"`
	Present      int    `json:"present"`
	Absent       int    `json:"absent"`
	RatioPercent int    `json:"ratio_percent"`
}

// Tracker derives attendance ratios from recorded sessions. All its
// reads recompute from the session history; nothing is cached.
type Tracker struct {
	sessions database.SessionReader
	courses  database.CourseReader
	students database.IdentityReader
}

// NewTracker creates a tracking aggregator.
func NewTracker(sessions database.SessionReader, courses database.CourseReader, students database.IdentityReader) *Tracker {
	return &Tracker{sessions: sessions, courses: courses, students: students}
}

// ratioPercent rounds half-to-even, so 1/8 of the sessions reports 12%.
func ratioPercent(present, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.RoundToEven(float64(present) / float64(total) * 100))
}

// StudentRatio reports the student's attendance in one course over
// every session whose roster contains the student, open or closed.
func (t *Tracker) StudentRatio(ctx context.Context, studentID, courseCode string) (*CourseRatio, error) {
	sessions, err := t.sessions.ByCourse(ctx, courseCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load course sessions: %w", err)
	}

	ratio := &CourseRatio{CourseCode: courseCode}
	for i := range sessions {
		session := &sessions[i]
		if !session.OnRoster(studentID) {
			continue
		}
		ratio.CourseTitle = session.CourseTitle
		ratio.Total++
		if session.IsPresent(studentID) {
			ratio.Present++
		}
	}
	ratio.Absent = ratio.Total - ratio.Present
	ratio.RatioPercent = ratioPercent(ratio.Present, ratio.Total)
	return ratio, nil
}

// StudentOverview reports the student's attendance per course, one row
// for every course whose sessions ever rostered the student.
func (t *Tracker) StudentOverview(ctx context.Context, studentID string) ([]CourseRatio, error) {
	courseCodes, err := t.sessions.CoursesForStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	overview := make([]CourseRatio, 0, len(courseCodes))
	for _, code := range courseCodes {
		ratio, err := t.StudentRatio(ctx, studentID, code)
		if err != nil {
			return nil, err
		}
		overview = append(overview, *ratio)
	}
	return overview, nil
}

// TeacherCourseRatios reports one row per rostered student of the
// course, aggregated over the teacher's sessions of that course.
// Returns ErrCourseNotFound when the teacher is not assigned to the
// course.
func (t *Tracker) TeacherCourseRatios(ctx context.Context, teacherID, courseCode string) ([]StudentRatio, error) {
	course, err := t.courses.GetCourseForTeacher(ctx, teacherID, courseCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load course: %w", err)
	}
	if course == nil {
		return nil, database.ErrCourseNotFound
	}

	sessions, err := t.sessions.ByTeacherCourse(ctx, teacherID, courseCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}

	rows := make([]StudentRatio, 0, len(course.Students))
	for _, studentID := range course.Students {
		identity, err := t.students.Get(ctx, studentID)
		if err != nil {
			return nil, fmt.Errorf("failed to load student %s: %w", studentID, err)
		}
		// Rostered students that were never imported are left out rather
		// than reported as nameless rows.
		if identity == nil {
			continue
		}

		// Every session of the (teacher, course) pair counts toward the
		// total, even when an individual session roster omits the student.
		row := StudentRatio{StudentID: studentID, Name: identity.FullName(), Total: len(sessions)}
		for i := range sessions {
			if sessions[i].IsPresent(studentID) {
				row.Present++
			}
		}
		row.Absent = row.Total - row.Present
		row.RatioPercent = ratioPercent(row.Present, row.Total)
		rows = append(rows, row)
	}
	return rows, nil
}
