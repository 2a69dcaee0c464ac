package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rollmark/rollmark/internal/attendance"
	"github.com/rollmark/rollmark/internal/database"
	"github.com/rollmark/rollmark/internal/database/mock"
)

func seedTrackedCourse(store *mock.Store) {
	store.AddCourse(database.Course{
		Code:       "MATH101",
		Title:      "Calculus I",
		TeacherIDs: []string{"T1"},
		Students:   []string{"S1"},
	})
	store.UpsertName(context.Background(), "S1", "Ayse", "Yilmaz")
	for i, present := range []bool{true, true, true, false} {
		session := database.Session{
			ID:          string(rune('a' + i)),
			CourseCode:  "MATH101",
			CourseTitle: "Calculus I",
			TeacherID:   "T1",
			Status:      database.SessionClosed,
			Date:        time.Now(),
			Roster:      []string{"S1"},
		}
		if present {
			session.Present = []string{"S1"}
		}
		store.AddSession(session)
	}
}

func TestTrackingHandler_Student_Course(t *testing.T) {
	store := mock.NewStore()
	seedTrackedCourse(store)
	handler := NewTrackingHandler(attendance.NewTracker(store, store, store))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/S1/tracking?course=MATH101", nil)
	req = requestWithChiParams(req, map[string]string{"studentID": "S1"})
	recorder := httptest.NewRecorder()

	handler.Student(recorder, req)
	assertStatusCode(t, recorder, http.StatusOK)

	var ratio attendance.CourseRatio
	parseJSONResponse(t, recorder, &ratio)
	if ratio.Total != 4 || ratio.Present != 3 || ratio.RatioPercent != 75 {
		t.Errorf("unexpected ratio %+v", ratio)
	}
}

func TestTrackingHandler_Student_Overview(t *testing.T) {
	store := mock.NewStore()
	seedTrackedCourse(store)
	handler := NewTrackingHandler(attendance.NewTracker(store, store, store))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/S1/tracking", nil)
	req = requestWithChiParams(req, map[string]string{"studentID": "S1"})
	recorder := httptest.NewRecorder()

	handler.Student(recorder, req)
	assertStatusCode(t, recorder, http.StatusOK)

	var result struct {
		Courses []attendance.CourseRatio `json:"courses"`
		Count   int                      `json:"count"`
	}
	parseJSONResponse(t, recorder, &result)
	if result.Count != 1 || result.Courses[0].CourseCode != "MATH101" {
		t.Errorf("unexpected overview %+v", result)
	}
}

func TestTrackingHandler_TeacherCourse(t *testing.T) {
	store := mock.NewStore()
	seedTrackedCourse(store)
	handler := NewTrackingHandler(attendance.NewTracker(store, store, store))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/teachers/T1/courses/MATH101/tracking", nil)
	req = requestWithChiParams(req, map[string]string{"teacherID": "T1", "courseCode": "MATH101"})
	recorder := httptest.NewRecorder()

	handler.TeacherCourse(recorder, req)
	assertStatusCode(t, recorder, http.StatusOK)

	var result struct {
		Students []attendance.StudentRatio `json:"students"`
		Count    int                       `json:"count"`
	}
	parseJSONResponse(t, recorder, &result)
	if result.Count != 1 || result.Students[0].Name != "Ayse Yilmaz" {
		t.Errorf("unexpected rows %+v", result)
	}
	if result.Students[0].RatioPercent != 75 {
		t.Errorf("expected 75%%, got %d%%", result.Students[0].RatioPercent)
	}
}

func TestTrackingHandler_TeacherCourse_NotFound(t *testing.T) {
	store := mock.NewStore()
	seedTrackedCourse(store)
	handler := NewTrackingHandler(attendance.NewTracker(store, store, store))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/teachers/T9/courses/MATH101/tracking", nil)
	req = requestWithChiParams(req, map[string]string{"teacherID": "T9", "courseCode": "MATH101"})
	recorder := httptest.NewRecorder()

	handler.TeacherCourse(recorder, req)
	assertStatusCode(t, recorder, http.StatusNotFound)
	assertJSONError(t, recorder, "course not found for teacher")
}
