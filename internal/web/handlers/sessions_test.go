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

func newSessionsHandler(store *mock.Store) *SessionsHandler {
	return NewSessionsHandler(attendance.NewLedger(store, store, store, false))
}

func TestSessionsHandler_Open(t *testing.T) {
	store := mock.NewStore()
	store.AddCourse(database.Course{
		Code:       "MATH101",
		Title:      "Calculus I",
		TeacherIDs: []string{"T1"},
		Students:   []string{"S1", "S2"},
	})
	handler := newSessionsHandler(store)

	req := jsonRequest(t, http.MethodPost, "/api/v1/sessions", OpenSessionRequest{
		CourseCode: "MATH101",
		TeacherID:  "T1",
		Date:       "2026-03-10",
	})
	recorder := httptest.NewRecorder()

	handler.Open(recorder, req)
	assertStatusCode(t, recorder, http.StatusCreated)

	var result map[string]any
	parseJSONResponse(t, recorder, &result)
	if result["session_id"] == "" {
		t.Error("expected a session ID")
	}
	if result["roster_size"] != float64(2) {
		t.Errorf("expected roster_size 2, got %v", result["roster_size"])
	}
	if result["date"] != "2026-03-10" {
		t.Errorf("expected requested date, got %v", result["date"])
	}
}

func TestSessionsHandler_Open_UnknownCourse(t *testing.T) {
	handler := newSessionsHandler(mock.NewStore())

	req := jsonRequest(t, http.MethodPost, "/api/v1/sessions", OpenSessionRequest{CourseCode: "NOPE"})
	recorder := httptest.NewRecorder()

	handler.Open(recorder, req)
	assertStatusCode(t, recorder, http.StatusNotFound)
	assertJSONError(t, recorder, "course not found")
}

func TestSessionsHandler_Open_BadDate(t *testing.T) {
	handler := newSessionsHandler(mock.NewStore())

	req := jsonRequest(t, http.MethodPost, "/api/v1/sessions", OpenSessionRequest{
		CourseCode: "MATH101",
		Date:       "10.03.2026",
	})
	recorder := httptest.NewRecorder()

	handler.Open(recorder, req)
	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "date must be YYYY-MM-DD")
}

func TestSessionsHandler_Close(t *testing.T) {
	store := mock.NewStore()
	store.AddSession(database.Session{ID: "sess-1", Status: database.SessionActive, Date: time.Now()})
	handler := newSessionsHandler(store)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/sess-1/close", nil)
	req = requestWithChiParams(req, map[string]string{"sessionID": "sess-1"})
	recorder := httptest.NewRecorder()

	handler.Close(recorder, req)
	assertStatusCode(t, recorder, http.StatusOK)

	session, _ := store.GetSession(context.Background(), "sess-1")
	if session.Status != database.SessionClosed {
		t.Errorf("expected closed status, got %s", session.Status)
	}
}

func TestSessionsHandler_MarkPresent(t *testing.T) {
	store := mock.NewStore()
	store.AddSession(database.Session{
		ID:     "sess-1",
		Status: database.SessionActive,
		Date:   time.Now(),
		Roster: []string{"S1"},
	})
	handler := newSessionsHandler(store)

	mark := func() *httptest.ResponseRecorder {
		req := jsonRequest(t, http.MethodPost, "/api/v1/sessions/sess-1/present", MarkPresentRequest{StudentID: "S1"})
		req = requestWithChiParams(req, map[string]string{"sessionID": "sess-1"})
		recorder := httptest.NewRecorder()
		handler.MarkPresent(recorder, req)
		return recorder
	}

	recorder := mark()
	assertStatusCode(t, recorder, http.StatusOK)
	var result map[string]any
	parseJSONResponse(t, recorder, &result)
	if result["added"] != true {
		t.Errorf("expected added=true, got %v", result)
	}

	recorder = mark()
	parseJSONResponse(t, recorder, &result)
	if result["already_present"] != true {
		t.Errorf("expected already_present=true on repeat, got %v", result)
	}
}

func TestSessionsHandler_MarkPresent_Validation(t *testing.T) {
	handler := newSessionsHandler(mock.NewStore())

	req := jsonRequest(t, http.MethodPost, "/api/v1/sessions/sess-1/present", MarkPresentRequest{})
	req = requestWithChiParams(req, map[string]string{"sessionID": "sess-1"})
	recorder := httptest.NewRecorder()

	handler.MarkPresent(recorder, req)
	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "student_id is required")
}

func TestSessionsHandler_ActiveCourses(t *testing.T) {
	store := mock.NewStore()
	store.AddSession(database.Session{
		ID:          "sess-1",
		CourseCode:  "MATH101",
		CourseTitle: "Calculus I",
		Status:      database.SessionActive,
		Date:        time.Now(),
		Roster:      []string{"S1"},
		Present:     []string{"S1"},
	})
	handler := newSessionsHandler(store)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students/S1/active-courses", nil)
	req = requestWithChiParams(req, map[string]string{"studentID": "S1"})
	recorder := httptest.NewRecorder()

	handler.ActiveCourses(recorder, req)
	assertStatusCode(t, recorder, http.StatusOK)

	var result struct {
		Courses []attendance.ActiveCourse `json:"courses"`
		Count   int                       `json:"count"`
	}
	parseJSONResponse(t, recorder, &result)
	if result.Count != 1 || !result.Courses[0].CheckedIn {
		t.Errorf("expected one checked-in course, got %+v", result)
	}
}
