package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rollmark/rollmark/internal/attendance"
	"github.com/rollmark/rollmark/internal/database"
)

// SessionsHandler handles session lifecycle and attendance endpoints.
type SessionsHandler struct {
	ledger *attendance.Ledger
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(ledger *attendance.Ledger) *SessionsHandler {
	return &SessionsHandler{ledger: ledger}
}

// OpenSessionRequest creates a session for a course on a date.
type OpenSessionRequest struct {
	CourseCode string `json:"course_code"`
	TeacherID  string `json:"teacher_id"`
	Date       string `json:"date"` // YYYY-MM-DD, defaults to today
}

// Open creates an active session rostered from the course definition.
func (h *SessionsHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.CourseCode == "" {
		respondError(w, http.StatusBadRequest, "course_code is required")
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	session, err := h.ledger.OpenSession(r.Context(), req.CourseCode, req.TeacherID, date)
	if err != nil {
		if errors.Is(err, database.ErrCourseNotFound) {
			respondError(w, http.StatusNotFound, "course not found")
			return
		}
		log.Printf("failed to open session for %s: %v", sanitizeForLog(req.CourseCode), err)
		respondError(w, http.StatusInternalServerError, "failed to open session")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"session_id":   session.ID,
		"course_code":  session.CourseCode,
		"course_title": session.CourseTitle,
		"status":       session.Status,
		"date":         session.Date.Format("2006-01-02"),
		"roster_size":  len(session.Roster),
	})
}

// Close transitions a session to closed.
func (h *SessionsHandler) Close(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.ledger.CloseSession(r.Context(), sessionID); err != nil {
		if errors.Is(err, database.ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, "session not found")
			return
		}
		log.Printf("failed to close session %s: %v", sanitizeForLog(sessionID), err)
		respondError(w, http.StatusInternalServerError, "failed to close session")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": string(database.SessionClosed)})
}

// MarkPresentRequest is an explicit (non-face) check-in.
type MarkPresentRequest struct {
	StudentID string `json:"student_id"`
}

// MarkPresent records a student in the session's present set.
func (h *SessionsHandler) MarkPresent(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req MarkPresentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.StudentID == "" {
		respondError(w, http.StatusBadRequest, "student_id is required")
		return
	}

	added, err := h.ledger.MarkPresent(r.Context(), sessionID, req.StudentID)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrSessionNotFound):
			respondError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, database.ErrNotOnRoster):
			respondError(w, http.StatusForbidden, "student is not on the session roster")
		default:
			log.Printf("failed to mark %s present in %s: %v", sanitizeForLog(req.StudentID), sanitizeForLog(sessionID), err)
			respondError(w, http.StatusInternalServerError, "failed to record attendance")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"added":           added,
		"already_present": !added,
	})
}

// ActiveCourses lists the active sessions a student may check in to.
func (h *SessionsHandler) ActiveCourses(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	courses, err := h.ledger.ActiveCourses(r.Context(), studentID)
	if err != nil {
		log.Printf("failed to list active courses for %s: %v", sanitizeForLog(studentID), err)
		respondError(w, http.StatusInternalServerError, "failed to list active courses")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"courses": courses,
		"count":   len(courses),
	})
}
