package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rollmark/rollmark/internal/attendance"
	"github.com/rollmark/rollmark/internal/database"
)

// TrackingHandler handles attendance ratio endpoints.
type TrackingHandler struct {
	tracker *attendance.Tracker
}

// NewTrackingHandler creates a new tracking handler.
func NewTrackingHandler(tracker *attendance.Tracker) *TrackingHandler {
	return &TrackingHandler{tracker: tracker}
}

// Student reports a student's attendance. With ?course= it returns the
// ratio for that course; without it, one row per course.
func (h *TrackingHandler) Student(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	if courseCode := r.URL.Query().Get("course"); courseCode != "" {
		ratio, err := h.tracker.StudentRatio(r.Context(), studentID, courseCode)
		if err != nil {
			log.Printf("tracking failed for %s: %v", sanitizeForLog(studentID), err)
			respondError(w, http.StatusInternalServerError, "failed to compute attendance")
			return
		}
		respondJSON(w, http.StatusOK, ratio)
		return
	}

	overview, err := h.tracker.StudentOverview(r.Context(), studentID)
	if err != nil {
		log.Printf("tracking overview failed for %s: %v", sanitizeForLog(studentID), err)
		respondError(w, http.StatusInternalServerError, "failed to compute attendance")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"courses": overview,
		"count":   len(overview),
	})
}

// TeacherCourse reports per-student attendance for a teacher's course.
func (h *TrackingHandler) TeacherCourse(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "teacherID")
	courseCode := chi.URLParam(r, "courseCode")

	rows, err := h.tracker.TeacherCourseRatios(r.Context(), teacherID, courseCode)
	if err != nil {
		if errors.Is(err, database.ErrCourseNotFound) {
			respondError(w, http.StatusNotFound, "course not found for teacher")
			return
		}
		log.Printf("teacher tracking failed for %s/%s: %v", sanitizeForLog(teacherID), sanitizeForLog(courseCode), err)
		respondError(w, http.StatusInternalServerError, "failed to compute attendance")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"students": rows,
		"count":    len(rows),
	})
}
