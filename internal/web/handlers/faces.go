package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rollmark/rollmark/internal/attendance"
	"github.com/rollmark/rollmark/internal/database"
	"github.com/rollmark/rollmark/internal/extractor"
	"github.com/rollmark/rollmark/internal/recognize"
)

// FacesHandler handles face verification and face check-in endpoints.
type FacesHandler struct {
	engine *recognize.Engine
	ledger *attendance.Ledger
}

// NewFacesHandler creates a new faces handler.
func NewFacesHandler(engine *recognize.Engine, ledger *attendance.Ledger) *FacesHandler {
	return &FacesHandler{engine: engine, ledger: ledger}
}

// identifyUpload runs face identification on the uploaded image.
// Writes the error response and returns ok=false when no match can be
// produced; a nil match with ok=true means nobody was recognized.
func (h *FacesHandler) identifyUpload(w http.ResponseWriter, r *http.Request) (*recognize.Match, bool) {
	imageData := readImageUpload(w, r)
	if imageData == nil {
		return nil, false
	}

	match, err := h.engine.IdentifyImage(r.Context(), imageData)
	if err != nil {
		switch {
		case errors.Is(err, extractor.ErrNoFaceDetected):
			respondError(w, http.StatusUnprocessableEntity, "no face detected in the image")
		case errors.Is(err, extractor.ErrNoEmbedding):
			respondError(w, http.StatusUnprocessableEntity, "no usable face embedding in the image")
		case errors.Is(err, extractor.ErrUnavailable):
			respondError(w, http.StatusServiceUnavailable, "face extractor is not available")
		default:
			log.Printf("identification failed: %v", err)
			respondError(w, http.StatusInternalServerError, "failed to identify face")
		}
		return nil, false
	}
	return match, true
}

// Verify identifies the face in the uploaded image without touching
// any session.
func (h *FacesHandler) Verify(w http.ResponseWriter, r *http.Request) {
	match, ok := h.identifyUpload(w, r)
	if !ok {
		return
	}
	if match == nil {
		respondJSON(w, http.StatusOK, map[string]any{"recognized": false})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"recognized": true,
		"match":      match,
	})
}

// CheckIn identifies the face in the uploaded image and marks the
// matched student present in the session.
func (h *FacesHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	match, ok := h.identifyUpload(w, r)
	if !ok {
		return
	}
	if match == nil {
		respondJSON(w, http.StatusOK, map[string]any{"recognized": false})
		return
	}

	added, err := h.ledger.MarkPresent(r.Context(), sessionID, match.StudentID)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrSessionNotFound):
			respondError(w, http.StatusNotFound, "session not found")
		case errors.Is(err, database.ErrNotOnRoster):
			respondError(w, http.StatusForbidden, "student is not on the session roster")
		default:
			log.Printf("check-in failed for session %s: %v", sanitizeForLog(sessionID), err)
			respondError(w, http.StatusInternalServerError, "failed to record attendance")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"recognized":      true,
		"match":           match,
		"added":           added,
		"already_present": !added,
	})
}
