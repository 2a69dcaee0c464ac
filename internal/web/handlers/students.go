package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rollmark/rollmark/internal/constants"
	"github.com/rollmark/rollmark/internal/database"
	"github.com/rollmark/rollmark/internal/extractor"
	"github.com/rollmark/rollmark/internal/gallery"
)

// GalleryRefresher is notified after an enrollment changes the gallery,
// so a derived match index picks up the new identity without a restart.
type GalleryRefresher interface {
	RebuildIndex(ctx context.Context) error
}

// StudentsHandler handles student enrollment and lookup endpoints.
type StudentsHandler struct {
	gallery   *gallery.Service
	refresher GalleryRefresher
}

// NewStudentsHandler creates a new students handler. refresher may be nil.
func NewStudentsHandler(svc *gallery.Service, refresher GalleryRefresher) *StudentsHandler {
	return &StudentsHandler{gallery: svc, refresher: refresher}
}

// StudentResponse is the API shape of an enrolled identity.
type StudentResponse struct {
	StudentID  string   `json:"student_id"`
	GivenName  string   `json:"given_name"`
	FamilyName string   `json:"family_name"`
	Enrolled   bool     `json:"enrolled"`
	PhotoRefs  []string `json:"photo_refs,omitempty"`
}

func studentResponse(identity *database.Identity) StudentResponse {
	return StudentResponse{
		StudentID:  identity.StudentID,
		GivenName:  identity.GivenName,
		FamilyName: identity.FamilyName,
		Enrolled:   len(identity.Embedding) == database.EmbeddingDim,
		PhotoRefs:  identity.PhotoRefs,
	}
}

// Enroll registers a student's face from an uploaded photo.
func (h *StudentsHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	imageData := readImageUpload(w, r)
	if imageData == nil {
		return
	}

	givenName := r.FormValue("given_name")
	familyName := r.FormValue("family_name")

	result, err := h.gallery.EnrollCapture(r.Context(), studentID, givenName, familyName, imageData)
	if err != nil {
		switch {
		case errors.Is(err, extractor.ErrNoFaceDetected):
			respondError(w, http.StatusUnprocessableEntity, "no face detected in the image")
		case errors.Is(err, extractor.ErrNoEmbedding):
			respondError(w, http.StatusUnprocessableEntity, "no usable face embedding in the image")
		case errors.Is(err, gallery.ErrMissingStudentID), errors.Is(err, database.ErrInvalidEmbedding):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			log.Printf("enrollment failed for %s: %v", sanitizeForLog(studentID), err)
			respondError(w, http.StatusInternalServerError, "failed to enroll student")
		}
		return
	}

	if h.refresher != nil {
		if err := h.refresher.RebuildIndex(r.Context()); err != nil {
			log.Printf("gallery index rebuild failed: %v", err)
		}
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	respondJSON(w, status, map[string]any{
		"student_id": studentID,
		"created":    result.Created,
		"photo_ref":  result.PhotoRef,
		"face_count": result.FaceCount,
	})
}

// Get returns one student by ID.
func (h *StudentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	identity, err := h.gallery.Get(r.Context(), studentID)
	if err != nil {
		log.Printf("student lookup failed for %s: %v", sanitizeForLog(studentID), err)
		respondError(w, http.StatusInternalServerError, "failed to load student")
		return
	}
	if identity == nil {
		respondError(w, http.StatusNotFound, "student not found")
		return
	}
	respondJSON(w, http.StatusOK, studentResponse(identity))
}

// Search lists enrolled students whose name matches the query.
func (h *StudentsHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		respondError(w, http.StatusBadRequest, "query parameter is required")
		return
	}

	identities, err := h.gallery.SearchByName(r.Context(), query)
	if err != nil {
		log.Printf("student search failed: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to search students")
		return
	}

	if len(identities) > constants.DefaultSearchLimit {
		identities = identities[:constants.DefaultSearchLimit]
	}
	students := make([]StudentResponse, 0, len(identities))
	for i := range identities {
		students = append(students, studentResponse(&identities[i]))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"students": students,
		"count":    len(students),
	})
}
