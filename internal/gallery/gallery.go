// Package gallery manages the enrolled identity gallery: validating and
// storing face embeddings against student records.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rollmark/rollmark/internal/database"
	"github.com/rollmark/rollmark/internal/extractor"
)

// ErrMissingStudentID is returned when an enrollment request carries no
// student ID.
var ErrMissingStudentID = errors.New("student ID is required")

// PhotoSaver persists enrollment captures and returns a reference.
type PhotoSaver interface {
	Save(studentID string, imageData []byte) (string, error)
	Remove(ref string) error
}

// Service enrolls students into the identity gallery.
type Service struct {
	store     database.IdentityWriter
	extractor extractor.Extractor
	photos    PhotoSaver // nil disables capture persistence
}

// NewService creates a gallery service. photos may be nil when captures
// should not be kept.
func NewService(store database.IdentityWriter, ext extractor.Extractor, photos PhotoSaver) *Service {
	return &Service{store: store, extractor: ext, photos: photos}
}

// EnrollResult reports the outcome of an enrollment.
type EnrollResult struct {
	Created   bool
	PhotoRef  string
	FaceCount int
}

// Enroll validates and stores an embedding for the student. It is the
// low-level path used when the caller already has an embedding.
func (s *Service) Enroll(ctx context.Context, studentID, givenName, familyName string, embedding []float32, photoRef string) (bool, error) {
	if strings.TrimSpace(studentID) == "" {
		return false, ErrMissingStudentID
	}
	if len(embedding) != database.EmbeddingDim {
		return false, database.ErrInvalidEmbedding
	}

	identity := database.Identity{
		StudentID:  studentID,
		GivenName:  givenName,
		FamilyName: familyName,
		Embedding:  embedding,
	}
	if photoRef != "" {
		identity.PhotoRefs = []string{photoRef}
	}

	created, err := s.store.Upsert(ctx, identity)
	if err != nil {
		return false, fmt.Errorf("storing identity: %w", err)
	}
	return created, nil
}

// EnrollCapture extracts a face from the image, persists the capture and
// enrolls the embedding. The write either fully applies or fully fails:
// when the identity store rejects the upsert, the saved capture is
// removed again.
func (s *Service) EnrollCapture(ctx context.Context, studentID, givenName, familyName string, imageData []byte) (*EnrollResult, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, ErrMissingStudentID
	}

	faces, err := s.extractor.ExtractFaces(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("extracting faces: %w", err)
	}
	if len(faces) == 0 {
		return nil, extractor.ErrNoFaceDetected
	}

	embedding, ok := extractor.FirstEmbedding(faces)
	if !ok {
		return nil, extractor.ErrNoEmbedding
	}

	var photoRef string
	if s.photos != nil {
		photoRef, err = s.photos.Save(studentID, imageData)
		if err != nil {
			return nil, fmt.Errorf("saving capture: %w", err)
		}
	}

	created, err := s.Enroll(ctx, studentID, givenName, familyName, embedding, photoRef)
	if err != nil {
		if photoRef != "" {
			_ = s.photos.Remove(photoRef)
		}
		return nil, err
	}

	return &EnrollResult{
		Created:   created,
		PhotoRef:  photoRef,
		FaceCount: len(faces),
	}, nil
}

// Get retrieves an enrolled identity, nil if unknown.
func (s *Service) Get(ctx context.Context, studentID string) (*database.Identity, error) {
	identity, err := s.store.Get(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("loading identity: %w", err)
	}
	return identity, nil
}

// SearchByName returns identities whose normalized full name contains
// the normalized query. Matching ignores case and diacritics, so
// "yilmaz" finds "Yılmaz".
func (s *Service) SearchByName(ctx context.Context, query string) ([]database.Identity, error) {
	normalized := NormalizeName(query)
	if normalized == "" {
		return nil, nil
	}

	identities, err := s.store.AllEnrolled(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanning gallery: %w", err)
	}

	var matches []database.Identity
	for _, identity := range identities {
		if strings.Contains(NormalizeName(identity.FullName()), normalized) {
			matches = append(matches, identity)
		}
	}
	return matches, nil
}
