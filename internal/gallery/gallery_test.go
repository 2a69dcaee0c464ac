package gallery

import (
	"context"
	"errors"
	"testing"

	"github.com/rollmark/rollmark/internal/database"
	"github.com/rollmark/rollmark/internal/database/mock"
	"github.com/rollmark/rollmark/internal/extractor"
	"github.com/rollmark/rollmark/internal/photostore"
)

// fakeExtractor returns a fixed set of faces or an error.
type fakeExtractor struct {
	faces []extractor.Face
	err   error
}

func (f *fakeExtractor) ExtractFaces(ctx context.Context, imageData []byte) ([]extractor.Face, error) {
	return f.faces, f.err
}

func validEmbedding(first float32) []float32 {
	emb := make([]float32, database.EmbeddingDim)
	emb[0] = first
	return emb
}

func TestService_Enroll_RoundTrip(t *testing.T) {
	store := mock.NewStore()
	svc := NewService(store, &fakeExtractor{}, nil)
	ctx := context.Background()

	emb := validEmbedding(0.25)
	created, err := svc.Enroll(ctx, "S1", "Ayse", "Yilmaz", emb, "face_data/S1/a.jpg")
	if err != nil {
		t.Fatalf("Enroll failed: %v", err)
	}
	if !created {
		t.Error("expected created=true for new identity")
	}

	enrolled, err := store.AllEnrolled(ctx)
	if err != nil {
		t.Fatalf("AllEnrolled failed: %v", err)
	}
	if len(enrolled) != 1 {
		t.Fatalf("expected 1 enrolled identity, got %d", len(enrolled))
	}
	for i, v := range enrolled[0].Embedding {
		if v != emb[i] {
			t.Fatalf("embedding component %d changed: want %f, got %f", i, emb[i], v)
		}
	}

	// Re-enrollment replaces the embedding; only the latest is returned.
	emb2 := validEmbedding(0.75)
	created, err = svc.Enroll(ctx, "S1", "Ayse", "Yilmaz", emb2, "face_data/S1/b.jpg")
	if err != nil {
		t.Fatalf("second Enroll failed: %v", err)
	}
	if created {
		t.Error("expected created=false for existing identity")
	}

	enrolled, _ = store.AllEnrolled(ctx)
	if len(enrolled) != 1 {
		t.Fatalf("expected 1 enrolled identity after re-enrollment, got %d", len(enrolled))
	}
	if enrolled[0].Embedding[0] != 0.75 {
		t.Errorf("expected replaced embedding, got first component %f", enrolled[0].Embedding[0])
	}
	if len(enrolled[0].PhotoRefs) != 2 {
		t.Errorf("expected appended photo refs, got %v", enrolled[0].PhotoRefs)
	}
}

func TestService_Enroll_Validation(t *testing.T) {
	svc := NewService(mock.NewStore(), &fakeExtractor{}, nil)
	ctx := context.Background()

	if _, err := svc.Enroll(ctx, "  ", "A", "B", validEmbedding(0), ""); !errors.Is(err, ErrMissingStudentID) {
		t.Errorf("expected ErrMissingStudentID, got %v", err)
	}

	short := make([]float32, 64)
	if _, err := svc.Enroll(ctx, "S1", "A", "B", short, ""); !errors.Is(err, database.ErrInvalidEmbedding) {
		t.Errorf("expected ErrInvalidEmbedding for 64 components, got %v", err)
	}
	if _, err := svc.Enroll(ctx, "S1", "A", "B", nil, ""); !errors.Is(err, database.ErrInvalidEmbedding) {
		t.Errorf("expected ErrInvalidEmbedding for absent embedding, got %v", err)
	}
}

func TestService_EnrollCapture(t *testing.T) {
	store := mock.NewStore()
	photos := photostore.New(t.TempDir())
	ext := &fakeExtractor{faces: []extractor.Face{
		{BBox: []float64{1, 2, 3, 4}, Embedding: validEmbedding(0.5), DetScore: 0.98},
	}}
	svc := NewService(store, ext, photos)

	result, err := svc.EnrollCapture(context.Background(), "S1", "Ayse", "Yilmaz", []byte("jpeg"))
	if err != nil {
		t.Fatalf("EnrollCapture failed: %v", err)
	}
	if !result.Created || result.FaceCount != 1 || result.PhotoRef == "" {
		t.Errorf("unexpected result %+v", result)
	}

	identity, _ := store.Get(context.Background(), "S1")
	if identity == nil || len(identity.PhotoRefs) != 1 || identity.PhotoRefs[0] != result.PhotoRef {
		t.Errorf("expected stored photo ref, got %+v", identity)
	}
}

func TestService_EnrollCapture_NoFace(t *testing.T) {
	svc := NewService(mock.NewStore(), &fakeExtractor{}, nil)

	_, err := svc.EnrollCapture(context.Background(), "S1", "A", "B", []byte("jpeg"))
	if !errors.Is(err, extractor.ErrNoFaceDetected) {
		t.Errorf("expected ErrNoFaceDetected, got %v", err)
	}
}

func TestService_EnrollCapture_NoEmbedding(t *testing.T) {
	ext := &fakeExtractor{faces: []extractor.Face{{BBox: []float64{1, 2, 3, 4}}}}
	svc := NewService(mock.NewStore(), ext, nil)

	_, err := svc.EnrollCapture(context.Background(), "S1", "A", "B", []byte("jpeg"))
	if !errors.Is(err, extractor.ErrNoEmbedding) {
		t.Errorf("expected ErrNoEmbedding, got %v", err)
	}
}

// removeTracker records Remove calls so tests can check capture cleanup.
type removeTracker struct {
	*photostore.Store
	removed []string
}

func (r *removeTracker) Remove(ref string) error {
	r.removed = append(r.removed, ref)
	return r.Store.Remove(ref)
}

func TestService_EnrollCapture_CleansUpOnStoreFailure(t *testing.T) {
	store := mock.NewStore()
	store.UpsertError = errors.New("connection reset")

	photos := &removeTracker{Store: photostore.New(t.TempDir())}
	ext := &fakeExtractor{faces: []extractor.Face{{Embedding: validEmbedding(0.1)}}}
	svc := NewService(store, ext, photos)

	if _, err := svc.EnrollCapture(context.Background(), "S1", "A", "B", []byte("jpeg")); err == nil {
		t.Fatal("expected error from failing store")
	}
	if len(photos.removed) != 1 {
		t.Errorf("expected saved capture to be removed on failure, removed=%v", photos.removed)
	}
}

func TestService_SearchByName(t *testing.T) {
	store := mock.NewStore()
	svc := NewService(store, &fakeExtractor{}, nil)
	ctx := context.Background()

	svc.Enroll(ctx, "S1", "Ayşe", "Yılmaz", validEmbedding(0.1), "")
	svc.Enroll(ctx, "S2", "Mehmet", "Demir", validEmbedding(0.2), "")

	matches, err := svc.SearchByName(ctx, "yilmaz")
	if err != nil {
		t.Fatalf("SearchByName failed: %v", err)
	}
	if len(matches) != 1 || matches[0].StudentID != "S1" {
		t.Errorf("expected S1 for diacritic-insensitive search, got %+v", matches)
	}

	matches, _ = svc.SearchByName(ctx, "")
	if len(matches) != 0 {
		t.Errorf("expected no matches for empty query, got %d", len(matches))
	}
}
