// Package recognize matches probe embeddings against the enrolled gallery.
package recognize

import (
	"context"
	"fmt"

	"github.com/rollmark/rollmark/internal/database"
	"github.com/rollmark/rollmark/internal/extractor"
)

// initialBestDistance caps the gallery scan. Distances are normalized by
// the embedding model so 1.0 already means "no meaningful resemblance";
// candidates at or beyond it never become the best match.
const initialBestDistance = 1.0

// Match is an accepted identification.
type Match struct {
	StudentID  string  `json:"student_id"`
	GivenName  string  `json:"given_name"`
	FamilyName string  `json:"family_name"`
	Distance   float64 `json:"distance"`
}

// FullName returns the matched identity's display name.
func (m *Match) FullName() string {
	return m.GivenName + " " + m.FamilyName
}

// Engine identifies probe embeddings against the gallery using a
// single-nearest-neighbor classifier with a rejection threshold.
type Engine struct {
	store     database.IdentityReader
	extractor extractor.Extractor
	threshold float64
	index     *database.GalleryIndex
}

// NewEngine creates a match engine with the given acceptance threshold.
func NewEngine(store database.IdentityReader, ext extractor.Extractor, threshold float64) *Engine {
	return &Engine{
		store:     store,
		extractor: ext,
		threshold: threshold,
	}
}

// EnableIndex attaches an ANN index built from the current gallery and
// keeps matching through it instead of the linear scan. Useful once the
// gallery outgrows class-roster scale.
func (e *Engine) EnableIndex(ctx context.Context) error {
	identities, err := e.store.AllEnrolled(ctx)
	if err != nil {
		return fmt.Errorf("failed to load gallery: %w", err)
	}

	index := database.NewGalleryIndex()
	if err := index.Build(identities); err != nil {
		return fmt.Errorf("failed to build gallery index: %w", err)
	}
	e.index = index
	return nil
}

// RebuildIndex refreshes the attached index from the current gallery.
// No-op when the index is not enabled.
func (e *Engine) RebuildIndex(ctx context.Context) error {
	if e.index == nil {
		return nil
	}
	return e.EnableIndex(ctx)
}

// Identify finds the enrolled identity nearest to the probe embedding.
// Returns (nil, nil) when no candidate clears the threshold, so callers
// can distinguish "nobody recognized" from a lookup failure.
func (e *Engine) Identify(ctx context.Context, probe []float32) (*Match, error) {
	if len(probe) != database.EmbeddingDim {
		return nil, database.ErrInvalidEmbedding
	}

	if e.index != nil {
		return e.identifyIndexed(probe), nil
	}

	identities, err := e.store.AllEnrolled(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load gallery: %w", err)
	}

	var best *database.Identity
	bestDistance := initialBestDistance
	for i := range identities {
		candidate := &identities[i]
		// Malformed gallery entries are skipped, not an error.
		if len(candidate.Embedding) != database.EmbeddingDim {
			continue
		}
		// Strict comparison keeps the first-enrolled candidate on ties.
		if d := database.EuclideanDistance(probe, candidate.Embedding); d < bestDistance {
			best = candidate
			bestDistance = d
		}
	}

	if best == nil || bestDistance >= e.threshold {
		return nil, nil
	}
	return &Match{
		StudentID:  best.StudentID,
		GivenName:  best.GivenName,
		FamilyName: best.FamilyName,
		Distance:   bestDistance,
	}, nil
}

func (e *Engine) identifyIndexed(probe []float32) *Match {
	best, distance := e.index.Nearest(probe, galleryIndexCandidates)
	if best == nil || distance >= e.threshold || distance >= initialBestDistance {
		return nil
	}
	return &Match{
		StudentID:  best.StudentID,
		GivenName:  best.GivenName,
		FamilyName: best.FamilyName,
		Distance:   distance,
	}
}

// galleryIndexCandidates is how many neighbors the ANN search pulls
// before re-ranking; more than one so enrollment-order tie-breaks hold.
const galleryIndexCandidates = 8

// IdentifyImage extracts faces from an image and identifies the first
// usable embedding. The extractor sentinels ErrNoFaceDetected and
// ErrNoEmbedding keep "no face present" distinct from "nobody matched".
func (e *Engine) IdentifyImage(ctx context.Context, imageData []byte) (*Match, error) {
	faces, err := e.extractor.ExtractFaces(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("failed to extract faces: %w", err)
	}
	if len(faces) == 0 {
		return nil, extractor.ErrNoFaceDetected
	}

	probe, ok := extractor.FirstEmbedding(faces)
	if !ok {
		return nil, extractor.ErrNoEmbedding
	}
	return e.Identify(ctx, probe)
}
