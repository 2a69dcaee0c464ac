// Package extractor turns captured images into face embeddings via an
// external face extraction service. The extraction model itself is an
// opaque collaborator; this package only carries its results.
package extractor

import (
	"context"
	"errors"
)

// Errors for expected negative outcomes. They are distinct from
// transport failures: a caller that cannot reach the extraction service
// gets a wrapped error instead, never one of these.
var (
	// ErrNoFaceDetected is returned when the image contains no
	// detectable face.
	ErrNoFaceDetected = errors.New("no face detected in image")

	// ErrNoEmbedding is returned when faces were detected but no usable
	// embedding could be extracted from any of them.
	ErrNoEmbedding = errors.New("no face embedding could be extracted")

	// ErrUnavailable is returned by the null extractor when no
	// extraction service is configured.
	ErrUnavailable = errors.New("face extraction service is not configured")
)

// Face is a single detected face with its bounding box and embedding.
type Face struct {
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2] in pixel coordinates
	Embedding []float32 `json:"embedding"`
	DetScore  float64   `json:"det_score"`
}

// Extractor produces face embeddings from raw image data.
// An empty result with a nil error means no face was detected;
// implementations must not turn that into an error themselves so
// callers can distinguish "nobody in frame" from a failing service.
type Extractor interface {
	ExtractFaces(ctx context.Context, imageData []byte) ([]Face, error)
}

// FirstEmbedding returns the embedding of the first face that carries
// one, in detection order.
func FirstEmbedding(faces []Face) ([]float32, bool) {
	for i := range faces {
		if len(faces[i].Embedding) != 0 {
			return faces[i].Embedding, true
		}
	}
	return nil, false
}
