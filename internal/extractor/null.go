package extractor

import "context"

// Null is an Extractor for deployments without a face extraction
// service. Biometric enrollment and identification fail with
// ErrUnavailable; explicit check-in and tracking keep working.
type Null struct{}

// ExtractFaces always fails with ErrUnavailable.
func (Null) ExtractFaces(ctx context.Context, imageData []byte) ([]Face, error) {
	return nil, ErrUnavailable
}
