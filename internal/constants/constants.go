// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Face matching constants
const (
	// DefaultDistanceThreshold is the default maximum Euclidean distance
	// for accepting a face match. Lower values = stricter matching.
	DefaultDistanceThreshold = 0.6

	// DefaultSearchLimit is the default limit for name search results
	DefaultSearchLimit = 50
)

// File upload constants
const (
	// MaxUploadSize is the maximum image upload size in bytes (20MB)
	MaxUploadSize = 20 << 20
)
