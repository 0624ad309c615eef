// Package constants provides shared constants used across the codebase.
package constants

// Handler constants
const (
	// DefaultSimilarLimit is the default number of neighbors returned by the
	// similar-celebrities endpoint
	DefaultSimilarLimit = 5

	// MaxSimilarLimit caps the limit query parameter of the
	// similar-celebrities endpoint
	MaxSimilarLimit = 50
)

// File upload constants
const (
	// MaxUploadSize is the maximum file upload size in bytes (100MB)
	MaxUploadSize = 100 << 20
)
