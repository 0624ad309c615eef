// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Face matching constants
const (
	// DefaultMatchTolerance is the maximum Euclidean distance between a probe
	// embedding and a gallery embedding for an identity to count as a match.
	// Lower values = stricter matching
	DefaultMatchTolerance = 0.6

	// EmbeddingDim is the length of the embedding vectors produced by the
	// face detection model
	EmbeddingDim = 128
)

// Processing constants
const (
	// DefaultSeedWorkers is the default number of parallel workers when
	// seeding the gallery from a photo directory
	DefaultSeedWorkers = 5

	// DefaultSegmenterConcurrency is the default cap on concurrent requests
	// against the segmentation model server
	DefaultSegmenterConcurrency = 4
)
