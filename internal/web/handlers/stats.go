package handlers

import (
	"net/http"

	"github.com/celebware/starspot/internal/gallery"
	"github.com/celebware/starspot/internal/pipeline"
)

// StatsHandler reports recognition gallery statistics.
type StatsHandler struct {
	pipe  *pipeline.Pipeline
	index *gallery.SimilarityIndex
	dim   int
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(pipe *pipeline.Pipeline, index *gallery.SimilarityIndex, dim int) *StatsHandler {
	return &StatsHandler{
		pipe:  pipe,
		index: index,
		dim:   dim,
	}
}

// StatsResponse represents the statistics response.
type StatsResponse struct {
	CelebritiesInDatabase int  `json:"celebrities_in_database"`
	AvailableColors       int  `json:"available_colors"`
	EmbeddingDim          int  `json:"embedding_dim"`
	SimilarityIndex       bool `json:"similarity_index"`
}

// Get handles the statistics endpoint. It works even while the pipeline is
// down, reporting an empty gallery rather than an error.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats := StatsResponse{
		EmbeddingDim:    h.dim,
		SimilarityIndex: h.index != nil,
	}
	if h.pipe != nil {
		stats.CelebritiesInDatabase = h.pipe.Gallery().Size()
		stats.AvailableColors = len(h.pipe.Colors())
	}

	respondJSON(w, http.StatusOK, stats)
}
