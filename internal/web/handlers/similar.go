package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/celebware/starspot/internal/constants"
	"github.com/celebware/starspot/internal/gallery"
	"github.com/celebware/starspot/internal/store"
)

// SimilarHandler answers look-alike queries over the gallery.
type SimilarHandler struct {
	gal        *gallery.Gallery
	index      *gallery.SimilarityIndex // optional in-memory ANN index
	identities store.IdentityReader     // optional database fallback
}

// NewSimilarHandler creates a new similar-celebrities handler.
func NewSimilarHandler(gal *gallery.Gallery, index *gallery.SimilarityIndex, identities store.IdentityReader) *SimilarHandler {
	return &SimilarHandler{
		gal:        gal,
		index:      index,
		identities: identities,
	}
}

// SimilarEntry is one neighbor in a look-alike response.
type SimilarEntry struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
}

// SimilarResponse lists the celebrities closest to the queried one.
type SimilarResponse struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Similar []SimilarEntry `json:"similar"`
}

// Get handles the look-alike endpoint. An optional limit query parameter
// bounds the result count.
func (h *SimilarHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.gal == nil {
		respondError(w, http.StatusServiceUnavailable, "gallery is not loaded")
		return
	}

	id := chi.URLParam(r, "id")
	ident, ok := h.gal.ByID(id)
	if !ok {
		respondError(w, http.StatusNotFound, "celebrity not found")
		return
	}

	limit := parseLimit(r, constants.DefaultSimilarLimit, constants.MaxSimilarLimit)

	neighbors, err := h.neighbors(r.Context(), ident, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "similarity lookup failed")
		return
	}

	entries := make([]SimilarEntry, 0, len(neighbors))
	for _, n := range neighbors {
		entries = append(entries, SimilarEntry{
			ID:       n.Identity.ID,
			Name:     n.Identity.Name,
			Distance: n.Distance,
		})
	}

	respondJSON(w, http.StatusOK, SimilarResponse{
		ID:      ident.ID,
		Name:    ident.Name,
		Similar: entries,
	})
}

// neighbors picks the best available backend: the in-memory index, then the
// identity database, then a linear gallery scan.
func (h *SimilarHandler) neighbors(ctx context.Context, ident gallery.Identity, limit int) ([]gallery.Neighbor, error) {
	if h.index != nil {
		return h.index.Neighbors(ident.Embedding, limit, ident.ID), nil
	}

	if h.identities != nil {
		// Ask for one extra row since the query celebrity is usually its
		// own nearest neighbor.
		stored, distances, err := h.identities.FindSimilar(ctx, ident.Embedding, limit+1)
		if err != nil {
			return nil, err
		}
		neighbors := make([]gallery.Neighbor, 0, limit)
		for i, s := range stored {
			if s.ID == ident.ID {
				continue
			}
			neighbors = append(neighbors, gallery.Neighbor{
				Identity: gallery.Identity{ID: s.ID, Name: s.Name, Embedding: s.Embedding},
				Distance: distances[i],
			})
			if len(neighbors) == limit {
				break
			}
		}
		return neighbors, nil
	}

	return h.gal.Nearest(ident.Embedding, limit, ident.ID), nil
}
