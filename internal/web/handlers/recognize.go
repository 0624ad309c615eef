package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/celebware/starspot/internal/pipeline"
	"github.com/celebware/starspot/internal/store"
)

// RecognizeHandler runs uploaded images through the recognition pipeline.
type RecognizeHandler struct {
	pipe     *pipeline.Pipeline
	profiles store.ProfileReader // optional, enriches matches with a short bio line
}

// NewRecognizeHandler creates a new recognize handler. profiles may be nil
// when no profile database is configured.
func NewRecognizeHandler(pipe *pipeline.Pipeline, profiles store.ProfileReader) *RecognizeHandler {
	return &RecognizeHandler{
		pipe:     pipe,
		profiles: profiles,
	}
}

// CelebrityMatch is one recognized celebrity in a recognition response.
type CelebrityMatch struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Confidence  float64              `json:"confidence"`
	Color       string               `json:"color"`
	BoundingBox pipeline.BoundingBox `json:"bounding_box"`
	Brief       *string              `json:"brief"`
}

// RecognizeResponse carries the annotated image and every match.
type RecognizeResponse struct {
	AnnotatedImage string           `json:"annotated_image"`
	Celebrities    []CelebrityMatch `json:"celebrities"`
}

// FaceEntry is one detected face in a fast recognition response.
type FaceEntry struct {
	BoundingBox pipeline.BoundingBox `json:"bounding_box"`
}

// FastResponse lists detected faces and matches without any rendering, for
// clients that draw their own overlays.
type FastResponse struct {
	Faces   []FaceEntry      `json:"faces"`
	Matches []pipeline.Match `json:"matches"`
}

// Recognize handles full recognition: every matched face gets a glow
// outline and a name badge drawn into the returned image.
func (h *RecognizeHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	if h.pipe == nil {
		respondError(w, http.StatusServiceUnavailable, "recognition pipeline is not ready")
		return
	}

	img, data, ok := readImageUpload(w, r)
	if !ok {
		return
	}

	result, err := h.pipe.Annotate(r.Context(), img, data)
	if err != nil {
		respondPipelineError(w, err)
		return
	}

	encoded, err := pngBase64(result.Image)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode annotated image")
		return
	}

	celebrities := make([]CelebrityMatch, 0, len(result.Matches))
	for _, m := range result.Matches {
		celebrities = append(celebrities, CelebrityMatch{
			ID:          m.ID,
			Name:        m.Name,
			Confidence:  m.Confidence,
			Color:       m.Color,
			BoundingBox: m.BoundingBox,
			Brief:       h.brief(r.Context(), m.ID),
		})
	}

	respondJSON(w, http.StatusOK, RecognizeResponse{
		AnnotatedImage: encoded,
		Celebrities:    celebrities,
	})
}

// Fast handles detection-only recognition: no images are rendered, the
// response carries face boxes and gallery matches.
func (h *RecognizeHandler) Fast(w http.ResponseWriter, r *http.Request) {
	if h.pipe == nil {
		respondError(w, http.StatusServiceUnavailable, "recognition pipeline is not ready")
		return
	}

	_, data, ok := readImageUpload(w, r)
	if !ok {
		return
	}

	result, err := h.pipe.Detect(r.Context(), data)
	if err != nil {
		respondPipelineError(w, err)
		return
	}

	faces := make([]FaceEntry, len(result.Faces))
	for i, box := range result.Faces {
		faces[i] = FaceEntry{BoundingBox: box}
	}

	respondJSON(w, http.StatusOK, FastResponse{
		Faces:   faces,
		Matches: result.Matches,
	})
}

// brief returns the first two professions of the celebrity's profile,
// comma-joined ("actor, producer"). Nil when no profile store is wired, the
// profile is missing, or it has no professions.
func (h *RecognizeHandler) brief(ctx context.Context, id string) *string {
	if h.profiles == nil {
		return nil
	}

	profile, err := h.profiles.Get(ctx, id)
	if err != nil || len(profile.Professions) == 0 {
		return nil
	}

	professions := profile.Professions
	if len(professions) > 2 {
		professions = professions[:2]
	}
	brief := strings.Join(professions, ", ")
	return &brief
}
