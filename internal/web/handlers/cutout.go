package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/celebware/starspot/internal/pipeline"
	"github.com/celebware/starspot/internal/render"
)

// defaultCutoutColor is used when the client does not pick an accent color.
const defaultCutoutColor = "#FF6B6B"

// CutoutHandler produces transparent cutouts and presentation cards.
type CutoutHandler struct {
	pipe *pipeline.Pipeline
}

// NewCutoutHandler creates a new cutout handler.
func NewCutoutHandler(pipe *pipeline.Pipeline) *CutoutHandler {
	return &CutoutHandler{pipe: pipe}
}

// CutoutResponse carries both rendered images as base64 PNG.
type CutoutResponse struct {
	CutoutImage       string `json:"cutout_image"`
	PresentationImage string `json:"presentation_image"`
}

// Cutout handles cutout generation around a client-supplied face box.
func (h *CutoutHandler) Cutout(w http.ResponseWriter, r *http.Request) {
	if h.pipe == nil {
		respondError(w, http.StatusServiceUnavailable, "recognition pipeline is not ready")
		return
	}

	img, _, ok := readImageUpload(w, r)
	if !ok {
		return
	}

	box, ok := parseCutoutBox(w, r)
	if !ok {
		return
	}

	name := r.FormValue("name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	hexColor := r.FormValue("color")
	if hexColor == "" {
		hexColor = defaultCutoutColor
	}
	if _, err := render.ParseHex(hexColor); err != nil {
		respondError(w, http.StatusBadRequest, "invalid color, expected #RRGGBB")
		return
	}

	result, err := h.pipe.Cutout(r.Context(), img, box, name, hexColor)
	if err != nil {
		respondPipelineError(w, err)
		return
	}

	cutout, err := pngBase64(result.Cutout)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode cutout image")
		return
	}
	presentation, err := pngBase64(result.Presentation)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode presentation image")
		return
	}

	respondJSON(w, http.StatusOK, CutoutResponse{
		CutoutImage:       cutout,
		PresentationImage: presentation,
	})
}

// parseCutoutBox reads the x/y/width/height form fields. Zero and negative
// origins are allowed since the pipeline clamps regions to the image; the
// extent must be positive.
func parseCutoutBox(w http.ResponseWriter, r *http.Request) (pipeline.BoundingBox, bool) {
	var box pipeline.BoundingBox
	fields := []struct {
		name string
		dst  *int
	}{
		{"x", &box.X},
		{"y", &box.Y},
		{"width", &box.Width},
		{"height", &box.Height},
	}
	for _, f := range fields {
		v, err := strconv.Atoi(r.FormValue(f.name))
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s value", f.name))
			return box, false
		}
		*f.dst = v
	}

	if box.Width <= 0 || box.Height <= 0 {
		respondError(w, http.StatusBadRequest, "width and height must be positive")
		return box, false
	}

	return box, true
}
