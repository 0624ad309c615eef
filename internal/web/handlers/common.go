package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"strconv"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/celebware/starspot/internal/constants"
	"github.com/celebware/starspot/internal/render"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondPipelineError maps pipeline failures to status codes. Processing
// errors describe input the renderer cannot work with (degenerate boxes,
// empty masks) and are the client's 422; anything else is a model-server
// failure or a bug.
func respondPipelineError(w http.ResponseWriter, err error) {
	var procErr *render.ProcessingError
	if errors.As(err, &procErr) {
		respondError(w, http.StatusUnprocessableEntity, procErr.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

// readImageUpload pulls the "image" file out of a multipart request and
// decodes it. The raw bytes are returned alongside the decoded image because
// the detector receives the upload verbatim. On failure the error response
// has already been written and ok is false.
func readImageUpload(w http.ResponseWriter, r *http.Request) (img image.Image, data []byte, ok bool) {
	if err := r.ParseMultipartForm(constants.MaxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return nil, nil, false
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image file is required")
		return nil, nil, false
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		respondError(w, http.StatusBadRequest, "file must be an image")
		return nil, nil, false
	}

	data, err = io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to read image")
		return nil, nil, false
	}

	img, _, err = image.Decode(bytes.NewReader(data))
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not decode image")
		return nil, nil, false
	}

	return img, data, true
}

// pngBase64 encodes an image as a base64 PNG for embedding in JSON.
func pngBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode png: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// parseLimit reads a positive "limit" query parameter, falling back to def
// when absent or unparseable and clamping to limitCap.
func parseLimit(r *http.Request, def, limitCap int) int {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	if n > limitCap {
		return limitCap
	}
	return n
}
