package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/celebware/starspot/internal/store"
)

// CelebritiesHandler manages stored celebrity profiles.
type CelebritiesHandler struct {
	profiles store.ProfileWriter
}

// NewCelebritiesHandler creates a new celebrities handler. profiles may be
// nil when no profile database is configured; every route then answers 503.
func NewCelebritiesHandler(profiles store.ProfileWriter) *CelebritiesHandler {
	return &CelebritiesHandler{profiles: profiles}
}

func (h *CelebritiesHandler) ready(w http.ResponseWriter) bool {
	if h.profiles == nil {
		respondError(w, http.StatusServiceUnavailable, "profile database is not configured")
		return false
	}
	return true
}

// List handles listing all celebrity profiles, without their movie and
// music credits.
func (h *CelebritiesHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	profiles, err := h.profiles.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list celebrities")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"celebrities": profiles,
		"count":       len(profiles),
	})
}

// Get handles fetching a single full profile.
func (h *CelebritiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	id := chi.URLParam(r, "id")
	profile, err := h.profiles.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "celebrity not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to fetch celebrity")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// Create handles inserting a new profile. When the client does not supply an
// id one is generated.
func (h *CelebritiesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	var profile store.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if profile.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}

	if err := h.profiles.Create(r.Context(), &profile); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create celebrity")
		return
	}

	respondJSON(w, http.StatusCreated, profile)
}

// Update handles replacing a profile. The id in the path wins over any id in
// the body.
func (h *CelebritiesHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	var profile store.Profile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	profile.ID = chi.URLParam(r, "id")
	if profile.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	err := h.profiles.Update(r.Context(), &profile)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "celebrity not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to update celebrity")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// Delete handles removing a profile.
func (h *CelebritiesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.ready(w) {
		return
	}

	id := chi.URLParam(r, "id")
	err := h.profiles.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "celebrity not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete celebrity")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"deleted": id})
}
