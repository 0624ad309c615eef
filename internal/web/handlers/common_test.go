package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/celebware/starspot/internal/render"
)

func TestParseLimit(t *testing.T) {
	tests := []struct {
		query    string
		expected int
	}{
		{"", 5},
		{"?limit=3", 3},
		{"?limit=0", 5},
		{"?limit=-2", 5},
		{"?limit=abc", 5},
		{"?limit=999", 50},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/celebrities/x/similar"+tt.query, nil)
		if got := parseLimit(req, 5, 50); got != tt.expected {
			t.Errorf("parseLimit(%q) = %d, want %d", tt.query, got, tt.expected)
		}
	}
}

func TestRespondPipelineError(t *testing.T) {
	rec := httptest.NewRecorder()
	respondPipelineError(rec, fmt.Errorf("cutout: %w", &render.ProcessingError{Reason: "degenerate person region"}))
	assertStatusCode(t, rec, http.StatusUnprocessableEntity)

	rec = httptest.NewRecorder()
	respondPipelineError(rec, errors.New("model server down"))
	assertStatusCode(t, rec, http.StatusInternalServerError)
}
