package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/celebware/starspot/internal/gallery"
	"github.com/celebware/starspot/internal/store"
)

func similarGallery() *gallery.Gallery {
	return gallery.New([]gallery.Identity{
		{ID: "ada-lovelace", Name: "Ada Lovelace", Embedding: []float32{0, 0, 0}},
		{ID: "grace-hopper", Name: "Grace Hopper", Embedding: []float32{0.1, 0, 0}},
		{ID: "hedy-lamarr", Name: "Hedy Lamarr", Embedding: []float32{1, 0, 0}},
		{ID: "marie-curie", Name: "Marie Curie", Embedding: []float32{0, 2, 0}},
	}, 3, 0.6)
}

func similarRequest(id, query string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/celebrities/"+id+"/similar"+query, nil)
	return requestWithChiParams(req, map[string]string{"id": id})
}

func assertNeighbors(t *testing.T, rec *httptest.ResponseRecorder, wantIDs ...string) {
	t.Helper()

	var resp SimilarResponse
	parseJSONResponse(t, rec, &resp)

	if len(resp.Similar) != len(wantIDs) {
		t.Fatalf("expected %d neighbors, got %d", len(wantIDs), len(resp.Similar))
	}
	for i, want := range wantIDs {
		if resp.Similar[i].ID != want {
			t.Errorf("neighbor %d: expected %s, got %s", i, want, resp.Similar[i].ID)
		}
	}
	for _, n := range resp.Similar {
		if n.ID == resp.ID {
			t.Errorf("query celebrity %s must not be its own neighbor", resp.ID)
		}
	}
}

func TestSimilar_LinearScan(t *testing.T) {
	handler := NewSimilarHandler(similarGallery(), nil, nil)

	rec := httptest.NewRecorder()
	handler.Get(rec, similarRequest("ada-lovelace", "?limit=2"))

	assertStatusCode(t, rec, http.StatusOK)
	assertNeighbors(t, rec, "grace-hopper", "hedy-lamarr")
}

func TestSimilar_WithIndex(t *testing.T) {
	g := similarGallery()
	handler := NewSimilarHandler(g, gallery.NewSimilarityIndex(g), nil)

	rec := httptest.NewRecorder()
	handler.Get(rec, similarRequest("ada-lovelace", "?limit=2"))

	assertStatusCode(t, rec, http.StatusOK)
	assertNeighbors(t, rec, "grace-hopper", "hedy-lamarr")
}

func TestSimilar_DatabaseFallback(t *testing.T) {
	g := similarGallery()
	identities := &fakeIdentities{}
	for _, ident := range g.Identities() {
		identities.identities = append(identities.identities, store.StoredIdentity{
			ID:        ident.ID,
			Name:      ident.Name,
			Embedding: ident.Embedding,
		})
	}
	handler := NewSimilarHandler(g, nil, identities)

	rec := httptest.NewRecorder()
	handler.Get(rec, similarRequest("ada-lovelace", "?limit=2"))

	assertStatusCode(t, rec, http.StatusOK)
	assertNeighbors(t, rec, "grace-hopper", "hedy-lamarr")
}

func TestSimilar_DefaultLimit(t *testing.T) {
	handler := NewSimilarHandler(similarGallery(), nil, nil)

	rec := httptest.NewRecorder()
	handler.Get(rec, similarRequest("ada-lovelace", ""))

	assertStatusCode(t, rec, http.StatusOK)

	var resp SimilarResponse
	parseJSONResponse(t, rec, &resp)

	// Default limit is 5; only 3 other identities exist.
	if len(resp.Similar) != 3 {
		t.Errorf("expected all 3 other celebrities, got %d", len(resp.Similar))
	}
	if resp.ID != "ada-lovelace" || resp.Name != "Ada Lovelace" {
		t.Errorf("response should echo the queried celebrity, got %s (%s)", resp.Name, resp.ID)
	}
}

func TestSimilar_UnknownCelebrity(t *testing.T) {
	handler := NewSimilarHandler(similarGallery(), nil, nil)

	rec := httptest.NewRecorder()
	handler.Get(rec, similarRequest("nobody", ""))

	assertStatusCode(t, rec, http.StatusNotFound)
	assertJSONError(t, rec, "celebrity not found")
}

func TestSimilar_GalleryNotLoaded(t *testing.T) {
	handler := NewSimilarHandler(nil, nil, nil)

	rec := httptest.NewRecorder()
	handler.Get(rec, similarRequest("ada-lovelace", ""))

	assertStatusCode(t, rec, http.StatusServiceUnavailable)
}

func TestSimilar_DatabaseError(t *testing.T) {
	handler := NewSimilarHandler(similarGallery(), nil, &fakeIdentities{err: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	handler.Get(rec, similarRequest("ada-lovelace", ""))

	assertStatusCode(t, rec, http.StatusInternalServerError)
}
