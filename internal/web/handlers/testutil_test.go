package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"sort"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/celebware/starspot/internal/gallery"
	"github.com/celebware/starspot/internal/pipeline"
	"github.com/celebware/starspot/internal/render"
	"github.com/celebware/starspot/internal/store"
	"github.com/celebware/starspot/internal/vision"
)

// fakeDetector returns canned faces without a model server.
type fakeDetector struct {
	faces []vision.Face
	err   error
}

func (f *fakeDetector) DetectFaces(_ context.Context, _ []byte) ([]vision.Face, error) {
	return f.faces, f.err
}

// fakeSegmenter answers every request with a full-coverage mask or matte
// sized to the uploaded crop.
type fakeSegmenter struct{}

func (fakeSegmenter) RemoveBackground(_ context.Context, imageData []byte, opts vision.SegmentOptions) (image.Image, error) {
	src, err := png.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, err
	}
	b := src.Bounds()

	if opts.AlphaMatting {
		matte := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		for i := range matte.Pix {
			matte.Pix[i] = 255
		}
		return matte, nil
	}

	mask := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for i := range mask.Pix {
		mask.Pix[i] = 255
	}
	return mask, nil
}

// testPipeline builds a pipeline over a two-celebrity gallery and fake model
// servers. Embeddings are 3-dim so faces can be written by hand.
func testPipeline(t *testing.T, det vision.Detector) *pipeline.Pipeline {
	t.Helper()

	fonts, err := render.LoadFontSet("")
	if err != nil {
		t.Fatalf("failed to load fonts: %v", err)
	}

	g := gallery.New([]gallery.Identity{
		{ID: "ada-lovelace", Name: "Ada Lovelace", Embedding: []float32{0, 0, 0}},
		{ID: "grace-hopper", Name: "Grace Hopper", Embedding: []float32{1, 0, 0}},
	}, 3, 0.6)

	colors := []string{"#FF6B6B", "#4ECDC4"}
	backgrounds := map[string]pipeline.Background{
		"#FF6B6B": {
			Top:    color.NRGBA{R: 10, G: 10, B: 20, A: 255},
			Bottom: color.NRGBA{R: 250, G: 100, B: 100, A: 255},
		},
	}

	return pipeline.New(det, fakeSegmenter{}, g, fonts, colors, backgrounds)
}

// testImage returns a solid-color image of the given size.
func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, color.NRGBA{R: 40, G: 80, B: 120, A: 255})
		}
	}
	return img
}

// uploadRawRequest builds a multipart request whose "image" part carries the
// given bytes and content type, plus any extra form fields.
func uploadRawRequest(t *testing.T, path, contentType string, data []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="upload.png"`)
	h.Set("Content-Type", contentType)
	part, err := writer.CreatePart(h)
	if err != nil {
		t.Fatalf("failed to create image part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("failed to write image part: %v", err)
	}

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write form field %s: %v", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// uploadRequest builds a multipart request with a PNG-encoded image part.
func uploadRequest(t *testing.T, path string, img image.Image, fields map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return uploadRawRequest(t, path, "image/png", buf.Bytes(), fields)
}

// decodePNGBase64 decodes a base64 PNG from a JSON response.
func decodePNGBase64(t *testing.T, encoded string) image.Image {
	t.Helper()

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("response image is not valid base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("response image is not a PNG: %v", err)
	}
	return img
}

// memProfiles is an in-memory ProfileWriter for handler tests.
type memProfiles struct {
	profiles map[string]store.Profile
}

func newMemProfiles(profiles ...store.Profile) *memProfiles {
	m := &memProfiles{profiles: make(map[string]store.Profile)}
	for _, p := range profiles {
		m.profiles[p.ID] = p
	}
	return m
}

func (m *memProfiles) List(_ context.Context) ([]store.Profile, error) {
	out := make([]store.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		p.Movies, p.Music = nil, nil
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memProfiles) Get(_ context.Context, id string) (*store.Profile, error) {
	p, ok := m.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", id, store.ErrNotFound)
	}
	return &p, nil
}

func (m *memProfiles) MissingBiography(_ context.Context) ([]store.Profile, error) {
	var out []store.Profile
	for _, p := range m.profiles {
		if p.Biography == "" {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProfiles) Create(_ context.Context, p *store.Profile) error {
	m.profiles[p.ID] = *p
	return nil
}

func (m *memProfiles) Update(_ context.Context, p *store.Profile) error {
	if _, ok := m.profiles[p.ID]; !ok {
		return fmt.Errorf("profile %s: %w", p.ID, store.ErrNotFound)
	}
	m.profiles[p.ID] = *p
	return nil
}

func (m *memProfiles) Delete(_ context.Context, id string) error {
	if _, ok := m.profiles[id]; !ok {
		return fmt.Errorf("profile %s: %w", id, store.ErrNotFound)
	}
	delete(m.profiles, id)
	return nil
}

func (m *memProfiles) SetBiography(_ context.Context, id, biography string, professions []string) error {
	p, ok := m.profiles[id]
	if !ok {
		return fmt.Errorf("profile %s: %w", id, store.ErrNotFound)
	}
	p.Biography = biography
	if len(professions) > 0 {
		p.Professions = professions
	}
	m.profiles[id] = p
	return nil
}

// fakeIdentities is an in-memory IdentityReader for handler tests.
type fakeIdentities struct {
	identities []store.StoredIdentity
	err        error
}

func (f *fakeIdentities) LoadAll(_ context.Context) ([]store.StoredIdentity, error) {
	return f.identities, f.err
}

func (f *fakeIdentities) Count(_ context.Context) (int, error) {
	return len(f.identities), f.err
}

func (f *fakeIdentities) FindSimilar(_ context.Context, embedding []float32, limit int) ([]store.StoredIdentity, []float64, error) {
	if f.err != nil {
		return nil, nil, f.err
	}

	type scored struct {
		identity store.StoredIdentity
		distance float64
	}
	results := make([]scored, 0, len(f.identities))
	for _, ident := range f.identities {
		results = append(results, scored{
			identity: ident,
			distance: gallery.EuclideanDistance(embedding, ident.Embedding),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].distance < results[j].distance })
	if len(results) > limit {
		results = results[:limit]
	}

	identities := make([]store.StoredIdentity, len(results))
	distances := make([]float64, len(results))
	for i, r := range results {
		identities[i] = r.identity
		distances[i] = r.distance
	}
	return identities, distances, nil
}

// errProfiles fails every call, for exercising 500 paths.
type errProfiles struct{}

func (errProfiles) List(context.Context) ([]store.Profile, error) {
	return nil, errors.New("connection refused")
}

func (errProfiles) Get(context.Context, string) (*store.Profile, error) {
	return nil, errors.New("connection refused")
}

func (errProfiles) MissingBiography(context.Context) ([]store.Profile, error) {
	return nil, errors.New("connection refused")
}

func (errProfiles) Create(context.Context, *store.Profile) error {
	return errors.New("connection refused")
}

func (errProfiles) Update(context.Context, *store.Profile) error {
	return errors.New("connection refused")
}

func (errProfiles) Delete(context.Context, string) error {
	return errors.New("connection refused")
}

func (errProfiles) SetBiography(context.Context, string, string, []string) error {
	return errors.New("connection refused")
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
