package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func cutoutFields(overrides map[string]string) map[string]string {
	fields := map[string]string{
		"x":      "24",
		"y":      "24",
		"width":  "32",
		"height": "32",
		"name":   "Ada Lovelace",
		"color":  "#FF6B6B",
	}
	for key, value := range overrides {
		if value == "" {
			delete(fields, key)
			continue
		}
		fields[key] = value
	}
	return fields
}

func TestCutout(t *testing.T) {
	handler := NewCutoutHandler(testPipeline(t, &fakeDetector{}))

	req := uploadRequest(t, "/api/v1/cutout", testImage(96, 96), cutoutFields(nil))
	rec := httptest.NewRecorder()
	handler.Cutout(rec, req)

	assertStatusCode(t, rec, http.StatusOK)

	var resp CutoutResponse
	parseJSONResponse(t, rec, &resp)

	cutout := decodePNGBase64(t, resp.CutoutImage)
	presentation := decodePNGBase64(t, resp.PresentationImage)

	if cutout.Bounds().Empty() {
		t.Error("cutout image is empty")
	}
	// The card always leaves headroom above the subject for the caption.
	if presentation.Bounds().Dy() <= cutout.Bounds().Dy() {
		t.Errorf("presentation height %d should exceed cutout height %d",
			presentation.Bounds().Dy(), cutout.Bounds().Dy())
	}
}

func TestCutout_DefaultColor(t *testing.T) {
	handler := NewCutoutHandler(testPipeline(t, &fakeDetector{}))

	req := uploadRequest(t, "/api/v1/cutout", testImage(96, 96), cutoutFields(map[string]string{"color": ""}))
	rec := httptest.NewRecorder()
	handler.Cutout(rec, req)

	assertStatusCode(t, rec, http.StatusOK)
}

func TestCutout_PipelineNotReady(t *testing.T) {
	handler := NewCutoutHandler(nil)

	req := uploadRequest(t, "/api/v1/cutout", testImage(32, 32), cutoutFields(nil))
	rec := httptest.NewRecorder()
	handler.Cutout(rec, req)

	assertStatusCode(t, rec, http.StatusServiceUnavailable)
}

func TestCutout_InvalidBox(t *testing.T) {
	tests := []struct {
		name     string
		override map[string]string
		wantErr  string
	}{
		{"missing x", map[string]string{"x": ""}, "invalid x value"},
		{"garbage width", map[string]string{"width": "abc"}, "invalid width value"},
		{"negative height", map[string]string{"height": "-5"}, "width and height must be positive"},
		{"zero width", map[string]string{"width": "0"}, "width and height must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewCutoutHandler(testPipeline(t, &fakeDetector{}))

			req := uploadRequest(t, "/api/v1/cutout", testImage(96, 96), cutoutFields(tt.override))
			rec := httptest.NewRecorder()
			handler.Cutout(rec, req)

			assertStatusCode(t, rec, http.StatusBadRequest)
			assertJSONError(t, rec, tt.wantErr)
		})
	}
}

func TestCutout_MissingName(t *testing.T) {
	handler := NewCutoutHandler(testPipeline(t, &fakeDetector{}))

	req := uploadRequest(t, "/api/v1/cutout", testImage(96, 96), cutoutFields(map[string]string{"name": ""}))
	rec := httptest.NewRecorder()
	handler.Cutout(rec, req)

	assertStatusCode(t, rec, http.StatusBadRequest)
	assertJSONError(t, rec, "name is required")
}

func TestCutout_InvalidColor(t *testing.T) {
	handler := NewCutoutHandler(testPipeline(t, &fakeDetector{}))

	req := uploadRequest(t, "/api/v1/cutout", testImage(96, 96), cutoutFields(map[string]string{"color": "red"}))
	rec := httptest.NewRecorder()
	handler.Cutout(rec, req)

	assertStatusCode(t, rec, http.StatusBadRequest)
	assertJSONError(t, rec, "invalid color, expected #RRGGBB")
}

func TestCutout_BoxOutsideImage(t *testing.T) {
	handler := NewCutoutHandler(testPipeline(t, &fakeDetector{}))

	req := uploadRequest(t, "/api/v1/cutout", testImage(96, 96), cutoutFields(map[string]string{
		"x": "500",
		"y": "500",
	}))
	rec := httptest.NewRecorder()
	handler.Cutout(rec, req)

	assertStatusCode(t, rec, http.StatusUnprocessableEntity)
}
