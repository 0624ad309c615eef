package render

import (
	"errors"
	"image"
	"testing"

	"github.com/celebware/starspot/internal/vision"
)

func TestEstimatePersonRegion_Fast(t *testing.T) {
	face := vision.FaceRegion{Top: 100, Right: 150, Bottom: 160, Left: 100}

	got, err := EstimatePersonRegion(face, 1000, 1000, CropFast)
	if err != nil {
		t.Fatalf("EstimatePersonRegion failed: %v", err)
	}

	want := image.Rect(50, 70, 200, 520)
	if got != want {
		t.Errorf("region = %v, want %v", got, want)
	}
}

func TestEstimatePersonRegion_HighQuality(t *testing.T) {
	face := vision.FaceRegion{Top: 100, Right: 150, Bottom: 160, Left: 100}

	got, err := EstimatePersonRegion(face, 1000, 1000, CropHighQuality)
	if err != nil {
		t.Fatalf("EstimatePersonRegion failed: %v", err)
	}

	want := image.Rect(25, 52, 225, 640)
	if got != want {
		t.Errorf("region = %v, want %v", got, want)
	}
}

func TestEstimatePersonRegion_ClampsToImage(t *testing.T) {
	face := vision.FaceRegion{Top: 5, Right: 40, Bottom: 45, Left: 10}

	got, err := EstimatePersonRegion(face, 100, 100, CropFast)
	if err != nil {
		t.Fatalf("EstimatePersonRegion failed: %v", err)
	}

	want := image.Rect(0, 0, 70, 100)
	if got != want {
		t.Errorf("region = %v, want %v", got, want)
	}
}

func TestEstimatePersonRegion_Degenerate(t *testing.T) {
	// Face entirely outside the image collapses to an empty rectangle.
	face := vision.FaceRegion{Top: 2, Right: 30, Bottom: 4, Left: 20}

	_, err := EstimatePersonRegion(face, 10, 10, CropFast)
	if err == nil {
		t.Fatal("expected error for degenerate region")
	}

	var perr *ProcessingError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProcessingError, got %T", err)
	}
}
