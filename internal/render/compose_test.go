package render

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestClone(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src.SetNRGBA(2, 2, color.NRGBA{R: 9, A: 255})

	dup := Clone(src)
	dup.SetNRGBA(2, 2, color.NRGBA{R: 200, A: 255})

	if got := src.NRGBAAt(2, 2).R; got != 9 {
		t.Errorf("mutating the clone changed the source: R = %d", got)
	}

	// Subimages keep their parent's coordinates; clones are re-anchored at
	// the origin.
	sub := src.SubImage(image.Rect(1, 1, 3, 3))
	anchored := Clone(sub)
	if got := anchored.Bounds(); got != image.Rect(0, 0, 2, 2) {
		t.Errorf("clone bounds = %v, want origin-anchored 2x2", got)
	}
	if got := anchored.NRGBAAt(1, 1).R; got != 9 {
		t.Errorf("clone lost pixel data, R = %d, want 9", got)
	}
}

func TestCrop(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 5, 5))
	src.SetNRGBA(3, 2, color.NRGBA{G: 77, A: 255})

	got := Crop(src, image.Rect(2, 1, 5, 4))
	if got.Bounds() != image.Rect(0, 0, 3, 3) {
		t.Fatalf("crop bounds = %v, want 3x3 at origin", got.Bounds())
	}
	if got.NRGBAAt(1, 1).G != 77 {
		t.Errorf("crop misplaced pixel, G = %d, want 77", got.NRGBAAt(1, 1).G)
	}
}

func TestWithAlpha(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 40, G: 50, B: 60, A: 255})

	mask := image.NewGray(image.Rect(0, 0, 2, 1))
	mask.Pix[0] = 255
	mask.Pix[1] = 13

	got, err := WithAlpha(img, mask)
	if err != nil {
		t.Fatalf("WithAlpha failed: %v", err)
	}
	if want := (color.NRGBA{R: 10, G: 20, B: 30, A: 255}); got.NRGBAAt(0, 0) != want {
		t.Errorf("pixel (0,0) = %v, want %v", got.NRGBAAt(0, 0), want)
	}
	if want := (color.NRGBA{R: 40, G: 50, B: 60, A: 13}); got.NRGBAAt(1, 0) != want {
		t.Errorf("pixel (1,0) = %v, want %v", got.NRGBAAt(1, 0), want)
	}
}

func TestWithAlpha_ShapeMismatch(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	mask := image.NewGray(image.Rect(0, 0, 3, 3))

	_, err := WithAlpha(img, mask)
	if err == nil {
		t.Fatal("expected error for mismatched mask shape")
	}

	var perr *ProcessingError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProcessingError, got %T", err)
	}
}

func TestAlphaPaste(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := 0; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 100
		dst.Pix[i+3] = 255
	}

	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i] = 200
		src.Pix[i+3] = 255
	}

	mask := image.NewGray(image.Rect(0, 0, 2, 2))
	mask.Pix[0] = 255 // (0,0) fully opaque
	mask.Pix[1] = 0   // (1,0) fully transparent
	mask.Pix[mask.Stride] = 128 // (0,1) half blend

	AlphaPaste(dst, src, mask, image.Pt(1, 1))

	if got := dst.NRGBAAt(1, 1).R; got != 200 {
		t.Errorf("opaque paste R = %d, want 200", got)
	}
	if got := dst.NRGBAAt(2, 1).R; got != 100 {
		t.Errorf("transparent paste R = %d, want untouched 100", got)
	}
	if got := dst.NRGBAAt(1, 2).R; got != 150 {
		t.Errorf("half blend R = %d, want 150", got)
	}
	if got := dst.NRGBAAt(1, 1).A; got != 255 {
		t.Errorf("destination alpha = %d, want opaque", got)
	}
	if got := dst.NRGBAAt(0, 0).R; got != 100 {
		t.Errorf("pixel outside paste area changed, R = %d", got)
	}
}

func TestAlphaPaste_ClipsOutOfBounds(t *testing.T) {
	dst := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 255
	}

	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	mask := image.NewGray(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	for i := range mask.Pix {
		mask.Pix[i] = 255
	}

	// Bottom-right corner: only (2,2) of the destination is covered.
	AlphaPaste(dst, src, mask, image.Pt(2, 2))

	if got := dst.NRGBAAt(2, 2).R; got != 255 {
		t.Errorf("in-bounds pixel R = %d, want 255", got)
	}
	if got := dst.NRGBAAt(1, 1).R; got != 0 {
		t.Errorf("pixel outside paste area changed, R = %d", got)
	}
}
