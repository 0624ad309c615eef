package render

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func blackCanvas(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

func squareMask(w, h int, r image.Rectangle) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, w, h))
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			mask.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return mask
}

func TestDrawGlowEdge_EmptyMaskLeavesImageUntouched(t *testing.T) {
	img := blackCanvas(16, 16)
	before := append([]byte(nil), img.Pix...)

	DrawGlowEdge(img, image.NewGray(image.Rect(0, 0, 16, 16)), color.NRGBA{R: 200, A: 255}, 2, 2)

	if !bytes.Equal(img.Pix, before) {
		t.Error("empty mask should not modify the image")
	}
}

func TestDrawGlowEdge_OutlinesSilhouette(t *testing.T) {
	img := blackCanvas(20, 20)
	mask := squareMask(20, 20, image.Rect(6, 6, 14, 14))
	edge := color.NRGBA{R: 200, G: 40, B: 0, A: 255}

	DrawGlowEdge(img, mask, edge, 2, 2)

	// Innermost boundary pixel carries the solid edge color.
	if got := img.NRGBAAt(13, 10); got != edge {
		t.Errorf("boundary pixel = %v, want solid edge %v", got, edge)
	}

	// Just outside the silhouette sits the white highlight.
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	if got := img.NRGBAAt(14, 10); got != white {
		t.Errorf("highlight pixel = %v, want %v", got, white)
	}

	// Further out only the faint glow tint remains.
	glow := color.NRGBA{R: 10, G: 2, B: 0, A: 255}
	if got := img.NRGBAAt(15, 10); got != glow {
		t.Errorf("glow pixel = %v, want %v", got, glow)
	}

	// Deep inside the silhouette and far outside stay black.
	blackPx := color.NRGBA{A: 255}
	if got := img.NRGBAAt(10, 10); got != blackPx {
		t.Errorf("interior pixel = %v, want untouched black", got)
	}
	if got := img.NRGBAAt(1, 1); got != blackPx {
		t.Errorf("distant pixel = %v, want untouched black", got)
	}
}

func TestDrawGlowEdge_FilledHoleNotOutlined(t *testing.T) {
	img := blackCanvas(20, 20)
	mask := squareMask(20, 20, image.Rect(4, 4, 16, 16))
	// Punch a small hole; it must be treated as part of the silhouette.
	mask.SetGray(9, 9, color.Gray{})
	mask.SetGray(10, 9, color.Gray{})
	mask.SetGray(9, 10, color.Gray{})
	mask.SetGray(10, 10, color.Gray{})

	DrawGlowEdge(img, mask, color.NRGBA{R: 200, A: 255}, 2, 2)

	blackPx := color.NRGBA{A: 255}
	if got := img.NRGBAAt(9, 9); got != blackPx {
		t.Errorf("pixel next to filled hole = %v, want untouched black", got)
	}
}
