package render

import (
	"image"

	"github.com/celebware/starspot/internal/vision"
)

// CropQuality selects how generously the person region around a face is
// estimated.
type CropQuality int

const (
	// CropFast pads one face width to each side, half a face height above
	// and six below. Used for the annotation flow.
	CropFast CropQuality = iota
	// CropHighQuality pads more generously to capture the full person for
	// cutout cards.
	CropHighQuality
)

// EstimatePersonRegion estimates the body rectangle for a face within an
// image of the given dimensions. The rectangle is clamped to the image
// bounds; a face is never rejected just because its body estimate pokes
// outside the frame. Returns a ProcessingError when the clamped region
// collapses to nothing.
func EstimatePersonRegion(face vision.FaceRegion, width, height int, quality CropQuality) (image.Rectangle, error) {
	fw := face.Width()
	fh := face.Height()

	var x1, y1, x2, y2 int
	switch quality {
	case CropHighQuality:
		x1 = face.Left - int(float64(fw)*1.5)
		y1 = face.Top - int(float64(fh)*0.8)
		x2 = face.Right + int(float64(fw)*1.5)
		y2 = face.Bottom + fh*8
	default:
		x1 = face.Left - fw
		y1 = face.Top - fh/2
		x2 = face.Right + fw
		y2 = face.Bottom + fh*6
	}

	x1 = max(0, x1)
	y1 = max(0, y1)
	x2 = min(width, x2)
	y2 = min(height, y2)

	if x2 <= x1 || y2 <= y1 {
		return image.Rectangle{}, processingErrorf("degenerate person region %dx%d for face at (%d,%d)",
			x2-x1, y2-y1, face.Left, face.Top)
	}

	return image.Rect(x1, y1, x2, y2), nil
}
