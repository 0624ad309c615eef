package pipeline

import (
	"image"
	"image/color"

	"github.com/celebware/starspot/internal/vision"
)

// BoundingBox locates a rectangle by its top-left corner, the form the API
// and the cutout endpoint use.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func boxFromRegion(r vision.FaceRegion) BoundingBox {
	return BoundingBox{X: r.Left, Y: r.Top, Width: r.Width(), Height: r.Height()}
}

// Region converts the box back to detector-style edge coordinates.
func (b BoundingBox) Region() vision.FaceRegion {
	return vision.FaceRegion{Top: b.Y, Right: b.X + b.Width, Bottom: b.Y + b.Height, Left: b.X}
}

// Match is one recognized identity in a processed image.
type Match struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Confidence  float64     `json:"confidence"`
	Color       string      `json:"color"`
	FaceIndex   int         `json:"face_index"`
	BoundingBox BoundingBox `json:"bounding_box"`
}

// AnnotateResult carries the fully rendered image plus the identities drawn
// onto it.
type AnnotateResult struct {
	Image   *image.NRGBA
	Matches []Match
}

// DetectResult lists every detected face and the matched subset, without any
// rendering.
type DetectResult struct {
	Faces   []BoundingBox
	Matches []Match
}

// CutoutResult holds the transparent subject cutout and the stylized
// presentation card built around it.
type CutoutResult struct {
	Cutout       *image.NRGBA
	Presentation *image.NRGBA
}

// Background is the vertical gradient anchor pair behind a presentation card.
type Background struct {
	Top    color.NRGBA
	Bottom color.NRGBA
}
