package vision

// FaceRegion locates one face in pixel coordinates of the source image,
// using the top/right/bottom/left edge convention of the detection service.
type FaceRegion struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// Width returns the horizontal extent of the region.
func (r FaceRegion) Width() int {
	return r.Right - r.Left
}

// Height returns the vertical extent of the region.
func (r FaceRegion) Height() int {
	return r.Bottom - r.Top
}

// Face is one detected face together with its identity embedding.
type Face struct {
	Region    FaceRegion
	Embedding []float32
}
