package render

import (
	"image"
	"image/color"
)

// VerticalGradient renders a top-to-bottom linear gradient between two
// anchor colors, interpolated per row.
func VerticalGradient(width, height int, top, bottom color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))

	for y := range height {
		ratio := float64(y) / float64(height)
		r := uint8(float64(top.R)*(1-ratio) + float64(bottom.R)*ratio)
		g := uint8(float64(top.G)*(1-ratio) + float64(bottom.G)*ratio)
		b := uint8(float64(top.B)*(1-ratio) + float64(bottom.B)*ratio)

		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		for x := range width {
			row[x*4] = r
			row[x*4+1] = g
			row[x*4+2] = b
			row[x*4+3] = 255
		}
	}

	return img
}
