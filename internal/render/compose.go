package render

import (
	"image"
	"image/draw"
)

// Clone returns an independent NRGBA copy of img with its origin moved
// to (0,0). Every pipeline buffer goes through here once so later pixel
// math can index without bounds offsets.
func Clone(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}

// Crop returns an independent copy of the rectangle r of img.
func Crop(img *image.NRGBA, r image.Rectangle) *image.NRGBA {
	return Clone(img.SubImage(r))
}

// WithAlpha returns a copy of img whose alpha channel is replaced by the
// mask, turning an opaque crop into a cutout. Returns a ProcessingError
// when the mask does not match the image dimensions.
func WithAlpha(img *image.NRGBA, mask *image.Gray) (*image.NRGBA, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if mask.Bounds().Dx() != w || mask.Bounds().Dy() != h {
		return nil, processingErrorf("alpha mask is %dx%d, expected %dx%d",
			mask.Bounds().Dx(), mask.Bounds().Dy(), w, h)
	}

	out := Clone(img)
	for y := range h {
		row := out.Pix[y*out.Stride : y*out.Stride+w*4]
		alpha := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		for x := range w {
			row[x*4+3] = alpha[x]
		}
	}

	return out, nil
}

// AlphaPaste blends src onto dst with src's top-left corner at offset,
// weighting each pixel by the mask. The destination stays opaque; only
// its color channels move toward src.
func AlphaPaste(dst *image.NRGBA, src *image.NRGBA, mask *image.Gray, offset image.Point) {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	dw, dh := dst.Bounds().Dx(), dst.Bounds().Dy()

	for y := range h {
		dy := offset.Y + y
		if dy < 0 || dy >= dh {
			continue
		}
		for x := range w {
			dx := offset.X + x
			if dx < 0 || dx >= dw {
				continue
			}

			a := float64(mask.Pix[y*mask.Stride+x]) / 255.0
			s := src.Pix[y*src.Stride+x*4:]
			d := dst.Pix[dy*dst.Stride+dx*4:]

			d[0] = uint8(float64(s[0])*a + float64(d[0])*(1-a))
			d[1] = uint8(float64(s[1])*a + float64(d[1])*(1-a))
			d[2] = uint8(float64(s[2])*a + float64(d[2])*(1-a))
		}
	}
}
