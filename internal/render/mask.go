package render

import (
	"image"
	"image/draw"
)

// AlphaMask extracts the alpha channel of a segmentation result as a
// grayscale mask. The second return value is false when the result
// carries no alpha channel, which tells the caller to request a
// mask-only segmentation instead. PNG decoding keeps alpha-less images
// in RGBA, grayscale or paletted form, so an NRGBA result is exactly an
// image that was delivered with an alpha channel.
func AlphaMask(img image.Image) (*image.Gray, bool) {
	switch src := img.(type) {
	case *image.NRGBA:
		w, h := src.Bounds().Dx(), src.Bounds().Dy()
		mask := image.NewGray(image.Rect(0, 0, w, h))
		for y := range h {
			row := src.Pix[y*src.Stride : y*src.Stride+w*4]
			dst := mask.Pix[y*mask.Stride : y*mask.Stride+w]
			for x := range w {
				dst[x] = row[x*4+3]
			}
		}
		return mask, true
	case *image.NRGBA64:
		w, h := src.Bounds().Dx(), src.Bounds().Dy()
		mask := image.NewGray(image.Rect(0, 0, w, h))
		for y := range h {
			for x := range w {
				c := src.NRGBA64At(src.Bounds().Min.X+x, src.Bounds().Min.Y+y)
				mask.Pix[y*mask.Stride+x] = uint8(c.A >> 8)
			}
		}
		return mask, true
	default:
		return nil, false
	}
}

// ToGrayMask validates a mask-only segmentation result and returns it as
// an 8-bit mask with origin (0,0). Anything that is not single-channel is
// a ProcessingError: a color response means the segmenter ignored the
// mask-only request, and a luma conversion of its cutout would produce a
// meaningless mask.
func ToGrayMask(img image.Image) (*image.Gray, error) {
	switch src := img.(type) {
	case *image.Gray:
		if src.Bounds().Min == (image.Point{}) {
			return src, nil
		}
	case *image.Gray16:
	default:
		return nil, processingErrorf("segmentation mask is %T, expected a single-channel image", img)
	}

	bounds := img.Bounds()
	mask := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(mask, mask.Bounds(), img, bounds.Min, draw.Src)
	return mask, nil
}

// CompositeMask pastes a crop-sized mask into a zeroed full-size mask at
// the crop offset, so the mask lines up with the original image. Returns
// a ProcessingError when the mask does not match the crop dimensions.
func CompositeMask(mask *image.Gray, width, height int, crop image.Rectangle) (*image.Gray, error) {
	mw, mh := mask.Bounds().Dx(), mask.Bounds().Dy()
	if mw != crop.Dx() || mh != crop.Dy() {
		return nil, processingErrorf("segmentation mask is %dx%d, expected %dx%d", mw, mh, crop.Dx(), crop.Dy())
	}

	full := image.NewGray(image.Rect(0, 0, width, height))
	for y := range mh {
		src := mask.Pix[y*mask.Stride : y*mask.Stride+mw]
		dstOff := (crop.Min.Y+y)*full.Stride + crop.Min.X
		copy(full.Pix[dstOff:dstOff+mw], src)
	}

	return full, nil
}
