package render

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

const (
	// smoothingSigma matches a 5x5 Gaussian kernel with automatic sigma.
	smoothingSigma = 1.1

	// Glow ring weights: the widest ring starts at the base opacity and
	// each tighter ring gains up to the full gain.
	glowAlphaBase = 0.05
	glowAlphaGain = 0.15
)

// smoothMask softens jagged segmentation borders: one Gaussian pass, then
// a fresh threshold to keep the mask strictly binary.
func smoothMask(mask *image.Gray) *image.Gray {
	blurred := imaging.Blur(mask, smoothingSigma)

	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	for y := range h {
		row := blurred.Pix[y*blurred.Stride : y*blurred.Stride+w*4]
		dst := out.Pix[y*out.Stride : y*out.Stride+w]
		for x := range w {
			if row[x*4] > 127 {
				dst[x] = 255
			}
		}
	}

	return out
}

// DrawGlowEdge outlines the outer silhouette of the mask on img: stacked
// translucent rings build up a glow, then a solid line and a thin white
// highlight trace the edge. The mask may be graded (an alpha channel) or
// binary; holes inside the silhouette are ignored. An empty mask leaves
// the image untouched.
func DrawGlowEdge(img *image.NRGBA, mask *image.Gray, edge color.NRGBA, thickness, glowSize int) {
	silhouette := FillHoles(smoothMask(Binarize(mask, 127)))
	if IsEmpty(silhouette) {
		return
	}

	w, h := silhouette.Bounds().Dx(), silhouette.Bounds().Dy()

	// A ring of line width t around the silhouette covers pixels within
	// t/2 outside the boundary and (t+1)/2 inside it. The two distance
	// maps make every ring test O(1) per pixel.
	paintRing := func(toFG, toBG []int, width int, c color.NRGBA, alpha float64) {
		grow, shrink := width/2, (width+1)/2
		for y := range h {
			for x := range w {
				i := y*w + x
				if toFG[i] > grow || toBG[i] > shrink {
					continue
				}
				o := y*img.Stride + x*4
				if alpha >= 1 {
					img.Pix[o] = c.R
					img.Pix[o+1] = c.G
					img.Pix[o+2] = c.B
					continue
				}
				img.Pix[o] = blendChannel(c.R, img.Pix[o], alpha)
				img.Pix[o+1] = blendChannel(c.G, img.Pix[o+1], alpha)
				img.Pix[o+2] = blendChannel(c.B, img.Pix[o+2], alpha)
			}
		}
	}

	toFG := distanceToForeground(silhouette)
	toBG := distanceToBackground(silhouette)

	// Glow: widest and faintest ring first, tightening inwards.
	for i := glowSize; i > 0; i -= 2 {
		alpha := glowAlphaBase + glowAlphaGain*float64(glowSize-i)/float64(glowSize)
		paintRing(toFG, toBG, thickness+i*2, edge, alpha)
	}

	// Solid edge.
	paintRing(toFG, toBG, thickness, edge, 1)

	// Thin white highlight traced along a one-step dilated silhouette.
	highlight := Dilate(silhouette, 1)
	white := color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	paintRing(distanceToForeground(highlight), distanceToBackground(highlight),
		max(1, thickness/4), white, 1)
}

func blendChannel(over, under uint8, alpha float64) uint8 {
	return uint8(math.Round(alpha*float64(over) + (1-alpha)*float64(under)))
}
