package render

import "image"

// Mask helpers operate on 8-bit grayscale masks where 255 is foreground
// and 0 is background. All masks returned here have their origin at (0,0).

// Binarize thresholds a mask: values strictly above the threshold become
// foreground, everything else background.
func Binarize(mask *image.Gray, threshold uint8) *image.Gray {
	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))

	for y := range h {
		srcRow := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		dstRow := out.Pix[y*out.Stride : y*out.Stride+w]
		for x, v := range srcRow {
			if v > threshold {
				dstRow[x] = 255
			}
		}
	}

	return out
}

// IsEmpty reports whether the mask has no foreground pixels.
func IsEmpty(mask *image.Gray) bool {
	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
	for y := range h {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+w]
		for _, v := range row {
			if v != 0 {
				return false
			}
		}
	}
	return true
}

// Dilate grows the foreground by one pixel per iteration using a 3x3
// neighborhood, matching iterated morphological dilation.
func Dilate(mask *image.Gray, iterations int) *image.Gray {
	if iterations <= 0 {
		return Binarize(mask, 0)
	}

	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
	dist := distanceToForeground(mask)
	out := image.NewGray(image.Rect(0, 0, w, h))

	for i, d := range dist {
		if d <= iterations {
			out.Pix[(i/w)*out.Stride+i%w] = 255
		}
	}

	return out
}

// erode shrinks the foreground by one pixel per iteration using a 3x3
// neighborhood. Pixels outside the image count as foreground, so the
// image border never erodes the mask by itself.
func erode(mask *image.Gray, iterations int) *image.Gray {
	if iterations <= 0 {
		return Binarize(mask, 0)
	}

	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
	dist := distanceToBackground(mask)
	out := image.NewGray(image.Rect(0, 0, w, h))

	for i, d := range dist {
		if d > iterations {
			out.Pix[(i/w)*out.Stride+i%w] = 255
		}
	}

	return out
}

// FillHoles fills background regions enclosed by the foreground so only
// the outer silhouette remains. Background connected to the image border
// is preserved.
func FillHoles(mask *image.Gray) *image.Gray {
	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}

	// Flood-fill the background from the border; 4-connectivity keeps
	// the background complement consistent with 8-connected silhouettes.
	outside := make([]bool, w*h)
	queue := make([]int, 0, 2*(w+h))

	push := func(x, y int) {
		i := y*w + x
		if !outside[i] && mask.Pix[y*mask.Stride+x] == 0 {
			outside[i] = true
			queue = append(queue, i)
		}
	}

	for x := range w {
		push(x, 0)
		push(x, h-1)
	}
	for y := range h {
		push(0, y)
		push(w-1, y)
	}

	for len(queue) > 0 {
		i := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		x, y := i%w, i/w

		if x > 0 {
			push(x-1, y)
		}
		if x < w-1 {
			push(x+1, y)
		}
		if y > 0 {
			push(x, y-1)
		}
		if y < h-1 {
			push(x, y+1)
		}
	}

	for y := range h {
		for x := range w {
			if !outside[y*w+x] {
				out.Pix[y*out.Stride+x] = 255
			}
		}
	}

	return out
}

// distanceToForeground computes the per-pixel Chebyshev distance to the
// nearest foreground pixel with a two-pass chamfer sweep. Foreground
// pixels get distance 0. k iterations of 3x3 dilation cover exactly the
// pixels with distance <= k.
func distanceToForeground(mask *image.Gray) []int {
	return chebyshevDistance(mask, true)
}

// distanceToBackground is the complement: distance to the nearest
// background pixel inside the image. k iterations of 3x3 erosion keep
// exactly the pixels with distance > k.
func distanceToBackground(mask *image.Gray) []int {
	return chebyshevDistance(mask, false)
}

func chebyshevDistance(mask *image.Gray, toForeground bool) []int {
	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
	inf := w + h + 2
	dist := make([]int, w*h)

	for y := range h {
		for x := range w {
			set := mask.Pix[y*mask.Stride+x] != 0
			if set == toForeground {
				dist[y*w+x] = 0
			} else {
				dist[y*w+x] = inf
			}
		}
	}

	// Forward sweep: up-left, up, up-right, left.
	for y := range h {
		for x := range w {
			i := y*w + x
			if y > 0 {
				if x > 0 && dist[i-w-1]+1 < dist[i] {
					dist[i] = dist[i-w-1] + 1
				}
				if dist[i-w]+1 < dist[i] {
					dist[i] = dist[i-w] + 1
				}
				if x < w-1 && dist[i-w+1]+1 < dist[i] {
					dist[i] = dist[i-w+1] + 1
				}
			}
			if x > 0 && dist[i-1]+1 < dist[i] {
				dist[i] = dist[i-1] + 1
			}
		}
	}

	// Backward sweep: down-right, down, down-left, right.
	for y := h - 1; y >= 0; y-- {
		for x := w - 1; x >= 0; x-- {
			i := y*w + x
			if y < h-1 {
				if x < w-1 && dist[i+w+1]+1 < dist[i] {
					dist[i] = dist[i+w+1] + 1
				}
				if dist[i+w]+1 < dist[i] {
					dist[i] = dist[i+w] + 1
				}
				if x > 0 && dist[i+w-1]+1 < dist[i] {
					dist[i] = dist[i+w-1] + 1
				}
			}
			if x < w-1 && dist[i+1]+1 < dist[i] {
				dist[i] = dist[i+1] + 1
			}
		}
	}

	return dist
}
