package render

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/fogleman/gg"

	"github.com/celebware/starspot/internal/vision"
)

// scaleUnitPixels is the glyph pixel height of one text scale unit,
// calibrated against the stroke font the frontend mockups were styled on.
const scaleUnitPixels = 22.0

const (
	badgeFontScale   = 0.9
	badgePaddingX    = 15
	badgePaddingY    = 10
	badgeShadowShift = 3
)

// ringOffsets stamp a string in a small circle to emulate stroke weight.
var ringOffsets = [8][2]float64{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{0.7071, 0.7071}, {-0.7071, 0.7071}, {0.7071, -0.7071}, {-0.7071, -0.7071},
}

func drawWeightedString(dc *gg.Context, s string, x, y float64, weight int) {
	if r := float64((weight - 1) / 2); r > 0 {
		for _, d := range ringOffsets {
			dc.DrawString(s, x+d[0]*r, y+d[1]*r)
		}
	}
	dc.DrawString(s, x, y)
}

// DrawNameBadge draws a color-filled badge with the celebrity's name
// below the face: a drop shadow, the colored pill, a white border and
// white text over a dark text shadow. The badge hugs the bottom image
// edge when the face sits too low for the usual placement.
func DrawNameBadge(img *image.NRGBA, fonts *FontSet, name string, face vision.FaceRegion, fill color.NRGBA) {
	dc := gg.NewContextForImage(img)
	fontFace := fonts.Face(badgeFontScale * scaleUnitPixels)
	dc.SetFontFace(fontFace)

	textW, _ := dc.MeasureString(name)
	metrics := fontFace.Metrics()
	textH := metrics.Ascent.Ceil()
	baseline := metrics.Descent.Ceil()

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	centerX := (face.Left + face.Right) / 2
	labelY := min(face.Bottom+40, h-20)

	x1 := max(0, centerX-int(textW)/2-badgePaddingX)
	x2 := min(w, centerX+int(textW)/2+badgePaddingX)
	y1 := labelY - textH - badgePaddingY
	y2 := labelY + badgePaddingY + baseline

	dc.SetColor(color.NRGBA{R: 30, G: 30, B: 30, A: 255})
	dc.DrawRectangle(float64(x1+badgeShadowShift), float64(y1+badgeShadowShift), float64(x2-x1), float64(y2-y1))
	dc.Fill()

	dc.SetColor(fill)
	dc.DrawRectangle(float64(x1), float64(y1), float64(x2-x1), float64(y2-y1))
	dc.Fill()

	dc.SetColor(color.White)
	dc.SetLineWidth(2)
	dc.DrawRectangle(float64(x1), float64(y1), float64(x2-x1), float64(y2-y1))
	dc.Stroke()

	textX := float64(centerX) - textW/2
	dc.SetColor(color.Black)
	drawWeightedString(dc, name, textX+1, float64(labelY)+1, 3)
	dc.SetColor(color.White)
	drawWeightedString(dc, name, textX, float64(labelY), 2)

	draw.Draw(img, img.Bounds(), dc.Image(), image.Point{}, draw.Src)
}

// DrawTitleCaption writes the celebrity's name in capitals near the
// bottom of a cutout card: layered soft shadows for depth, the name in
// the card color, then a thinner white pass for pop. Text size scales
// with the card so small and large cards read the same.
func DrawTitleCaption(img *image.NRGBA, fonts *FontSet, name string, fill color.NRGBA) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	scale := float64(min(w, h)) / 300.0
	weight := max(2, int(scale*2))
	text := strings.ToUpper(name)

	dc := gg.NewContextForImage(img)
	dc.SetFontFace(fonts.Face(scale * scaleUnitPixels))

	textW, _ := dc.MeasureString(text)
	x := float64((w - int(textW)) / 2)
	y := float64(h - int(float64(h)*0.1))

	for offset := 8; offset > 0; offset -= 2 {
		alpha := 0.3 - float64(offset)*0.03
		dc.SetRGBA(0, 0, 0, alpha)
		drawWeightedString(dc, text, x+float64(offset), y+float64(offset), weight+2)
	}

	dc.SetColor(fill)
	drawWeightedString(dc, text, x, y, weight)

	dc.SetColor(color.White)
	drawWeightedString(dc, text, x, y, max(1, weight/2))

	draw.Draw(img, img.Bounds(), dc.Image(), image.Point{}, draw.Src)
}
