// Package pipeline sequences face detection, gallery matching, person
// segmentation and rendering into the service's three recognition flows.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/celebware/starspot/internal/gallery"
	"github.com/celebware/starspot/internal/render"
	"github.com/celebware/starspot/internal/vision"
)

const (
	annotateEdgeThickness = 5
	annotateGlowSize      = 15
	cutoutEdgeThickness   = 4
	cutoutGlowSize        = 20
)

// fallbackTop anchors the gradient for colors without a configured
// background pair.
var fallbackTop = color.NRGBA{R: 20, G: 20, B: 30, A: 255}

// Pipeline owns the model clients and the identity gallery and runs the
// recognition flows. All fields are read-only after construction, so a single
// instance serves concurrent requests.
type Pipeline struct {
	detector    vision.Detector
	segmenter   vision.Segmenter
	gallery     *gallery.Gallery
	fonts       *render.FontSet
	colors      []string
	backgrounds map[string]Background
}

func New(detector vision.Detector, segmenter vision.Segmenter, g *gallery.Gallery, fonts *render.FontSet, colors []string, backgrounds map[string]Background) *Pipeline {
	return &Pipeline{
		detector:    detector,
		segmenter:   segmenter,
		gallery:     g,
		fonts:       fonts,
		colors:      colors,
		backgrounds: backgrounds,
	}
}

// Gallery exposes the identity gallery backing the pipeline.
func (p *Pipeline) Gallery() *gallery.Gallery { return p.gallery }

// Colors returns the palette in assignment order.
func (p *Pipeline) Colors() []string { return p.colors }

// Annotate draws a glow outline and a name badge for every recognized face
// and reports the matches. src must be the decoded form of imageData, which
// is forwarded verbatim to the detector. Faces that match nothing in the
// gallery are left untouched. Segmentation crops are always taken from the
// unmodified input, so annotations drawn for earlier faces never reach the
// model.
func (p *Pipeline) Annotate(ctx context.Context, src image.Image, imageData []byte) (*AnnotateResult, error) {
	out := render.Clone(src)
	base := render.Clone(src)
	w, h := out.Bounds().Dx(), out.Bounds().Dy()

	faces, err := p.detector.DetectFaces(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("could not detect faces: %w", err)
	}

	matches := make([]Match, 0, len(faces))
	for i, face := range faces {
		m, ok := p.gallery.Match(face.Embedding)
		if !ok {
			continue
		}

		hex := p.colors[len(matches)%len(p.colors)]
		fill, err := render.ParseHex(hex)
		if err != nil {
			return nil, fmt.Errorf("could not parse palette color %q: %w", hex, err)
		}

		region, err := render.EstimatePersonRegion(face.Region, w, h, render.CropFast)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}

		mask, err := p.segmentRegion(ctx, base, region, w, h)
		if err != nil {
			return nil, fmt.Errorf("face %d: %w", i, err)
		}

		render.DrawGlowEdge(out, mask, fill, annotateEdgeThickness, annotateGlowSize)
		render.DrawNameBadge(out, p.fonts, m.Identity.Name, face.Region, fill)

		matches = append(matches, Match{
			ID:          m.Identity.ID,
			Name:        m.Identity.Name,
			Confidence:  m.Confidence,
			Color:       hex,
			FaceIndex:   i,
			BoundingBox: boxFromRegion(face.Region),
		})
	}

	return &AnnotateResult{Image: out, Matches: matches}, nil
}

// Detect matches faces against the gallery without rendering anything.
func (p *Pipeline) Detect(ctx context.Context, imageData []byte) (*DetectResult, error) {
	faces, err := p.detector.DetectFaces(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("could not detect faces: %w", err)
	}

	res := &DetectResult{
		Faces:   make([]BoundingBox, len(faces)),
		Matches: make([]Match, 0, len(faces)),
	}
	for i, face := range faces {
		res.Faces[i] = boxFromRegion(face.Region)

		m, ok := p.gallery.Match(face.Embedding)
		if !ok {
			continue
		}
		res.Matches = append(res.Matches, Match{
			ID:          m.Identity.ID,
			Name:        m.Identity.Name,
			Confidence:  m.Confidence,
			Color:       p.colors[len(res.Matches)%len(p.colors)],
			FaceIndex:   i,
			BoundingBox: res.Faces[i],
		})
	}

	return res, nil
}

// Cutout extracts the subject around a caller-supplied face box and builds
// the presentation card around it.
func (p *Pipeline) Cutout(ctx context.Context, src image.Image, box BoundingBox, name, hexColor string) (*CutoutResult, error) {
	fill, err := render.ParseHex(hexColor)
	if err != nil {
		return nil, fmt.Errorf("could not parse color %q: %w", hexColor, err)
	}

	frame := render.Clone(src)
	region, err := render.EstimatePersonRegion(box.Region(), frame.Bounds().Dx(), frame.Bounds().Dy(), render.CropHighQuality)
	if err != nil {
		return nil, err
	}

	crop := render.Crop(frame, region)
	data, err := encodePNG(crop)
	if err != nil {
		return nil, fmt.Errorf("could not encode person crop: %w", err)
	}

	alpha, err := p.segmentAlpha(ctx, data)
	if err != nil {
		return nil, err
	}

	cutout, err := render.WithAlpha(crop, alpha)
	if err != nil {
		return nil, err
	}

	presentation, err := p.presentationCard(crop, alpha, fill, name)
	if err != nil {
		return nil, err
	}

	return &CutoutResult{Cutout: cutout, Presentation: presentation}, nil
}

// segmentRegion asks the segmenter for a binary mask of one crop of img and
// re-places it into a full-frame mask.
func (p *Pipeline) segmentRegion(ctx context.Context, img *image.NRGBA, region image.Rectangle, w, h int) (*image.Gray, error) {
	crop := render.Crop(img, region)
	data, err := encodePNG(crop)
	if err != nil {
		return nil, fmt.Errorf("could not encode person crop: %w", err)
	}

	res, err := p.segmenter.RemoveBackground(ctx, data, vision.SegmentOptions{OnlyMask: true})
	if err != nil {
		return nil, fmt.Errorf("could not segment person region: %w", err)
	}

	mask, err := render.ToGrayMask(res)
	if err != nil {
		return nil, err
	}
	return render.CompositeMask(mask, w, h, region)
}

// segmentAlpha fetches an alpha matte for the crop. Segmenters that answer
// without an alpha channel get a follow-up plain mask request, so callers
// never see the difference.
func (p *Pipeline) segmentAlpha(ctx context.Context, cropPNG []byte) (*image.Gray, error) {
	res, err := p.segmenter.RemoveBackground(ctx, cropPNG, vision.SegmentOptions{AlphaMatting: true})
	if err != nil {
		return nil, fmt.Errorf("could not segment person crop: %w", err)
	}
	if alpha, ok := render.AlphaMask(res); ok {
		return alpha, nil
	}

	res, err = p.segmenter.RemoveBackground(ctx, cropPNG, vision.SegmentOptions{OnlyMask: true})
	if err != nil {
		return nil, fmt.Errorf("could not segment person crop: %w", err)
	}
	return render.ToGrayMask(res)
}

// presentationCard composes the gradient card: pasted subject, glow outline,
// title caption.
func (p *Pipeline) presentationCard(crop *image.NRGBA, alpha *image.Gray, fill color.NRGBA, name string) (*image.NRGBA, error) {
	cropW, cropH := crop.Bounds().Dx(), crop.Bounds().Dy()

	targetH := cropH
	if scaled := int(1.3 * float64(cropH)); scaled > targetH {
		targetH = scaled
	}
	targetW := cropW
	if scaled := int(0.7 * float64(targetH)); scaled > targetW {
		targetW = scaled
	}

	bg, ok := p.backgrounds[render.HexString(fill)]
	if !ok {
		bg = Background{Top: fallbackTop, Bottom: fill}
	}
	card := render.VerticalGradient(targetW, targetH, bg.Top, bg.Bottom)

	pasteX := (targetW - cropW) / 2
	pasteY := int(0.1 * float64(targetH))
	if pasteY > targetH-cropH {
		pasteY = targetH - cropH
	}
	if pasteY < 0 {
		pasteY = 0
	}
	render.AlphaPaste(card, crop, alpha, image.Pt(pasteX, pasteY))

	mask, err := render.CompositeMask(alpha, targetW, targetH, image.Rect(pasteX, pasteY, pasteX+cropW, pasteY+cropH))
	if err != nil {
		return nil, err
	}
	render.DrawGlowEdge(card, mask, fill, cutoutEdgeThickness, cutoutGlowSize)
	render.DrawTitleCaption(card, p.fonts, name, fill)

	return card, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
