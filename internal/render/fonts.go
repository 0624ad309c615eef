package render

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// FontSet parses a TTF once and hands out faces at arbitrary sizes.
// Without a configured font file it falls back to a built-in bitmap face
// so label rendering keeps working in minimal deployments.
type FontSet struct {
	ttf *truetype.Font
}

// LoadFontSet reads and parses the TTF at path. An empty path selects
// the built-in fallback face.
func LoadFontSet(path string) (*FontSet, error) {
	if path == "" {
		return &FontSet{}, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is from trusted config
	if err != nil {
		return nil, fmt.Errorf("could not read font file: %w", err)
	}

	ttf, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("could not parse font file %s: %w", path, err)
	}

	return &FontSet{ttf: ttf}, nil
}

// Face returns a font face with glyphs roughly the given pixel height.
func (fs *FontSet) Face(pixels float64) font.Face {
	if fs.ttf == nil {
		return basicfont.Face7x13
	}
	return truetype.NewFace(fs.ttf, &truetype.Options{Size: pixels})
}
