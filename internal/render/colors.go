package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseHex converts a "#RRGGBB" string to an opaque color. The leading
// hash is optional and hex digits may be in either case.
func ParseHex(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q", s)
	}

	return color.NRGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}, nil
}

// HexString converts a color to its "#RRGGBB" form. Alpha is dropped.
func HexString(c color.NRGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
