package imaging

import (
	"fmt"
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// White is the default flat fill for lesion redaction.
var White = RGBColor{R: 255, G: 255, B: 255}

// NRGBA returns the opaque color.NRGBA for c.
func (c RGBColor) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// Hex formats c as "#RRGGBB".
func (c RGBColor) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// ParseHexColor parses "#RRGGBB", "RRGGBB" or the short "#RGB" form.
func ParseHexColor(hex string) (RGBColor, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return RGBColor{}, fmt.Errorf("empty color string")
	}
	if hex[0] != '#' {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return RGBColor{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return RGBColor{R: r, G: g, B: b}, nil
}

// MustParseHexColor is ParseHexColor for package-level palettes; it panics
// on malformed input.
func MustParseHexColor(hex string) RGBColor {
	c, err := ParseHexColor(hex)
	if err != nil {
		panic(err)
	}
	return c
}
