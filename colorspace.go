package huozi

import (
	"github.com/mazznoer/csscolorparser"

	"github.com/Icemic/huozi/internal/colorspace"
)

// ParseColor parses a CSS color string: #rgb/#rrggbb/#rrggbbaa, named
// colors, and rgb()/rgba()/hsl()/hsla() functional notation.
func ParseColor(s string) (csscolorparser.Color, error) {
	return csscolorparser.Parse(s)
}

// ColorSpace selects how fill/stroke/shadow colors and the SDF shader
// threshold constants are computed.
//
// The type lives in internal/colorspace so the layout package can use it
// without importing this root package; ColorSpace and its constants are
// re-exported here unchanged.
type ColorSpace = colorspace.ColorSpace

const (
	// ColorSpaceLinear shades in linear light. The SDF buffer threshold is
	// the industry-standard 0.5 (Mapbox and others use this directly).
	ColorSpaceLinear = colorspace.Linear
	// ColorSpaceSRGB shades in gamma-encoded sRGB space. The SDF buffer
	// threshold 0.735357 is the precise theoretical conversion of the
	// linear-space 0.5 through the sRGB transfer function.
	ColorSpaceSRGB = colorspace.SRGB
)

// ColorValue returns the 4-float RGBA representation of c in the requested
// color space.
func ColorValue(c csscolorparser.Color, space ColorSpace) [4]float32 {
	return colorspace.Value(c, space)
}
