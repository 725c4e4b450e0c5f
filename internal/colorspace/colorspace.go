// Package colorspace holds the ColorSpace enum and its color-conversion
// math. It exists only so that the layout package can compute shader
// parameter tables without importing the root package (which would create
// an import cycle, since the root package imports layout to assemble the
// facade). The root package re-exports this package's API as huozi.ColorSpace
// and friends.
package colorspace

import (
	"math"

	"github.com/mazznoer/csscolorparser"
)

// ColorSpace selects how fill/stroke/shadow colors and the SDF shader
// threshold constants are computed. The two tables (buffer 0.5 vs 0.735357,
// base buffer 0.448 vs 0.7) encode the gamma-to-linear relationship at the
// 50% iso-line and must stay bit-exact for visual parity with the reference
// renderer.
type ColorSpace int

const (
	// Linear shades in linear light. The SDF buffer threshold is the
	// industry-standard 0.5 (Mapbox and others use this directly).
	Linear ColorSpace = iota
	// SRGB shades in gamma-encoded sRGB space. The SDF buffer threshold
	// 0.735357 is the precise theoretical conversion of the linear-space
	// 0.5 through the sRGB transfer function.
	SRGB
)

// String implements fmt.Stringer.
func (c ColorSpace) String() string {
	switch c {
	case Linear:
		return "Linear"
	case SRGB:
		return "SRGB"
	default:
		return "Unknown"
	}
}

// Value returns the 4-float RGBA representation of c in the requested color
// space. For SRGB this is simply the color's own components (already
// gamma-encoded); for Linear each channel is converted through the sRGB
// electro-optical transfer function.
func Value(c csscolorparser.Color, space ColorSpace) [4]float32 {
	switch space {
	case Linear:
		return [4]float32{
			float32(srgbToLinear(c.R)),
			float32(srgbToLinear(c.G)),
			float32(srgbToLinear(c.B)),
			float32(c.A),
		}
	default: // SRGB
		return [4]float32{float32(c.R), float32(c.G), float32(c.B), float32(c.A)}
	}
}

// srgbToLinear converts a single gamma-encoded sRGB channel in [0,1] to
// linear light, using the piecewise sRGB transfer function.
func srgbToLinear(v float64) float64 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}
