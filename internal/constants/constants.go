// Package constants holds the tuning constants shared by the glyph atlas
// and layout engine. They live here, rather than in the root package, so
// that atlas and layout can use them without importing the root package
// (which would create an import cycle, since the root package imports both
// to assemble the facade). The root package re-exports every constant here
// unchanged.
package constants

const (
	// GridSize is the edge length, in pixels, of a single atlas cell.
	GridSize = 128
	// FontSize is the pixel size glyphs are rasterized at before SDF
	// generation. Runtime font sizes are expressed relative to this.
	FontSize = 96
	// Buffer is the padding, in pixels, around the rasterized glyph within
	// its grid cell, split evenly on each side.
	Buffer = 16
	// Radius is the maximum SDF search radius in pixels; distances beyond
	// it saturate at 0 or 255.
	Radius = 24
	// Cutoff is the normalized distance treated as the glyph edge.
	Cutoff = 0.25
	// TextureSize is the edge length, in pixels, of one atlas page.
	TextureSize = 2048
	// Ascent is the baseline offset, in pixels, within a grid cell.
	Ascent = 112

	// SlotGridCount is the number of cells per atlas page edge.
	SlotGridCount = TextureSize / GridSize
	// SlotsPerPage is the total number of glyph slots on one atlas page.
	SlotsPerPage = SlotGridCount * SlotGridCount

	// GammaCoefficient scales the SDF-to-alpha falloff in the layout
	// vertex formulas.
	GammaCoefficient = 0.06

	// ViewportWidth and ViewportHeight are the reference viewport
	// dimensions the shadow-offset NDC translation is computed against.
	ViewportWidth  = 1.0
	ViewportHeight = 1.0

	// MaxPreloadChars caps how many runes of the charset (repeats included)
	// Preload will process in a single call before logging a truncation
	// warning.
	MaxPreloadChars = 4096
)
