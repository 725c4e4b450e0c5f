// Package glyph defines the glyph-extractor collaborator interface and an
// implementation built on golang.org/x/image/font, mirroring the
// ximageParser/ximageParsedFont split found in the text package this
// module grew out of.
package glyph

// Metrics describes a single glyph's rasterized dimensions and placement,
// all in pixels relative to the baseline origin. XScale/YScale are set
// only when the extractor had to shrink the glyph to fit its cell; a zero
// value means no scaling was applied (callers should treat it as 1).
type Metrics struct {
	Width, Height      int
	HAdvance, VAdvance float64
	XMin, YMin         float64
	XMax, YMax         float64
	XScale, YScale     float64
}

// FontMetrics describes face-wide vertical metrics, in pixels, at the
// extractor's current font size.
type FontMetrics struct {
	Ascent        int
	Descent       int
	LineGap       int
	LineHeight    int
	ContentHeight int
}

// Extractor produces per-character metrics and alpha bitmaps at a fixed
// pixel size. Implementations are free to cache rasterized faces, but must
// be safe to call repeatedly for the same character (see the atlas
// package's reliance on get-glyph-on-every-layout-pass).
type Extractor interface {
	// SetFontSize changes the pixel size glyphs are rasterized at.
	SetFontSize(px float64)
	// Exist reports whether the font has a glyph for ch.
	Exist(ch rune) bool
	// GetGlyphMetrics returns ch's metrics without rasterizing a bitmap.
	GetGlyphMetrics(ch rune) (Metrics, error)
	// FontMetrics returns face-wide vertical metrics at the current size.
	FontMetrics() FontMetrics
	// GetBitmapAndMetrics rasterizes ch to an 8-bit alpha bitmap
	// (row-major, length Width*Height) and returns it with its metrics.
	GetBitmapAndMetrics(ch rune) ([]byte, Metrics, error)
}
