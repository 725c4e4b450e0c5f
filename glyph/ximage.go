package glyph

import (
	"fmt"
	"image"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// XImageExtractor implements Extractor using golang.org/x/image/font and
// its opentype/sfnt parsers. It is the default extractor: the one backend
// the engine always builds with.
type XImageExtractor struct {
	font     *opentype.Font
	face     font.Face
	fontSize float64
}

// NewXImageExtractor parses fontBytes and builds an extractor rasterizing
// at fontSizePx pixels per em.
func NewXImageExtractor(fontBytes []byte, fontSizePx float64) (*XImageExtractor, error) {
	f, err := opentype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("glyph: failed to parse font: %w", err)
	}
	e := &XImageExtractor{font: f}
	if err := e.setFace(fontSizePx); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *XImageExtractor) setFace(px float64) error {
	face, err := opentype.NewFace(e.font, &opentype.FaceOptions{
		Size:    px,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("glyph: failed to build face at size %v: %w", px, err)
	}
	if e.face != nil {
		_ = e.face.Close()
	}
	e.face = face
	e.fontSize = px
	return nil
}

// SetFontSize implements Extractor.
func (e *XImageExtractor) SetFontSize(px float64) {
	// A face failing to rebuild at a new size leaves the extractor at its
	// previous size rather than in a half-initialized state.
	if err := e.setFace(px); err != nil {
		return
	}
}

// Exist implements Extractor.
func (e *XImageExtractor) Exist(ch rune) bool {
	idx, err := e.font.GlyphIndex(nil, ch)
	return err == nil && idx != 0
}

// GetGlyphMetrics implements Extractor.
func (e *XImageExtractor) GetGlyphMetrics(ch rune) (Metrics, error) {
	bounds, advance, ok := e.face.GlyphBounds(ch)
	if !ok {
		return Metrics{}, fmt.Errorf("glyph: no bounds for %q", ch)
	}
	return boundsToMetrics(bounds, advance), nil
}

// FontMetrics implements Extractor.
func (e *XImageExtractor) FontMetrics() FontMetrics {
	m := e.face.Metrics()
	ascent := fixedToInt(m.Ascent)
	descent := fixedToInt(m.Descent)
	lineHeight := fixedToInt(m.Height)
	return FontMetrics{
		Ascent:        ascent,
		Descent:       descent,
		LineGap:       lineHeight - ascent - descent,
		LineHeight:    lineHeight,
		ContentHeight: ascent + descent,
	}
}

// GetBitmapAndMetrics implements Extractor. It applies the scaling
// contract: if the natural raster exceeds the current font size in either
// dimension, it re-rasterizes at a shrunk point size and records the
// scale factor on the returned metrics so downstream layout can shrink
// the on-screen quad to compensate.
func (e *XImageExtractor) GetBitmapAndMetrics(ch rune) ([]byte, Metrics, error) {
	bitmap, metrics, rawWidth, rawHeight, err := e.rasterizeAt(ch, e.fontSize)
	if err != nil {
		return nil, Metrics{}, err
	}

	if rawWidth > int(e.fontSize) {
		scale := e.fontSize / float64(rawWidth)
		bitmap, metrics, _, _, err = e.rasterizeAt(ch, e.fontSize*scale)
		if err != nil {
			return nil, Metrics{}, err
		}
		metrics.XScale, metrics.YScale = scale, scale
	} else if rawHeight > int(e.fontSize) {
		scale := e.fontSize / float64(rawHeight)
		bitmap, metrics, _, _, err = e.rasterizeAt(ch, e.fontSize*scale)
		if err != nil {
			return nil, Metrics{}, err
		}
		metrics.XScale, metrics.YScale = scale, scale
	}

	return bitmap, metrics, nil
}

// rasterizeAt draws ch at the given pixel size using a scratch face,
// returning a flattened row-major alpha bitmap plus the raw (unscaled)
// raster dimensions used for the scaling-contract check.
func (e *XImageExtractor) rasterizeAt(ch rune, px float64) ([]byte, Metrics, int, int, error) {
	face := e.face
	if px != e.fontSize {
		var err error
		face, err = opentype.NewFace(e.font, &opentype.FaceOptions{
			Size:    px,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, Metrics{}, 0, 0, fmt.Errorf("glyph: failed to build scratch face: %w", err)
		}
		defer func() { _ = face.Close() }()
	}

	bounds, advance, ok := face.GlyphBounds(ch)
	if !ok {
		return nil, Metrics{}, 0, 0, fmt.Errorf("glyph: no bounds for %q", ch)
	}

	minX := int(bounds.Min.X) >> 6
	minY := int(bounds.Min.Y) >> 6
	maxX := int(bounds.Max.X+63) >> 6
	maxY := int(bounds.Max.Y+63) >> 6
	width := maxX - minX
	height := maxY - minY
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}

	rect := image.Rect(0, 0, width, height)
	mask := image.NewAlpha(rect)

	drawer := &font.Drawer{
		Dst:  mask,
		Src:  image.White,
		Face: face,
		Dot:  fixed.Point26_6{X: -bounds.Min.X, Y: -bounds.Min.Y},
	}
	drawer.DrawString(string(ch))

	metrics := boundsToMetrics(bounds, advance)
	return mask.Pix, metrics, width, height, nil
}

func boundsToMetrics(bounds fixed.Rectangle26_6, advance fixed.Int26_6) Metrics {
	minX := int(bounds.Min.X) >> 6
	minY := int(bounds.Min.Y) >> 6
	maxX := int(bounds.Max.X+63) >> 6
	maxY := int(bounds.Max.Y+63) >> 6
	width := maxX - minX
	height := maxY - minY
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return Metrics{
		Width:    width,
		Height:   height,
		HAdvance: fixedToFloat64(advance),
		XMin:     float64(minX),
		YMin:     float64(minY),
		XMax:     float64(maxX),
		YMax:     float64(maxY),
	}
}

func fixedToFloat64(x fixed.Int26_6) float64 {
	return float64(x) / 64.0
}

func fixedToInt(x fixed.Int26_6) int {
	return int(x) >> 6
}

var _ Extractor = (*XImageExtractor)(nil)
