// Package huozi assembles the glyph atlas, font extractor, markup parser,
// style elaborator and layout engine into a single entry point for turning
// styled, markup-annotated text into GPU-ready glyph vertices.
package huozi

import (
	"fmt"
	"image"

	"github.com/Icemic/huozi/atlas"
	"github.com/Icemic/huozi/glyph"
	"github.com/Icemic/huozi/internal/constants"
	"github.com/Icemic/huozi/layout"
	"github.com/Icemic/huozi/markup"
	"github.com/Icemic/huozi/style"
)

// Huozi owns a font extractor and its glyph atlas. It is not safe for
// concurrent use from multiple goroutines: every operation runs to
// completion on the calling goroutine, and the atlas, its cache and the
// image-version counter are exclusively owned by the instance. Callers
// needing parallelism should build one Huozi per goroutine.
type Huozi struct {
	extractor glyph.Extractor
	atlas     *atlas.Atlas

	parsers map[[2]rune]*markup.Parser
}

// New parses fontBytes and builds the glyph atlas around it, rasterizing
// at the package's fixed FontSize.
func New(fontBytes []byte) (*Huozi, error) {
	extractor, err := glyph.NewXImageExtractor(fontBytes, float64(constants.FontSize))
	if err != nil {
		return nil, fmt.Errorf("huozi: %w", err)
	}

	a, err := atlas.New(atlas.Config{
		GridSize:    constants.GridSize,
		TextureSize: constants.TextureSize,
		Buffer:      constants.Buffer,
		Radius:      constants.Radius,
		Cutoff:      constants.Cutoff,
	}, extractor)
	if err != nil {
		return nil, fmt.Errorf("huozi: %w", err)
	}

	return &Huozi{
		extractor: extractor,
		atlas:     a,
		parsers:   map[[2]rune]*markup.Parser{},
	}, nil
}

// parserFor returns the cached Parser for a bracket pair, building and
// caching one on first use. A single process is expected to settle on one
// bracket pair for its lifetime; this just avoids rebuilding the Parser on
// every call.
func (h *Huozi) parserFor(open, close rune) *markup.Parser {
	key := [2]rune{open, close}
	if p, ok := h.parsers[key]; ok {
		return p
	}
	p := markup.NewWithSymbols(open, close)
	h.parsers[key] = p
	return p
}

// ParseText parses segments with the default '[' / ']' bracket pair and
// elaborates the result into styled TextSpans.
func (h *Huozi) ParseText(segments []markup.Segment, initial style.TextStyle, prefabs map[string]style.TextStyle) ([]style.TextSpan, error) {
	return h.ParseTextWith('[', ']', segments, initial, prefabs)
}

// ParseTextWith is ParseText with a caller-chosen bracket pair (e.g. '<','>'
// or the Chinese '【','】').
func (h *Huozi) ParseTextWith(open, close rune, segments []markup.Segment, initial style.TextStyle, prefabs map[string]style.TextStyle) ([]style.TextSpan, error) {
	p := h.parserFor(open, close)

	var elements []markup.Element
	for _, seg := range segments {
		elems, err := p.Parse(seg)
		if err != nil {
			return nil, err
		}
		elements = append(elements, elems...)
	}

	return style.Elaborate(elements, initial, prefabs), nil
}

// Layout flows spans into glyph quads within layoutStyle's box, rasterizing
// any glyph the atlas hasn't already cached.
func (h *Huozi) Layout(layoutStyle layout.LayoutStyle, spans []style.TextSpan, colorSpace ColorSpace) ([]layout.GlyphVertices, []layout.SegmentGlyphSpan, uint32, uint32) {
	return layout.Layout(layoutStyle, spans, colorSpace, h.atlas)
}

// LayoutParse parses segments, elaborates them, then lays the result out:
// the composition of ParseText and Layout.
func (h *Huozi) LayoutParse(segments []markup.Segment, layoutStyle layout.LayoutStyle, initial style.TextStyle, colorSpace ColorSpace, prefabs map[string]style.TextStyle) ([]layout.GlyphVertices, []layout.SegmentGlyphSpan, uint32, uint32, error) {
	spans, err := h.ParseText(segments, initial, prefabs)
	if err != nil {
		return nil, nil, 0, 0, err
	}
	verts, spanRanges, w, ht := h.Layout(layoutStyle, spans, colorSpace)
	return verts, spanRanges, w, ht, nil
}

// LayoutParseWith is LayoutParse with a caller-chosen bracket pair.
func (h *Huozi) LayoutParseWith(open, close rune, segments []markup.Segment, layoutStyle layout.LayoutStyle, initial style.TextStyle, colorSpace ColorSpace, prefabs map[string]style.TextStyle) ([]layout.GlyphVertices, []layout.SegmentGlyphSpan, uint32, uint32, error) {
	spans, err := h.ParseTextWith(open, close, segments, initial, prefabs)
	if err != nil {
		return nil, nil, 0, 0, err
	}
	verts, spanRanges, w, ht := h.Layout(layoutStyle, spans, colorSpace)
	return verts, spanRanges, w, ht, nil
}

// FontMetrics returns the extractor's face-wide vertical metrics at the
// package's fixed FontSize.
func (h *Huozi) FontMetrics() glyph.FontMetrics {
	return h.extractor.FontMetrics()
}

// Preload rasterizes every rune in charset into the atlas ahead of time, up
// to MaxPreloadChars per call.
func (h *Huozi) Preload(charset string) {
	h.atlas.Preload(charset, MaxPreloadChars)
}

// TextureImage returns the atlas's backing RGBA texture: 2048x2048, four
// independent SDF pages in the R, G, B and A channels. Callers must not
// mutate it; it changes in place on every atlas write.
func (h *Huozi) TextureImage() *image.RGBA {
	return h.atlas.TextureImage()
}

// ImageVersion returns a counter strictly increasing on every atlas write,
// so callers can tell when to re-upload the texture to the GPU.
func (h *Huozi) ImageVersion() uint64 {
	return h.atlas.ImageVersion()
}

// DumpTextureTo writes the current atlas texture to path as a PNG.
func (h *Huozi) DumpTextureTo(path string) error {
	return h.atlas.DumpTextureTo(path)
}
