// Package huozi is a text-layout and glyph-atlas engine for interactive
// graphics.
//
// Given a font file, a marked-up text string, a layout box and style
// information, it produces:
//
//   - an RGBA glyph atlas of signed-distance-field (SDF) images a GPU
//     shader can sample with anti-aliased fill/stroke/shadow, and
//   - per-glyph triangle vertices positioned inside a normalized viewport,
//     together with per-glyph row/column and source-range bookkeeping so a
//     caller can hit-test, highlight or animate individual glyphs.
//
// # Quick start
//
//	h, err := huozi.New(fontBytes)
//	if err != nil {
//		log.Fatal(err)
//	}
//	segments := []markup.Segment{markup.NewSegment("Hello, [color=#f00]world[/color]!")}
//	vertices, spans, w, ht, err := h.LayoutParse(segments, layoutStyle, style.DefaultTextStyle(), huozi.ColorSpaceSRGB, nil)
//
// # Scope
//
// Huozi owns markup parsing, style elaboration, SDF generation, glyph atlas
// packing/eviction and layout. It does not own the GPU pipeline, windowing,
// font rasterization (delegated to the glyph package's Extractor interface)
// or CSS color parsing (delegated to github.com/mazznoer/csscolorparser):
// those are external collaborators a caller supplies or that this library
// wires to a single concrete implementation.
//
// # Concurrency
//
// A *Huozi value is not safe for concurrent use. The atlas, its LRU map and
// the monotonic image version counter are exclusively owned by one facade
// instance; a caller that needs parallel layout must construct one Huozi
// per goroutine, each loading its own copy of the font.
package huozi
