// Package layout flows styled text runs into glyph quads: one GlyphVertices
// triple (fill, stroke, shadow) per character, wrapped and clipped to a
// caller-supplied box.
package layout

import (
	"math"

	"github.com/Icemic/huozi/atlas"
	"github.com/Icemic/huozi/internal/colorspace"
	"github.com/Icemic/huozi/internal/constants"
	"github.com/Icemic/huozi/markup"
	"github.com/Icemic/huozi/style"
)

// LayoutDirection selects the writing direction text flows in.
type LayoutDirection int

const (
	// Horizontal lays text left-to-right, top-to-bottom. The only
	// direction Layout implements.
	Horizontal LayoutDirection = iota
	// Vertical (top-to-bottom columns) is reserved and not implemented.
	Vertical
)

// String implements fmt.Stringer.
func (d LayoutDirection) String() string {
	if d == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// LayoutStyle is the setting of the full text in a box, also known as a
// text window.
type LayoutStyle struct {
	// Direction is the writing direction of text in the box. Only
	// Horizontal is implemented; Vertical is reserved.
	Direction LayoutDirection
	// BoxWidth is the width of the box, in the same units as a run's
	// FontSize.
	BoxWidth float64
	// BoxHeight is the height of the box.
	BoxHeight float64
	// GlyphGridSize is the size of the glyph grid each character is fit
	// to; usually equal to a run's FontSize.
	GlyphGridSize float64
}

// DefaultLayoutStyle returns a 1280x720 box with a 24px glyph grid.
func DefaultLayoutStyle() LayoutStyle {
	return LayoutStyle{
		Direction:     Horizontal,
		BoxWidth:      1280,
		BoxHeight:     720,
		GlyphGridSize: 24,
	}
}

// Vertex is one corner of a glyph quad, ready to upload to a GPU vertex
// buffer. Buffer/FillBuffer/Gamma are SDF shader thresholds, not geometry.
type Vertex struct {
	Position   [3]float32
	TexCoords  [2]float32
	Page       int32
	Buffer     float32
	FillBuffer float32
	Gamma      float32
	Color      [4]float32
}

// GlyphVertices holds the up-to-three layered quads for a single character
// (fill is always populated; stroke/shadow are empty unless the run's style
// requested them), plus its position in the flowed layout. Draw shadow,
// then stroke, then fill.
type GlyphVertices struct {
	Shadow []Vertex
	Stroke []Vertex
	Fill   []Vertex
	// Indices orders each quad's two triangles: {0,1,2,0,2,3}, same for
	// every layer.
	Indices []uint16

	// Col and Row are the character's position along and across the
	// direction of text flow.
	Col, Row uint32
	// X and Y are the top-left corner of the character's bounding box.
	X, Y uint32
	// Width and Height are the size of the bounding box.
	Width, Height uint32
	// ScaleRatio is the run's FontSize relative to constants.FontSize.
	ScaleRatio float32
}

// SegmentGlyphSpan records which half-open range [Start,End) of a Layout
// call's returned []GlyphVertices was produced from a given segment.
type SegmentGlyphSpan struct {
	SegmentID  markup.SegmentID
	Start, End int
}

// GlyphSource resolves characters to atlas-resident glyphs. *atlas.Atlas
// satisfies it; Layout depends on the interface so it doesn't need to
// import the concrete atlas type for anything but the return value.
type GlyphSource interface {
	GetGlyph(ch rune) atlas.Glyph
}

var quadIndices = []uint16{0, 1, 2, 0, 2, 3}

// Layout flows spans into glyph quads within layoutStyle's box, wrapping a
// line when the next character would cross BoxWidth and truncating the
// whole call when a line would cross BoxHeight. It returns the glyph quads
// in source order, the glyph-index ranges contributed by each distinct
// segment (in source order, partitioning the result disjointly), and the
// overall flowed width/height scaled to each run's own FontSize.
func Layout(layoutStyle LayoutStyle, spans []style.TextSpan, space colorspace.ColorSpace, glyphs GlyphSource) ([]GlyphVertices, []SegmentGlyphSpan, uint32, uint32) {
	const fontSize = float64(constants.FontSize)
	const gridSize = float64(constants.GridSize)
	const ascent = float64(constants.Ascent)

	var totalWidth, totalHeight float64

	var currentX float64
	if len(spans) > 0 && len(spans[0].Runs) > 0 {
		currentX = spans[0].Runs[0].Style.Indent * fontSize
	}
	var currentY float64
	var currentCol, currentRow uint32

	maxWidth := layoutStyle.BoxWidth
	maxHeight := layoutStyle.BoxHeight

	var glyphVertices []GlyphVertices
	var segmentSpans []SegmentGlyphSpan
	var currentSegmentID markup.SegmentID
	haveCurrentSegment := false
	currentSegmentStart := 0

	closeSegment := func() {
		if haveCurrentSegment {
			segmentSpans = append(segmentSpans, SegmentGlyphSpan{
				SegmentID: currentSegmentID,
				Start:     currentSegmentStart,
				End:       len(glyphVertices),
			})
		}
	}

outer:
	for _, span := range spans {
		for _, run := range span.Runs {
			st := run.Style
			segID := run.SourceRange.SegmentID

			if !haveCurrentSegment || segID != currentSegmentID {
				closeSegment()
				currentSegmentID = segID
				haveCurrentSegment = true
				currentSegmentStart = len(glyphVertices)
			}

			// Buffer value depends on color space due to gamma correction:
			// linear 0.5 corresponds to sRGB 0.735357.
			buffer := 0.5
			if space == colorspace.SRGB {
				buffer = 0.735357
			}
			// A value well above 1.0 means "never remove the fill's inner
			// part"; anti-aliasing needs a little headroom above 1.0.
			const fillBuffer = 2.0
			gamma64 := constants.GammaCoefficient * 0.6 / 2 / (st.FontSize / fontSize)
			fillColor := colorspace.Value(st.FillColor, space)

			var totalWidthOfRun float64

			for _, ch := range run.Text {
				g := glyphs.GetGlyph(ch)
				metrics := g.Metrics

				if ch == '\n' || ch == '\r' {
					totalWidthOfRun = math.Max(totalWidthOfRun, currentX)
					currentX = st.Indent * fontSize
					currentY += fontSize * st.LineHeight
					currentCol = 0
					currentRow++

					if currentY/fontSize*st.FontSize >= maxHeight {
						totalHeightOfRun := currentY + fontSize*st.LineHeight
						totalWidth = math.Max(totalWidth, totalWidthOfRun/fontSize*st.FontSize)
						totalHeight += totalHeightOfRun / fontSize * st.FontSize
						break outer
					}
					continue
				}

				hAdvance := metrics.HAdvance

				if (currentX+hAdvance)/fontSize*st.FontSize >= maxWidth {
					totalWidthOfRun = maxWidth * fontSize / st.FontSize
					currentX = 0
					currentY += fontSize * st.LineHeight
					currentCol = 0
					currentRow++

					if currentY/fontSize*st.FontSize >= maxHeight {
						totalHeightOfRun := currentY + fontSize*st.LineHeight
						totalWidth = math.Max(totalWidth, totalWidthOfRun/fontSize*st.FontSize)
						totalHeight += totalHeightOfRun / fontSize * st.FontSize
						break outer
					}
				}

				xScale := metrics.XScale
				if xScale == 0 {
					xScale = 1
				}
				yScale := metrics.YScale
				if yScale == 0 {
					yScale = 1
				}

				actualWidth := float64(metrics.Width) / xScale
				actualHeight := float64(metrics.Height) / yScale

				gridScaleRatioW := 1.0
				const gridScaleRatioH = 1.0
				actualScaleRatio := st.FontSize / fontSize

				// Scale the character so its width fulfills a fixed
				// multiple of FontSize (half of it for the en dash,
				// one to three for the longer dashes). Dash glyphs are usually
				// rasterized far narrower than the width they're meant to
				// occupy in running text.
				switch ch {
				case '—', '―':
					gridScaleRatioW = fontSize / actualWidth
					hAdvance = fontSize
				case '⸺':
					gridScaleRatioW = fontSize * 2 / actualWidth
					hAdvance = fontSize * 2
				case '–':
					gridScaleRatioW = fontSize / 2 / actualWidth
					hAdvance = fontSize / 2
				case '⸻':
					gridScaleRatioW = fontSize * 3 / actualWidth
					hAdvance = fontSize * 3
				}

				offsetX := currentX*actualScaleRatio - (gridSize*float64(g.GridCount)/2/xScale-actualWidth/2-metrics.XMin)*actualScaleRatio*gridScaleRatioW
				offsetY := currentY*actualScaleRatio - (gridSize/2/yScale-actualHeight/2-ascent+metrics.YMax)*actualScaleRatio*gridScaleRatioH

				actualGridSizeW := gridSize * float64(g.GridCount) * actualScaleRatio * gridScaleRatioW / xScale
				actualGridSizeH := gridSize * actualScaleRatio * gridScaleRatioH / yScale

				tx := offsetX / constants.ViewportWidth
				ty := offsetY / constants.ViewportHeight
				w0 := actualGridSizeW / constants.ViewportWidth
				h0 := actualGridSizeH / constants.ViewportHeight

				// top-left, bottom-left, bottom-right, top-right.
				p0x, p0y := float32(tx), float32(ty)
				p1x, p1y := float32(tx), float32(h0+ty)
				p2x, p2y := float32(w0+tx), float32(h0+ty)
				p3x, p3y := float32(w0+tx), float32(ty)

				page := int32(g.Page)
				fillVerts := []Vertex{
					{Position: [3]float32{p0x, p0y, 0}, TexCoords: [2]float32{g.UMin, g.VMin}, Page: page, Buffer: float32(buffer), FillBuffer: fillBuffer, Gamma: float32(gamma64), Color: fillColor},
					{Position: [3]float32{p1x, p1y, 0}, TexCoords: [2]float32{g.UMin, g.VMax}, Page: page, Buffer: float32(buffer), FillBuffer: fillBuffer, Gamma: float32(gamma64), Color: fillColor},
					{Position: [3]float32{p2x, p2y, 0}, TexCoords: [2]float32{g.UMax, g.VMax}, Page: page, Buffer: float32(buffer), FillBuffer: fillBuffer, Gamma: float32(gamma64), Color: fillColor},
					{Position: [3]float32{p3x, p3y, 0}, TexCoords: [2]float32{g.UMax, g.VMin}, Page: page, Buffer: float32(buffer), FillBuffer: fillBuffer, Gamma: float32(gamma64), Color: fillColor},
				}

				var strokeVerts []Vertex
				if st.Stroke != nil {
					baseBuffer := 0.7
					if space == colorspace.Linear {
						baseBuffer = 0.448
					}
					strokeColor := colorspace.Value(st.Stroke.StrokeColor, space)
					sBuffer64 := baseBuffer - constants.GammaCoefficient*st.Stroke.StrokeWidth/2/(st.FontSize/fontSize)*xScale/gridScaleRatioW
					sBuffer64 = math.Max(sBuffer64, gamma64)

					strokeVerts = []Vertex{
						{Position: [3]float32{p0x, p0y, 0}, TexCoords: [2]float32{g.UMin, g.VMin}, Page: page, Buffer: float32(sBuffer64), FillBuffer: float32(buffer), Gamma: float32(gamma64), Color: strokeColor},
						{Position: [3]float32{p1x, p1y, 0}, TexCoords: [2]float32{g.UMin, g.VMax}, Page: page, Buffer: float32(sBuffer64), FillBuffer: float32(buffer), Gamma: float32(gamma64), Color: strokeColor},
						{Position: [3]float32{p2x, p2y, 0}, TexCoords: [2]float32{g.UMax, g.VMax}, Page: page, Buffer: float32(sBuffer64), FillBuffer: float32(buffer), Gamma: float32(gamma64), Color: strokeColor},
						{Position: [3]float32{p3x, p3y, 0}, TexCoords: [2]float32{g.UMax, g.VMin}, Page: page, Buffer: float32(sBuffer64), FillBuffer: float32(buffer), Gamma: float32(gamma64), Color: strokeColor},
					}
				}

				var shadowVerts []Vertex
				if st.Shadow != nil {
					baseBuffer := 0.7
					if space == colorspace.Linear {
						baseBuffer = 0.448
					}
					shadowColor := colorspace.Value(st.Shadow.ShadowColor, space)

					// If the fill is fully transparent there's nothing to
					// cast the shadow from, so keep the fill-suppressing
					// threshold instead of widening it.
					sFillBuffer := fillBuffer
					if fillColor[3] <= 0 {
						sFillBuffer = buffer
					}
					sBuffer64 := baseBuffer - constants.GammaCoefficient*st.Shadow.ShadowWidth/2/(st.FontSize/fontSize)*xScale/gridScaleRatioW
					sGamma64 := constants.GammaCoefficient * st.Shadow.ShadowBlur / 2 / (st.FontSize / fontSize * 2) * xScale / gridScaleRatioW
					sBuffer64 = math.Max(sBuffer64, sGamma64)

					offX := float32(st.Shadow.ShadowOffsetX / constants.ViewportWidth * 2)
					offY := float32(st.Shadow.ShadowOffsetY / constants.ViewportHeight * 2)

					shadowVerts = []Vertex{
						{Position: [3]float32{p0x + offX, p0y + offY, 0}, TexCoords: [2]float32{g.UMin, g.VMin}, Page: page, Buffer: float32(sBuffer64), FillBuffer: float32(sFillBuffer), Gamma: float32(sGamma64), Color: shadowColor},
						{Position: [3]float32{p1x + offX, p1y + offY, 0}, TexCoords: [2]float32{g.UMin, g.VMax}, Page: page, Buffer: float32(sBuffer64), FillBuffer: float32(sFillBuffer), Gamma: float32(sGamma64), Color: shadowColor},
						{Position: [3]float32{p2x + offX, p2y + offY, 0}, TexCoords: [2]float32{g.UMax, g.VMax}, Page: page, Buffer: float32(sBuffer64), FillBuffer: float32(sFillBuffer), Gamma: float32(sGamma64), Color: shadowColor},
						{Position: [3]float32{p3x + offX, p3y + offY, 0}, TexCoords: [2]float32{g.UMax, g.VMin}, Page: page, Buffer: float32(sBuffer64), FillBuffer: float32(sFillBuffer), Gamma: float32(sGamma64), Color: shadowColor},
					}
				}

				glyphVertices = append(glyphVertices, GlyphVertices{
					Fill:       fillVerts,
					Stroke:     strokeVerts,
					Shadow:     shadowVerts,
					Indices:    quadIndices,
					Col:        currentCol,
					Row:        currentRow,
					X:          uint32(math.Round(currentX)),
					Y:          uint32(math.Round(currentY)),
					Width:      uint32(math.Round(hAdvance)),
					Height:     uint32(math.Round(fontSize * st.LineHeight)),
					ScaleRatio: float32(actualScaleRatio),
				})

				currentX += hAdvance
				currentCol++
			}

			totalWidthOfRun = math.Max(totalWidthOfRun, currentX)
			totalHeightOfRun := currentY + fontSize*st.LineHeight

			totalWidth = math.Max(totalWidth, totalWidthOfRun/fontSize*st.FontSize)
			totalHeight += totalHeightOfRun / fontSize * st.FontSize
		}
	}

	closeSegment()

	return glyphVertices, segmentSpans, uint32(math.Round(totalWidth)), uint32(math.Round(totalHeight))
}
