package layout

import (
	"testing"

	"github.com/mazznoer/csscolorparser"

	"github.com/Icemic/huozi/atlas"
	"github.com/Icemic/huozi/glyph"
	"github.com/Icemic/huozi/internal/colorspace"
	"github.com/Icemic/huozi/internal/constants"
	"github.com/Icemic/huozi/markup"
	"github.com/Icemic/huozi/style"
)

// fakeGlyphSource returns a fixed-size glyph for every character so tests
// don't depend on a real font or atlas.
type fakeGlyphSource struct {
	width, height int
	hAdvance      float64
}

func (f fakeGlyphSource) GetGlyph(ch rune) atlas.Glyph {
	return atlas.Glyph{
		Char: ch,
		Metrics: glyph.Metrics{
			Width: f.width, Height: f.height,
			HAdvance: f.hAdvance,
			XMax:     float64(f.width), YMax: float64(f.height),
		},
		GridCount: 1,
		UMin:      0, VMin: 0, UMax: 0.1, VMax: 0.1,
	}
}

func defaultSource() fakeGlyphSource {
	return fakeGlyphSource{width: 48, height: 48, hAdvance: 50}
}

func runOf(text string, st style.TextStyle, segID markup.SegmentID) style.TextRun {
	return style.TextRun{
		Text:        text,
		Style:       st,
		SourceRange: style.SourceRange{SegmentID: segID},
	}
}

func TestLayoutAdvancesMonotonically(t *testing.T) {
	st := style.DefaultTextStyle()
	spans := []style.TextSpan{{Runs: []style.TextRun{runOf("abc", st, markup.SegmentID{})}}}

	verts, _, _, _ := Layout(DefaultLayoutStyle(), spans, colorspace.SRGB, defaultSource())
	if len(verts) != 3 {
		t.Fatalf("expected 3 glyphs, got %d", len(verts))
	}
	for i := 1; i < len(verts); i++ {
		if verts[i].X <= verts[i-1].X {
			t.Errorf("glyph %d X = %d did not advance past glyph %d X = %d", i, verts[i].X, i-1, verts[i-1].X)
		}
		if verts[i].Col != verts[i-1].Col+1 {
			t.Errorf("glyph %d Col = %d, want %d", i, verts[i].Col, verts[i-1].Col+1)
		}
	}
}

func TestLayoutWrapsOnBoxWidth(t *testing.T) {
	st := style.DefaultTextStyle()
	st.FontSize = float64(constants.FontSize)
	spans := []style.TextSpan{{Runs: []style.TextRun{runOf("abcdef", st, markup.SegmentID{})}}}

	ls := DefaultLayoutStyle()
	ls.BoxWidth = 120 // fits ~2 chars of hAdvance 50 at FontSize ratio 1:1

	verts, _, _, _ := Layout(ls, spans, colorspace.SRGB, defaultSource())
	if len(verts) != 6 {
		t.Fatalf("expected all 6 glyphs even after wrap, got %d", len(verts))
	}

	sawWrap := false
	for i := 1; i < len(verts); i++ {
		if verts[i].Row > verts[i-1].Row {
			sawWrap = true
			if verts[i].Col != 0 {
				t.Errorf("glyph after wrap has Col = %d, want 0", verts[i].Col)
			}
		}
	}
	if !sawWrap {
		t.Error("expected at least one line wrap given the narrow box width")
	}
}

func TestLayoutTruncatesOnBoxHeightOverflow(t *testing.T) {
	st := style.DefaultTextStyle()
	st.FontSize = float64(constants.FontSize)
	st.LineHeight = 1
	spans := []style.TextSpan{{Runs: []style.TextRun{runOf("a\nb\nc\nd\ne", st, markup.SegmentID{})}}}

	ls := DefaultLayoutStyle()
	ls.BoxHeight = float64(constants.FontSize) * 2.5 // room for ~2 lines

	verts, _, _, _ := Layout(ls, spans, colorspace.SRGB, defaultSource())
	if len(verts) >= 5 {
		t.Errorf("expected overflow to drop trailing characters, got all %d", len(verts))
	}
	if len(verts) == 0 {
		t.Fatal("expected at least the first characters to be laid out")
	}
}

func TestLayoutDashWidthsAreFontSizeMultiples(t *testing.T) {
	st := style.DefaultTextStyle()
	st.FontSize = float64(constants.FontSize)
	fontSize := float64(constants.FontSize)

	cases := []struct {
		ch   rune
		want float64
	}{
		{'—', fontSize},
		{'―', fontSize},
		{'–', fontSize / 2},
		{'⸺', fontSize * 2},
		{'⸻', fontSize * 3},
	}
	for _, c := range cases {
		spans := []style.TextSpan{{Runs: []style.TextRun{runOf(string(c.ch), st, markup.SegmentID{})}}}
		verts, _, _, _ := Layout(DefaultLayoutStyle(), spans, colorspace.SRGB, defaultSource())
		if len(verts) != 1 {
			t.Fatalf("%q: expected 1 glyph, got %d", c.ch, len(verts))
		}
		if got := float64(verts[0].Width); got != c.want {
			t.Errorf("%q: Width = %v, want %v", c.ch, got, c.want)
		}
	}
}

func TestLayoutSegmentSpanCoverage(t *testing.T) {
	st := style.DefaultTextStyle()
	s1 := markup.TagSegmentID("s1")
	s2 := markup.TagSegmentID("s2")
	spans := []style.TextSpan{{Runs: []style.TextRun{
		runOf("foo", st, s1),
		runOf("bar", st, s2),
	}}}

	verts, segSpans, _, _ := Layout(DefaultLayoutStyle(), spans, colorspace.SRGB, defaultSource())
	if len(verts) != 6 {
		t.Fatalf("expected 6 glyphs, got %d", len(verts))
	}
	if len(segSpans) != 2 {
		t.Fatalf("expected 2 segment spans, got %d: %+v", len(segSpans), segSpans)
	}
	if segSpans[0].SegmentID != s1 || segSpans[0].Start != 0 || segSpans[0].End != 3 {
		t.Errorf("segSpans[0] = %+v, want {s1, 0, 3}", segSpans[0])
	}
	if segSpans[1].SegmentID != s2 || segSpans[1].Start != 3 || segSpans[1].End != 6 {
		t.Errorf("segSpans[1] = %+v, want {s2, 3, 6}", segSpans[1])
	}
}

func TestLayoutOnlyFillWhenNoStrokeOrShadow(t *testing.T) {
	st := style.DefaultTextStyle()
	spans := []style.TextSpan{{Runs: []style.TextRun{runOf("a", st, markup.SegmentID{})}}}

	verts, _, _, _ := Layout(DefaultLayoutStyle(), spans, colorspace.SRGB, defaultSource())
	if len(verts[0].Fill) != 4 {
		t.Errorf("Fill len = %d, want 4", len(verts[0].Fill))
	}
	if len(verts[0].Stroke) != 0 {
		t.Errorf("Stroke len = %d, want 0", len(verts[0].Stroke))
	}
	if len(verts[0].Shadow) != 0 {
		t.Errorf("Shadow len = %d, want 0", len(verts[0].Shadow))
	}
	want := []uint16{0, 1, 2, 0, 2, 3}
	if len(verts[0].Indices) != len(want) {
		t.Fatalf("Indices = %v", verts[0].Indices)
	}
	for i, w := range want {
		if verts[0].Indices[i] != w {
			t.Errorf("Indices[%d] = %d, want %d", i, verts[0].Indices[i], w)
		}
	}
}

func TestLayoutStrokeAndShadowProduceExtraLayers(t *testing.T) {
	st := style.DefaultTextStyle()
	stroke := style.DefaultStrokeStyle()
	st.Stroke = &stroke
	shadow := style.DefaultShadowStyle()
	st.Shadow = &shadow

	spans := []style.TextSpan{{Runs: []style.TextRun{runOf("a", st, markup.SegmentID{})}}}
	verts, _, _, _ := Layout(DefaultLayoutStyle(), spans, colorspace.SRGB, defaultSource())

	if len(verts[0].Stroke) != 4 {
		t.Errorf("Stroke len = %d, want 4", len(verts[0].Stroke))
	}
	if len(verts[0].Shadow) != 4 {
		t.Errorf("Shadow len = %d, want 4", len(verts[0].Shadow))
	}
	offX := shadow.ShadowOffsetX / constants.ViewportWidth * 2
	if got := float64(verts[0].Shadow[0].Position[0] - verts[0].Fill[0].Position[0]); abs(got-offX) > 1e-4 {
		t.Errorf("shadow X offset = %v, want %v", got, offX)
	}
}

func TestLayoutLinearVsSRGBBufferThresholds(t *testing.T) {
	st := style.DefaultTextStyle()
	spans := []style.TextSpan{{Runs: []style.TextRun{runOf("a", st, markup.SegmentID{})}}}

	srgb, _, _, _ := Layout(DefaultLayoutStyle(), spans, colorspace.SRGB, defaultSource())
	linear, _, _, _ := Layout(DefaultLayoutStyle(), spans, colorspace.Linear, defaultSource())

	if srgb[0].Fill[0].Buffer != 0.735357 {
		t.Errorf("sRGB buffer = %v, want 0.735357", srgb[0].Fill[0].Buffer)
	}
	if linear[0].Fill[0].Buffer != 0.5 {
		t.Errorf("linear buffer = %v, want 0.5", linear[0].Fill[0].Buffer)
	}
}

func TestLayoutFillColorMatchesStyle(t *testing.T) {
	st := style.DefaultTextStyle()
	st.FillColor, _ = csscolorparser.Parse("#ff0000")
	spans := []style.TextSpan{{Runs: []style.TextRun{runOf("a", st, markup.SegmentID{})}}}

	verts, _, _, _ := Layout(DefaultLayoutStyle(), spans, colorspace.SRGB, defaultSource())
	c := verts[0].Fill[0].Color
	if c[0] < 0.99 || c[1] > 0.01 || c[2] > 0.01 {
		t.Errorf("Fill color = %v, want red", c)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
