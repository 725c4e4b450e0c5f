// Package style holds the styled-run data model (TextStyle, StrokeStyle,
// ShadowStyle, TextRun, TextSpan) and the element-to-run elaborator that
// folds a markup.Element forest into a flat, styled sequence of runs.
package style

import (
	"encoding/json"
	"fmt"

	"github.com/Icemic/huozi/markup"
	"github.com/mazznoer/csscolorparser"
)

// StrokeStyle describes an outline drawn around a glyph's fill.
type StrokeStyle struct {
	StrokeColor csscolorparser.Color `json:"strokeColor"`
	StrokeWidth float64              `json:"strokeWidth"`
}

// DefaultStrokeStyle returns the stroke defaults: opaque white, 3px wide.
func DefaultStrokeStyle() StrokeStyle {
	return StrokeStyle{
		StrokeColor: csscolorparser.Color{R: 1, G: 1, B: 1, A: 1},
		StrokeWidth: 3,
	}
}

type strokeStyleJSON struct {
	StrokeColor *string  `json:"strokeColor"`
	StrokeWidth *float64 `json:"strokeWidth"`
}

// UnmarshalJSON parses a partial JSON object, leaving any field absent
// from the input at its current (pre-populated) value, mirroring serde's
// `#[serde(default)]` merge-over-defaults behavior.
func (s *StrokeStyle) UnmarshalJSON(data []byte) error {
	var aux strokeStyleJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.StrokeColor != nil {
		c, err := csscolorparser.Parse(*aux.StrokeColor)
		if err != nil {
			return fmt.Errorf("style: invalid strokeColor %q: %w", *aux.StrokeColor, err)
		}
		s.StrokeColor = c
	}
	if aux.StrokeWidth != nil {
		s.StrokeWidth = *aux.StrokeWidth
	}
	return nil
}

// ShadowStyle describes a drop shadow rendered behind a glyph's fill.
type ShadowStyle struct {
	ShadowColor   csscolorparser.Color `json:"shadowColor"`
	ShadowOffsetX float64              `json:"shadowOffsetX"`
	ShadowOffsetY float64              `json:"shadowOffsetY"`
	ShadowBlur    float64              `json:"shadowBlur"`
	ShadowWidth   float64              `json:"shadowWidth"`
}

// DefaultShadowStyle returns the shadow defaults: translucent grey,
// offset by (1,1), 8px blur, 3px width.
func DefaultShadowStyle() ShadowStyle {
	return ShadowStyle{
		ShadowColor:   csscolorparser.Color{R: 0.5, G: 0.5, B: 0.5, A: 0.8},
		ShadowOffsetX: 1,
		ShadowOffsetY: 1,
		ShadowBlur:    8,
		ShadowWidth:   3,
	}
}

type shadowStyleJSON struct {
	ShadowColor   *string  `json:"shadowColor"`
	ShadowOffsetX *float64 `json:"shadowOffsetX"`
	ShadowOffsetY *float64 `json:"shadowOffsetY"`
	ShadowBlur    *float64 `json:"shadowBlur"`
	ShadowWidth   *float64 `json:"shadowWidth"`
}

// UnmarshalJSON implements the same default-merging behavior as
// StrokeStyle.UnmarshalJSON.
func (s *ShadowStyle) UnmarshalJSON(data []byte) error {
	var aux shadowStyleJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.ShadowColor != nil {
		c, err := csscolorparser.Parse(*aux.ShadowColor)
		if err != nil {
			return fmt.Errorf("style: invalid shadowColor %q: %w", *aux.ShadowColor, err)
		}
		s.ShadowColor = c
	}
	if aux.ShadowOffsetX != nil {
		s.ShadowOffsetX = *aux.ShadowOffsetX
	}
	if aux.ShadowOffsetY != nil {
		s.ShadowOffsetY = *aux.ShadowOffsetY
	}
	if aux.ShadowBlur != nil {
		s.ShadowBlur = *aux.ShadowBlur
	}
	if aux.ShadowWidth != nil {
		s.ShadowWidth = *aux.ShadowWidth
	}
	return nil
}

// TextStyle is the full set of per-run styling attributes a markup tag
// can mutate: size, fill color, line height, paragraph indent, and
// optional stroke/shadow decorations.
type TextStyle struct {
	FontSize   float64              `json:"fontSize"`
	FillColor  csscolorparser.Color `json:"fillColor"`
	LineHeight float64              `json:"lineHeight"`
	Indent     float64              `json:"indent"`
	Stroke     *StrokeStyle         `json:"stroke,omitempty"`
	Shadow     *ShadowStyle         `json:"shadow,omitempty"`
}

// DefaultTextStyle returns the style a run starts with absent any markup:
// 32px, opaque black fill, 1.5 line height, no indent, no stroke/shadow.
func DefaultTextStyle() TextStyle {
	return TextStyle{
		FontSize:   32,
		FillColor:  csscolorparser.Color{R: 0, G: 0, B: 0, A: 1},
		LineHeight: 1.5,
		Indent:     0,
	}
}

// SpanID identifies a TextSpan, mirroring markup.SegmentID's Tag/Lite
// shape.
type SpanID struct {
	tag     string
	lite    uint32
	hasTag  bool
	isValid bool
}

// TagSpanID builds a string-keyed SpanID.
func TagSpanID(tag string) SpanID { return SpanID{tag: tag, hasTag: true, isValid: true} }

// LiteSpanID builds a small-integer SpanID.
func LiteSpanID(n uint32) SpanID { return SpanID{lite: n, isValid: true} }

// IsZero reports whether id is the zero value (no span id set).
func (id SpanID) IsZero() bool { return !id.isValid }

func (id SpanID) String() string {
	if !id.isValid {
		return "<none>"
	}
	if id.hasTag {
		return id.tag
	}
	return fmt.Sprintf("#%d", id.lite)
}

// SourceRange locates the text a TextRun was extracted from, in byte
// offsets into its originating segment.
type SourceRange struct {
	SegmentID markup.SegmentID
	Start     int
	End       int
}

// TextRun is a maximal contiguous substring sharing a single TextStyle.
type TextRun struct {
	Text        string
	Style       TextStyle
	SourceRange SourceRange
}

// TextSpan groups the runs produced between two span boundaries (a
// `[span]`/empty tag, or the top and bottom of the element forest).
type TextSpan struct {
	Runs   []TextRun
	SpanID SpanID
}
