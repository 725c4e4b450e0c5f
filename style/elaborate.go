package style

import (
	"strconv"

	"github.com/Icemic/huozi/internal/logging"
	"github.com/Icemic/huozi/markup"
	"github.com/mazznoer/csscolorparser"
)

// frame is a saved point to resume at once the current element slice is
// exhausted: the remaining siblings, the style active before the push,
// and whether popping it should flush accumulated runs into a new span.
type frame struct {
	elements []markup.Element
	index    int
	style    TextStyle
	isSpan   bool
}

var knownStyleAttrs = map[string]bool{
	"size":          true,
	"color":         true,
	"fillColor":     true,
	"lineHeight":    true,
	"indent":        true,
	"stroke":        true,
	"strokeColor":   true,
	"strokeWidth":   true,
	"shadow":        true,
	"shadowColor":   true,
	"shadowOffsetX": true,
	"shadowOffsetY": true,
	"shadowBlur":    true,
	"shadowWidth":   true,
}

// Elaborate walks elements iteratively (an explicit stack, not recursion,
// so depth is not bound to the host call stack) and folds nested style
// tags into a flat sequence of TextSpans, each holding the TextRuns
// produced between two span boundaries.
//
// prefabs may be nil. A markup tag that is neither "span"/empty, a known
// style attribute with a value, nor a known prefab name falls back to
// acting as a span boundary, with a warning logged through
// huozi.SetLogger.
func Elaborate(elements []markup.Element, initial TextStyle, prefabs map[string]TextStyle) []TextSpan {
	var spans []TextSpan
	var currentRuns []TextRun

	currentElements := elements
	currentIndex := 0
	currentStyle := initial
	var stack []frame

	flush := func() {
		if len(currentRuns) == 0 {
			return
		}
		spans = append(spans, TextSpan{Runs: currentRuns, SpanID: LiteSpanID(0)})
		currentRuns = nil
	}

	for {
		if currentIndex >= len(currentElements) {
			if len(stack) == 0 {
				break
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.isSpan {
				flush()
			}
			currentElements = top.elements
			currentIndex = top.index
			currentStyle = top.style
			continue
		}

		elem := currentElements[currentIndex]
		currentIndex++

		switch elem.Kind {
		case markup.ElementText:
			currentRuns = append(currentRuns, TextRun{
				Text:  elem.Content,
				Style: currentStyle,
				SourceRange: SourceRange{
					SegmentID: elem.SegmentID,
					Start:     elem.Start,
					End:       elem.End,
				},
			})

		case markup.ElementBlock:
			tag := elem.Tag

			switch {
			case tag == "span" || tag == "":
				flush()
				stack = append(stack, frame{elements: currentElements, index: currentIndex, style: currentStyle, isSpan: true})
				currentElements = elem.Inner
				currentIndex = 0

			case elem.Value != nil && knownStyleAttrs[tag]:
				newStyle := currentStyle
				applyStyleAttr(&newStyle, tag, *elem.Value)
				stack = append(stack, frame{elements: currentElements, index: currentIndex, style: currentStyle, isSpan: false})
				currentElements = elem.Inner
				currentIndex = 0
				currentStyle = newStyle

			case elem.Value == nil && prefabLookup(prefabs, tag) != nil:
				stack = append(stack, frame{elements: currentElements, index: currentIndex, style: currentStyle, isSpan: false})
				currentElements = elem.Inner
				currentIndex = 0
				currentStyle = *prefabLookup(prefabs, tag)

			default:
				logging.Get().Warn("unrecognized style tag, treated as span boundary", "tag", tag)
				flush()
				stack = append(stack, frame{elements: currentElements, index: currentIndex, style: currentStyle, isSpan: true})
				currentElements = elem.Inner
				currentIndex = 0
			}
		}
	}

	flush()
	return spans
}

func prefabLookup(prefabs map[string]TextStyle, tag string) *TextStyle {
	if prefabs == nil {
		return nil
	}
	if s, ok := prefabs[tag]; ok {
		return &s
	}
	return nil
}

// applyStyleAttr mutates style in place per the recognized tag. Unparsable
// values fall back to the field's previous value, with a warning logged.
func applyStyleAttr(style *TextStyle, tag, value string) {
	warnParse := func(field string) {
		logging.Get().Warn("cannot parse style attribute value, keeping previous value", "tag", tag, "field", field, "value", value)
	}

	switch tag {
	case "size":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			style.FontSize = v
		} else {
			warnParse("fontSize")
		}
	case "color", "fillColor":
		if c, err := csscolorparser.Parse(value); err == nil {
			style.FillColor = c
		} else {
			warnParse("fillColor")
		}
	case "lineHeight":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			style.LineHeight = v
		} else {
			warnParse("lineHeight")
		}
	case "indent":
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			style.Indent = v
		} else {
			warnParse("indent")
		}
	case "stroke":
		s := DefaultStrokeStyle()
		if style.Stroke != nil {
			s = *style.Stroke
		}
		if err := parseJSONInto(value, &s); err == nil {
			style.Stroke = &s
		} else {
			warnParse("stroke")
		}
	case "strokeColor":
		ensureStroke(style)
		if c, err := csscolorparser.Parse(value); err == nil {
			style.Stroke.StrokeColor = c
		} else {
			warnParse("strokeColor")
		}
	case "strokeWidth":
		ensureStroke(style)
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			style.Stroke.StrokeWidth = v
		} else {
			warnParse("strokeWidth")
		}
	case "shadow":
		s := DefaultShadowStyle()
		if style.Shadow != nil {
			s = *style.Shadow
		}
		if err := parseJSONInto(value, &s); err == nil {
			style.Shadow = &s
		} else {
			warnParse("shadow")
		}
	case "shadowColor":
		ensureShadow(style)
		if c, err := csscolorparser.Parse(value); err == nil {
			style.Shadow.ShadowColor = c
		} else {
			warnParse("shadowColor")
		}
	case "shadowOffsetX":
		ensureShadow(style)
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			style.Shadow.ShadowOffsetX = v
		} else {
			warnParse("shadowOffsetX")
		}
	case "shadowOffsetY":
		ensureShadow(style)
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			style.Shadow.ShadowOffsetY = v
		} else {
			warnParse("shadowOffsetY")
		}
	case "shadowBlur":
		ensureShadow(style)
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			style.Shadow.ShadowBlur = v
		} else {
			warnParse("shadowBlur")
		}
	case "shadowWidth":
		ensureShadow(style)
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			style.Shadow.ShadowWidth = v
		} else {
			warnParse("shadowWidth")
		}
	}
}

func ensureStroke(style *TextStyle) {
	if style.Stroke == nil {
		s := DefaultStrokeStyle()
		style.Stroke = &s
	}
}

func ensureShadow(style *TextStyle) {
	if style.Shadow == nil {
		s := DefaultShadowStyle()
		style.Shadow = &s
	}
}
