package markup

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseError reports a parse failure with the byte offset it occurred at,
// plus a short window of surrounding source for a human to locate it.
type ParseError struct {
	Offset  int
	Message string
	Context string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("markup: %s at offset %d near %q", e.Message, e.Offset, e.Context)
}

// Parser parses a bracketed markup grammar: plain text runs interleaved
// with [tag], [tag=value] and [/tag] elements, with [[ and ]] escaping a
// literal bracket. The zero value is not usable; construct with New or
// NewWithSymbols.
type Parser struct {
	open  rune
	close rune
}

// New builds a Parser using the default '[' / ']' bracket pair.
func New() *Parser {
	return &Parser{open: '[', close: ']'}
}

// NewWithSymbols builds a Parser using a caller-chosen bracket pair, e.g.
// '<','>' or the Chinese '【','】'. The chosen pair should stay fixed for
// the parser's lifetime.
func NewWithSymbols(open, close rune) *Parser {
	return &Parser{open: open, close: close}
}

// Parse parses one segment into a forest of Elements.
func (p *Parser) Parse(seg Segment) ([]Element, error) {
	s := &scanner{src: seg.Content, open: p.open, close: p.close, segID: seg.ID}
	elems, err := s.parseElements(false)
	if err != nil {
		return nil, err
	}
	if !s.eof() {
		// At top level parseElements already reports a stray end tag as an
		// error, so this only guards against input left unconsumed.
		return nil, s.errorf(s.pos, "unexpected closing tag")
	}
	return elems, nil
}

type scanner struct {
	src   string
	pos   int
	open  rune
	close rune
	segID SegmentID
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) errorf(offset int, format string, args ...any) error {
	return &ParseError{
		Offset:  offset,
		Message: fmt.Sprintf(format, args...),
		Context: s.contextAt(offset),
	}
}

func (s *scanner) contextAt(offset int) string {
	const window = 12
	start := offset - window
	if start < 0 {
		start = 0
	}
	end := offset + window
	if end > len(s.src) {
		end = len(s.src)
	}
	return s.src[start:end]
}

// peekRune returns the rune at pos (or the zero rune at EOF) and its byte
// width.
func (s *scanner) peekRune() (rune, int) {
	if s.eof() {
		return 0, 0
	}
	r, w := utf8.DecodeRuneInString(s.src[s.pos:])
	return r, w
}

// peekRuneAt looks ahead past a given byte offset.
func (s *scanner) peekRuneAt(pos int) (rune, int) {
	if pos >= len(s.src) {
		return 0, 0
	}
	r, w := utf8.DecodeRuneInString(s.src[pos:])
	return r, w
}

// parseElements consumes elements until EOF or, when insideBlock is true,
// until it encounters the start of an end tag (OPEN '/'), which it leaves
// unconsumed for the caller (parseBlock) to parse.
func (s *scanner) parseElements(insideBlock bool) ([]Element, error) {
	var elems []Element
	var text strings.Builder
	textStart := s.pos

	flushText := func() {
		if text.Len() > 0 {
			elems = append(elems, Element{
				Kind:      ElementText,
				Start:     textStart,
				End:       s.pos,
				Content:   text.String(),
				SegmentID: s.segID,
			})
			text.Reset()
		}
	}

	for !s.eof() {
		r, w := s.peekRune()

		if r == s.open {
			next, nextW := s.peekRuneAt(s.pos + w)
			switch {
			case next == s.open:
				// [[ -> [
				text.WriteRune(s.open)
				s.pos += w + nextW
				continue
			case next == '/':
				if insideBlock {
					flushText()
					return elems, nil
				}
				return nil, s.errorf(s.pos, "unexpected closing tag")
			default:
				flushText()
				block, err := s.parseBlock()
				if err != nil {
					return nil, err
				}
				elems = append(elems, *block)
				textStart = s.pos
				continue
			}
		}

		if r == s.close {
			next, nextW := s.peekRuneAt(s.pos + w)
			if next == s.close {
				// ]] -> ]
				text.WriteRune(s.close)
				s.pos += w + nextW
				continue
			}
			return nil, s.errorf(s.pos, "unmatched closing bracket")
		}

		text.WriteRune(r)
		s.pos += w
	}

	flushText()
	if insideBlock {
		return nil, s.errorf(s.pos, "unterminated tag, missing closing bracket")
	}
	return elems, nil
}

// parseBlock parses `OPEN head CLOSE element* OPEN '/' tail CLOSE`
// starting at the current OPEN.
func (s *scanner) parseBlock() (*Element, error) {
	start := s.pos
	s.advanceRune() // consume OPEN

	key, value, err := s.parseHead()
	if err != nil {
		return nil, err
	}

	inner, err := s.parseElements(true)
	if err != nil {
		return nil, err
	}

	if err := s.parseTail(key, start); err != nil {
		return nil, err
	}

	return &Element{
		Kind:  ElementBlock,
		Start: start,
		End:   s.pos,
		Tag:   key,
		Value: value,
		Inner: inner,
	}, nil
}

// parseHead parses `ws* key (ws* '=' ws* value)? ws*` and the terminating
// CLOSE, leaving s.pos just past it. A tag name is optional: `[]` is a
// valid empty tag, which the run elaborator treats as a span boundary.
func (s *scanner) parseHead() (key string, value *string, err error) {
	s.skipSpace()
	save := s.pos

	key, err = s.parseKey()
	if err != nil {
		return "", nil, err
	}
	if key == "" {
		// No tag name at all: this can only be the bare empty-tag form,
		// never `key=value` with an empty key.
		s.pos = save
		s.skipSpace()
	} else if r, w := s.peekRune(); r == '=' {
		s.pos += w
		s.skipSpace()
		v, err := s.parseValue()
		if err != nil {
			return "", nil, err
		}
		value = &v
		s.skipSpace()
	}

	if r, w := s.peekRune(); r != s.close {
		return "", nil, s.errorf(s.pos, "expected closing bracket after tag head")
	} else {
		s.pos += w
	}

	return key, value, nil
}

// parseTail parses `OPEN '/' ws* key? ws* CLOSE` and verifies the trimmed
// key matches head (the tag this block opened with).
func (s *scanner) parseTail(head string, blockStart int) error {
	if r, w := s.peekRune(); r != s.open {
		return s.errorf(s.pos, "missing closing tag for %q", head)
	} else {
		s.pos += w
	}
	if r, w := s.peekRune(); r != '/' {
		return s.errorf(s.pos, "missing closing tag for %q", head)
	} else {
		s.pos += w
	}

	s.skipSpace()
	tail, err := s.parseKey()
	if err != nil {
		return err
	}
	s.skipSpace()

	if r, w := s.peekRune(); r != s.close {
		return s.errorf(s.pos, "expected closing bracket in closing tag for %q", head)
	} else {
		s.pos += w
	}

	if tail != head {
		return s.errorf(blockStart, "mismatched tag: opened %q, closed %q", head, tail)
	}
	return nil
}

// parseKey reads a bareword key: any run of characters excluding quotes,
// the bracket pair, '=', '/' and whitespace.
func (s *scanner) parseKey() (string, error) {
	start := s.pos
	for !s.eof() {
		r, w := s.peekRune()
		if r == '"' || r == '\'' || r == s.open || r == s.close || r == '=' || r == '/' || unicode.IsSpace(r) {
			break
		}
		s.pos += w
	}
	return s.src[start:s.pos], nil
}

// parseValue reads a bareword value (same charset as parseKey) or a
// quoted string with no escape processing beyond the terminating quote.
func (s *scanner) parseValue() (string, error) {
	r, w := s.peekRune()
	if r == '"' || r == '\'' {
		quote := r
		s.pos += w
		start := s.pos
		for {
			if s.eof() {
				return "", s.errorf(start, "unterminated quoted value")
			}
			cr, cw := s.peekRune()
			if cr == quote {
				val := s.src[start:s.pos]
				s.pos += cw
				return val, nil
			}
			s.pos += cw
		}
	}
	return s.parseKey()
}

func (s *scanner) skipSpace() {
	for !s.eof() {
		r, w := s.peekRune()
		if !unicode.IsSpace(r) {
			return
		}
		s.pos += w
	}
}

func (s *scanner) advanceRune() {
	_, w := s.peekRune()
	s.pos += w
}
