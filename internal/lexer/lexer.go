// Package lexer tokenizes VDF text incrementally. Input arrives in
// arbitrarily sized chunks via Feed; Next either produces a complete token or
// reports that more input is needed, so a chunk boundary may fall anywhere,
// including inside a token or an escape sequence.
package lexer

import (
	"bytes"
	"fmt"

	"github.com/nitroflow/vdf/internal/token"
)

type state int

const (
	stDefault state = iota
	stComment
	stQuoted
	stQuotedEscape
	stUnquoted
	stUnquotedEscape
)

// Lexer holds the state for tokenizing VDF source across Feed calls.
//
// Transcluded text is inserted into the stream with Splice; line and column
// numbers always describe the logical stream after splicing, and columns
// count bytes.
type Lexer struct {
	buf []byte
	pos int
	eof bool

	line   int
	column int

	state   state
	lit     bytes.Buffer
	tokLine int
	tokCol  int

	// Active spliced regions, outermost first. Regions nest, so end
	// offsets are non-increasing.
	splices []splice
}

// A splice is a region of buf that was inserted by transclusion. Its depth
// is logical, assigned by the caller: a region spliced for a directive found
// at depth n has depth n+1, even if the enclosing region was fully consumed
// by the time the splice happens.
type splice struct {
	end   int
	depth int
}

// New creates and returns a new Lexer.
func New() *Lexer {
	return &Lexer{line: 1, column: 1}
}

// Feed appends a chunk of input to the lexer's buffer.
func (l *Lexer) Feed(s string) {
	l.compact()
	l.buf = append(l.buf, s...)
}

// Finish marks the end of input. After Finish, Next never reports that more
// input is needed; a partially assembled quoted token or escape sequence
// becomes an ILLEGAL token.
func (l *Lexer) Finish() {
	l.eof = true
}

// Splice inserts text into the input stream at the current read position, as
// if it had been part of the original input, and tags the region with the
// given logical transclusion depth. It must not be called while a token is
// partially assembled.
func (l *Lexer) Splice(text string, depth int) {
	l.compact()
	nb := make([]byte, 0, len(text)+len(l.buf))
	nb = append(nb, text...)
	nb = append(nb, l.buf...)
	for i := range l.splices {
		l.splices[i].end += len(text)
	}
	l.splices = append(l.splices, splice{end: len(text), depth: depth})
	l.buf = nb
	l.popSplices()
}

// SpliceDepth reports the logical transclusion depth of the text at the
// current read position: 0 in the host document, and the tagged depth
// inside a spliced region. The decoder uses it to bound transclusion
// recursion.
func (l *Lexer) SpliceDepth() int {
	if len(l.splices) == 0 {
		return 0
	}
	return l.splices[len(l.splices)-1].depth
}

// Pos returns the line and column of the current read position.
func (l *Lexer) Pos() (line, column int) {
	return l.line, l.column
}

// Next scans the input and returns the next token. The second result is
// false when the buffered input ends mid-token and Finish has not been
// called; feed more input and call Next again.
func (l *Lexer) Next() (token.Token, bool) { //nolint:gocognit
	for {
		switch l.state {
		case stDefault:
			for l.pos < len(l.buf) {
				c := l.buf[l.pos]
				if c != ' ' && c != '\t' && c != '\r' {
					break
				}
				l.advance()
			}
			if l.pos >= len(l.buf) {
				if l.eof {
					return token.Token{Type: token.EOF, Line: l.line, Column: l.column}, true
				}
				return token.Token{}, false
			}
			l.tokLine, l.tokCol = l.line, l.column
			switch c := l.buf[l.pos]; c {
			case '\n':
				l.advance()
				return token.Token{Type: token.NEWLINE, Literal: "\n", Line: l.tokLine, Column: l.tokCol}, true
			case '{':
				l.advance()
				return token.Token{Type: token.LBRACE, Literal: "{", Line: l.tokLine, Column: l.tokCol}, true
			case '}':
				l.advance()
				return token.Token{Type: token.RBRACE, Literal: "}", Line: l.tokLine, Column: l.tokCol}, true
			case '"':
				l.advance()
				l.lit.Reset()
				l.state = stQuoted
			case '/':
				l.advance()
				l.lit.Reset()
				l.state = stComment
			default:
				l.lit.Reset()
				l.state = stUnquoted
			}

		case stComment:
			for l.pos < len(l.buf) && l.buf[l.pos] != '\n' {
				l.lit.WriteByte(l.buf[l.pos])
				l.advance()
			}
			if l.pos >= len(l.buf) && !l.eof {
				return token.Token{}, false
			}
			// The terminating newline is left in place and tokenized next.
			l.state = stDefault
			return l.emit(token.COMMENT), true

		case stQuoted:
			for {
				if l.pos >= len(l.buf) {
					if l.eof {
						l.state = stDefault
						return l.fail("unterminated quoted token"), true
					}
					return token.Token{}, false
				}
				c := l.buf[l.pos]
				if c == '"' {
					l.advance()
					l.state = stDefault
					return l.emit(token.QUOTED), true
				}
				if c == '\\' {
					l.advance()
					l.state = stQuotedEscape
					break
				}
				l.lit.WriteByte(c)
				l.advance()
			}

		case stQuotedEscape, stUnquotedEscape:
			if l.pos >= len(l.buf) {
				if l.eof {
					l.state = stDefault
					return l.fail("incomplete escape sequence"), true
				}
				return token.Token{}, false
			}
			c := l.buf[l.pos]
			u, ok := unescape(c)
			if !ok {
				l.advance()
				l.state = stDefault
				return l.fail(fmt.Sprintf("invalid escape sequence \\%c", c)), true
			}
			l.lit.WriteByte(u)
			l.advance()
			if l.state == stQuotedEscape {
				l.state = stQuoted
			} else {
				l.state = stUnquoted
			}

		case stUnquoted:
			for {
				if l.pos >= len(l.buf) {
					if l.eof {
						l.state = stDefault
						return l.emit(token.UNQUOTED), true
					}
					return token.Token{}, false
				}
				c := l.buf[l.pos]
				if isUnquotedEnd(c) {
					l.state = stDefault
					return l.emit(token.UNQUOTED), true
				}
				if c == '\\' {
					l.advance()
					l.state = stUnquotedEscape
					break
				}
				l.lit.WriteByte(c)
				l.advance()
			}
		}
	}
}

func (l *Lexer) advance() {
	if l.buf[l.pos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
	l.popSplices()
}

func (l *Lexer) popSplices() {
	for len(l.splices) > 0 && l.splices[len(l.splices)-1].end <= l.pos {
		l.splices = l.splices[:len(l.splices)-1]
	}
}

func (l *Lexer) compact() {
	if l.pos == 0 {
		return
	}
	l.buf = l.buf[:copy(l.buf, l.buf[l.pos:])]
	for i := range l.splices {
		l.splices[i].end -= l.pos
	}
	l.pos = 0
}

func (l *Lexer) emit(t token.Type) token.Token {
	return token.Token{Type: t, Literal: l.lit.String(), Line: l.tokLine, Column: l.tokCol}
}

func (l *Lexer) fail(msg string) token.Token {
	return token.Token{Type: token.ILLEGAL, Literal: msg, Line: l.tokLine, Column: l.tokCol}
}

func isUnquotedEnd(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '{' || c == '}' || c == '"'
}

func unescape(c byte) (byte, bool) {
	switch c {
	case '\\':
		return '\\', true
	case '"':
		return '"', true
	case 't':
		return '\t', true
	case 'n':
		return '\n', true
	}
	return 0, false
}
