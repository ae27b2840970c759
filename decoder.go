package vdf

import (
	"errors"
	"strings"

	"github.com/nitroflow/vdf/internal/lexer"
	"github.com/nitroflow/vdf/internal/token"
)

// A Handler receives the decoder's structural events. The default handler
// builds an ordered Object tree; substitute one with WithHandler to consume
// events directly, for example to validate or flatten a document without
// materializing it.
type Handler interface {
	EnterObject()
	ExitObject()
	Key(key string)
	Value(value string)
}

type decoderState int

const (
	expectKeyOrClose decoderState = iota
	expectValueOrBlock
	expectBaseName
	expectBaseEnd
)

const baseDirective = "#base"

// DefaultMaxTransclusionDepth bounds how deeply #base directives may nest.
// A directive cycle would otherwise splice forever.
const DefaultMaxTransclusionDepth = 16

// A Decoder incrementally parses a VDF document. Input is supplied in
// arbitrarily sized chunks with Feed; Complete finishes the decode. A
// Decoder is single-use: after Complete, or after any error, it cannot
// accept further input.
type Decoder struct {
	lex     *lexer.Lexer
	handler Handler
	builder *objectBuilder

	transcluder Transcluder
	maxDepth    int

	state     decoderState
	depth     int
	baseName  string
	baseDepth int

	err  error
	done bool
}

var errDecoderDone = errors.New("vdf: decoder already completed")

// NewDecoder returns a Decoder configured by opts. Unless WithHandler is
// given, events feed an internal tree builder and Complete returns the
// built document.
func NewDecoder(opts ...DecodeOption) (*Decoder, error) {
	d := &Decoder{
		lex:         lexer.New(),
		transcluder: DisabledTranscluder{},
		maxDepth:    DefaultMaxTransclusionDepth,
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	if d.handler == nil {
		d.builder = newObjectBuilder()
		d.handler = d.builder
	}
	return d, nil
}

// Feed supplies the next chunk of input. Chunks may split tokens, escape
// sequences or directives anywhere; the decoder buffers partial state
// between calls. Once Feed returns an error the decoder is unusable and
// every further call returns the same error.
func (d *Decoder) Feed(chunk string) error {
	if d.err != nil {
		return d.err
	}
	if d.done {
		d.err = errDecoderDone
		return d.err
	}
	d.lex.Feed(chunk)
	if err := d.run(); err != nil {
		d.fail(err)
		return err
	}
	return nil
}

// Complete finishes the decode and returns the document built by the
// default handler (nil when a custom Handler is configured). It fails with
// a SyntaxError if input ends inside a block, a quoted token, an escape
// sequence or a transclusion directive, or with a dangling key.
func (d *Decoder) Complete() (*Object, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.done {
		d.err = errDecoderDone
		return nil, d.err
	}
	d.lex.Finish()
	if err := d.run(); err != nil {
		d.fail(err)
		return nil, err
	}
	if err := d.terminal(); err != nil {
		d.fail(err)
		return nil, err
	}
	d.done = true
	if d.builder != nil {
		return d.builder.root, nil
	}
	return nil, nil
}

func (d *Decoder) fail(err error) {
	d.err = err
	d.builder = nil
	d.handler = nil
	d.lex = nil
}

func (d *Decoder) run() error {
	for {
		tok, ok := d.lex.Next()
		if !ok {
			return nil
		}
		if tok.Type == token.EOF {
			return nil
		}
		if err := d.process(tok); err != nil {
			return err
		}
	}
}

func (d *Decoder) process(tok token.Token) error {
	switch tok.Type {
	case token.ILLEGAL:
		return d.syntaxErr(tok, tok.Literal)
	case token.COMMENT:
		// Comments are discarded in every state.
		return nil
	case token.NEWLINE:
		switch d.state {
		case expectBaseName:
			return d.syntaxErr(tok, "transclusion directive requires a quoted name")
		case expectBaseEnd:
			d.state = expectKeyOrClose
			return d.transclude()
		}
		return nil
	}

	switch d.state {
	case expectKeyOrClose:
		switch {
		case tok.Type.IsText():
			if tok.Literal == baseDirective {
				d.state = expectBaseName
				d.baseDepth = d.lex.SpliceDepth()
				return nil
			}
			d.handler.Key(tok.Literal)
			d.state = expectValueOrBlock
		case tok.Type == token.RBRACE:
			if d.depth == 0 {
				return d.syntaxErr(tok, "unmatched close brace")
			}
			d.depth--
			d.handler.ExitObject()
		default:
			return d.syntaxErr(tok, "expected key or close brace, got "+string(tok.Type))
		}

	case expectValueOrBlock:
		switch {
		case tok.Type.IsText():
			d.handler.Value(tok.Literal)
			d.state = expectKeyOrClose
		case tok.Type == token.LBRACE:
			d.handler.EnterObject()
			d.depth++
			d.state = expectKeyOrClose
		default:
			return d.syntaxErr(tok, "expected value or open brace, got "+string(tok.Type))
		}

	case expectBaseName:
		if tok.Type != token.QUOTED {
			return d.syntaxErr(tok, "transclusion directive requires a quoted name")
		}
		d.baseName = tok.Literal
		d.state = expectBaseEnd

	case expectBaseEnd:
		return d.syntaxErr(tok, "expected line break after transclusion name")
	}
	return nil
}

// transclude resolves the pending directive and splices the document's text
// into the input stream at the directive's position. Directives inside the
// spliced text resolve recursively, one depth level deeper; baseDepth was
// captured when the directive token was read, so a directive in tail
// position still deepens even though its own region has been consumed.
func (d *Decoder) transclude() error {
	name := d.baseName
	d.baseName = ""
	if d.baseDepth+1 > d.maxDepth {
		return &TransclusionError{Name: name, Err: errors.New("maximum transclusion depth exceeded")}
	}
	fragments, err := d.transcluder.Transclude(name)
	if err != nil {
		return &TransclusionError{Name: name, Err: err}
	}
	d.lex.Splice(strings.Join(fragments, ""), d.baseDepth+1)
	return nil
}

func (d *Decoder) terminal() error {
	line, column := d.lex.Pos()
	at := func(msg string) error {
		return &SyntaxError{Msg: msg, Line: line, Column: column}
	}
	switch d.state {
	case expectValueOrBlock:
		return at("dangling key with no value")
	case expectBaseName, expectBaseEnd:
		return at("unterminated transclusion directive")
	}
	if d.depth != 0 {
		return at("unexpected end of input inside block")
	}
	return nil
}

func (d *Decoder) syntaxErr(tok token.Token, msg string) error {
	return &SyntaxError{Msg: msg, Line: tok.Line, Column: tok.Column}
}

// objectBuilder is the default Handler. It maps decoder events onto nested
// ordered Objects: Key records the pending key, Value binds a scalar to it,
// EnterObject opens a nested Object under it.
type objectBuilder struct {
	root  *Object
	key   string
	stack []*Object
}

func newObjectBuilder() *objectBuilder {
	root := NewObject()
	return &objectBuilder{root: root, stack: []*Object{root}}
}

func (b *objectBuilder) EnterObject() {
	obj := NewObject()
	b.stack[len(b.stack)-1].Set(b.key, obj)
	b.stack = append(b.stack, obj)
	b.key = ""
}

func (b *objectBuilder) ExitObject() {
	b.stack = b.stack[:len(b.stack)-1]
}

func (b *objectBuilder) Key(key string) {
	b.key = key
}

func (b *objectBuilder) Value(value string) {
	b.stack[len(b.stack)-1].Set(b.key, value)
	b.key = ""
}
