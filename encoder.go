package vdf

import (
	"bufio"
	"fmt"
	"io"
	"reflect"
	"strings"
)

// An Encoder writes VDF documents to an output stream. Encoding is the
// decoder's inverse: any document the decoder can produce encodes to text
// that decodes back to a structurally equal document. Transclusion is a
// decode-time expansion only; encoded output is always self-contained.
type Encoder struct {
	w      io.Writer
	opts   []EncodeOption
	indent string
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer, opts ...EncodeOption) *Encoder {
	return &Encoder{w: w, opts: opts}
}

// Encode writes the VDF encoding of doc to the stream. Keys are written in
// insertion order; nested objects are indented one level per depth.
func (e *Encoder) Encode(doc *Object) error {
	if doc == nil {
		return fmt.Errorf("vdf: cannot encode nil document")
	}
	e.indent = "\t"
	for _, opt := range e.opts {
		if err := opt(e); err != nil {
			return err
		}
	}
	bw := bufio.NewWriter(e.w)
	if err := e.encodeObject(bw, doc, 0); err != nil {
		return err
	}
	return bw.Flush()
}

func (e *Encoder) encodeObject(w *bufio.Writer, o *Object, depth int) error {
	prefix := strings.Repeat(e.indent, depth)
	for i := 0; i < o.Len(); i++ {
		ent := o.At(i)
		switch v := ent.Value.(type) {
		case string:
			w.WriteString(prefix)
			w.WriteString(encodeToken(ent.Key))
			w.WriteByte('\t')
			w.WriteString(encodeToken(v))
			w.WriteByte('\n')
		case *Object:
			w.WriteString(prefix)
			w.WriteString(encodeToken(ent.Key))
			w.WriteByte('\n')
			w.WriteString(prefix)
			w.WriteString("{\n")
			if err := e.encodeObject(w, v, depth+1); err != nil {
				return err
			}
			w.WriteString(prefix)
			w.WriteString("}\n")
		default:
			return &UnsupportedTypeError{Type: reflect.TypeOf(ent.Value)}
		}
	}
	return nil
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\t", `\t`,
	"\n", `\n`,
)

// encodeToken writes s unquoted when it can be tokenized back verbatim;
// otherwise it is quoted and escaped symmetrically with the lexer.
func encodeToken(s string) string {
	if needsQuoting(s) {
		return `"` + escaper.Replace(s) + `"`
	}
	return s
}

func needsQuoting(s string) bool {
	if s == "" {
		return true
	}
	// A leading slash would re-tokenize as a comment.
	if s[0] == '/' {
		return true
	}
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == ' ' || c == '{' || c == '}' || c == '"' || c == '\\':
			return true
		case c < 0x20 || c == 0x7f:
			return true
		}
	}
	return false
}
