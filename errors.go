package vdf

import (
	"fmt"
	"reflect"
)

// A SyntaxError reports malformed VDF input. It carries the position of the
// offending token in the logical input stream (columns count bytes).
type SyntaxError struct {
	Msg    string
	Line   int
	Column int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("vdf: syntax error at line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// A TransclusionError reports a failed #base transclusion. It is distinct
// from SyntaxError so callers can tell bad grammar from a bad include.
type TransclusionError struct {
	Name string
	Err  error
}

func (e *TransclusionError) Error() string {
	return fmt.Sprintf("vdf: transclusion of %q: %s", e.Name, e.Err.Error())
}

func (e *TransclusionError) Unwrap() error { return e.Err }

// An UnsupportedTypeError reports an attempt to marshal a Go value of an
// unsupported type.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return "vdf: unsupported type for marshaling: " + e.Type.String()
}
