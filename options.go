package vdf

import (
	"fmt"
	"strings"
)

// A DecodeOption configures a Decoder.
type DecodeOption func(*Decoder) error

// An EncodeOption configures an Encoder.
type EncodeOption func(*Encoder) error

// WithTranscluder configures the Transcluder consulted for #base
// directives. The default is DisabledTranscluder.
func WithTranscluder(t Transcluder) DecodeOption {
	return func(d *Decoder) error {
		if t == nil {
			return fmt.Errorf("vdf: transcluder cannot be nil")
		}
		d.transcluder = t
		return nil
	}
}

// WithHandler replaces the decoder's default tree-building handler. When a
// custom handler is set, Complete returns a nil document.
func WithHandler(h Handler) DecodeOption {
	return func(d *Decoder) error {
		if h == nil {
			return fmt.Errorf("vdf: handler cannot be nil")
		}
		d.handler = h
		return nil
	}
}

// MaxTransclusionDepth returns a DecodeOption that bounds how deeply #base
// directives may nest before the decode fails with a TransclusionError.
// This is the guard against directive cycles.
//
// The depth n must be a positive integer.
func MaxTransclusionDepth(n int) DecodeOption {
	return func(d *Decoder) error {
		if n <= 0 {
			return fmt.Errorf("vdf: max transclusion depth must be a positive integer")
		}
		d.maxDepth = n
		return nil
	}
}

// Indent returns an EncodeOption that indents nested blocks with n spaces
// per level instead of the default single tab.
func Indent(n int) EncodeOption {
	return func(e *Encoder) error {
		if n < 0 {
			return fmt.Errorf("vdf: indent spaces cannot be negative")
		}
		e.indent = strings.Repeat(" ", n)
		return nil
	}
}
