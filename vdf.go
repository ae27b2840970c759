package vdf

import (
	"bytes"
	"io"
)

// readChunkSize is how much Load pulls from its reader per Feed call.
const readChunkSize = 4096

// Parse decodes a complete VDF document and returns the ordered document
// tree.
func Parse(data []byte, opts ...DecodeOption) (*Object, error) {
	d, err := NewDecoder(opts...)
	if err != nil {
		return nil, err
	}
	if err := d.Feed(string(data)); err != nil {
		return nil, err
	}
	return d.Complete()
}

// Load decodes a VDF document from r, feeding the decoder in bounded-size
// chunks so the whole document never has to sit in memory at once.
func Load(r io.Reader, opts ...DecodeOption) (*Object, error) {
	d, err := NewDecoder(opts...)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, readChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if ferr := d.Feed(string(buf[:n])); ferr != nil {
				return nil, ferr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return d.Complete()
}

// Unmarshal parses the VDF-encoded data and stores the result in the value
// pointed to by v, which may be a *Object, a map, a struct or an empty
// interface. Scalar text is coerced to the target's kind; struct fields are
// matched via `vdf:"name"` tags.
func Unmarshal(data []byte, v any, opts ...DecodeOption) error {
	doc, err := Parse(data, opts...)
	if err != nil {
		return err
	}
	return unmarshalDocument(doc, v)
}

// Marshal returns the VDF encoding of v. The root must be object-shaped: a
// *Object, a map with string keys, or a struct.
func Marshal(v any, opts ...EncodeOption) ([]byte, error) {
	var buf bytes.Buffer
	if err := Dump(&buf, v, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Dump writes the VDF encoding of v to w.
func Dump(w io.Writer, v any, opts ...EncodeOption) error {
	doc, err := marshalDocument(v)
	if err != nil {
		return err
	}
	return NewEncoder(w, opts...).Encode(doc)
}
