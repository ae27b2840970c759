package vdf

import (
	"fmt"
	"reflect"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

var (
	_ json.MarshalerTo     = (*Object)(nil)
	_ json.UnmarshalerFrom = (*Object)(nil)
)

// MarshalJSONTo writes o as a JSON object, preserving key order.
func (o *Object) MarshalJSONTo(enc *jsontext.Encoder) error {
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return err
	}
	for _, e := range o.entries {
		if err := enc.WriteToken(jsontext.String(e.Key)); err != nil {
			return err
		}
		switch v := e.Value.(type) {
		case string:
			if err := enc.WriteToken(jsontext.String(v)); err != nil {
				return err
			}
		case *Object:
			if err := v.MarshalJSONTo(enc); err != nil {
				return err
			}
		default:
			return &UnsupportedTypeError{Type: reflect.TypeOf(e.Value)}
		}
	}
	return enc.WriteToken(jsontext.EndObject)
}

// UnmarshalJSONFrom reads a JSON object into o, preserving key order.
// String values map to scalars; numbers, booleans and null map to their
// literal text, since VDF has no typed scalars. Arrays have no VDF
// representation and fail.
func (o *Object) UnmarshalJSONFrom(dec *jsontext.Decoder) error {
	tok, err := dec.ReadToken()
	if err != nil {
		return err
	}
	if tok.Kind() != '{' {
		return fmt.Errorf("vdf: cannot decode JSON %v into an object", tok.Kind())
	}
	*o = *NewObject()
	for dec.PeekKind() != '}' {
		ktok, err := dec.ReadToken()
		if err != nil {
			return err
		}
		key := ktok.String()
		switch dec.PeekKind() {
		case '"':
			vtok, err := dec.ReadToken()
			if err != nil {
				return err
			}
			o.Set(key, vtok.String())
		case '{':
			nested := NewObject()
			if err := nested.UnmarshalJSONFrom(dec); err != nil {
				return err
			}
			o.Set(key, nested)
		case '[':
			return fmt.Errorf("vdf: cannot decode JSON array into an object value")
		default:
			raw, err := dec.ReadValue()
			if err != nil {
				return err
			}
			o.Set(key, string(raw))
		}
	}
	_, err = dec.ReadToken() // consume '}'
	return err
}
