package vdf

import (
	"encoding"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// marshalDocument converts a Go value into a document Object. The root must
// be something object-shaped: a *Object, a map with string keys, or a
// struct.
func marshalDocument(v any) (*Object, error) {
	if doc, ok := v.(*Object); ok {
		if doc == nil {
			return nil, fmt.Errorf("vdf: cannot marshal nil *Object")
		}
		return doc, nil
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, fmt.Errorf("vdf: cannot marshal nil document root")
		}
		rv = rv.Elem()
	}
	node, err := marshalValue(rv)
	if err != nil {
		return nil, err
	}
	doc, ok := node.(*Object)
	if !ok {
		return nil, fmt.Errorf("vdf: document root must be an object, got %T", v)
	}
	return doc, nil
}

// marshalValue converts a Go value into a node: a string scalar or a
// nested *Object. VDF has no typed scalars, so numbers and booleans are
// stringified; booleans follow the KeyValues convention of "1" and "0".
func marshalValue(rv reflect.Value) (any, error) {
	if !rv.IsValid() || (rv.Kind() == reflect.Interface && rv.IsNil()) {
		return "", nil
	}

	if rv.Type().NumMethod() > 0 && rv.CanInterface() &&
		!(rv.Kind() == reflect.Pointer && rv.IsNil()) {
		if m, ok := rv.Interface().(encoding.TextMarshaler); ok {
			text, err := m.MarshalText()
			if err != nil {
				return nil, err
			}
			return string(text), nil
		}
	}

	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32, reflect.Float64:
		bits := 64
		if rv.Kind() == reflect.Float32 {
			bits = 32
		}
		return strconv.FormatFloat(rv.Float(), 'g', -1, bits), nil
	case reflect.Bool:
		if rv.Bool() {
			return "1", nil
		}
		return "0", nil
	case reflect.Map:
		return marshalMap(rv)
	case reflect.Struct:
		if obj, ok := rv.Interface().(Object); ok {
			return &obj, nil
		}
		return marshalStruct(rv)
	default:
		return nil, &UnsupportedTypeError{Type: rv.Type()}
	}
}

// marshalMap emits map entries sorted by key. Go maps have no iteration
// order, and ordered output is what makes documents round-trip stably.
func marshalMap(rv reflect.Value) (*Object, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("vdf: map key type must be a string, got %s", rv.Type().Key())
	}
	keys := make([]string, 0, rv.Len())
	for _, k := range rv.MapKeys() {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)

	obj := NewObject()
	for _, k := range keys {
		node, err := marshalValue(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())))
		if err != nil {
			return nil, err
		}
		obj.Set(k, node)
	}
	return obj, nil
}

func marshalStruct(rv reflect.Value) (*Object, error) {
	obj := NewObject()
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		tagName, opts := parseTag(field.Tag.Get("vdf"))
		if tagName == "-" {
			continue
		}

		fieldValue := rv.Field(i)
		if opts["omitempty"] && isEmptyValue(fieldValue) {
			continue
		}

		key := field.Name
		if tagName != "" {
			key = tagName
		}

		node, err := marshalValue(fieldValue)
		if err != nil {
			return nil, err
		}
		obj.Set(key, node)
	}
	return obj, nil
}

// parseTag splits a vdf struct tag into its name and options.
func parseTag(tag string) (string, map[string]bool) {
	parts := strings.Split(tag, ",")
	options := make(map[string]bool)
	for _, part := range parts[1:] {
		options[strings.TrimSpace(part)] = true
	}
	return parts[0], options
}

// isEmptyValue reports whether the value v is empty.
func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return false
}
