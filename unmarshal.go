package vdf

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

var objectType = reflect.TypeOf((*Object)(nil))

// unmarshalDocument maps a decoded document onto the value pointed to by v.
func unmarshalDocument(doc *Object, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("vdf: Unmarshal(non-pointer %T or nil)", v)
	}
	return mapNode(doc, rv.Elem())
}

// mapNode maps a node (string scalar or *Object) onto rv.
func mapNode(node any, rv reflect.Value) error {
	if rv.Type() == objectType {
		obj, ok := node.(*Object)
		if !ok {
			return fmt.Errorf("vdf: cannot unmarshal scalar into *vdf.Object")
		}
		rv.Set(reflect.ValueOf(obj))
		return nil
	}

	if s, ok := node.(string); ok {
		if handled, err := tryTextUnmarshaler(s, rv); handled {
			return err
		}
	}

	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		rv = rv.Elem()
		if rv.Type() == objectType {
			return mapNode(node, rv)
		}
		if s, ok := node.(string); ok {
			if handled, err := tryTextUnmarshaler(s, rv); handled {
				return err
			}
		}
	}

	if rv.Kind() == reflect.Interface {
		return mapInterface(node, rv)
	}
	if !rv.CanSet() {
		return fmt.Errorf("vdf: cannot set value of type %s", rv.Type())
	}

	switch n := node.(type) {
	case string:
		return mapScalar(n, rv)
	case *Object:
		switch rv.Kind() {
		case reflect.Struct:
			return mapStruct(n, rv)
		case reflect.Map:
			return mapMap(n, rv)
		default:
			return fmt.Errorf("vdf: cannot unmarshal object into Go value of type %s", rv.Type())
		}
	default:
		return fmt.Errorf("vdf: unexpected node type %T", node)
	}
}

// tryTextUnmarshaler uses a custom encoding.TextUnmarshaler on rv when one
// is available. It returns true if the caller should not proceed with
// default unmarshaling.
func tryTextUnmarshaler(s string, rv reflect.Value) (bool, error) {
	if !rv.CanAddr() {
		return false, nil
	}
	pv := rv.Addr()
	if !pv.CanInterface() {
		return false, nil
	}
	if u, ok := pv.Interface().(encoding.TextUnmarshaler); ok {
		return true, u.UnmarshalText([]byte(s))
	}
	return false, nil
}

// mapScalar coerces a scalar's text onto rv. The document model is
// stringly typed; coercion happens only here, at the Go boundary.
func mapScalar(s string, rv reflect.Value) error {
	switch rv.Kind() {
	case reflect.String:
		rv.SetString(s)
		return nil
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("vdf: cannot unmarshal %q into Go value of type %s", s, rv.Type())
		}
		rv.SetBool(b)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil || rv.OverflowInt(i) {
			return fmt.Errorf("vdf: cannot unmarshal %q into Go value of type %s", s, rv.Type())
		}
		rv.SetInt(i)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u, err := strconv.ParseUint(s, 10, 64)
		if err != nil || rv.OverflowUint(u) {
			return fmt.Errorf("vdf: cannot unmarshal %q into Go value of type %s", s, rv.Type())
		}
		rv.SetUint(u)
		return nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || rv.OverflowFloat(f) {
			return fmt.Errorf("vdf: cannot unmarshal %q into Go value of type %s", s, rv.Type())
		}
		rv.SetFloat(f)
		return nil
	default:
		return fmt.Errorf("vdf: cannot unmarshal scalar into Go value of type %s", rv.Type())
	}
}

// mapInterface fills an empty interface. Scalars become strings; objects
// stay *Object so key order survives a decode into any.
func mapInterface(node any, rv reflect.Value) error {
	if rv.NumMethod() != 0 {
		return fmt.Errorf("vdf: cannot unmarshal into non-empty interface %s", rv.Type())
	}
	rv.Set(reflect.ValueOf(node))
	return nil
}

func mapMap(obj *Object, rv reflect.Value) error {
	mapType := rv.Type()
	if mapType.Key().Kind() != reflect.String {
		return fmt.Errorf("vdf: cannot unmarshal object into map with non-string key type %s", mapType.Key())
	}
	if rv.IsNil() {
		rv.Set(reflect.MakeMap(mapType))
	} else {
		for _, k := range rv.MapKeys() {
			rv.SetMapIndex(k, reflect.Value{}) // The zero Value deletes the key
		}
	}
	elemType := mapType.Elem()
	for i := 0; i < obj.Len(); i++ {
		ent := obj.At(i)
		newVal := reflect.New(elemType).Elem()
		if err := mapNode(ent.Value, newVal); err != nil {
			return err
		}
		rv.SetMapIndex(reflect.ValueOf(ent.Key).Convert(mapType.Key()), newVal)
	}
	return nil
}

func mapStruct(obj *Object, rv reflect.Value) error {
	fields := cachedFields(rv.Type())
	for i := 0; i < obj.Len(); i++ {
		ent := obj.At(i)
		targetField := findField(fields, ent.Key)
		if targetField == nil {
			continue
		}
		fieldVal := rv.FieldByIndex(targetField.idx)
		if fieldVal.IsValid() && fieldVal.CanSet() {
			if err := mapNode(ent.Value, fieldVal); err != nil {
				return err
			}
		}
	}
	return nil
}

// findField finds the target field in a struct's cached fields. It first
// attempts a case-sensitive match, then falls back to a case-insensitive
// match.
func findField(fields map[string]field, key string) *field {
	if f, ok := fields[key]; ok {
		return &f
	}
	if f, ok := fields[strings.ToLower(key)]; ok {
		return &f
	}
	return nil
}

// A field represents a single field in a struct.
type field struct {
	idx []int
}

// fieldCache caches a map of struct field names to their properties.
var fieldCache sync.Map // map[reflect.Type]map[string]field

// cachedFields returns a map of field names to field properties for the
// given type. The result is cached to avoid repeated reflection work.
func cachedFields(t reflect.Type) map[string]field {
	if f, ok := fieldCache.Load(t); ok {
		if fields, ok := f.(map[string]field); ok {
			return fields
		}
	}

	fields := make(map[string]field)
	var walk func(t reflect.Type, idx []int)
	walk = func(t reflect.Type, idx []int) {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
				// Recurse into embedded structs.
				walk(sf.Type, append(append([]int(nil), idx...), i))
				continue
			}
			if !sf.IsExported() {
				continue
			}

			tag := sf.Tag.Get("vdf")
			if tag == "-" {
				continue
			}

			f := field{idx: append(append([]int(nil), idx...), i)}
			tagName := strings.Split(tag, ",")[0]

			// Store entries for the original tag name and field name.
			if tagName != "" {
				fields[tagName] = f
			}
			fields[sf.Name] = f

			// Store lower-cased versions for case-insensitive fallback,
			// but do not overwrite an existing case-sensitive match.
			if tagName != "" {
				if _, ok := fields[strings.ToLower(tagName)]; !ok {
					fields[strings.ToLower(tagName)] = f
				}
			}
			if _, ok := fields[strings.ToLower(sf.Name)]; !ok {
				fields[strings.ToLower(sf.Name)] = f
			}
		}
	}
	walk(t, nil)

	fieldCache.Store(t, fields)
	return fields
}
