package vdf

// An Entry is a single key-value pair in an Object. The value is either a
// string scalar or a nested *Object.
type Entry struct {
	Key   string
	Value any
}

// An Object is an ordered mapping from keys to string scalars and nested
// Objects. Setting an existing key overwrites its value in place, keeping
// the key's original position, so documents round-trip stably.
type Object struct {
	entries []Entry
	index   map[string]int
}

// NewObject returns a new empty Object.
func NewObject() *Object {
	return &Object{index: make(map[string]int)}
}

// Len returns the number of entries.
func (o *Object) Len() int {
	return len(o.entries)
}

// Get returns the value stored under key, or (nil, false) if absent.
func (o *Object) Get(key string) (any, bool) {
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.entries[i].Value, true
}

// Set stores value under key. An existing key keeps its position; a new key
// is appended. The value must be a string or a *Object.
func (o *Object) Set(key string, value any) {
	if i, ok := o.index[key]; ok {
		o.entries[i].Value = value
		return
	}
	if o.index == nil {
		o.index = make(map[string]int)
	}
	o.index[key] = len(o.entries)
	o.entries = append(o.entries, Entry{Key: key, Value: value})
}

// Delete removes key and reports whether it was present.
func (o *Object) Delete(key string) bool {
	i, ok := o.index[key]
	if !ok {
		return false
	}
	o.entries = append(o.entries[:i], o.entries[i+1:]...)
	delete(o.index, key)
	for k, j := range o.index {
		if j > i {
			o.index[k] = j - 1
		}
	}
	return true
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, len(o.entries))
	for i, e := range o.entries {
		keys[i] = e.Key
	}
	return keys
}

// At returns the i'th entry in insertion order.
func (o *Object) At(i int) Entry {
	return o.entries[i]
}

// Walk calls fn for each entry in insertion order until fn returns false.
func (o *Object) Walk(fn func(key string, value any) bool) {
	for _, e := range o.entries {
		if !fn(e.Key, e.Value) {
			return
		}
	}
}

// Equal reports whether two Objects hold the same keys in the same order
// with structurally equal values.
func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	for i, e := range o.entries {
		oe := other.entries[i]
		if e.Key != oe.Key {
			return false
		}
		switch v := e.Value.(type) {
		case string:
			ov, ok := oe.Value.(string)
			if !ok || v != ov {
				return false
			}
		case *Object:
			ov, ok := oe.Value.(*Object)
			if !ok || !v.Equal(ov) {
				return false
			}
		default:
			return false
		}
	}
	return true
}
