package store

import "math"

// Meta is a partial tile record. Only keys present are meaningful; a key
// mapped to nil is an explicit null.
type Meta map[string]any

// Well-known record keys.
const (
	KeyName      = "name"
	KeyIsDir     = "isdir"
	KeyDuration  = "duration"
	KeyTileColor = "tile_color"
	KeyPosition  = "position"
	KeyWatched   = "watched"
	KeyTrash     = "trash"
)

// Name returns the entry name, or "" when absent.
func (m Meta) Name() string {
	s, _ := m.String(KeyName)
	return s
}

// IsDir reports the directory flag; absent means false.
func (m Meta) IsDir() bool {
	b, _ := m.Bool(KeyIsDir)
	return b
}

// Has reports whether key is present, including explicit nulls.
func (m Meta) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// IsNull reports whether key is present with a null value.
func (m Meta) IsNull(key string) bool {
	v, ok := m[key]
	return ok && v == nil
}

// Float returns a numeric value.
func (m Meta) Float(key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Uint returns a non-negative integral value, such as the watched bitmask.
func (m Meta) Uint(key string) (uint64, bool) {
	switch v := m[key].(type) {
	case uint64:
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		f, ok := m.Float(key)
		if !ok || f < 0 || f != math.Trunc(f) {
			return 0, false
		}
		return uint64(f), true
	}
}

// Bool returns a boolean value.
func (m Meta) Bool(key string) (bool, bool) {
	b, ok := m[key].(bool)
	return b, ok
}

// String returns a string value.
func (m Meta) String(key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

// Clone returns a shallow copy.
func (m Meta) Clone() Meta {
	out := make(Meta, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Apply overwrites m's fields with every field present in u.
func (m Meta) Apply(u Meta) {
	for k, v := range u {
		m[k] = v
	}
}
