package ecs

// Fields wraps a JSON component body and records which keys a Load
// consumed, so the factory can warn about the rest.
type Fields struct {
	m    map[string]any
	used map[string]bool
}

// NewFields wraps a component body.
func NewFields(m map[string]any) *Fields {
	return &Fields{m: m, used: make(map[string]bool, len(m))}
}

// Unknown returns the keys no accessor touched.
func (f *Fields) Unknown() []string {
	var out []string
	for k := range f.m {
		if !f.used[k] {
			out = append(out, k)
		}
	}
	return out
}

// Raw returns the named value untyped, marking it consumed.
func (f *Fields) Raw(key string) (any, bool) {
	v, ok := f.m[key]
	if ok {
		f.used[key] = true
	}
	return v, ok
}

// Float reads a numeric field, returning def when absent or mistyped.
func (f *Fields) Float(key string, def float64) float64 {
	v, ok := f.Raw(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return def
}

// Int reads an integer field. JSON numbers arrive as float64.
func (f *Fields) Int(key string, def int) int {
	v, ok := f.Raw(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return def
}

// Str reads a string field.
func (f *Fields) Str(key, def string) string {
	if v, ok := f.Raw(key); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool reads a boolean field.
func (f *Fields) Bool(key string, def bool) bool {
	if v, ok := f.Raw(key); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// List reads an array field of objects.
func (f *Fields) List(key string) []map[string]any {
	v, ok := f.Raw(key)
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// Strings reads an array field of strings.
func (f *Fields) Strings(key string) []string {
	v, ok := f.Raw(key)
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
