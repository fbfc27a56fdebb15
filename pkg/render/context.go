package render

import (
	"fmt"
	"reflect"
	"strings"
)

// Context carries the variables for one render call. The engine never
// mutates the instance a caller passes in; it works on a private shallow
// copy, so the caller's map (and its entries, by reference) comes back
// untouched on both the success and failure paths.
type Context map[string]any

// Clone returns a shallow copy. A nil context clones to an empty, writable
// one.
func (c Context) Clone() Context {
	out := make(Context, len(c)+4)
	for key, value := range c {
		out[key] = value
	}
	return out
}

// setDefault writes value only when key is absent, so caller-supplied values
// always beat injected defaults.
func (c Context) setDefault(key string, value any) {
	if _, ok := c[key]; !ok {
		c[key] = value
	}
}

// summarize maps variable names to runtime type names for error reports.
// Collections carry their length; raw values are never included, so the
// summary is safe to surface outside the process. Keys prefixed with "_" are
// treated as internal and skipped.
func summarize(c Context) map[string]string {
	if len(c) == 0 {
		return nil
	}
	out := make(map[string]string, len(c))
	for key, value := range c {
		if strings.HasPrefix(key, "_") {
			continue
		}
		out[key] = typeLabel(value)
	}
	return out
}

func typeLabel(v any) string {
	if v == nil {
		return "nil"
	}
	rv := reflect.ValueOf(v)
	name := rv.Type().String()
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return fmt.Sprintf("%s[%d]", name, rv.Len())
	default:
		return name
	}
}
