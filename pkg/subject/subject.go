package subject

import (
	"reflect"
	"sync"
)

// Renderable lets a runtime value carry its declared subject type. Values
// that do not implement it are dispatched on a reflection-derived leaf type.
type Renderable interface {
	RenderType() *Type
}

var (
	derived sync.Map // reflect.Type -> *Type
	nilType = MustType("<nil>")
)

// TypeOf resolves the subject type for an arbitrary runtime value. Renderable
// values return their declared descriptor; everything else gets a memoised
// leaf type named after the value's Go type, so repeated calls with values of
// the same concrete type yield the same descriptor.
func TypeOf(v any) *Type {
	if r, ok := v.(Renderable); ok {
		if t := r.RenderType(); t != nil {
			return t
		}
	}

	rt := reflect.TypeOf(v)
	if rt == nil {
		return nilType
	}
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}

	if cached, ok := derived.Load(rt); ok {
		return cached.(*Type)
	}

	name := rt.Name()
	if name == "" {
		name = rt.String()
	}
	t := MustType(name)
	actual, _ := derived.LoadOrStore(rt, t)
	return actual.(*Type)
}
