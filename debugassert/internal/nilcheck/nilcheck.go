// Package nilcheck detects nil values hidden behind non-nil interfaces.
package nilcheck

import "reflect"

// Is reports whether value is nil or an interface holding a nil pointer,
// map, slice, channel, function or interface. A (*T)(nil) passed where an
// interface is expected is not == nil, which is what this catches.
func Is(value any) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)

	switch v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}
