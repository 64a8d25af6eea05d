package resolve

import (
	"reflect"

	"github.com/oxhq/searchq/core"
)

// Access walks a dotted path over a dynamic record. Each step is a
// field lookup; when a step meets a list, the remaining path is applied
// to every element and all reached terminals are collected, which gives
// conditions their existential semantics. An empty result means the
// path is missing everywhere.
func Access(obj any, segments []string) []any {
	frontier := []any{obj}
	for _, seg := range segments {
		var next []any
		for _, item := range frontier {
			for _, elem := range flatten(item) {
				if v, ok := core.Attribute(elem, seg); ok {
					next = append(next, v)
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		frontier = next
	}
	return frontier
}

// Flatten expands list values into their elements; scalars and records
// pass through as a single element.
func Flatten(v any) []any { return flatten(v) }

func flatten(v any) []any {
	switch t := v.(type) {
	case nil:
		return []any{nil}
	case []any:
		return t
	case []core.Record:
		out := make([]any, len(t))
		for i, r := range t {
			out[i] = r
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = m
		}
		return out
	case string, []byte:
		return []any{v}
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return []any{v}
}
