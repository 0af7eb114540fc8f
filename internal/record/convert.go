package record

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	json "github.com/goccy/go-json"
)

// circular replaces a reference back to a container still being converted.
const circular = "[Circular]"

// FromAny converts a Go value into a Value. Maps are ordered by key so the
// result is deterministic. Cyclic references become the string "[Circular]";
// funcs and channels become Undefined. Structs and other composite types go
// through their JSON encoding.
func FromAny(v any) Value {
	c := converter{active: make(map[uintptr]struct{})}
	return c.convert(v)
}

// ToInterface converts v into the plain tree produced by decoding JSON into
// an `any`: map[string]any, []any, float64, string, bool and nil.
func ToInterface(v Value) any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindObject:
		m := make(map[string]any, len(v.obj.fields))
		for _, f := range v.obj.fields {
			if f.Value.kind == KindUndefined {
				continue
			}
			m[f.Key] = ToInterface(f.Value)
		}
		return m
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = ToInterface(e)
		}
		return out
	default:
		return nil
	}
}

type converter struct {
	active map[uintptr]struct{}
}

func (c *converter) convert(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case Record:
		return Object(x)
	case string:
		return String(x)
	case bool:
		return Bool(x)
	case float64:
		return Number(x)
	case int:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case time.Time:
		return String(x.UTC().Format("2006-01-02T15:04:05.000Z"))
	case error:
		return String(x.Error())
	case fmt.Stringer:
		return String(x.String())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return c.viaJSON(v)
		}
		if rv.IsNil() {
			return Null()
		}
		return c.enter(rv.Pointer(), func() Value {
			keys := rv.MapKeys()
			sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
			var rec Record
			for _, k := range keys {
				rec.Set(k.String(), c.convert(rv.MapIndex(k).Interface()))
			}
			return Object(rec)
		})
	case reflect.Slice:
		if rv.IsNil() {
			return Null()
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return c.viaJSON(v)
		}
		if rv.Len() == 0 {
			return Array()
		}
		return c.enter(rv.Pointer(), func() Value { return c.elems(rv) })
	case reflect.Array:
		return c.elems(rv)
	case reflect.Pointer:
		if rv.IsNil() {
			return Null()
		}
		return c.enter(rv.Pointer(), func() Value { return c.convert(rv.Elem().Interface()) })
	case reflect.Interface:
		if rv.IsNil() {
			return Null()
		}
		return c.convert(rv.Elem().Interface())
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return Undefined()
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.String:
		return String(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Number(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float())
	default:
		return c.viaJSON(v)
	}
}

func (c *converter) elems(rv reflect.Value) Value {
	out := make([]Value, rv.Len())
	for i := range out {
		out[i] = c.convert(rv.Index(i).Interface())
	}
	return Array(out...)
}

// enter guards conversion of the container at ptr against cycles.
func (c *converter) enter(ptr uintptr, fn func() Value) Value {
	if _, seen := c.active[ptr]; seen {
		return String(circular)
	}
	c.active[ptr] = struct{}{}
	defer delete(c.active, ptr)
	return fn()
}

func (c *converter) viaJSON(v any) Value {
	b, err := json.Marshal(v)
	if err != nil {
		return Undefined()
	}
	parsed, err := ParseBytes(b)
	if err != nil {
		return Undefined()
	}
	return parsed
}
