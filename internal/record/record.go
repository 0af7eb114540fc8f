package record

import (
	"math"
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	// KindUndefined marks a value with no JSON representation (funcs, channels,
	// failed conversions). Stringify yields nothing for it.
	KindUndefined Kind = iota
	KindNull
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

// Value is one JSON-representable datum inside a log record.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	obj  Record
	arr  []Value
}

// Undefined returns the unrenderable value.
func Undefined() Value { return Value{kind: KindUndefined} }

// Null returns the JSON null value.
func Null() Value { return Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Object wraps a nested record.
func Object(r Record) Value { return Value{kind: KindObject, obj: r} }

// Array wraps a sequence of values.
func Array(elems ...Value) Value { return Value{kind: KindArray, arr: elems} }

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// Str returns the string content when v is a string.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// Num returns the numeric content when v is a number.
func (v Value) Num() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.n, true
}

// Record returns the nested record when v is an object.
func (v Value) Record() (Record, bool) {
	if v.kind != KindObject {
		return Record{}, false
	}
	return v.obj, true
}

// Elems returns the elements when v is an array.
func (v Value) Elems() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

// IsContainer reports whether v is an object or an array.
func (v Value) IsContainer() bool {
	return v.kind == KindObject || v.kind == KindArray
}

// AsRecord views a container as a record. Arrays are keyed by element index.
func (v Value) AsRecord() (Record, bool) {
	switch v.kind {
	case KindObject:
		return v.obj, true
	case KindArray:
		var r Record
		for i, e := range v.arr {
			r.Set(strconv.Itoa(i), e)
		}
		return r, true
	default:
		return Record{}, false
	}
}

// Truthy applies JavaScript truthiness, which is what log producers and
// filter expressions assume when they test a field.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n != 0 && !math.IsNaN(v.n)
	case KindString:
		return v.s != ""
	case KindObject, KindArray:
		return true
	default:
		return false
	}
}

// Text renders v the way a template string interpolates it.
func (v Value) Text() string {
	switch v.kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return formatNumber(v.n)
	case KindString:
		return v.s
	case KindObject:
		return "[object Object]"
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			if e.kind == KindNull || e.kind == KindUndefined {
				continue
			}
			parts[i] = e.Text()
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}

// formatNumber produces the shortest round-trip form with exponents only
// outside [1e-6, 1e21).
func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, ok := strings.Cut(s, "e")
		if !ok || len(exp) < 2 {
			return s
		}
		digits := strings.TrimLeft(exp[1:], "0")
		if digits == "" {
			digits = "0"
		}
		return mant + "e" + exp[:1] + digits
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Field is one key/value pair of a record.
type Field struct {
	Key   string
	Value Value
}

// KV builds a field, converting v with FromAny.
func KV(key string, v any) Field {
	return Field{Key: key, Value: FromAny(v)}
}

// Record is an ordered mapping from keys to values. The zero value is an
// empty record ready for use.
type Record struct {
	fields []Field
}

// Make builds a record from fields. A repeated key keeps its first position
// and takes the last value.
func Make(fields ...Field) Record {
	var r Record
	for _, f := range fields {
		r.Set(f.Key, f.Value)
	}
	return r
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.fields) }

// Fields returns the fields in order. The slice must not be modified.
func (r Record) Fields() []Field { return r.fields }

// Keys returns the keys in order.
func (r Record) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Key
	}
	return keys
}

// Get looks up key.
func (r Record) Get(key string) (Value, bool) {
	for _, f := range r.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Lookup returns the value for key, or Undefined when absent.
func (r Record) Lookup(key string) Value {
	v, ok := r.Get(key)
	if !ok {
		return Undefined()
	}
	return v
}

// Has reports whether key is present.
func (r Record) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Set replaces the value of an existing key in place, or appends a new field.
func (r *Record) Set(key string, v Value) {
	for i := range r.fields {
		if r.fields[i].Key == key {
			r.fields[i].Value = v
			return
		}
	}
	r.fields = append(r.fields, Field{Key: key, Value: v})
}

// Without returns a shallow copy of r omitting the given keys. Remaining
// fields keep their order.
func (r Record) Without(keys map[string]struct{}) Record {
	out := Record{fields: make([]Field, 0, len(r.fields))}
	for _, f := range r.fields {
		if _, drop := keys[f.Key]; drop {
			continue
		}
		out.fields = append(out.fields, f)
	}
	return out
}
