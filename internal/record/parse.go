package record

import (
	"fmt"

	"github.com/valyala/fastjson"
)

var parsers fastjson.ParserPool

// Parse decodes a JSON document. Object keys keep their document order.
// Keys that would reach an object prototype in a JavaScript consumer
// ("__proto__", or "constructor" holding a "prototype") are dropped.
func Parse(text string) (Value, error) {
	p := parsers.Get()
	defer parsers.Put(p)

	v, err := p.Parse(text)
	if err != nil {
		return Value{}, fmt.Errorf("parse record: %w", err)
	}
	return fromFastJSON(v), nil
}

// ParseBytes is Parse for a byte slice.
func ParseBytes(b []byte) (Value, error) {
	p := parsers.Get()
	defer parsers.Put(p)

	v, err := p.ParseBytes(b)
	if err != nil {
		return Value{}, fmt.Errorf("parse record: %w", err)
	}
	return fromFastJSON(v), nil
}

// fromFastJSON copies v out of parser-owned memory.
func fromFastJSON(v *fastjson.Value) Value {
	switch v.Type() {
	case fastjson.TypeObject:
		obj, _ := v.Object()
		var rec Record
		obj.Visit(func(k []byte, child *fastjson.Value) {
			key := string(k)
			if key == "__proto__" {
				return
			}
			cv := fromFastJSON(child)
			if key == "constructor" && cv.kind == KindObject && cv.obj.Has("prototype") {
				return
			}
			rec.Set(key, cv)
		})
		return Object(rec)
	case fastjson.TypeArray:
		items, _ := v.Array()
		elems := make([]Value, len(items))
		for i, item := range items {
			elems[i] = fromFastJSON(item)
		}
		return Array(elems...)
	case fastjson.TypeString:
		b, _ := v.StringBytes()
		return String(string(b))
	case fastjson.TypeNumber:
		n, _ := v.Float64()
		return Number(n)
	case fastjson.TypeTrue:
		return Bool(true)
	case fastjson.TypeFalse:
		return Bool(false)
	default:
		return Null()
	}
}
