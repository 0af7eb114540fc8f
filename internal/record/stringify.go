package record

import (
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// Stringify renders v as JSON, one member per line, nesting by indent.
// Empty containers render as {} and []. Undefined members are left out of
// objects and become null inside arrays. The boolean result is false when v
// itself is Undefined, in which case there is nothing to render.
func Stringify(v Value, indent string) (string, bool) {
	if v.kind == KindUndefined {
		return "", false
	}
	var b strings.Builder
	writeJSON(&b, v, indent, "")
	return b.String(), true
}

// Unquote decodes a JSON string literal, quotes included.
func Unquote(lit string) (string, error) {
	var s string
	if err := json.Unmarshal([]byte(lit), &s); err != nil {
		return "", err
	}
	return s, nil
}

func writeJSON(b *strings.Builder, v Value, indent, prefix string) {
	switch v.kind {
	case KindBool:
		b.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			b.WriteString("null")
			return
		}
		b.WriteString(formatNumber(v.n))
	case KindString:
		b.WriteString(quote(v.s))
	case KindArray:
		if len(v.arr) == 0 {
			b.WriteString("[]")
			return
		}
		inner := prefix + indent
		b.WriteString("[\n")
		for i, e := range v.arr {
			if i > 0 {
				b.WriteString(",\n")
			}
			b.WriteString(inner)
			writeJSON(b, e, indent, inner)
		}
		b.WriteString("\n")
		b.WriteString(prefix)
		b.WriteString("]")
	case KindObject:
		inner := prefix + indent
		written := 0
		for _, f := range v.obj.fields {
			if f.Value.kind == KindUndefined {
				continue
			}
			if written == 0 {
				b.WriteString("{\n")
			} else {
				b.WriteString(",\n")
			}
			b.WriteString(inner)
			b.WriteString(quote(f.Key))
			b.WriteString(": ")
			writeJSON(b, f.Value, indent, inner)
			written++
		}
		if written == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteString("\n")
		b.WriteString(prefix)
		b.WriteString("}")
	default:
		b.WriteString("null")
	}
}

func quote(s string) string {
	out, err := json.MarshalWithOption(s, json.DisableHTMLEscape())
	if err != nil {
		return strconv.Quote(s)
	}
	return string(out)
}
