package record

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestParse_PreservesKeyOrder(t *testing.T) {
	v, err := Parse(`{"z":1,"a":"two","m":{"y":true,"b":null}}`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	rec, ok := v.Record()
	if !ok {
		t.Fatalf("Parse kind = %v, want object", v.Kind())
	}
	if got := strings.Join(rec.Keys(), ","); got != "z,a,m" {
		t.Fatalf("Keys = %q, want z,a,m", got)
	}
	nested, _ := rec.Lookup("m").Record()
	if got := strings.Join(nested.Keys(), ","); got != "y,b" {
		t.Fatalf("nested Keys = %q, want y,b", got)
	}
}

func TestParse_DuplicateKeysKeepFirstPositionLastValue(t *testing.T) {
	v, err := Parse(`{"a":1,"b":2,"a":3}`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	rec, _ := v.Record()
	if got := strings.Join(rec.Keys(), ","); got != "a,b" {
		t.Fatalf("Keys = %q, want a,b", got)
	}
	if n, _ := rec.Lookup("a").Num(); n != 3 {
		t.Fatalf("a = %v, want 3", n)
	}
}

func TestParse_DropsPrototypeKeys(t *testing.T) {
	v, err := Parse(`{"a":1,"__proto__":{"polluted":true},"constructor":{"prototype":{"x":1}},"b":{"__proto__":1,"c":2}}`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	rec, _ := v.Record()
	if got := strings.Join(rec.Keys(), ","); got != "a,b" {
		t.Fatalf("Keys = %q, want a,b", got)
	}
	nested, _ := rec.Lookup("b").Record()
	if got := strings.Join(nested.Keys(), ","); got != "c" {
		t.Fatalf("nested Keys = %q, want c", got)
	}
}

func TestParse_KeepsPlainConstructorKey(t *testing.T) {
	v, err := Parse(`{"constructor":"Foo"}`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	rec, _ := v.Record()
	if !rec.Has("constructor") {
		t.Fatalf("constructor key dropped, want it kept")
	}
}

func TestParse_InvalidJSONFails(t *testing.T) {
	for _, input := range []string{"", "not json", "{\"a\":", "{} trailing"} {
		if _, err := Parse(input); err == nil {
			t.Fatalf("Parse(%q) returned nil error, want error", input)
		}
	}
}

func TestValue_Text(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Number(1554642900000), "1554642900000"},
		{Number(1.5), "1.5"},
		{Number(1e21), "1e+21"},
		{Number(1e-7), "1e-7"},
		{Number(math.NaN()), "NaN"},
		{String("x"), "x"},
		{Bool(false), "false"},
		{Null(), "null"},
		{Undefined(), "undefined"},
		{Object(Make(KV("a", 1))), "[object Object]"},
		{Array(Number(1), Null(), String("b")), "1,,b"},
	}
	for _, tt := range tests {
		if got := tt.v.Text(); got != tt.want {
			t.Fatalf("Text() = %q, want %q", got, tt.want)
		}
	}
}

func TestValue_Truthy(t *testing.T) {
	truthy := []Value{Bool(true), Number(-1), String("0"), Object(Record{}), Array()}
	falsy := []Value{Bool(false), Number(0), Number(math.NaN()), String(""), Null(), Undefined()}
	for _, v := range truthy {
		if !v.Truthy() {
			t.Fatalf("Truthy(%q) = false, want true", v.Text())
		}
	}
	for _, v := range falsy {
		if v.Truthy() {
			t.Fatalf("Truthy(%q) = true, want false", v.Text())
		}
	}
}

func TestRecord_WithoutPreservesOrder(t *testing.T) {
	rec := Make(KV("a", 1), KV("b", 2), KV("c", 3), KV("d", 4))
	got := rec.Without(map[string]struct{}{"b": {}, "missing": {}})
	if keys := strings.Join(got.Keys(), ","); keys != "a,c,d" {
		t.Fatalf("Keys = %q, want a,c,d", keys)
	}
	if rec.Len() != 4 {
		t.Fatalf("source record modified: Len = %d, want 4", rec.Len())
	}
}

func TestStringify_Layout(t *testing.T) {
	v, err := Parse(`{"a":1,"b":[1,"two",{}],"c":{"d":[]},"e":"q\"uote\n<tag>"}`)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	got, ok := Stringify(v, "  ")
	if !ok {
		t.Fatalf("Stringify returned ok=false")
	}
	want := `{
  "a": 1,
  "b": [
    1,
    "two",
    {}
  ],
  "c": {
    "d": []
  },
  "e": "q\"uote\n<tag>"
}`
	if got != want {
		t.Fatalf("Stringify =\n%s\nwant\n%s", got, want)
	}
}

func TestStringify_UndefinedHandling(t *testing.T) {
	if _, ok := Stringify(Undefined(), "  "); ok {
		t.Fatalf("Stringify(Undefined) ok = true, want false")
	}
	obj := Object(Make(Field{Key: "fn", Value: Undefined()}, KV("x", 1)))
	got, _ := Stringify(obj, "  ")
	if got != "{\n  \"x\": 1\n}" {
		t.Fatalf("Stringify = %q, want undefined member omitted", got)
	}
	arr := Array(Undefined(), Number(math.Inf(1)))
	got, _ = Stringify(arr, "  ")
	if got != "[\n  null,\n  null\n]" {
		t.Fatalf("Stringify = %q, want nulls", got)
	}
}

func TestFromAny_SortsMapsAndMarksCycles(t *testing.T) {
	m := map[string]any{"b": 2, "a": []any{"x", nil}}
	m["self"] = m
	got, _ := Stringify(FromAny(m), "  ")
	want := `{
  "a": [
    "x",
    null
  ],
  "b": 2,
  "self": "[Circular]"
}`
	if got != want {
		t.Fatalf("Stringify(FromAny) =\n%s\nwant\n%s", got, want)
	}
}

func TestFromAny_RepeatedReferenceIsNotCircular(t *testing.T) {
	shared := map[string]any{"k": "v"}
	v := FromAny(map[string]any{"x": shared, "y": shared})
	rec, _ := v.Record()
	if rec.Lookup("y").Kind() != KindObject {
		t.Fatalf("y kind = %v, want object", rec.Lookup("y").Kind())
	}
}

func TestFromAny_Scalars(t *testing.T) {
	type level int
	type payload struct {
		Zed   string `json:"zed"`
		Alpha int    `json:"alpha"`
	}
	if v := FromAny(func() {}); v.Kind() != KindUndefined {
		t.Fatalf("func kind = %v, want undefined", v.Kind())
	}
	if v := FromAny(make(chan int)); v.Kind() != KindUndefined {
		t.Fatalf("chan kind = %v, want undefined", v.Kind())
	}
	if n, _ := FromAny(level(40)).Num(); n != 40 {
		t.Fatalf("named int = %v, want 40", n)
	}
	if s, _ := FromAny(errors.New("boom")).Str(); s != "boom" {
		t.Fatalf("error = %q, want boom", s)
	}
	ts := time.Date(2019, 4, 7, 13, 15, 0, 0, time.UTC)
	if s, _ := FromAny(ts).Str(); s != "2019-04-07T13:15:00.000Z" {
		t.Fatalf("time = %q, want ISO string", s)
	}
	rec, ok := FromAny(payload{Zed: "z", Alpha: 1}).Record()
	if !ok {
		t.Fatalf("struct did not convert to object")
	}
	if keys := strings.Join(rec.Keys(), ","); keys != "zed,alpha" {
		t.Fatalf("struct keys = %q, want zed,alpha", keys)
	}
}

func TestToInterface(t *testing.T) {
	v, _ := Parse(`{"a":[1,true,null],"b":{"c":"d"}}`)
	tree, ok := ToInterface(v).(map[string]any)
	if !ok {
		t.Fatalf("ToInterface did not return a map")
	}
	arr := tree["a"].([]any)
	if arr[0] != float64(1) || arr[1] != true || arr[2] != nil {
		t.Fatalf("a = %#v, want [1 true nil]", arr)
	}
	if tree["b"].(map[string]any)["c"] != "d" {
		t.Fatalf("b.c = %#v, want d", tree["b"])
	}
}

func TestUnquote(t *testing.T) {
	got, err := Unquote(`"Error: x\n    at f (a.js:1:2)"`)
	if err != nil {
		t.Fatalf("Unquote returned error: %v", err)
	}
	if got != "Error: x\n    at f (a.js:1:2)" {
		t.Fatalf("Unquote = %q", got)
	}
	if _, err := Unquote(`"unterminated`); err == nil {
		t.Fatalf("Unquote returned nil error, want error")
	}
}
