package prettify

import (
	"errors"
	"fmt"
	"strings"

	"github.com/five82/plume/internal/colors"
	"github.com/five82/plume/internal/record"
	"github.com/five82/plume/internal/search"
)

// ErrUnsupportedInput is returned by Format when the input is neither text
// nor a record.
var ErrUnsupportedInput = errors.New("prettify: input is neither text nor a record")

// Formatter turns log records into prettified text. Its configuration is
// fixed at construction, so one Formatter may be shared between goroutines.
type Formatter struct {
	eol           string
	messageKey    string
	errorLikeKeys []string
	errorProps    []string
	allErrorProps bool
	levelFirst    bool
	timeFormat    TimeFormat
	ignore        map[string]struct{}
	filter        *search.Filter
	colors        colors.Colorizer
}

// New resolves opts into a Formatter.
func New(opts Options) (*Formatter, error) {
	f := &Formatter{
		eol:        "\n",
		messageKey: opts.MessageKey,
		levelFirst: opts.LevelFirst,
		timeFormat: ParseTimeFormat(strings.TrimSpace(opts.TranslateTime)),
		colors:     colors.New(opts.Colorize),
	}
	if opts.CRLF {
		f.eol = "\r\n"
	}
	if f.messageKey == "" {
		f.messageKey = DefaultMessageKey
	}

	f.errorLikeKeys = append([]string(nil), DefaultErrorLikeKeys...)
	for _, k := range opts.ErrorLikeKeys {
		if k = strings.TrimSpace(k); k != "" {
			f.errorLikeKeys = append(f.errorLikeKeys, k)
		}
	}

	if props := splitList(opts.ErrorProps); len(props) > 0 {
		if props[0] == "*" {
			f.allErrorProps = true
		} else {
			f.errorProps = props
		}
	}

	if keys := splitList(opts.Ignore); len(keys) > 0 {
		f.ignore = toSet(keys)
	}

	if strings.TrimSpace(opts.Search) != "" {
		filter, err := search.Compile(opts.Search)
		if err != nil {
			return nil, fmt.Errorf("prettify: %w", err)
		}
		f.filter = filter
	}
	return f, nil
}

// EOL returns the configured line terminator.
func (f *Formatter) EOL() string { return f.eol }

// Format accepts a line of text ([]byte or string) or a record (Record or
// map[string]any). The boolean result is false when the record was
// suppressed by the search filter.
func (f *Formatter) Format(input any) (string, bool, error) {
	switch x := input.(type) {
	case string:
		out, ok := f.FormatLine(x)
		return out, ok, nil
	case []byte:
		out, ok := f.FormatLine(string(x))
		return out, ok, nil
	case record.Record:
		out, ok := f.FormatRecord(x)
		return out, ok, nil
	case map[string]any:
		rec, _ := record.FromAny(x).Record()
		out, ok := f.FormatRecord(rec)
		return out, ok, nil
	default:
		return "", false, ErrUnsupportedInput
	}
}

// FormatLine parses line as JSON and formats the record. Lines that are
// not JSON objects are passed through unchanged; the literals null, true
// and false are echoed with a plain "\n" regardless of CRLF.
func (f *Formatter) FormatLine(line string) (string, bool) {
	v, err := record.Parse(line)
	if err != nil {
		return line + f.eol, true
	}
	switch v.Kind() {
	case record.KindNull, record.KindBool:
		return v.Text() + "\n", true
	case record.KindObject:
		rec, _ := v.Record()
		return f.FormatRecord(rec)
	default:
		return line + f.eol, true
	}
}

// FormatRecord formats one record. It reports false when the record does
// not match the search filter.
func (f *Formatter) FormatRecord(rec record.Record) (string, bool) {
	if f.filter != nil && !f.filter.Match(rec) {
		return "", false
	}
	if f.ignore != nil {
		rec = rec.Without(f.ignore)
	}

	line := f.header(rec)
	if line != "" {
		line += f.eol
	}
	if isError(rec) {
		return line + f.errorBody(rec), true
	}

	var skip []string
	if _, ok := rec.Lookup(f.messageKey).Str(); ok {
		skip = []string{f.messageKey}
	}
	return line + Object(rec, ObjectOptions{
		SkipKeys:      skip,
		ErrorLikeKeys: f.errorLikeKeys,
		Indent:        indent,
		EOL:           f.eol,
	}), true
}

func (f *Formatter) header(rec record.Record) string {
	var line string
	add := func(part string) {
		if line != "" {
			line += " "
		}
		line += part
	}

	level, hasLevel := Level(rec, f.colors)
	if f.levelFirst && hasLevel {
		add(level)
	}
	if ts, ok := Time(rec, f.timeFormat); ok {
		add(ts)
	}
	if !f.levelFirst && hasLevel {
		add(level)
	}
	if meta, ok := Metadata(rec); ok {
		add(meta + ":")
	}
	if line != "" && !strings.HasSuffix(line, ":") {
		line += ":"
	}
	// The message is always preceded by a space, even on an empty header.
	if msg, ok := Message(rec, f.messageKey, f.colors); ok {
		line += " " + msg
	}
	return line
}

// errorBody renders the stack of an Error record followed by the selected
// extra properties.
func (f *Formatter) errorBody(rec record.Record) string {
	stack, _ := rec.Lookup("stack").Str()
	var b strings.Builder
	b.WriteString(indent)
	b.WriteString(joinLines(stack, indent, f.eol))
	b.WriteString(f.eol)

	candidates := f.errorProps
	if f.allErrorProps {
		candidates = rec.Keys()
	}
	if len(candidates) == 0 {
		return b.String()
	}

	excluded := toSet(loggerKeys, []string{f.messageKey, "type", "stack"})
	for _, key := range candidates {
		if _, skip := excluded[key]; skip {
			continue
		}
		v, ok := rec.Get(key)
		if !ok {
			continue
		}
		// Nested values may reuse top-level key names, so logger keys stay.
		if nested, ok := v.AsRecord(); ok {
			b.WriteString(key)
			b.WriteString(": {")
			b.WriteString(f.eol)
			b.WriteString(Object(nested, ObjectOptions{
				ErrorLikeKeys:     f.errorLikeKeys,
				IncludeLoggerKeys: true,
				Indent:            indent,
				EOL:               f.eol,
			}))
			b.WriteString("}")
			b.WriteString(f.eol)
			continue
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(v.Text())
		b.WriteString(f.eol)
	}
	return b.String()
}

func isError(rec record.Record) bool {
	typ, _ := rec.Lookup("type").Str()
	stack, _ := rec.Lookup("stack").Str()
	return typ == "Error" && stack != ""
}
