package prettify

import (
	"regexp"
	"strings"

	"github.com/five82/plume/internal/record"
)

// ObjectOptions control Object. Zero values select a four-space indent,
// "\n" line endings and exclusion of the logger keys.
type ObjectOptions struct {
	SkipKeys          []string
	ErrorLikeKeys     []string
	IncludeLoggerKeys bool
	Indent            string
	EOL               string
}

var (
	newline   = regexp.MustCompile(`\r?\n`)
	stackLine = regexp.MustCompile(`^(\s*"stack":)\s*(".*"),?$`)
)

// Object renders each remaining key of input as an indented
// "key: <json>" block. Values of error-like keys have their serialized
// "stack" member expanded into plain indented lines.
func Object(input record.Record, opts ObjectOptions) string {
	ident, eol := opts.Indent, opts.EOL
	if ident == "" {
		ident = indent
	}
	if eol == "" {
		eol = "\n"
	}
	skip := toSet(opts.SkipKeys)
	if !opts.IncludeLoggerKeys {
		for _, k := range loggerKeys {
			skip[k] = struct{}{}
		}
	}
	errorLike := toSet(opts.ErrorLikeKeys)

	var b strings.Builder
	for _, f := range input.Fields() {
		if _, skipped := skip[f.Key]; skipped {
			continue
		}
		lines, ok := record.Stringify(f.Value, "  ")
		if !ok {
			continue
		}
		block := ident + f.Key + ": " + joinLines(lines, ident, eol) + eol
		if _, ok := errorLike[f.Key]; ok {
			writeErrorLike(&b, block, eol)
			continue
		}
		b.WriteString(block)
	}
	return b.String()
}

func writeErrorLike(b *strings.Builder, block, eol string) {
	for i, line := range strings.Split(block, eol) {
		if i != 0 {
			b.WriteString(eol)
		}
		if m := stackLine.FindStringSubmatch(line); m != nil {
			if stack, err := record.Unquote(m[2]); err == nil {
				width := len(line) - len(strings.TrimLeft(line, " \t"))
				pad := strings.Repeat(" ", width+4)
				b.WriteString(m[1])
				b.WriteString(eol)
				b.WriteString(pad)
				b.WriteString(strings.ReplaceAll(stack, "\n", eol+pad))
				continue
			}
		}
		b.WriteString(line)
	}
}

// joinLines indents every line after the first and joins them with eol.
func joinLines(input, ident, eol string) string {
	lines := newline.Split(input, -1)
	for i := 1; i < len(lines); i++ {
		lines[i] = ident + lines[i]
	}
	return strings.Join(lines, eol)
}
