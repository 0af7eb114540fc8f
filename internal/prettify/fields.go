package prettify

import (
	"strings"

	"github.com/five82/plume/internal/colors"
	"github.com/five82/plume/internal/record"
	"github.com/five82/plume/internal/timefmt"
)

// levelLabels maps level codes to labels padded to a common width.
var levelLabels = map[string]string{
	"60": "FATAL",
	"50": "ERROR",
	"40": "WARN ",
	"30": "INFO ",
	"20": "DEBUG",
	"10": "TRACE",
}

const unknownLevelLabel = "USERLVL"

// Level renders the level field. It reports false when the record has no
// level.
func Level(rec record.Record, c colors.Colorizer) (string, bool) {
	v, ok := rec.Get("level")
	if !ok {
		return "", false
	}
	code := v.Text()
	if label, known := levelLabels[code]; known {
		return c.Level(code)(label), true
	}
	return c.Default(unknownLevelLabel), true
}

// Message renders the message field, which must hold a string.
func Message(rec record.Record, messageKey string, c colors.Colorizer) (string, bool) {
	v, ok := rec.Get(messageKey)
	if !ok {
		return "", false
	}
	s, ok := v.Str()
	if !ok {
		return "", false
	}
	return c.Message(s), true
}

// Time renders the time field in brackets. Values that cannot be read as an
// instant are shown as found.
func Time(rec record.Record, tf TimeFormat) (string, bool) {
	v, ok := rec.Get("time")
	if !ok {
		return "", false
	}
	if tf.Mode != TimeRaw {
		if t, ok := timefmt.ParseValue(v); ok {
			return "[" + timefmt.Format(t, tf.Pattern, tf.Mode == TimeUTC) + "]", true
		}
	}
	return "[" + v.Text() + "]", true
}

// Metadata renders "(name/pid on hostname)", leaving out missing parts.
func Metadata(rec record.Record) (string, bool) {
	name, pid, host := rec.Lookup("name"), rec.Lookup("pid"), rec.Lookup("hostname")
	if !name.Truthy() && !pid.Truthy() && !host.Truthy() {
		return "", false
	}

	var b strings.Builder
	b.WriteByte('(')
	if name.Truthy() {
		b.WriteString(name.Text())
	}
	if pid.Truthy() {
		if name.Truthy() {
			b.WriteByte('/')
		}
		b.WriteString(pid.Text())
	}
	if host.Truthy() {
		if b.Len() > 1 {
			b.WriteByte(' ')
		}
		b.WriteString("on ")
		b.WriteString(host.Text())
	}
	b.WriteByte(')')
	return b.String(), true
}
