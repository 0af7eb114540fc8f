// Package timefmt renders instants with dateformat-style masks such as
// "yyyy-mm-dd HH:MM:ss.l o" and turns log time values into instants.
package timefmt

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/five82/plume/internal/record"
)

// Standard is the canonical pattern used for translated timestamps.
const Standard = "yyyy-mm-dd HH:MM:ss.l o"

// Named masks accepted in place of a pattern.
var masks = map[string]string{
	"default":        "ddd mmm dd yyyy HH:MM:ss",
	"shortDate":      "m/d/yy",
	"mediumDate":     "mmm d, yyyy",
	"longDate":       "mmmm d, yyyy",
	"fullDate":       "dddd, mmmm d, yyyy",
	"shortTime":      "h:MM TT",
	"mediumTime":     "h:MM:ss TT",
	"longTime":       "h:MM:ss TT Z",
	"isoDate":        "yyyy-mm-dd",
	"isoTime":        "HH:MM:ss",
	"isoDateTime":    "yyyy-mm-dd'T'HH:MM:sso",
	"isoUtcDateTime": "UTC:yyyy-mm-dd'T'HH:MM:ss'Z'",
}

var (
	dayNames   = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	dayLong    = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}
	monthNames = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	monthLong  = [...]string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"}
)

// Format renders t with pattern. When utc is false the instant is shown in
// the local zone. A pattern prefixed with "UTC:" or "GMT:" forces UTC.
func Format(t time.Time, pattern string, utc bool) string {
	if named, ok := masks[pattern]; ok {
		pattern = named
	}
	if pattern == "" {
		pattern = masks["default"]
	}
	if p, ok := cutPrefix(pattern, "UTC:", "GMT:"); ok {
		pattern, utc = p, true
	}
	if utc {
		t = t.UTC()
	} else {
		t = t.In(time.Local)
	}

	var b strings.Builder
	for i := 0; i < len(pattern); {
		c := pattern[i]
		switch c {
		case '\'', '"':
			if end := strings.IndexByte(pattern[i+1:], c); end >= 0 {
				b.WriteString(pattern[i+1 : i+1+end])
				i += end + 2
				continue
			}
			b.WriteByte(c)
			i++
		case 'd', 'm':
			n := run(pattern, i, 4)
			writeToken(&b, t, strings.Repeat(string(c), n), utc)
			i += n
		case 'y':
			switch {
			case strings.HasPrefix(pattern[i:], "yyyy"):
				writeToken(&b, t, "yyyy", utc)
				i += 4
			case strings.HasPrefix(pattern[i:], "yy"):
				writeToken(&b, t, "yy", utc)
				i += 2
			default:
				b.WriteByte(c)
				i++
			}
		case 'H', 'h', 'M', 's', 'T', 't':
			n := run(pattern, i, 2)
			writeToken(&b, t, strings.Repeat(string(c), n), utc)
			i += n
		case 'L', 'l', 'o', 'S', 'Z', 'N', 'W':
			writeToken(&b, t, string(c), utc)
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

func writeToken(b *strings.Builder, t time.Time, token string, utc bool) {
	switch token {
	case "d":
		b.WriteString(strconv.Itoa(t.Day()))
	case "dd":
		b.WriteString(pad(t.Day(), 2))
	case "ddd":
		b.WriteString(dayNames[t.Weekday()])
	case "dddd":
		b.WriteString(dayLong[t.Weekday()])
	case "m":
		b.WriteString(strconv.Itoa(int(t.Month())))
	case "mm":
		b.WriteString(pad(int(t.Month()), 2))
	case "mmm":
		b.WriteString(monthNames[t.Month()-1])
	case "mmmm":
		b.WriteString(monthLong[t.Month()-1])
	case "yy":
		b.WriteString(pad(t.Year()%100, 2))
	case "yyyy":
		b.WriteString(pad(t.Year(), 4))
	case "h":
		b.WriteString(strconv.Itoa(hour12(t)))
	case "hh":
		b.WriteString(pad(hour12(t), 2))
	case "H":
		b.WriteString(strconv.Itoa(t.Hour()))
	case "HH":
		b.WriteString(pad(t.Hour(), 2))
	case "M":
		b.WriteString(strconv.Itoa(t.Minute()))
	case "MM":
		b.WriteString(pad(t.Minute(), 2))
	case "s":
		b.WriteString(strconv.Itoa(t.Second()))
	case "ss":
		b.WriteString(pad(t.Second(), 2))
	case "l":
		b.WriteString(pad(t.Nanosecond()/int(time.Millisecond), 3))
	case "L":
		ms := t.Nanosecond() / int(time.Millisecond)
		b.WriteString(pad(int(math.Round(float64(ms)/10)), 2))
	case "t", "tt", "T", "TT":
		marker := "am"
		if t.Hour() >= 12 {
			marker = "pm"
		}
		if len(token) == 1 {
			marker = marker[:1]
		}
		if token[0] == 'T' {
			marker = strings.ToUpper(marker)
		}
		b.WriteString(marker)
	case "Z":
		if utc {
			b.WriteString("UTC")
		} else {
			b.WriteString(t.Format("MST"))
		}
	case "o":
		_, offset := t.Zone()
		sign := "+"
		if offset < 0 {
			sign = "-"
			offset = -offset
		}
		minutes := offset / 60
		b.WriteString(sign)
		b.WriteString(pad(minutes/60*100+minutes%60, 4))
	case "S":
		b.WriteString(ordinal(t.Day()))
	case "W":
		_, week := t.ISOWeek()
		b.WriteString(strconv.Itoa(week))
	case "N":
		day := int(t.Weekday())
		if day == 0 {
			day = 7
		}
		b.WriteString(strconv.Itoa(day))
	}
}

func hour12(t time.Time) int {
	if h := t.Hour() % 12; h != 0 {
		return h
	}
	return 12
}

func ordinal(day int) string {
	switch {
	case day%100 >= 11 && day%100 <= 13:
		return "th"
	case day%10 == 1:
		return "st"
	case day%10 == 2:
		return "nd"
	case day%10 == 3:
		return "rd"
	default:
		return "th"
	}
}

func pad(n, width int) string {
	s := strconv.Itoa(n)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// run counts repeats of pattern[i], up to max.
func run(pattern string, i, max int) int {
	n := 1
	for n < max && i+n < len(pattern) && pattern[i+n] == pattern[i] {
		n++
	}
	return n
}

func cutPrefix(s string, prefixes ...string) (string, bool) {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return s[len(p):], true
		}
	}
	return s, false
}

// maxEpochMillis bounds the representable range of a log timestamp.
const maxEpochMillis = 8.64e15

var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05Z0700",
		"2006-01-02T15:04Z07:00",
		time.RFC1123Z,
		time.RFC1123,
	}
	localLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
	}
	dateLayouts = []string{
		"2006-01-02",
		"2006-01",
	}
)

// ParseValue interprets a log time value. Numbers are epoch milliseconds;
// strings are ISO-8601 (a date-time without offset is local, a bare date is
// UTC) or RFC1123.
func ParseValue(v record.Value) (time.Time, bool) {
	if n, ok := v.Num(); ok {
		if math.IsNaN(n) || math.Abs(n) > maxEpochMillis {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(math.Trunc(n))), true
	}
	s, ok := v.Str()
	if !ok {
		return time.Time{}, false
	}
	s = strings.TrimSpace(s)
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
