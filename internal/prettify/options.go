package prettify

import (
	"strings"

	"github.com/five82/plume/internal/timefmt"
)

// Defaults.
const (
	DefaultMessageKey = "msg"
	indent            = "    "
)

// DefaultErrorLikeKeys are always rendered with stack-aware formatting.
var DefaultErrorLikeKeys = []string{"err"}

// loggerKeys are consumed by the header and left out of the body.
var loggerKeys = []string{"pid", "hostname", "name", "level", "time", "v"}

// Options configure a Formatter. String fields use the same wire format as
// the command line and config file; New parses them once.
type Options struct {
	// Colorize enables ANSI styling.
	Colorize bool
	// CRLF terminates lines with "\r\n" instead of "\n".
	CRLF bool
	// ErrorLikeKeys are added to DefaultErrorLikeKeys.
	ErrorLikeKeys []string
	// ErrorProps is a comma-separated list of extra properties printed for
	// records of type "Error". "*" selects every property.
	ErrorProps string
	// LevelFirst puts the level before the timestamp.
	LevelFirst bool
	// MessageKey names the message field. Empty means DefaultMessageKey.
	MessageKey string
	// TranslateTime is "" or "false" for passthrough, "true" for the
	// standard UTC pattern, "SYS:STANDARD" for the standard pattern in local
	// time, "SYS:<pattern>" for a local pattern, or any other UTC pattern.
	TranslateTime string
	// Ignore is a comma-separated list of keys dropped before formatting.
	Ignore string
	// Search is a JMESPath expression; records for which it is not truthy
	// produce no output.
	Search string
}

// TimeMode selects how the time field is rendered.
type TimeMode int

const (
	// TimeRaw prints the value as found.
	TimeRaw TimeMode = iota
	// TimeUTC formats the instant in UTC.
	TimeUTC
	// TimeLocal formats the instant in the local zone.
	TimeLocal
)

// TimeFormat is the parsed form of Options.TranslateTime.
type TimeFormat struct {
	Mode    TimeMode
	Pattern string
}

// ParseTimeFormat parses the TranslateTime wire format.
func ParseTimeFormat(s string) TimeFormat {
	switch {
	case s == "" || strings.EqualFold(s, "false"):
		return TimeFormat{Mode: TimeRaw}
	case strings.EqualFold(s, "true"):
		return TimeFormat{Mode: TimeUTC, Pattern: timefmt.Standard}
	case len(s) >= 4 && strings.EqualFold(s[:4], "SYS:"):
		if strings.EqualFold(s, "SYS:STANDARD") {
			return TimeFormat{Mode: TimeLocal, Pattern: timefmt.Standard}
		}
		return TimeFormat{Mode: TimeLocal, Pattern: s[4:]}
	default:
		return TimeFormat{Mode: TimeUTC, Pattern: s}
	}
}

// splitList splits a comma-separated list, trimming blanks and dropping
// empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func toSet(keys ...[]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, list := range keys {
		for _, k := range list {
			set[k] = struct{}{}
		}
	}
	return set
}
