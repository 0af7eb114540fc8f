// Package colors maps the semantic roles of a prettified log line to
// terminal styles.
package colors

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// StyleFunc decorates a piece of text.
type StyleFunc func(string) string

// Colorizer holds one StyleFunc per role. Level styles are keyed by the
// numeric level code in its textual form ("30", "50", ...).
type Colorizer struct {
	Levels  map[string]StyleFunc
	Message StyleFunc
	Default StyleFunc
}

// Level returns the style for a level code, or Default for unknown codes.
func (c Colorizer) Level(code string) StyleFunc {
	if fn, ok := c.Levels[code]; ok {
		return fn
	}
	return c.Default
}

// New builds a Colorizer. With enabled false every style is the identity.
func New(enabled bool) Colorizer {
	if !enabled {
		return Colorizer{
			Levels: map[string]StyleFunc{
				"60": plain,
				"50": plain,
				"40": plain,
				"30": plain,
				"20": plain,
				"10": plain,
			},
			Message: plain,
			Default: plain,
		}
	}

	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.ANSI)
	fg := func(color string) StyleFunc {
		return styled(r.NewStyle().Foreground(lipgloss.Color(color)))
	}

	return Colorizer{
		Levels: map[string]StyleFunc{
			"60": styled(r.NewStyle().Background(lipgloss.Color("1"))),
			"50": fg("1"),
			"40": fg("3"),
			"30": fg("2"),
			"20": fg("4"),
			"10": fg("8"),
		},
		Message: fg("6"),
		Default: fg("7"),
	}
}

// Detect reports whether w should receive colored output, honoring
// NO_COLOR and CLICOLOR_FORCE.
func Detect(w io.Writer) bool {
	return termenv.NewOutput(w).EnvColorProfile() != termenv.Ascii
}

func plain(s string) string { return s }

// styled renders each line separately so that multi-line text keeps its
// exact content; lipgloss would otherwise pad lines to a common width.
func styled(st lipgloss.Style) StyleFunc {
	st = st.TabWidth(lipgloss.NoTabConversion)
	return func(s string) string {
		if s == "" {
			return s
		}
		lines := strings.Split(s, "\n")
		for i, line := range lines {
			if line == "" {
				continue
			}
			lines[i] = st.Render(line)
		}
		return strings.Join(lines, "\n")
	}
}
