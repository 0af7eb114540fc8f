package viewer

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme defines the colors of the viewer chrome. Log text keeps the
// colors the formatter gave it.
type Theme struct {
	Name string

	Surface     string // Header and footer bars
	FocusBg     string // Viewport background
	SelectionBg string // Current search match

	Text    string
	Muted   string
	Accent  string
	Warning string
	Danger  string
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),

		Footer: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Muted)).
			Padding(0, 1),

		Body: lipgloss.NewStyle().
			Background(lipgloss.Color(t.FocusBg)),

		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),

		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Muted)),

		Warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		Danger: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Danger)).
			Bold(true),

		Match: lipgloss.NewStyle().
			Foreground(lipgloss.Color(t.Warning)),

		CurrentMatch: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),
	}
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Header lipgloss.Style
	Footer lipgloss.Style
	Body   lipgloss.Style

	Title   lipgloss.Style
	Muted   lipgloss.Style
	Warning lipgloss.Style
	Danger  lipgloss.Style

	// Gutter markers for search results
	Match        lipgloss.Style
	CurrentMatch lipgloss.Style
}

var themes = map[string]Theme{
	"Dracula": draculaTheme(),
	"Slate":   slateTheme(),
}

var themeOrder = []string{"Dracula", "Slate"}

// GetTheme returns a theme by name.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return draculaTheme()
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

func draculaTheme() Theme {
	// Official Dracula palette: https://draculatheme.com/spec
	return Theme{
		Name: "Dracula",

		Surface:     "#282A36", // Background
		FocusBg:     "#21222C", // BGDark
		SelectionBg: "#44475A", // Selection

		Text:    "#F8F8F2", // Foreground
		Muted:   "#6272A4", // Comment
		Accent:  "#BD93F9", // Purple
		Warning: "#FFB86C", // Orange
		Danger:  "#FF5555", // Red
	}
}

func slateTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name: "Slate",

		Surface:     "#0f172a", // slate-900
		FocusBg:     "#020617", // slate-950
		SelectionBg: "#0284c7", // sky-600

		Text:    "#f1f5f9", // slate-100
		Muted:   "#94a3b8", // slate-400
		Accent:  "#38bdf8", // sky-400
		Warning: "#f59e0b", // amber-500
		Danger:  "#ef4444", // red-500
	}
}
