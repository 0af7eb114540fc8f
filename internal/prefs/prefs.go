// Package prefs persists viewer preferences in ~/.config/plume/prefs.toml.
// Preferences are best effort: unreadable files yield defaults.
package prefs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds settings the viewer remembers between runs.
type Prefs struct {
	Theme      string `toml:"theme"`
	LastSearch string `toml:"last_search,omitempty"`
}

const (
	defaultPrefsPath = "~/.config/plume/prefs.toml"
	defaultTheme     = "Dracula"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from the given path, falling back to defaults if missing.
func Load(path string) Prefs {
	prefs := Prefs{Theme: defaultTheme}

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs
	}

	file, err := os.Open(resolved)
	if err != nil {
		return prefs
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs
	}

	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Prefs{Theme: defaultTheme}
	}

	prefs.LastSearch = strings.TrimSpace(prefs.LastSearch)
	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}

	return prefs
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultPrefsPath
	}
	trimmed := strings.TrimSpace(path)
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
