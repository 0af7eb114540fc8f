package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/five82/plume/internal/logging"
	"github.com/five82/plume/internal/prettify"
)

// Config holds the formatter settings and diagnostics settings read from
// the config file. Zero values mean "use the default".
type Config struct {
	// Colorize is nil when the file does not say, leaving the choice to
	// terminal detection.
	Colorize      *bool
	CRLF          bool
	ErrorLikeKeys []string
	ErrorProps    string
	LevelFirst    bool
	MessageKey    string
	TranslateTime string
	Ignore        string
	Search        string
	Log           LogConfig

	// Source is the file the values came from, empty when defaults apply.
	Source string
}

// LogConfig configures plume's own diagnostics.
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

const (
	defaultConfigPath = "~/.config/plume/config.toml"
	defaultLogLevel   = "warn"
)

type rawConfig struct {
	Colorize      *bool    `toml:"colorize" yaml:"colorize"`
	CRLF          bool     `toml:"crlf" yaml:"crlf"`
	ErrorLikeKeys []string `toml:"error_like_keys" yaml:"error_like_keys"`
	ErrorProps    string   `toml:"error_props" yaml:"error_props"`
	LevelFirst    bool     `toml:"level_first" yaml:"level_first"`
	MessageKey    string   `toml:"message_key" yaml:"message_key"`
	TranslateTime string   `toml:"translate_time" yaml:"translate_time"`
	Ignore        string   `toml:"ignore" yaml:"ignore"`
	Search        string   `toml:"search" yaml:"search"`
	Log           struct {
		Level      string `toml:"level" yaml:"level"`
		File       string `toml:"file" yaml:"file"`
		MaxSizeMB  int    `toml:"max_size_mb" yaml:"max_size_mb"`
		MaxBackups int    `toml:"max_backups" yaml:"max_backups"`
		MaxAgeDays int    `toml:"max_age_days" yaml:"max_age_days"`
	} `toml:"log" yaml:"log"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		MessageKey: prettify.DefaultMessageKey,
		Log:        LogConfig{Level: defaultLogLevel},
	}
}

// Load locates and parses the plume config, falling back to defaults when missing.
// Files ending in .yaml or .yml are read as YAML, everything else as TOML.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	switch strings.ToLower(filepath.Ext(resolved)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(bytes, &raw)
	default:
		err = toml.Unmarshal(bytes, &raw)
	}
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.Source = resolved
	cfg.Colorize = raw.Colorize
	cfg.CRLF = raw.CRLF
	cfg.LevelFirst = raw.LevelFirst
	cfg.ErrorProps = strings.TrimSpace(raw.ErrorProps)
	cfg.TranslateTime = strings.TrimSpace(raw.TranslateTime)
	cfg.Ignore = strings.TrimSpace(raw.Ignore)
	cfg.Search = strings.TrimSpace(raw.Search)
	for _, k := range raw.ErrorLikeKeys {
		if k = strings.TrimSpace(k); k != "" {
			cfg.ErrorLikeKeys = append(cfg.ErrorLikeKeys, k)
		}
	}
	if key := strings.TrimSpace(raw.MessageKey); key != "" {
		cfg.MessageKey = key
	}

	if level := strings.TrimSpace(raw.Log.Level); level != "" {
		cfg.Log.Level = level
	}
	if file := strings.TrimSpace(raw.Log.File); file != "" {
		cfg.Log.File = mustExpand(file)
	}
	cfg.Log.MaxSizeMB = raw.Log.MaxSizeMB
	cfg.Log.MaxBackups = raw.Log.MaxBackups
	cfg.Log.MaxAgeDays = raw.Log.MaxAgeDays

	return cfg, nil
}

// Formatter converts the config into formatter options. colorDefault is
// used when the file leaves colorize unset.
func (c Config) Formatter(colorDefault bool) prettify.Options {
	colorize := colorDefault
	if c.Colorize != nil {
		colorize = *c.Colorize
	}
	return prettify.Options{
		Colorize:      colorize,
		CRLF:          c.CRLF,
		ErrorLikeKeys: append([]string(nil), c.ErrorLikeKeys...),
		ErrorProps:    c.ErrorProps,
		LevelFirst:    c.LevelFirst,
		MessageKey:    c.MessageKey,
		TranslateTime: c.TranslateTime,
		Ignore:        c.Ignore,
		Search:        c.Search,
	}
}

// Logging converts the [log] section into logger options.
func (c Config) Logging() logging.Options {
	return logging.Options{
		Level:      c.Log.Level,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
