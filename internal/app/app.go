package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/five82/plume/internal/colors"
	"github.com/five82/plume/internal/config"
	"github.com/five82/plume/internal/logging"
	"github.com/five82/plume/internal/logtail"
	"github.com/five82/plume/internal/prefs"
	"github.com/five82/plume/internal/prettify"
	"github.com/five82/plume/internal/stream"
	"github.com/five82/plume/internal/viewer"
)

// ErrFollowNeedsOneFile is returned when follow mode is asked for without
// exactly one input file.
var ErrFollowNeedsOneFile = errors.New("follow needs exactly one file")

// Options configure one plume run.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/plume/prefs.toml

	Files  []string // empty reads Stdin
	Lines  int      // when positive, only the last Lines of each file
	Follow bool
	View   bool

	Overrides Overrides

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Overrides carry command-line values. Nil fields were not given and leave
// the config file value in place.
type Overrides struct {
	Colorize      *bool
	CRLF          *bool
	ErrorLikeKeys []string
	ErrorProps    *string
	LevelFirst    *bool
	MessageKey    *string
	TranslateTime *string
	Ignore        *string
	Search        *string
	LogLevel      *string
	LogFile       *string
}

// Apply copies every set override into cfg.
func (o Overrides) Apply(cfg *config.Config) {
	if o.Colorize != nil {
		v := *o.Colorize
		cfg.Colorize = &v
	}
	if o.CRLF != nil {
		cfg.CRLF = *o.CRLF
	}
	if o.ErrorLikeKeys != nil {
		cfg.ErrorLikeKeys = append([]string(nil), o.ErrorLikeKeys...)
	}
	if o.ErrorProps != nil {
		cfg.ErrorProps = *o.ErrorProps
	}
	if o.LevelFirst != nil {
		cfg.LevelFirst = *o.LevelFirst
	}
	if o.MessageKey != nil && strings.TrimSpace(*o.MessageKey) != "" {
		cfg.MessageKey = strings.TrimSpace(*o.MessageKey)
	}
	if o.TranslateTime != nil {
		cfg.TranslateTime = *o.TranslateTime
	}
	if o.Ignore != nil {
		cfg.Ignore = *o.Ignore
	}
	if o.Search != nil {
		cfg.Search = *o.Search
	}
	if o.LogLevel != nil {
		cfg.Log.Level = *o.LogLevel
	}
	if o.LogFile != nil {
		cfg.Log.File = *o.LogFile
	}
}

// Run prettifies the configured inputs until they are exhausted, the
// viewer is closed, or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Follow && len(opts.Files) != 1 {
		return ErrFollowNeedsOneFile
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	opts.Overrides.Apply(&cfg)

	logger := logging.New(opts.Stderr, cfg.Logging())
	defer func() { _ = logger.Sync() }()
	if cfg.Source != "" {
		logger.Debug("config loaded", zap.String("path", cfg.Source))
	}

	view := opts.View
	if view && !isTerminal(opts.Stdout) {
		logger.Warn("viewer needs a terminal; writing plain output")
		view = false
	}

	formatter, err := prettify.New(cfg.Formatter(view || colors.Detect(opts.Stdout)))
	if err != nil {
		return fmt.Errorf("configure formatter: %w", err)
	}

	feed := func(ctx context.Context, sink stream.Sink) error {
		s := stream.New(formatter, sink, logger)
		err := feedInputs(ctx, s, opts, logger)
		stats := s.Stats()
		logger.Debug("done",
			zap.Int("read", stats.Read),
			zap.Int("emitted", stats.Emitted),
			zap.Int("suppressed", stats.Suppressed))
		return err
	}

	if view {
		return runViewer(ctx, opts, logger, feed)
	}

	// Stdin and followed files arrive over time; each record is flushed
	// as soon as it is formatted.
	live := opts.Follow || len(opts.Files) == 0
	sink := stream.NewWriterSink(opts.Stdout, live)
	err = feed(ctx, sink)
	if flushErr := sink.Flush(); err == nil && flushErr != nil {
		err = fmt.Errorf("write output: %w", flushErr)
	}
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func runViewer(ctx context.Context, opts Options, logger *zap.Logger, feed func(context.Context, stream.Sink) error) error {
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs := prefs.Load(prefsPath)

	title := "stdin"
	if len(opts.Files) > 0 {
		title = strings.Join(opts.Files, ", ")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	return viewer.Run(ctx, viewer.Options{
		Title:      title,
		ThemeName:  userPrefs.Theme,
		PrefsPath:  prefsPath,
		LastSearch: userPrefs.LastSearch,
		Logger:     logger,
	}, func(sink stream.Sink) error {
		err := feed(ctx, sink)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
}

func feedInputs(ctx context.Context, s *stream.Stream, opts Options, logger *zap.Logger) error {
	if len(opts.Files) == 0 {
		if opts.Lines > 0 {
			logger.Warn("--lines applies to files only; reading all of stdin")
		}
		return s.Copy(ctx, opts.Stdin)
	}

	var offset int64
	if opts.Follow {
		info, err := os.Stat(opts.Files[0])
		if err != nil {
			return fmt.Errorf("stat log: %w", err)
		}
		offset = info.Size()
	}

	for _, path := range opts.Files {
		logger.Debug("reading input", zap.String("path", path), zap.Int("lines", opts.Lines))
		if err := readFile(ctx, s, path, opts.Lines); err != nil {
			return err
		}
	}

	if !opts.Follow {
		return nil
	}
	return follow(ctx, s, opts.Files[0], offset, logger)
}

func readFile(ctx context.Context, s *stream.Stream, path string, lines int) error {
	if lines > 0 {
		tail, err := logtail.Read(path, lines)
		if err != nil {
			return err
		}
		return s.Lines(tail)
	}

	rc, err := logtail.Open(path)
	if err != nil {
		return err
	}
	defer rc.Close()
	return s.Copy(ctx, rc)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
