package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/plume/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := newRootCmd(app.Run)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "plume: %v\n", err)
		return 1
	}
	return 0
}

type runFunc func(context.Context, app.Options) error

type flagValues struct {
	colorize      bool
	noColor       bool
	crlf          bool
	errorProps    string
	levelFirst    bool
	errorLikeKeys []string
	messageKey    string
	translateTime string
	ignore        string
	search        string
	configPath    string
	lines         int
	follow        bool
	view          bool
	logLevel      string
	logFile       string
}

func newRootCmd(runApp runFunc) *cobra.Command {
	var v flagValues

	cmd := &cobra.Command{
		Use:   "plume [flags] [file...]",
		Short: "Prettify newline-delimited JSON logs",
		Long: `plume reads newline-delimited JSON log records from files or stdin and
prints them as readable text. Lines that are not JSON pass through unchanged.

Settings are read from ~/.config/plume/config.toml (or --config) and flags
given on the command line take precedence.`,
		Example: `  node app.js | plume -t
  plume -n 100 -F /var/log/app.log
  plume -s 'level >= ` + "`50`" + `' app.log.gz`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.Options{
				ConfigPath: v.configPath,
				Files:      args,
				Lines:      v.lines,
				Follow:     v.follow,
				View:       v.view,
				Overrides:  overrides(cmd, v),
			}
			return runApp(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&v.colorize, "colorize", "c", false, "force colored output")
	flags.BoolVar(&v.noColor, "no-color", false, "disable colored output")
	flags.BoolVarP(&v.crlf, "crlf", "f", false, "end lines with \\r\\n")
	flags.StringVarP(&v.errorProps, "error-props", "e", "", "comma-separated error properties to print, or * for all")
	flags.BoolVarP(&v.levelFirst, "level-first", "l", false, "print the level before the time")
	flags.StringSliceVarP(&v.errorLikeKeys, "error-like-keys", "k", nil, "extra keys holding error objects (err is always included)")
	flags.StringVarP(&v.messageKey, "message-key", "m", "", "key holding the log message (default msg)")
	flags.StringVarP(&v.translateTime, "translate-time", "t", "", "format the time field: true, a pattern, or SYS:<pattern> for local time")
	flags.Lookup("translate-time").NoOptDefVal = "true"
	flags.StringVarP(&v.ignore, "ignore", "i", "", "comma-separated keys to drop")
	flags.StringVarP(&v.search, "search", "s", "", "JMESPath expression; only matching records are printed")
	flags.StringVar(&v.configPath, "config", "", "config file path (default ~/.config/plume/config.toml)")
	flags.IntVarP(&v.lines, "lines", "n", 0, "print only the last N lines of each file")
	flags.BoolVarP(&v.follow, "follow", "F", false, "keep printing lines appended to the file")
	flags.BoolVar(&v.view, "view", false, "browse output in an interactive viewer")
	flags.StringVar(&v.logLevel, "log-level", "", "diagnostics level: debug, info, warn, error")
	flags.StringVar(&v.logFile, "log-file", "", "also write diagnostics to this file")

	cmd.MarkFlagsMutuallyExclusive("colorize", "no-color")

	return cmd
}

// overrides keeps only the flags the user actually set.
func overrides(cmd *cobra.Command, v flagValues) app.Overrides {
	changed := cmd.Flags().Changed
	var o app.Overrides

	switch {
	case changed("no-color"):
		o.Colorize = boolPtr(!v.noColor)
	case changed("colorize"):
		o.Colorize = boolPtr(v.colorize)
	}
	if changed("crlf") {
		o.CRLF = boolPtr(v.crlf)
	}
	if changed("level-first") {
		o.LevelFirst = boolPtr(v.levelFirst)
	}
	if changed("error-like-keys") {
		o.ErrorLikeKeys = append([]string{}, v.errorLikeKeys...)
	}
	if changed("error-props") {
		o.ErrorProps = strPtr(v.errorProps)
	}
	if changed("message-key") {
		o.MessageKey = strPtr(v.messageKey)
	}
	if changed("translate-time") {
		o.TranslateTime = strPtr(v.translateTime)
	}
	if changed("ignore") {
		o.Ignore = strPtr(v.ignore)
	}
	if changed("search") {
		o.Search = strPtr(v.search)
	}
	if changed("log-level") {
		o.LogLevel = strPtr(v.logLevel)
	}
	if changed("log-file") {
		o.LogFile = strPtr(v.logFile)
	}
	return o
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }
