// Package app provides the orchestration layer for plume.
//
// # Overview
//
// Run is the composition root: it loads configuration, applies command-line
// overrides, builds the diagnostics logger and the formatter, then pumps
// the inputs through a stream into either stdout or the interactive viewer.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()        Read config file (or defaults)
//	       ├─────> Overrides.Apply()    Flags the user set win
//	       ├─────> logging.New()        zap logger on stderr
//	       ├─────> prettify.New()       Resolve formatter options once
//	       └─────> feed
//	                ├─> stdin            stream.Copy
//	                ├─> files            logtail.Open / logtail.Read, in order
//	                └─> follow           logtail.Follow on the single file
//
// The feed writes to a stream.WriterSink on stdout, or to a viewer.Sink
// when --view is given and stdout is a terminal. Without a terminal the
// viewer request is dropped with a warning and plain output is written.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Config file unreadable or invalid
//   - Search expression that does not compile
//   - Input file missing or unreadable, corrupt compressed data
//   - Output write failures (for example a closed pipe)
//   - Follow requested with zero or several files
//
// Cancellation of ctx (SIGINT, SIGTERM) ends follow mode and is not an
// error. Malformed log lines are never errors; the formatter passes them
// through.
//
// # Usage Example
//
//	err := app.Run(ctx, app.Options{
//		Files:  []string{"/var/log/app.log"},
//		Lines:  100,
//		Follow: true,
//	})
package app
