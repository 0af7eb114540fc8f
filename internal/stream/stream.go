// Package stream moves lines from an input through a formatter to a sink.
package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// LineFormatter formats one input line. The boolean is false when the
// line produces no output.
type LineFormatter interface {
	FormatLine(line string) (string, bool)
}

// Sink receives formatted text, one record at a time.
type Sink interface {
	Emit(text string) error
}

// Stats counts what a Stream has processed.
type Stats struct {
	Read       int
	Emitted    int
	Suppressed int
}

// Stream formats lines and hands the results to a sink. It is not safe
// for concurrent use.
type Stream struct {
	formatter LineFormatter
	sink      Sink
	logger    *zap.Logger
	stats     Stats
}

// New returns a Stream. A nil logger discards diagnostics.
func New(formatter LineFormatter, sink Sink, logger *zap.Logger) *Stream {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stream{formatter: formatter, sink: sink, logger: logger}
}

// Line formats a single line and emits the result.
func (s *Stream) Line(line string) error {
	s.stats.Read++
	out, ok := s.formatter.FormatLine(line)
	if !ok {
		s.stats.Suppressed++
		return nil
	}
	s.stats.Emitted++
	if err := s.sink.Emit(out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// Lines formats each line in order, stopping at the first sink error.
func (s *Stream) Lines(lines []string) error {
	for _, line := range lines {
		if err := s.Line(line); err != nil {
			return err
		}
	}
	return nil
}

// Copy reads r line by line until EOF or until ctx is cancelled. Lines
// may be of any length.
func (s *Stream) Copy(ctx context.Context, r io.Reader) error {
	reader := bufio.NewReaderSize(r, 64*1024)
	for {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read input: %w", err)
		}
		if line == "" && err != nil {
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
		if emitErr := s.Line(line); emitErr != nil {
			return emitErr
		}
		if err != nil {
			break
		}
	}
	s.logger.Debug("input drained",
		zap.Int("read", s.stats.Read),
		zap.Int("emitted", s.stats.Emitted),
		zap.Int("suppressed", s.stats.Suppressed))
	return nil
}

// Stats returns the counters accumulated so far.
func (s *Stream) Stats() Stats {
	return s.stats
}

// WriterSink buffers formatted text for an io.Writer.
type WriterSink struct {
	w         *bufio.Writer
	flushEach bool
}

// NewWriterSink wraps w. With flushEach set every record is flushed as
// soon as it is written, which live input (stdin, follow mode) needs.
func NewWriterSink(w io.Writer, flushEach bool) *WriterSink {
	return &WriterSink{w: bufio.NewWriter(w), flushEach: flushEach}
}

// Emit writes text.
func (ws *WriterSink) Emit(text string) error {
	if _, err := ws.w.WriteString(text); err != nil {
		return err
	}
	if ws.flushEach {
		return ws.w.Flush()
	}
	return nil
}

// Flush writes any buffered text.
func (ws *WriterSink) Flush() error {
	return ws.w.Flush()
}
