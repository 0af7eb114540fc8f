package stream

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/five82/plume/internal/prettify"
)

type recordingSink struct {
	texts []string
	err   error
}

func (r *recordingSink) Emit(text string) error {
	if r.err != nil {
		return r.err
	}
	r.texts = append(r.texts, text)
	return nil
}

func mustFormatter(t *testing.T, opts prettify.Options) *prettify.Formatter {
	t.Helper()
	f, err := prettify.New(opts)
	if err != nil {
		t.Fatalf("prettify.New returned error: %v", err)
	}
	return f
}

func TestCopy_FormatsEveryLine(t *testing.T) {
	input := strings.Join([]string{
		`{"level":30,"msg":"one"}`,
		`plain text`,
		`{"level":20,"msg":"hidden"}`,
		`{"level":50,"msg":"two"}`,
	}, "\n")

	var out bytes.Buffer
	sink := NewWriterSink(&out, false)
	s := New(mustFormatter(t, prettify.Options{Search: "level != `20`"}), sink, nil)

	if err := s.Copy(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("Copy returned error: %v", err)
	}
	if err := sink.Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}

	want := "INFO : one\nplain text\nERROR: two\n"
	if out.String() != want {
		t.Fatalf("output = %q, want %q", out.String(), want)
	}
	if got := s.Stats(); got != (Stats{Read: 4, Emitted: 3, Suppressed: 1}) {
		t.Fatalf("Stats = %+v, want 4 read, 3 emitted, 1 suppressed", got)
	}
}

func TestCopy_LongLines(t *testing.T) {
	long := `{"msg":"` + strings.Repeat("x", 200*1024) + `"}`
	sink := &recordingSink{}
	s := New(mustFormatter(t, prettify.Options{}), sink, nil)

	if err := s.Copy(context.Background(), strings.NewReader(long)); err != nil {
		t.Fatalf("Copy returned error: %v", err)
	}
	if len(sink.texts) != 1 || len(sink.texts[0]) != 200*1024+2 {
		t.Fatalf("emitted %d records, want one full-length message", len(sink.texts))
	}
}

func TestCopy_LinesPastOneMegabyte(t *testing.T) {
	huge := `{"msg":"` + strings.Repeat("y", 2*1024*1024) + `"}`
	input := "first\n" + huge + "\r\nlast\n"
	sink := &recordingSink{}
	s := New(mustFormatter(t, prettify.Options{}), sink, nil)

	if err := s.Copy(context.Background(), strings.NewReader(input)); err != nil {
		t.Fatalf("Copy returned error: %v", err)
	}
	if len(sink.texts) != 3 {
		t.Fatalf("emitted %d records, want 3", len(sink.texts))
	}
	if sink.texts[0] != "first\n" || sink.texts[2] != "last\n" {
		t.Fatalf("texts = %q, %q; want first and last passed through", sink.texts[0], sink.texts[2])
	}
	if want := " " + strings.Repeat("y", 2*1024*1024) + "\n"; sink.texts[1] != want {
		t.Fatalf("long record has %d bytes, want %d", len(sink.texts[1]), len(want))
	}
}

func TestCopy_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &recordingSink{}
	s := New(mustFormatter(t, prettify.Options{}), sink, nil)
	err := s.Copy(ctx, strings.NewReader("a\nb\n"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Copy error = %v, want context.Canceled", err)
	}
	if len(sink.texts) != 0 {
		t.Fatalf("emitted %v after cancel", sink.texts)
	}
}

func TestLine_SinkErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	s := New(mustFormatter(t, prettify.Options{}), &recordingSink{err: boom}, nil)

	err := s.Lines([]string{"a", "b"})
	if !errors.Is(err, boom) || !strings.Contains(err.Error(), "write output") {
		t.Fatalf("Lines error = %v, want wrapped boom", err)
	}
	if s.Stats().Read != 1 {
		t.Fatalf("Read = %d, want processing to stop at the first error", s.Stats().Read)
	}
}

func TestWriterSink_FlushEach(t *testing.T) {
	var out bytes.Buffer
	sink := NewWriterSink(&out, true)
	if err := sink.Emit("x\n"); err != nil {
		t.Fatalf("Emit returned error: %v", err)
	}
	if out.String() != "x\n" {
		t.Fatalf("output = %q, want flushed record", out.String())
	}
}
