package logtail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

func numberedLines(n int) ([]string, string) {
	var content strings.Builder
	var lines []string
	for i := 1; i <= n; i++ {
		line := fmt.Sprintf(`{"level":30,"msg":"line %d"}`, i)
		content.WriteString(line + "\n")
		lines = append(lines, line)
	}
	return lines, content.String()
}

func TestRead(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	expectedAll, content := numberedLines(10)
	if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "read all (0)", maxLines: 0, expected: expectedAll},
		{name: "read all (negative)", maxLines: -1, expected: expectedAll},
		{name: "read partial (5)", maxLines: 5, expected: expectedAll[5:]},
		{name: "read exactly all (10)", maxLines: 10, expected: expectedAll},
		{name: "read more than exists (20)", maxLines: 20, expected: expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_LongLinesAndUnterminatedTail(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "long.log")
	huge := strings.Repeat("z", 2*1024*1024)
	if err := os.WriteFile(logPath, []byte("a\r\n"+huge+"\nb"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := Read(logPath, 2)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 2 || got[0] != huge || got[1] != "b" {
		t.Fatalf("Read() returned %d lines, want the long line then b", len(got))
	}
	all, err := Read(logPath, 0)
	if err != nil || len(all) != 3 || all[0] != "a" {
		t.Fatalf("Read(all) = %d lines, %v; want 3 with CR trimmed", len(all), err)
	}
}

func TestRead_MissingFileFails(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.log"), 5)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Read error = %v, want os.ErrNotExist", err)
	}
}

func TestOpen_Compressed(t *testing.T) {
	expected, content := numberedLines(4)
	dir := t.TempDir()

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	if _, err := gw.Write([]byte(content)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}

	var zs bytes.Buffer
	zw, err := zstd.NewWriter(&zs)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	if _, err := zw.Write([]byte(content)); err != nil {
		t.Fatalf("zstd write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zstd close: %v", err)
	}

	files := map[string][]byte{
		"app.log.gz":   gz.Bytes(),
		"app.log.zst":  zs.Bytes(),
		"app.log.ZSTD": zs.Bytes(),
	}
	for name, data := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if !Compressed(path) {
			t.Fatalf("Compressed(%s) = false, want true", name)
		}

		rc, err := Open(path)
		if err != nil {
			t.Fatalf("Open(%s) error = %v", name, err)
		}
		raw, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("ReadAll(%s) error = %v", name, err)
		}
		if err := rc.Close(); err != nil {
			t.Fatalf("Close(%s) error = %v", name, err)
		}
		if string(raw) != content {
			t.Fatalf("Open(%s) content = %q, want %q", name, raw, content)
		}

		got, err := Read(path, 2)
		if err != nil {
			t.Fatalf("Read(%s) error = %v", name, err)
		}
		if !reflect.DeepEqual(got, expected[2:]) {
			t.Fatalf("Read(%s) = %v, want %v", name, got, expected[2:])
		}
	}
}

func TestOpen_CorruptGzipFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.gz")
	if err := os.WriteFile(path, []byte("not gzip"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := Open(path); err == nil {
		t.Fatalf("Open returned nil error, want gzip header error")
	}
}

func collect(t *testing.T, path string, offset int64) (chan string, context.CancelFunc, chan error) {
	t.Helper()
	old := pollInterval
	pollInterval = 10 * time.Millisecond
	t.Cleanup(func() { pollInterval = old })

	ctx, cancel := context.WithCancel(context.Background())
	lines := make(chan string, 64)
	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, path, offset, func(line string) { lines <- line })
	}()
	t.Cleanup(cancel)
	return lines, cancel, done
}

func expectLine(t *testing.T, lines chan string, want string) {
	t.Helper()
	select {
	case got := <-lines:
		if got != want {
			t.Fatalf("line = %q, want %q", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

func appendTo(t *testing.T, path, s string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if _, err := f.WriteString(s); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestFollow_EmitsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	initial := "old line\n"
	if err := os.WriteFile(path, []byte(initial), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	lines, cancel, done := collect(t, path, int64(len(initial)))

	appendTo(t, path, "first\r\nsec")
	expectLine(t, lines, "first")
	appendTo(t, path, "ond\n")
	expectLine(t, lines, "second")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Follow returned %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Follow did not stop after cancel")
	}
}

func TestFollow_RestartsAfterTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	initial := "aaaaaaaaaaaaaaaaaaaa\n"
	if err := os.WriteFile(path, []byte(initial), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	lines, _, _ := collect(t, path, int64(len(initial)))

	if err := os.WriteFile(path, []byte("new\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	expectLine(t, lines, "new")
}

func TestFollow_WaitsForMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "later.log")
	lines, _, _ := collect(t, path, 0)

	if err := os.WriteFile(path, []byte("created\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	expectLine(t, lines, "created")
}

func TestFollow_RejectsCompressed(t *testing.T) {
	err := Follow(context.Background(), "x.log.gz", 0, func(string) {})
	if !errors.Is(err, ErrCompressedFollow) {
		t.Fatalf("Follow error = %v, want ErrCompressedFollow", err)
	}
}
