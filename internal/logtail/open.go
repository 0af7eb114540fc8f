package logtail

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compressed reports whether path names a file Open decompresses.
func Compressed(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz", ".zst", ".zstd":
		return true
	}
	return false
}

// Open returns a reader over the file at path. Files ending in .gz are
// gunzipped and files ending in .zst or .zstd are zstd-decoded.
func Open(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		gz, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("open gzip log: %w", err)
		}
		return &stacked{Reader: gz, closers: []io.Closer{gz, file}}, nil
	case ".zst", ".zstd":
		dec, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("open zstd log: %w", err)
		}
		return &stacked{Reader: dec, closers: []io.Closer{dec.IOReadCloser(), file}}, nil
	default:
		return file, nil
	}
}

// stacked closes a decoder and the file beneath it.
type stacked struct {
	io.Reader
	closers []io.Closer
}

func (s *stacked) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
