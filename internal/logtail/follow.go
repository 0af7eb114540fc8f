package logtail

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrCompressedFollow is returned when asked to follow a compressed file.
var ErrCompressedFollow = errors.New("logtail: cannot follow a compressed file")

// pollInterval bounds how long an append can go unnoticed on filesystems
// that do not deliver change events.
var pollInterval = time.Second

// Follow calls fn for every complete line appended to path after offset
// bytes. When the file shrinks below the position already read, reading
// restarts from the beginning. Follow returns nil when ctx is cancelled.
func Follow(ctx context.Context, path string, offset int64, fn func(line string)) error {
	if Compressed(path) {
		return ErrCompressedFollow
	}
	interval := pollInterval
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve log path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	// The directory is watched so a rotated file is picked up when it is recreated.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch log dir: %w", err)
	}

	f := &follower{path: abs, offset: offset, emit: fn}
	if err := f.drain(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			switch {
			case event.Op&fsnotify.Remove == fsnotify.Remove, event.Op&fsnotify.Rename == fsnotify.Rename:
				f.reset()
			case event.Op&fsnotify.Create == fsnotify.Create, event.Op&fsnotify.Write == fsnotify.Write:
				if err := f.drain(); err != nil {
					return err
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch log: %w", err)
		case <-ticker.C:
			if err := f.drain(); err != nil {
				return err
			}
		}
	}
}

type follower struct {
	path    string
	offset  int64
	partial string
	emit    func(string)
}

func (f *follower) reset() {
	f.offset = 0
	f.partial = ""
}

// drain reads from the current offset to EOF, emitting complete lines and
// keeping any unterminated tail for the next call.
func (f *follower) drain() error {
	file, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat log: %w", err)
	}
	if info.Size() < f.offset {
		f.reset()
	}
	if info.Size() == f.offset {
		return nil
	}
	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek log: %w", err)
	}

	reader := bufio.NewReader(file)
	for {
		chunk, err := reader.ReadString('\n')
		f.offset += int64(len(chunk))
		if strings.HasSuffix(chunk, "\n") {
			line := f.partial + strings.TrimSuffix(chunk, "\n")
			f.partial = ""
			f.emit(strings.TrimSuffix(line, "\r"))
		} else {
			f.partial += chunk
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read log: %w", err)
		}
	}
}
