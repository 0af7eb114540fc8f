package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Read returns at most maxLines from the end of the file at path. A
// maxLines of zero or less returns every line.
func Read(path string, maxLines int) ([]string, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	if maxLines <= 0 {
		var lines []string
		if err := eachLine(rc, func(line string) {
			lines = append(lines, line)
		}); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	if err := eachLine(rc, func(line string) {
		ring[idx] = line
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// eachLine calls fn for every line of r without its terminator. A final
// line without a newline is still reported.
func eachLine(r io.Reader, fn func(string)) error {
	reader := bufio.NewReaderSize(r, 64*1024)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			fn(strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r"))
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
