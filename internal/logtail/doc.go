// Package logtail reads log files for the prettifier.
//
// # Overview
//
// Three operations cover the ways plume consumes a file:
//
//  1. Open: a reader over the whole file, decompressing .gz, .zst and .zstd
//  2. Read: the last N lines of a file, like tail -n
//  3. Follow: lines appended to a file while it grows, like tail -f
//
// # Reading Log Files
//
// Read uses a ring buffer of maxLines entries so the last lines of a large
// file are found in one pass with O(maxLines) memory:
//
//	1. Allocate ring buffer of size maxLines
//	2. For each line in file:
//	   - Store line at current index
//	   - Increment index (wrapping at maxLines)
//	   - Track total lines seen
//	3. If total < maxLines:
//	   - Return first 'count' entries from buffer
//	4. If total >= maxLines:
//	   - Return buffer starting from current index (oldest line)
//
// Lines may be any length; reads go through a 64KB buffered reader.
// Compressed files are decoded on the fly with klauspost/compress.
//
// Example usage:
//
//	lines, err := logtail.Read("/var/log/app/app.log.gz", 400)
//	if err != nil {
//		return err
//	}
//
// # Following
//
// Follow watches the file's directory with fsnotify and also polls once a
// second, since some filesystems (network mounts, some containers) never
// deliver events. Only complete lines are emitted; a trailing fragment is
// held until its newline arrives. When the file becomes shorter than the
// position already read (truncation or copytruncate rotation), reading
// starts again from the top. A removed or renamed file is waited for until
// it is recreated.
//
// Compressed files cannot be followed and return ErrCompressedFollow.
//
// # Error Handling
//
// Missing files are errors for Open and Read, wrapped so callers can test
// them with errors.Is(err, os.ErrNotExist). Follow tolerates a missing file
// and waits for it to appear.
package logtail
