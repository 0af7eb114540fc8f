package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/five82/plume/internal/logtail"
	"github.com/five82/plume/internal/stream"
)

// follow streams lines appended to path after offset until ctx is
// cancelled or the output fails.
func follow(ctx context.Context, s *stream.Stream, path string, offset int64, logger *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Debug("following", zap.String("path", path), zap.Int64("offset", offset))

	var writeErr error
	err := logtail.Follow(ctx, path, offset, func(line string) {
		if writeErr != nil {
			return
		}
		if err := s.Line(line); err != nil {
			writeErr = err
			cancel()
		}
	})

	logger.Debug("follow stopped", zap.String("path", path))
	if writeErr != nil {
		return writeErr
	}
	return err
}
