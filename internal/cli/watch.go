package cli

import (
	"context"
	"time"

	"go.uber.org/zap"

	"drawing-viewer/internal/app"
)

// watchMetadata reloads the tree and the open drawing whenever the metadata
// file changes on disk.
func watchMetadata(ctx context.Context, s *session, path string, interval time.Duration) *app.FileWatcher {
	w := app.NewFileWatcher(path, interval)
	if w == nil {
		s.logger.Warn("metadata watch disabled: file not found", zap.String("path", path))
		return nil
	}

	w.OnChange(func() {
		s.logger.Info("metadata changed, reloading", zap.String("path", path))
		s.provider.Invalidate()
		if _, err := s.viewer.Refresh(ctx); err != nil {
			s.logger.Warn("reload failed", zap.Error(err))
		}
	})
	w.Start()
	return w
}
