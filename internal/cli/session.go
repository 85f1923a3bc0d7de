package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"drawing-viewer/internal/app"
	"drawing-viewer/internal/config"
	imgpkg "drawing-viewer/internal/image"
	"drawing-viewer/internal/localrev"
	"drawing-viewer/internal/metadata"
)

// session holds the engine objects built from a config.
type session struct {
	provider *metadata.FileProvider
	store    localrev.Store
	cache    *imgpkg.Cache
	renderer *imgpkg.Renderer
	viewer   *app.Viewer
	logger   *zap.Logger

	closers []func() error
}

func openSession(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*session, error) {
	s := &session{logger: logger}

	s.provider = metadata.NewFileProvider(cfg.Metadata, logger.Named("metadata"))
	resolver := metadata.Resolver{Dir: cfg.ImageDir()}

	if cfg.LocalRevisions != "" {
		db, err := localrev.OpenSQLite(ctx, cfg.LocalRevisions)
		if err != nil {
			return nil, fmt.Errorf("failed to open local revisions: %w", err)
		}
		s.store = db
		s.closers = append(s.closers, db.Close)
		logger.Info("using local revision database", zap.String("path", cfg.LocalRevisions))
	} else {
		s.store = localrev.NewMemoryStore()
	}

	s.cache = imgpkg.NewCache(cfg.ImageCache, logger.Named("images"))
	s.renderer = imgpkg.NewRenderer(imgpkg.CacheSource(s.cache, resolver.ImageURL))

	s.viewer = app.NewViewer(s.provider,
		app.WithLogger(logger.Named("viewer")),
		app.WithLimits(cfg.Viewport.Limits()),
		app.WithResolver(resolver),
		app.WithLocalStore(s.store),
		app.WithReporter(cfg.Reporter),
		app.WithSizeFunc(s.cache.Size),
	)
	return s, nil
}

// Close releases the local revision database.
func (s *session) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
