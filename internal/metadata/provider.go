// Package metadata serves drawing metadata and the drawing tree to the viewer.
package metadata

import (
	"context"
	"errors"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"drawing-viewer/internal/drawing"
)

// Provider is the viewer's source of drawing metadata. Calls may block and
// fail; the viewer does not retry.
type Provider interface {
	DrawingTree(ctx context.Context) (drawing.Tree, error)
	// DrawingByID returns nil, nil when the drawing does not exist.
	DrawingByID(ctx context.Context, id string) (*drawing.Drawing, error)
	ChildDrawings(ctx context.Context, parentID string) ([]drawing.Drawing, error)
}

// Resolver maps image file names to loadable paths.
type Resolver struct {
	Dir string
}

// ImageURL returns the path of an image file name.
func (r Resolver) ImageURL(filename string) string {
	if filename == "" || filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(r.Dir, filename)
}

// FileProvider reads metadata.json once and serves it from memory.
type FileProvider struct {
	path   string
	logger *zap.Logger

	mu   sync.Mutex
	meta *drawing.Metadata
}

// NewFileProvider creates a provider for the metadata file at path.
func NewFileProvider(path string, logger *zap.Logger) *FileProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileProvider{path: path, logger: logger}
}

// NewStaticProvider serves already loaded metadata.
func NewStaticProvider(m *drawing.Metadata) *FileProvider {
	return &FileProvider{meta: m, logger: zap.NewNop()}
}

// Metadata loads the metadata on first use. A failed load is retried on the
// next call.
func (p *FileProvider) Metadata(ctx context.Context) (*drawing.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.meta != nil {
		return p.meta, nil
	}

	m, err := drawing.LoadMetadata(p.path)
	if err != nil {
		return nil, err
	}
	p.logger.Info("loaded metadata",
		zap.String("path", p.path),
		zap.String("project", m.Project.Name),
		zap.Int("drawings", len(m.Drawings)))
	p.meta = m
	return m, nil
}

// DrawingTree implements Provider.
func (p *FileProvider) DrawingTree(ctx context.Context) (drawing.Tree, error) {
	m, err := p.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	return drawing.BuildTree(m), nil
}

// DrawingByID implements Provider.
func (p *FileProvider) DrawingByID(ctx context.Context, id string) (*drawing.Drawing, error) {
	m, err := p.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	d, err := m.Drawing(id)
	if errors.Is(err, drawing.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := *d
	return &out, nil
}

// ChildDrawings implements Provider.
func (p *FileProvider) ChildDrawings(ctx context.Context, parentID string) ([]drawing.Drawing, error) {
	m, err := p.Metadata(ctx)
	if err != nil {
		return nil, err
	}
	return m.Children(parentID), nil
}

// Invalidate drops the cached metadata so the next call reloads the file.
func (p *FileProvider) Invalidate() {
	if p.path == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.meta = nil
}

// Path returns the metadata file path.
func (p *FileProvider) Path() string {
	return p.path
}
