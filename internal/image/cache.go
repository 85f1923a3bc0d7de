package image

import (
	"context"
	"sync"

	"github.com/golang/groupcache/lru"
	"go.uber.org/zap"

	"drawing-viewer/pkg/geometry"
)

// DefaultCacheSize is the number of decoded rasters kept in memory.
const DefaultCacheSize = 16

// Cache keeps recently decoded rasters, evicting the least recently used.
type Cache struct {
	mu     sync.Mutex
	lru    *lru.Cache
	load   func(path string) (*Layer, error)
	logger *zap.Logger
}

// NewCache creates a cache holding at most size rasters.
func NewCache(size int, logger *zap.Logger) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Cache{
		lru:    lru.New(size),
		load:   Load,
		logger: logger,
	}
	c.lru.OnEvicted = func(key lru.Key, _ interface{}) {
		c.logger.Debug("evicted image", zap.Any("path", key))
	}
	return c
}

func (c *Cache) lookup(path string) (*Layer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.lru.Get(path)
	if !ok {
		return nil, false
	}
	return v.(*Layer), true
}

// Get returns the decoded raster for path, loading it on a miss.
func (c *Cache) Get(ctx context.Context, path string) (*Layer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if layer, ok := c.lookup(path); ok {
		return layer, nil
	}

	layer, err := c.load(path)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("decoded image",
		zap.String("path", path),
		zap.Int("width", layer.Width()),
		zap.Int("height", layer.Height()))

	c.Put(path, layer)
	return layer, nil
}

// Put stores an already decoded raster.
func (c *Cache) Put(path string, layer *Layer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Add(path, layer)
}

// Len returns the number of cached rasters.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Size returns the natural size of path. Cached rasters answer directly;
// otherwise only the header is read.
func (c *Cache) Size(ctx context.Context, path string) (geometry.Size, error) {
	if err := ctx.Err(); err != nil {
		return geometry.Size{}, err
	}
	if layer, ok := c.lookup(path); ok {
		return layer.Size(), nil
	}
	return NaturalSize(path)
}
