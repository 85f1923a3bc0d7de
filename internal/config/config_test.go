package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drawing-viewer/internal/viewport"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "metadata.json", cfg.Metadata)
	assert.Equal(t, ".", cfg.ImageDir())
	assert.Equal(t, viewport.DefaultLimits(), cfg.Viewport.Limits())
	assert.Equal(t, 2*time.Second, cfg.WatchInterval)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
metadata: /data/project/metadata.json
local_revisions: /tmp/local.db
watch_interval: 5s
viewport:
  max_scale: 4
  fit_padding: 0
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/data/project", cfg.ImageDir())
	assert.Equal(t, "/tmp/local.db", cfg.LocalRevisions)
	assert.Equal(t, 5*time.Second, cfg.WatchInterval)
	assert.Equal(t, 4.0, cfg.Viewport.MaxScale)
	assert.Equal(t, 0.1, cfg.Viewport.MinScale)
	assert.Zero(t, cfg.Viewport.FitPadding)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvMetadata, "/srv/meta.json")
	t.Setenv(EnvDrawingsDir, "/srv/images")
	t.Setenv(EnvLogLevel, "warn")
	t.Setenv("DRAWINGS_IMAGE_CACHE", "4")

	path := writeFile(t, "metadata: ignored.json\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/meta.json", cfg.Metadata)
	assert.Equal(t, "/srv/images", cfg.ImageDir())
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 4, cfg.ImageCache)
}

func TestInvalid(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "viewport: [1, 2]\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "image_cache: 0\n"))
	assert.Error(t, err)

	t.Setenv("DRAWINGS_IMAGE_CACHE", "many")
	_, err = Load("")
	assert.Error(t, err)
}
