package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	doc := `
window:
  width: 640
  height: 360
engine:
  debug: true
  start_level: arena.json
allocator:
  objects_per_page: 32
  pad_bytes: 4
  debug: true
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 640, cfg.Window.Width)
	require.Equal(t, 360, cfg.Window.Height)
	require.True(t, cfg.Engine.Debug)
	require.Equal(t, "arena.json", cfg.Engine.StartLevel)
	require.Equal(t, 32, cfg.Allocator.ObjectsPerPage)
	require.True(t, cfg.Allocator.Debug)
	// Untouched sections keep their defaults.
	require.Equal(t, 1.0/60.0, cfg.Engine.FixedDT)
	require.Equal(t, "prefabs", cfg.Dirs.Prefabs)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window: ["), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}
