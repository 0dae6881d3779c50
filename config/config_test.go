package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "tabkit window", cfg.Window.Title)
	assert.Equal(t, uint32(480), cfg.Window.Width)
	assert.Equal(t, uint32(320), cfg.Window.Height)
	assert.True(t, cfg.Window.VSync)
	assert.Equal(t, "/usr/share/fonts/liberation/LiberationSans.ttf", cfg.Font.Path)
	assert.Equal(t, 28, cfg.Font.Size)
	assert.Equal(t, uint8(100), cfg.Theme.BackgroundAlpha)
	assert.Equal(t, "devdraw", cfg.Backend.Driver)
	assert.Empty(t, cfg.Validate())
}

func TestLoadFromPathMissing(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromPathOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[window]
title = "demo"
vsync = false

[theme]
background_alpha = 255
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", cfg.Window.Title)
	assert.False(t, cfg.Window.VSync)
	assert.Equal(t, uint8(255), cfg.Theme.BackgroundAlpha)
	// untouched sections keep their defaults
	assert.Equal(t, uint32(480), cfg.Window.Width)
	assert.Equal(t, 28, cfg.Font.Size)
}

func TestLoadFromPathInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[window\n"), 0644))
	_, err := LoadFromPath(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := Default()
	cfg.Backend.Driver = "headless"
	require.NoError(t, Save(cfg, path))

	got, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Window.Width = 0 }},
		{"nul title", func(c *Config) { c.Window.Title = "a\x00" }},
		{"negative frame rate", func(c *Config) { c.Window.FrameRate = -1 }},
		{"no font", func(c *Config) { c.Font.Path = "" }},
		{"zero font size", func(c *Config) { c.Font.Size = 0 }},
		{"no driver", func(c *Config) { c.Backend.Driver = "" }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Len(t, cfg.Validate(), 1)
		})
	}
}

func TestPathXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/tabkit/config.toml", Path())
}
