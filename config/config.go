// Package config handles tabkit configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config represents tabkit configuration.
type Config struct {
	Window  WindowConfig  `toml:"window"`
	Font    FontConfig    `toml:"font"`
	Theme   ThemeConfig   `toml:"theme"`
	Backend BackendConfig `toml:"backend"`
	Log     LogConfig     `toml:"log"`
}

// WindowConfig contains window settings.
type WindowConfig struct {
	// Window title
	Title string `toml:"title"`

	// Initial size in pixels
	Width  uint32 `toml:"width"`
	Height uint32 `toml:"height"`

	// Wait for the display refresh on present
	VSync bool `toml:"vsync"`

	// Frames per second for Run when the driver has no vsync
	FrameRate int `toml:"frame_rate"`
}

// FontConfig contains the label font.
type FontConfig struct {
	// Path to a TrueType/OpenType file, or "builtin:goregular"
	Path string `toml:"path"`

	// Size in points
	Size int `toml:"size"`
}

// ThemeConfig contains the background.
type ThemeConfig struct {
	// Alpha of the black background, 0-255
	BackgroundAlpha uint8 `toml:"background_alpha"`
}

// BackendConfig selects the graphics driver.
type BackendConfig struct {
	// Driver name: "devdraw" or "headless"
	Driver string `toml:"driver"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level: "debug", "info", "warn" or "error"
	Level string `toml:"level"`
}

// Defaults.
const (
	DefaultTitle    = "tabkit window"
	DefaultWidth    = 480
	DefaultHeight   = 320
	DefaultFontPath = "/usr/share/fonts/liberation/LiberationSans.ttf"
	DefaultFontSize = 28
	DefaultAlpha    = 100
	DefaultDriver   = "devdraw"
)

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:     DefaultTitle,
			Width:     DefaultWidth,
			Height:    DefaultHeight,
			VSync:     true,
			FrameRate: 60,
		},
		Font: FontConfig{
			Path: DefaultFontPath,
			Size: DefaultFontSize,
		},
		Theme: ThemeConfig{
			BackgroundAlpha: DefaultAlpha,
		},
		Backend: BackendConfig{
			Driver: DefaultDriver,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Path returns the path to the config file.
// Uses $XDG_CONFIG_HOME/tabkit/config.toml, falling back to ~/.config.
func Path() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "tabkit", "config.toml")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", "tabkit", "config.toml")
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "tabkit", "config.toml")
	}
	return filepath.Join(configDir, "tabkit", "config.toml")
}

// Load loads configuration from the config file.
func Load() (*Config, error) {
	return LoadFromPath(Path())
}

// LoadFromPath loads configuration from a specific path. A missing
// file yields the defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}

	// go-toml/v2 only overwrites fields present in the file.
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating its directory.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate validates the configuration and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if c.Window.Width == 0 || c.Window.Height == 0 {
		warnings = append(warnings, fmt.Sprintf("window size %dx%d has no area", c.Window.Width, c.Window.Height))
	}
	if strings.IndexByte(c.Window.Title, 0) >= 0 {
		warnings = append(warnings, "window.title contains a NUL byte")
	}
	if c.Window.FrameRate < 0 {
		warnings = append(warnings, fmt.Sprintf("window.frame_rate must not be negative, got %d", c.Window.FrameRate))
	}
	if c.Font.Path == "" {
		warnings = append(warnings, "font.path is empty")
	}
	if c.Font.Size <= 0 {
		warnings = append(warnings, fmt.Sprintf("font.size must be positive, got %d", c.Font.Size))
	}
	if c.Backend.Driver == "" {
		warnings = append(warnings, "backend.driver is empty")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		warnings = append(warnings, fmt.Sprintf("Invalid value for log.level: %s (expected debug, info, warn, or error)", c.Log.Level))
	}

	return warnings
}
