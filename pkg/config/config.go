// Package config loads the coauthors configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Dicklesworthstone/coauthor_viewer/pkg/layout"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/render"
	"github.com/Dicklesworthstone/coauthor_viewer/pkg/zoom"
)

const (
	// Dir is the directory name under XDG_CONFIG_HOME.
	Dir = "coauthors"
	// File is the config file name.
	File = "config.yml"
)

// Config is the on-disk configuration. Every field is optional.
type Config struct {
	Canvas  CanvasConfig  `yaml:"canvas"`
	Render  RenderConfig  `yaml:"render"`
	Layout  layout.Config `yaml:"layout"`
	Zoom    zoom.Options  `yaml:"zoom"`
	Log     LogConfig     `yaml:"log"`
	Recipes string        `yaml:"recipes,omitempty"` // directory of recipe files
}

// CanvasConfig is the drawing surface size in pixels.
type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// RenderConfig controls exported images.
type RenderConfig struct {
	Format        string  `yaml:"format"` // png or svg
	Background    string  `yaml:"background"`
	MinNodeRadius float64 `yaml:"min_node_radius"`
	MinLinkWidth  float64 `yaml:"min_link_width"`
	Shadows       *bool   `yaml:"shadows,omitempty"`
	Labels        *bool   `yaml:"labels,omitempty"`
	Legend        *bool   `yaml:"legend,omitempty"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Canvas: CanvasConfig{Width: 1200, Height: 900},
		Render: RenderConfig{
			Format:        "png",
			Background:    "#282a36",
			MinNodeRadius: render.DefaultOptions().MinNodeRadius,
			MinLinkWidth:  render.DefaultOptions().MinLinkWidth,
		},
		Layout: layout.DefaultConfig(),
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}

// Path returns the config file path, honoring XDG_CONFIG_HOME. It returns ""
// when no home directory can be found.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, Dir, File)
}

// RecipesDir returns the configured recipe directory, defaulting to
// "recipes" next to the config file.
func (c Config) RecipesDir() string {
	if c.Recipes != "" {
		return ExpandTilde(c.Recipes)
	}
	p := Path()
	if p == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(p), "recipes")
}

// Load reads path over Default. A missing file is not an error; an empty
// path means Path().
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = Path()
		if path == "" {
			return cfg, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("canvas size %dx%d must be positive", c.Canvas.Width, c.Canvas.Height)
	}
	switch strings.ToLower(c.Render.Format) {
	case "", "png", "svg":
	default:
		return fmt.Errorf("render format %q: %w", c.Render.Format, render.ErrUnsupportedFormat)
	}
	if c.Render.Background != "" {
		if _, err := render.ParseHexColor(c.Render.Background); err != nil {
			return fmt.Errorf("render background: %w", err)
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("log format %q must be text or json", c.Log.Format)
	}
	return nil
}

// Viewport returns the canvas size as a zoom viewport.
func (c Config) Viewport() zoom.Viewport {
	return zoom.Viewport{Width: float64(c.Canvas.Width), Height: float64(c.Canvas.Height)}
}

// RenderOptions returns render.DefaultOptions with the configured overrides.
func (c Config) RenderOptions() render.Options {
	o := render.DefaultOptions()
	if c.Render.MinNodeRadius > 0 {
		o.MinNodeRadius = c.Render.MinNodeRadius
	}
	if c.Render.MinLinkWidth > 0 {
		o.MinLinkWidth = c.Render.MinLinkWidth
	}
	if bg, err := render.ParseHexColor(c.Render.Background); err == nil {
		o.Background = bg
	}
	if c.Render.Shadows != nil {
		o.Shadows = *c.Render.Shadows
	}
	if c.Render.Labels != nil {
		o.Labels = *c.Render.Labels
	}
	if c.Render.Legend != nil {
		o.Legend = *c.Render.Legend
	}
	return o
}

// ExpandTilde replaces a leading ~ with the user's home directory.
func ExpandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
