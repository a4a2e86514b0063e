// Package config loads render settings from YAML files and merges CLI
// overrides into them.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"wallpaint/internal/engine"
	"wallpaint/internal/mathutil"
	"wallpaint/internal/raster"
	"wallpaint/internal/texture"
)

// Config holds all configurable paths and render settings.
type Config struct {
	Assets    AssetsConfig   `yaml:"assets"`
	Canvas    CanvasConfig   `yaml:"canvas"`
	Stroke    StrokeConfig   `yaml:"stroke"`
	Lighting  LightingConfig `yaml:"lighting"`
	Input     InputConfig    `yaml:"input"`
	Render    RenderConfig   `yaml:"render"`
	OutputDir string         `yaml:"output_dir"`
}

// AssetsConfig locates the wall textures. Normal and Diffuse may be left
// empty when Dir holds a "<name>_normal" / "<name>" pair.
type AssetsConfig struct {
	Dir     string `yaml:"dir"`
	Normal  string `yaml:"normal"`
	Diffuse string `yaml:"diffuse"`
}

// CanvasConfig is the canvas size in device pixels.
type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// StrokeConfig is the initial brush.
type StrokeConfig struct {
	Color string  `yaml:"color"`
	Width float64 `yaml:"width"`
}

// LightingConfig mirrors raster.LightConfig. Zero fields take the stock
// wall lighting.
type LightingConfig struct {
	LightDir     [3]float64 `yaml:"light_dir"`
	ViewDir      [3]float64 `yaml:"view_dir"`
	Shininess    int        `yaml:"shininess"`
	SpecularGain float64    `yaml:"specular_gain"`
	Bias         float64    `yaml:"bias"`
}

// InputConfig controls pointer sample throttling.
type InputConfig struct {
	ThrottleMS int `yaml:"throttle_ms"`
}

// RenderConfig controls workers and output encoding.
type RenderConfig struct {
	Workers   int    `yaml:"workers"`
	Format    string `yaml:"format"`
	Thumbnail int    `yaml:"thumbnail"` // longest thumbnail edge, 0 disables
}

// Default values for optional fields.
const (
	DefaultWidth     = 1280
	DefaultHeight    = 720
	DefaultFormat    = "png"
	DefaultThumbnail = 256
	DefaultOutputDir = "renders"
)

// Load reads a YAML config file. JSON is accepted too, being a subset.
// Defaults are applied; CLI overrides and validation happen in Resolve.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Default returns a config with every optional field at its default.
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	AssetsDir string
	Normal    string
	Diffuse   string
	OutputDir string
	Width     int
	Height    int
	Color     string
	Workers   int
	Format    string
}

// Resolve merges flags into c, fills defaults, locates the textures and
// validates the result. Flags take priority when non-zero.
func (c *Config) Resolve(flags Flags) error {
	if flags.AssetsDir != "" {
		c.Assets.Dir = flags.AssetsDir
	}
	if flags.Normal != "" {
		c.Assets.Normal = flags.Normal
	}
	if flags.Diffuse != "" {
		c.Assets.Diffuse = flags.Diffuse
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Width > 0 {
		c.Canvas.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Canvas.Height = flags.Height
	}
	if flags.Color != "" {
		c.Stroke.Color = flags.Color
	}
	if flags.Workers > 0 {
		c.Render.Workers = flags.Workers
	}
	if flags.Format != "" {
		c.Render.Format = flags.Format
	}

	c.applyDefaults()
	c.resolveAssets()
	return c.Validate()
}

// resolveAssets joins relative texture paths with the asset dir and falls
// back to the first "_normal" pair found there.
func (c *Config) resolveAssets() {
	dir := c.Assets.Dir
	if dir == "" {
		return
	}
	for _, p := range []*string{&c.Assets.Normal, &c.Assets.Diffuse} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	if c.Assets.Normal != "" && c.Assets.Diffuse != "" {
		return
	}
	if n, d, ok := texture.BuildIndex(dir).Pair(); ok {
		if c.Assets.Normal == "" {
			c.Assets.Normal = n
		}
		if c.Assets.Diffuse == "" {
			c.Assets.Diffuse = d
		}
	}
}

// applyDefaults sets default values for optional fields.
func (c *Config) applyDefaults() {
	if c.Canvas.Width == 0 {
		c.Canvas.Width = DefaultWidth
	}
	if c.Canvas.Height == 0 {
		c.Canvas.Height = DefaultHeight
	}
	if c.Stroke.Color == "" {
		c.Stroke.Color = raster.DefaultStrokeColor
	}
	if c.Stroke.Width == 0 {
		c.Stroke.Width = raster.DefaultStrokeWidth
	}

	def := raster.DefaultLightConfig()
	if c.Lighting.LightDir == ([3]float64{}) {
		c.Lighting.LightDir = [3]float64(def.LightDir)
	}
	if c.Lighting.ViewDir == ([3]float64{}) {
		c.Lighting.ViewDir = [3]float64(def.ViewDir)
	}
	if c.Lighting.Shininess == 0 {
		c.Lighting.Shininess = def.Shininess
	}
	if c.Lighting.SpecularGain == 0 {
		c.Lighting.SpecularGain = def.SpecularGain
	}
	if c.Lighting.Bias == 0 {
		c.Lighting.Bias = def.Bias
	}

	if c.Input.ThrottleMS == 0 {
		c.Input.ThrottleMS = int(engine.DefaultOptions(0, 0).Throttle / time.Millisecond)
	}
	if c.Render.Workers <= 0 {
		c.Render.Workers = runtime.NumCPU()
	}
	if c.Render.Format == "" {
		c.Render.Format = DefaultFormat
	}
	if c.Render.Thumbnail == 0 {
		c.Render.Thumbnail = DefaultThumbnail
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		errs = append(errs, fmt.Errorf("canvas size %dx%d must be positive", c.Canvas.Width, c.Canvas.Height))
	}
	if _, err := raster.ParseColor(c.Stroke.Color); err != nil {
		errs = append(errs, fmt.Errorf("stroke.color: %w", err))
	}
	if c.Stroke.Width < 0 {
		errs = append(errs, fmt.Errorf("stroke.width %v is negative", c.Stroke.Width))
	}
	if c.Lighting.Shininess < 0 {
		errs = append(errs, fmt.Errorf("lighting.shininess %d is negative", c.Lighting.Shininess))
	}
	if c.Input.ThrottleMS < 0 {
		errs = append(errs, fmt.Errorf("input.throttle_ms %d is negative", c.Input.ThrottleMS))
	}
	switch engine.Format(c.Render.Format) {
	case engine.FormatPNG, engine.FormatWebP:
	default:
		errs = append(errs, fmt.Errorf("render.format %q is not png or webp", c.Render.Format))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Light returns the lighting section as a raster configuration.
func (c *Config) Light() raster.LightConfig {
	return raster.LightConfig{
		LightDir:     mathutil.Vec3(c.Lighting.LightDir),
		ViewDir:      mathutil.Vec3(c.Lighting.ViewDir),
		Shininess:    c.Lighting.Shininess,
		SpecularGain: c.Lighting.SpecularGain,
		Bias:         c.Lighting.Bias,
	}
}

// EngineOptions returns options for an engine sized per the canvas
// section. Call after Resolve; the color is assumed valid.
func (c *Config) EngineOptions() engine.Options {
	opts := engine.DefaultOptions(c.Canvas.Width, c.Canvas.Height)
	opts.Light = c.Light()
	opts.Workers = c.Render.Workers
	opts.Throttle = time.Duration(c.Input.ThrottleMS) * time.Millisecond
	if s, err := raster.NewStrokeStyle(c.Stroke.Color, c.Stroke.Width); err == nil {
		opts.Style = s
	}
	return opts
}

