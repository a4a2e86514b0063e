package config

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/quick"
	"time"
)

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wall.yaml")
	writeFile(t, path, `
canvas:
  width: 320
  height: 200
stroke:
  color: "#d00000"
  width: 12
lighting:
  light_dir: [0, 0, 1]
  shininess: 5
input:
  throttle_ms: 40
render:
  format: webp
output_dir: out
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Canvas.Width != 320 || cfg.Canvas.Height != 200 {
		t.Errorf("canvas = %+v", cfg.Canvas)
	}
	if cfg.Stroke.Color != "#d00000" || cfg.Stroke.Width != 12 {
		t.Errorf("stroke = %+v", cfg.Stroke)
	}
	if cfg.Lighting.LightDir != [3]float64{0, 0, 1} || cfg.Lighting.Shininess != 5 {
		t.Errorf("lighting = %+v", cfg.Lighting)
	}
	if cfg.Lighting.SpecularGain != 2000 || cfg.Lighting.Bias != 8 {
		t.Errorf("lighting defaults not applied: %+v", cfg.Lighting)
	}
	if cfg.Render.Format != "webp" || cfg.OutputDir != "out" {
		t.Errorf("render = %+v, output_dir = %q", cfg.Render, cfg.OutputDir)
	}

	opts := cfg.EngineOptions()
	if opts.Throttle != 40*time.Millisecond {
		t.Errorf("throttle = %v", opts.Throttle)
	}
	if opts.Style.Width != 12 {
		t.Errorf("style width = %v", opts.Style.Width)
	}
	if opts.Width != 320 || opts.Height != 200 {
		t.Errorf("engine size = %dx%d", opts.Width, opts.Height)
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wall.json")
	writeFile(t, path, `{"canvas": {"width": 64, "height": 48}, "render": {"workers": 3}}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Canvas.Width != 64 || cfg.Render.Workers != 3 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected read error")
	}
	bad := filepath.Join(dir, "bad.yaml")
	writeFile(t, bad, "canvas: [1, 2")
	if _, err := Load(bad); err == nil || !strings.Contains(err.Error(), "config: parse") {
		t.Errorf("err = %v", err)
	}
}

func TestResolveFlagsOverride(t *testing.T) {
	cfg := Default()
	err := cfg.Resolve(Flags{Width: 50, Height: 40, Color: "#00a000", Workers: 2, Format: "webp", OutputDir: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Canvas.Width != 50 || cfg.Canvas.Height != 40 || cfg.Stroke.Color != "#00a000" ||
		cfg.Render.Workers != 2 || cfg.Render.Format != "webp" || cfg.OutputDir != "x" {
		t.Errorf("flags not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"negative width", func(c *Config) { c.Canvas.Width = -1 }, false},
		{"bad color", func(c *Config) { c.Stroke.Color = "teal" }, false},
		{"negative shininess", func(c *Config) { c.Lighting.Shininess = -2 }, false},
		{"negative throttle", func(c *Config) { c.Input.ThrottleMS = -5 }, false},
		{"unknown format", func(c *Config) { c.Render.Format = "gif" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func writeBlankPNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewNRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
}

func TestResolveDiscoversTexturePair(t *testing.T) {
	dir := t.TempDir()
	writeBlankPNG(t, filepath.Join(dir, "brick.png"))
	writeBlankPNG(t, filepath.Join(dir, "brick_normal.png"))

	cfg := Default()
	if err := cfg.Resolve(Flags{AssetsDir: dir}); err != nil {
		t.Fatal(err)
	}
	if cfg.Assets.Normal != filepath.Join(dir, "brick_normal.png") {
		t.Errorf("normal = %q", cfg.Assets.Normal)
	}
	if cfg.Assets.Diffuse != filepath.Join(dir, "brick.png") {
		t.Errorf("diffuse = %q", cfg.Assets.Diffuse)
	}
}

func TestResolveJoinsRelativeAssets(t *testing.T) {
	cfg := Default()
	cfg.Assets = AssetsConfig{Dir: "/srv/walls", Normal: "n.png", Diffuse: "/abs/d.png"}
	if err := cfg.Resolve(Flags{}); err != nil {
		t.Fatal(err)
	}
	if cfg.Assets.Normal != filepath.Join("/srv/walls", "n.png") {
		t.Errorf("normal = %q", cfg.Assets.Normal)
	}
	if cfg.Assets.Diffuse != "/abs/d.png" {
		t.Errorf("diffuse = %q", cfg.Assets.Diffuse)
	}
}

// TestApplyDefaultsIdempotence verifies that applying defaults twice
// produces the same result as applying once.
func TestApplyDefaultsIdempotence(t *testing.T) {
	property := func(w, h int16, color string, width float64, shininess int8, throttle uint8) bool {
		mk := func() *Config {
			return &Config{
				Canvas:   CanvasConfig{Width: int(w), Height: int(h)},
				Stroke:   StrokeConfig{Color: color, Width: width},
				Lighting: LightingConfig{Shininess: int(shininess)},
				Input:    InputConfig{ThrottleMS: int(throttle)},
			}
		}
		c1, c2 := mk(), mk()
		c1.applyDefaults()
		c2.applyDefaults()
		c2.applyDefaults()
		return *c1 == *c2
	}
	if err := quick.Check(property, nil); err != nil {
		t.Error(err)
	}
}

// TestApplyDefaultsPreservesExistingValues verifies that set fields
// survive applyDefaults.
func TestApplyDefaultsPreservesExistingValues(t *testing.T) {
	property := func(w, h uint16, color string, gain float64) bool {
		c := &Config{
			Canvas:   CanvasConfig{Width: int(w), Height: int(h)},
			Stroke:   StrokeConfig{Color: color},
			Lighting: LightingConfig{SpecularGain: gain},
		}
		c.applyDefaults()
		if w != 0 && c.Canvas.Width != int(w) {
			return false
		}
		if h != 0 && c.Canvas.Height != int(h) {
			return false
		}
		if color != "" && c.Stroke.Color != color {
			return false
		}
		if gain != 0 && c.Lighting.SpecularGain != gain {
			return false
		}
		return true
	}
	if err := quick.Check(property, nil); err != nil {
		t.Error(err)
	}
}
