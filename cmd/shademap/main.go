package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"wallpaint/internal/config"
	"wallpaint/internal/raster"
	"wallpaint/internal/texture"
)

type output struct {
	name string
	img  image.Image
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

func main() {
	configFile := flag.String("config", "", "Path to config.yaml file")
	assetsDir := flag.String("assets", "", "Texture directory")
	normal := flag.String("normal", "", "Normal map")
	diffuse := flag.String("diffuse", "", "Diffuse texture; also writes the pre-lit base")
	width := flag.Int("width", 0, "Canvas width in pixels")
	height := flag.Int("height", 0, "Canvas height in pixels")
	outputDir := flag.String("output", ".", "Output directory")
	specScale := flag.Float64("specscale", 255, "Multiplier for the specular image")
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	err := cfg.Resolve(config.Flags{
		AssetsDir: *assetsDir,
		Normal:    *normal,
		Diffuse:   *diffuse,
		Width:     *width,
		Height:    *height,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Assets.Normal == "" {
		fmt.Fprintln(os.Stderr, "Error: no normal map. Use -normal or -assets.")
		os.Exit(1)
	}

	normalMap, err := texture.LoadTexture(cfg.Assets.Normal)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	w, h := cfg.Canvas.Width, cfg.Canvas.Height
	lc := cfg.Light().Normalized()
	start := time.Now()
	shading, specular, err := raster.PrecomputeLighting(normalMap, w, h, lc, cfg.Render.Workers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Lighting %dx%d from %s in %v\n", w, h, filepath.Base(cfg.Assets.Normal), time.Since(start).Round(time.Millisecond))

	minS, maxS, maxSpec := shading.Values[0], shading.Values[0], 0.0
	for i, v := range shading.Values {
		minS, maxS = min(minS, v), max(maxS, v)
		maxSpec = max(maxSpec, specular.Values[i])
	}
	fmt.Printf("  shading  [%.3f, %.3f]\n", minS, maxS)
	fmt.Printf("  specular [0, %.3f]\n", maxSpec)

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	outputs := []output{
		{"shading.png", shading.Gray(255)},
		{"specular.png", specular.Gray(*specScale)},
	}
	if cfg.Assets.Diffuse != "" {
		diffuseMap, err := texture.LoadTexture(cfg.Assets.Diffuse)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		} else if base, err := raster.PrelightTexture(diffuseMap, shading, cfg.Render.Workers); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		} else {
			outputs = append(outputs, output{"base.png", base.ToNRGBA()})
		}
	}

	errors := 0
	for _, o := range outputs {
		path := filepath.Join(*outputDir, o.name)
		if err := writePNG(path, o.img); err != nil {
			fmt.Fprintf(os.Stderr, "ERR %v\n", err)
			errors++
			continue
		}
		fmt.Printf("OK  %s\n", path)
	}
	if errors > 0 {
		os.Exit(1)
	}
}
