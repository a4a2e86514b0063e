package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"wallpaint/internal/batch"
	"wallpaint/internal/config"
	"wallpaint/internal/engine"
	"wallpaint/internal/script"
	"wallpaint/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.yaml file")
	scriptPath := flag.String("script", "", "Stroke script, or a directory of *.yaml scripts")
	testN := flag.Int("test", 0, "Render only the first N scripts")
	assetsDir := flag.String("assets", "", "Texture directory")
	normal := flag.String("normal", "", "Normal map (default: first *_normal texture in -assets)")
	diffuse := flag.String("diffuse", "", "Diffuse texture (default: the normal map's sibling)")
	outputDir := flag.String("output", "", "Output directory (default: renders)")
	width := flag.Int("width", 0, "Canvas width in pixels")
	height := flag.Int("height", 0, "Canvas height in pixels")
	color := flag.String("color", "", "Initial brush color, e.g. #9AFFE8")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	format := flag.String("format", "", "Output format: png or webp")
	verbose := flag.Bool("v", false, "Debug logging")

	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	engine.SetLogger(logger)
	batch.SetLogger(logger)

	// Load config
	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	err := cfg.Resolve(config.Flags{
		AssetsDir: *assetsDir,
		Normal:    *normal,
		Diffuse:   *diffuse,
		OutputDir: *outputDir,
		Width:     *width,
		Height:    *height,
		Color:     *color,
		Workers:   *workers,
		Format:    *format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.Assets.Normal == "" || cfg.Assets.Diffuse == "" {
		fmt.Fprintln(os.Stderr, "Error: no textures. Use -assets, -normal/-diffuse or config.yaml.")
		os.Exit(1)
	}
	if *scriptPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -script is required.")
		os.Exit(1)
	}

	scripts, parseFailed := loadScripts(*scriptPath)
	if *testN > 0 && *testN < len(scripts) {
		scripts = scripts[:*testN]
	}
	if len(scripts) == 0 {
		fmt.Println("No scripts to render.")
		os.Exit(boolExit(parseFailed > 0))
	}

	// Texture cache shared by all workers
	var texIndex *texture.Index
	if cfg.Assets.Dir != "" {
		texIndex = texture.BuildIndex(cfg.Assets.Dir)
		fmt.Printf("Textures: %d indexed\n", texIndex.Len())
	}
	texCache := texture.NewCache(texIndex)

	// Split workers between scripts and per-pixel loops
	scriptWorkers := min(cfg.Render.Workers, len(scripts))
	opts := cfg.EngineOptions()
	opts.Workers = max(1, cfg.Render.Workers/scriptWorkers)

	fmt.Printf("Wall paint renderer → %s\n", strings.ToUpper(cfg.Render.Format))
	fmt.Printf("Scripts: %d, Workers: %d×%d\n", len(scripts), scriptWorkers, opts.Workers)
	fmt.Printf("Textures: %s + %s\n", cfg.Assets.Normal, cfg.Assets.Diffuse)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()

	batchCfg := batch.Config{
		OutputDir: cfg.OutputDir,
		Format:    engine.Format(cfg.Render.Format),
		Thumbnail: cfg.Render.Thumbnail,
		Workers:   scriptWorkers,
		Engine:    opts,
		Load:      texCache.Load,
		Normal:    cfg.Assets.Normal,
		Diffuse:   cfg.Assets.Diffuse,
	}
	results := batch.Run(ctx, batchCfg, scripts)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	fmt.Printf("Rendered: %d/%d\n", success, len(scripts))

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := min(20, len(errors))
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %s\n", e.Name, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	os.MkdirAll(cfg.OutputDir, 0755)
	if err := batch.WriteManifest(manifestPath, batch.NewManifest(batchCfg, results)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	os.Exit(boolExit(failed > 0 || parseFailed > 0))
}

// loadScripts parses one script file or every *.yaml / *.yml file in a
// directory, in name order. Unparseable scripts are reported and skipped.
func loadScripts(path string) ([]*script.Script, int) {
	paths := []string{path}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		paths = nil
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			m, _ := filepath.Glob(filepath.Join(path, pattern))
			paths = append(paths, m...)
		}
		sort.Strings(paths)
	}

	var scripts []*script.Script
	failed := 0
	for _, p := range paths {
		s, err := script.ParseFile(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping script: %v\n", err)
			failed++
			continue
		}
		scripts = append(scripts, s)
	}
	return scripts, failed
}

func boolExit(failed bool) int {
	if failed {
		return 1
	}
	return 0
}
