// Package batch renders many stroke scripts concurrently against one set of
// wall textures.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"

	"wallpaint/internal/engine"
	"wallpaint/internal/postprocess"
	"wallpaint/internal/script"
	"wallpaint/internal/texture"
)

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(slog.DiscardHandler))
}

// SetLogger configures the logger for batch runs. Pass nil to silence it.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	loggerPtr.Store(l)
}

// Config holds all shared resources for a batch run.
type Config struct {
	OutputDir string
	Format    engine.Format
	Thumbnail int // longest thumbnail edge, 0 disables thumbnails
	Workers   int // scripts rendered at once

	// Engine is the template for every render. Scripts may override the
	// canvas size.
	Engine engine.Options

	// Load fetches textures; share a texture.Cache so each file is decoded
	// once per run.
	Load    texture.LoadFunc
	Normal  string
	Diffuse string

	// Progress is how often a progress line is logged; 0 means every 2s.
	Progress time.Duration
}

// Result holds the outcome of rendering one script.
type Result struct {
	Name      string
	Image     string // relative to OutputDir
	Thumbnail string // relative to OutputDir, empty if disabled
	Width     int
	Height    int
	Segments  int
	Elapsed   time.Duration
	Success   bool
	Error     string
}

// Run renders all scripts using a worker pool. Results are in script order.
// Canceling ctx fails the scripts not yet rendered.
func Run(ctx context.Context, cfg Config, scripts []*script.Script) []Result {
	log := loggerPtr.Load()
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.Load == nil {
		cfg.Load = texture.LoadTexture
	}
	if cfg.Progress <= 0 {
		cfg.Progress = 2 * time.Second
	}
	names := uniqueNames(scripts)

	total := len(scripts)
	results := make([]Result, total)
	var processed atomic.Int64

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.Progress)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if p := processed.Load(); p > 0 {
					rate := float64(p) / time.Since(start).Seconds()
					log.Info("progress", "done", p, "total", total, "per_sec", rate)
				}
			}
		}
	}()

	// Worker pool
	jobs := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = render(ctx, cfg, names[idx], scripts[idx])
				processed.Add(1)
				if !results[idx].Success {
					log.Warn("render failed", "script", names[idx], "err", results[idx].Error)
				}
			}
		}()
	}

	for i := range scripts {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(done)

	log.Info("batch finished", "scripts", total, "elapsed", time.Since(start))
	return results
}

// uniqueNames gives every script a distinct output name.
func uniqueNames(scripts []*script.Script) []string {
	seen := make(map[string]int, len(scripts))
	names := make([]string, len(scripts))
	for i, s := range scripts {
		name := s.Name
		if name == "" {
			name = fmt.Sprintf("script-%03d", i)
		}
		if n := seen[name]; n > 0 {
			names[i] = fmt.Sprintf("%s-%d", name, n+1)
		} else {
			names[i] = name
		}
		seen[name]++
	}
	return names
}

func render(ctx context.Context, cfg Config, name string, s *script.Script) Result {
	start := time.Now()
	res := Result{Name: name}
	fail := func(err error) Result {
		res.Error = err.Error()
		res.Elapsed = time.Since(start)
		return res
	}

	opts := cfg.Engine
	if s.Canvas.Width > 0 {
		opts.Width = s.Canvas.Width
	}
	if s.Canvas.Height > 0 {
		opts.Height = s.Canvas.Height
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return fail(fmt.Errorf("batch: %s: canvas size %dx%d", name, opts.Width, opts.Height))
	}

	normal, diffuse := cfg.Normal, cfg.Diffuse
	if s.Textures.Normal != "" {
		normal = s.Textures.Normal
	}
	if s.Textures.Diffuse != "" {
		diffuse = s.Textures.Diffuse
	}

	e := engine.New(opts)
	e.LoadTextures(cfg.Load, normal, diffuse)
	if err := e.Wait(ctx); err != nil {
		return fail(fmt.Errorf("batch: %s: %w", name, err))
	}

	st, err := script.Replay(ctx, e, s)
	if err != nil {
		return fail(fmt.Errorf("batch: %s: %w", name, err))
	}
	res.Segments = st.Segments
	res.Width, res.Height = e.Size()

	format := cfg.Format
	if format == "" {
		format = engine.FormatPNG
	}
	res.Image = name + "." + string(format)
	if err := writeFile(filepath.Join(cfg.OutputDir, res.Image), func(f *os.File) error {
		return e.Export(f, format)
	}); err != nil {
		return fail(err)
	}

	if cfg.Thumbnail > 0 {
		thumb := postprocess.Thumbnail(e.Output(), cfg.Thumbnail)
		res.Thumbnail = filepath.ToSlash(filepath.Join("thumbs", name+".webp"))
		if err := writeFile(filepath.Join(cfg.OutputDir, res.Thumbnail), func(f *os.File) error {
			return nativewebp.Encode(f, thumb, nil)
		}); err != nil {
			return fail(err)
		}
	}

	res.Success = true
	res.Elapsed = time.Since(start)
	return res
}

func writeFile(path string, encode func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	if err := encode(f); err != nil {
		f.Close()
		return fmt.Errorf("batch: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("batch: %w", err)
	}
	return nil
}
