// Package engine owns the canvas buffers and ties lighting, stroke
// rasterization and compositing together. An Engine stands in for the
// canvas element of a drawing UI: the host sizes it, forwards pointer
// samples in canvas pixels, and reads or exports the output buffer.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"seehuhn.de/go/geom/vec"

	"wallpaint/internal/input"
	"wallpaint/internal/raster"
	"wallpaint/internal/texture"
)

// Options configures a new Engine.
type Options struct {
	Width    int
	Height   int
	Light    raster.LightConfig
	Workers  int           // goroutines for per-pixel loops
	Throttle time.Duration // minimum spacing of applied pointer samples
	Style    raster.StrokeStyle
}

// DefaultOptions returns options for a w×h canvas with the stock wall
// lighting, brush and pointer throttle.
func DefaultOptions(w, h int) Options {
	return Options{
		Width:    w,
		Height:   h,
		Light:    raster.DefaultLightConfig(),
		Workers:  runtime.NumCPU(),
		Throttle: input.DefaultInterval,
		Style:    raster.DefaultStrokeStyle(),
	}
}

// Engine owns the paint layer, the output buffer and the lit surface for
// one canvas. All methods are safe to call from multiple goroutines; paint
// layer mutations are serialized.
type Engine struct {
	id  uuid.UUID
	log *slog.Logger

	mu      sync.Mutex
	width   int
	height  int
	gen     uint64 // bumped by every resize and texture change
	light   raster.LightConfig
	workers int
	comp    raster.Compositor
	tracker *input.Tracker
	style   raster.StrokeStyle

	normal  *image.NRGBA // source textures, kept for rebuilds on resize
	diffuse *image.NRGBA

	surface atomic.Pointer[raster.Surface]
	layer   *raster.PixelBuffer
	out     *raster.PixelBuffer

	ready   chan struct{} // closed once the current generation settled
	settled bool
	loadSeq uint64
	loadErr error
}

// New returns an engine with empty buffers of the configured size. It is
// not ready until textures are supplied.
func New(opts Options) *Engine {
	if opts.Light == (raster.LightConfig{}) {
		opts.Light = raster.DefaultLightConfig()
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Style.Width <= 0 {
		opts.Style = raster.DefaultStrokeStyle()
	}
	light := opts.Light.Normalized()

	id := uuid.New()
	e := &Engine{
		id:      id,
		log:     Logger().With("session", id.String()),
		light:   light,
		workers: opts.Workers,
		comp:    raster.Compositor{Light: light, Workers: opts.Workers},
		tracker: input.NewTracker(opts.Throttle),
		style:   opts.Style,
		ready:   make(chan struct{}),
	}
	e.allocate(max(opts.Width, 0), max(opts.Height, 0))
	return e
}

// ID identifies the engine in logs.
func (e *Engine) ID() uuid.UUID {
	return e.id
}

// Size returns the canvas size in device pixels.
func (e *Engine) Size() (w, h int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.width, e.height
}

// Resize reallocates every buffer for a w×h canvas. Paint is discarded and
// the lit surface is rebuilt from the current textures, if any. Resizing to
// the current size is a no-op.
func (e *Engine) Resize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("engine: resize: invalid size %dx%d", w, h)
	}
	e.mu.Lock()
	if w == e.width && h == e.height {
		e.mu.Unlock()
		return nil
	}
	e.allocate(w, h)
	e.mu.Unlock()

	e.log.Info("canvas resized", "width", w, "height", h)
	return e.rebuild()
}

// allocate must be called with mu held.
func (e *Engine) allocate(w, h int) {
	e.width, e.height = w, h
	e.gen++
	e.surface.Store(nil)
	e.layer = raster.NewPixelBuffer(w, h)
	e.out = raster.NewPixelBuffer(w, h)
	e.tracker.Reset()
	e.unsettle()
}

// SetTextures installs decoded textures and builds the lit surface for
// the current size. It returns once the surface is in place.
func (e *Engine) SetTextures(normal, diffuse *image.NRGBA) error {
	if normal == nil || diffuse == nil {
		return fmt.Errorf("engine: set textures: missing image: %w", ErrAssetLoad)
	}
	e.mu.Lock()
	e.normal, e.diffuse = normal, diffuse
	e.loadErr = nil
	e.gen++
	e.mu.Unlock()
	return e.rebuild()
}

// LoadTextures loads both textures in the background and installs them
// when done. Ready and Wait report completion. A later call supersedes an
// earlier one that has not finished.
func (e *Engine) LoadTextures(load texture.LoadFunc, normalName, diffuseName string) {
	e.mu.Lock()
	e.loadSeq++
	seq := e.loadSeq
	e.loadErr = nil
	if e.surface.Load() == nil {
		e.unsettle()
	}
	e.mu.Unlock()

	pn := texture.LoadAsync(load, normalName)
	pd := texture.LoadAsync(load, diffuseName)
	go func() {
		normal, nerr := pn.Wait(context.Background())
		diffuse, derr := pd.Wait(context.Background())
		if err := errors.Join(nerr, derr); err != nil {
			e.fail(seq, err)
			return
		}

		e.mu.Lock()
		stale := seq != e.loadSeq
		e.mu.Unlock()
		if stale {
			return
		}
		if err := e.SetTextures(normal, diffuse); err != nil {
			e.fail(seq, err)
		}
	}()
}

func (e *Engine) fail(seq uint64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if seq != e.loadSeq {
		return
	}
	if !errors.Is(err, ErrAssetLoad) {
		err = fmt.Errorf("%w: %w", ErrAssetLoad, err)
	}
	e.loadErr = err
	e.log.Warn("textures unavailable", "err", err)
	if e.surface.Load() == nil {
		e.settle()
	}
}

// rebuild computes the lit surface outside the lock and publishes it only
// if no resize or texture change happened meanwhile; a superseded build is
// dropped because the newer change runs its own rebuild.
func (e *Engine) rebuild() error {
	e.mu.Lock()
	gen, w, h := e.gen, e.width, e.height
	normal, diffuse := e.normal, e.diffuse
	light, workers := e.light, e.workers
	e.mu.Unlock()

	if normal == nil || diffuse == nil || w == 0 || h == 0 {
		return nil
	}

	start := time.Now()
	s, err := raster.BuildSurface(normal, diffuse, w, h, light, workers)
	if err != nil {
		return fmt.Errorf("engine: rebuild: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		e.log.Debug("discarding stale surface", "width", w, "height", h)
		return nil
	}
	e.surface.Store(s)
	e.comp.CompositeAll(e.out, e.layer, s)
	e.settle()
	e.log.Info("textures ready", "width", w, "height", h, "elapsed", time.Since(start))
	return nil
}

// unsettle and settle must be called with mu held.
func (e *Engine) unsettle() {
	if e.settled {
		e.ready = make(chan struct{})
		e.settled = false
	}
}

func (e *Engine) settle() {
	if !e.settled {
		close(e.ready)
		e.settled = true
	}
}

// Ready returns a channel that is closed once the lit surface for the
// current size is available, or texture loading has failed.
func (e *Engine) Ready() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

// IsReady reports whether strokes are currently drawn.
func (e *Engine) IsReady() bool {
	return e.surface.Load() != nil
}

// Wait blocks until the engine is ready. It returns an error wrapping
// ErrAssetLoad if texture loading failed, or the context's error.
// ErrNotReady is returned if a resize invalidated the surface just after
// it became ready.
func (e *Engine) Wait(ctx context.Context) error {
	ch := e.Ready()
	select {
	case <-ch:
	case <-ctx.Done():
		return ctx.Err()
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.surface.Load() != nil:
		return nil
	case e.loadErr != nil:
		return e.loadErr
	}
	return ErrNotReady
}

// Surface returns the current lit surface, or nil when not ready.
func (e *Engine) Surface() *raster.Surface {
	return e.surface.Load()
}

// Style returns the current brush.
func (e *Engine) Style() raster.StrokeStyle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.style
}

// SetStyle replaces the brush used for following segments. The width is
// clamped to the picker range.
func (e *Engine) SetStyle(s raster.StrokeStyle) {
	s.Width = raster.ClampWidth(s.Width)
	e.mu.Lock()
	e.style = s
	e.mu.Unlock()
}

// SetColor changes the brush color from a hex string.
func (e *Engine) SetColor(hex string) error {
	c, err := raster.ParseColor(hex)
	if err != nil {
		return fmt.Errorf("engine: set color: %w", err)
	}
	e.mu.Lock()
	e.style.Color = c
	e.mu.Unlock()
	return nil
}

// SetWidth changes the brush width, clamped to the picker range.
func (e *Engine) SetWidth(w float64) {
	e.mu.Lock()
	e.style.Width = raster.ClampWidth(w)
	e.mu.Unlock()
}

// PointerDown presses the pointer.
func (e *Engine) PointerDown() {
	e.mu.Lock()
	e.tracker.Down()
	e.mu.Unlock()
}

// PointerMove feeds a pointer sample in canvas pixels taken at now. It
// reports whether a segment was drawn.
func (e *Engine) PointerMove(p vec.Vec2, now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.tracker.Move(p, now) {
		return false
	}
	return e.strokePath(e.tracker.Path())
}

// Tick applies a throttled pointer sample once its interval elapsed. Hosts
// call it from their frame loop so a held sample is not lost when the
// pointer stops moving.
func (e *Engine) Tick(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.tracker.Tick(now) {
		return false
	}
	return e.strokePath(e.tracker.Path())
}

// PointerUp releases the pointer, drawing the last held sample first.
func (e *Engine) PointerUp(now time.Time) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	flushed, ok := e.tracker.Up(now)
	if !ok {
		return false
	}
	return e.strokePath(flushed)
}

func (e *Engine) strokePath(p input.Path) bool {
	from, to, ok := p.Segment()
	if !ok {
		return false
	}
	return e.drawSegment(from, to) == nil
}

// DrawSegment paints one segment with the current brush, bypassing the
// pointer tracker. It returns ErrNotReady, leaving the paint layer
// untouched, while the lit surface is missing.
func (e *Engine) DrawSegment(from, to vec.Vec2) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drawSegment(from, to)
}

// drawSegment must be called with mu held.
func (e *Engine) drawSegment(from, to vec.Vec2) error {
	s := e.surface.Load()
	if s == nil {
		e.log.Debug("stroke dropped", "reason", ErrNotReady)
		return ErrNotReady
	}
	box, stamps := raster.StrokeSegment(e.layer, from, to, e.style)
	region, _ := e.comp.Composite(e.out, e.layer, s, box)
	e.log.Debug("segment drawn", "stamps", stamps, "region", region.String())
	return nil
}

// Clear erases all paint. The output shows the bare pre-lit wall, or is
// zeroed when textures are not ready.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.layer.Clear()
	e.comp.Reset(e.out, e.surface.Load())
	e.log.Info("canvas cleared")
}

// Output returns a copy of the output buffer.
func (e *Engine) Output() *image.NRGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.out.ToNRGBA()
}

// PaintLayer returns a copy of the accumulated paint, unlit.
func (e *Engine) PaintLayer() *image.NRGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.layer.ToNRGBA()
}
