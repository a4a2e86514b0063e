package engine

import (
	"fmt"
	"image/png"
	"io"

	"github.com/HugoSmits86/nativewebp"
)

// ExportPNG encodes the current output buffer as PNG. Export works whether
// or not textures are ready.
func (e *Engine) ExportPNG(w io.Writer) error {
	if err := png.Encode(w, e.Output()); err != nil {
		return fmt.Errorf("engine: export png: %w", err)
	}
	return nil
}

// ExportWebP encodes the current output buffer as lossless WebP.
func (e *Engine) ExportWebP(w io.Writer) error {
	if err := nativewebp.Encode(w, e.Output(), nil); err != nil {
		return fmt.Errorf("engine: export webp: %w", err)
	}
	return nil
}

// Format names an export encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// Export encodes the output buffer in the given format.
func (e *Engine) Export(w io.Writer, f Format) error {
	switch f {
	case FormatPNG, "":
		return e.ExportPNG(w)
	case FormatWebP:
		return e.ExportWebP(w)
	}
	return fmt.Errorf("engine: export: unknown format %q", f)
}
