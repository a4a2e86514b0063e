package raster

import (
	"errors"
	"fmt"
	"image"
)

// ErrSizeMismatch is returned when two buffers that must describe the same
// canvas have different dimensions.
var ErrSizeMismatch = errors.New("raster: buffer size mismatch")

// PixelBuffer holds 8-bit RGBA pixels as one flat slice for cache locality.
// Pixels are stored row-major without padding: index(x,y) = (x + y*Width)*4.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []uint8 // RGBA interleaved, len = W*H*4
}

// NewPixelBuffer allocates a zeroed (fully transparent) buffer.
func NewPixelBuffer(w, h int) *PixelBuffer {
	if w < 0 || h < 0 {
		w, h = 0, 0
	}
	return &PixelBuffer{
		Width:  w,
		Height: h,
		Pix:    make([]uint8, w*h*4),
	}
}

// Offset returns the index of the red byte of pixel (x, y).
func (b *PixelBuffer) Offset(x, y int) int {
	return (x + y*b.Width) * 4
}

// In reports whether (x, y) lies inside the buffer.
func (b *PixelBuffer) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

// Clear zeroes every channel of every pixel.
func (b *PixelBuffer) Clear() {
	clear(b.Pix)
}

// Clone returns a deep copy.
func (b *PixelBuffer) Clone() *PixelBuffer {
	c := &PixelBuffer{Width: b.Width, Height: b.Height, Pix: make([]uint8, len(b.Pix))}
	copy(c.Pix, b.Pix)
	return c
}

// SameSize reports whether b and o have identical dimensions.
func (b *PixelBuffer) SameSize(o *PixelBuffer) bool {
	return b.Width == o.Width && b.Height == o.Height
}

// ToNRGBA copies the buffer into a new image.NRGBA.
func (b *PixelBuffer) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	copy(img.Pix, b.Pix)
	return img
}

// FromNRGBA copies img into a new PixelBuffer, dropping any stride padding
// and sub-image offset.
func FromNRGBA(img *image.NRGBA) *PixelBuffer {
	r := img.Bounds()
	b := NewPixelBuffer(r.Dx(), r.Dy())
	rowLen := r.Dx() * 4
	for y := 0; y < r.Dy(); y++ {
		src := img.PixOffset(r.Min.X, r.Min.Y+y)
		copy(b.Pix[y*rowLen:(y+1)*rowLen], img.Pix[src:src+rowLen])
	}
	return b
}

// ScalarField holds one float64 per pixel, index(x,y) = x + y*Width.
type ScalarField struct {
	Width  int
	Height int
	Values []float64
}

// NewScalarField allocates a zeroed field.
func NewScalarField(w, h int) *ScalarField {
	if w < 0 || h < 0 {
		w, h = 0, 0
	}
	return &ScalarField{Width: w, Height: h, Values: make([]float64, w*h)}
}

// At returns the value at (x, y).
func (f *ScalarField) At(x, y int) float64 {
	return f.Values[x+y*f.Width]
}

// Gray renders the field as a grayscale image, each value multiplied by
// scale and clamped to a byte. Negative shading shows as black.
func (f *ScalarField) Gray(scale float64) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, f.Width, f.Height))
	for i, v := range f.Values {
		img.Pix[i] = clamp255(v * scale)
	}
	return img
}

func checkSize(what string, w, h int, b *PixelBuffer) error {
	if b == nil {
		return fmt.Errorf("raster: %s is nil", what)
	}
	if b.Width != w || b.Height != h {
		return fmt.Errorf("raster: %s is %dx%d, want %dx%d: %w", what, b.Width, b.Height, w, h, ErrSizeMismatch)
	}
	return nil
}

// clamp255 converts a channel value to a byte, rounding half up.
// NaN maps to 0.
func clamp255(v float64) uint8 {
	if !(v >= 0) {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
