package raster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gg"
)

// ErrInvalidColor is returned for stroke colors that are not hex strings.
var ErrInvalidColor = errors.New("raster: invalid color")

// Stroke width range offered by the width picker.
const (
	MinStrokeWidth     = 5
	MaxStrokeWidth     = 60
	DefaultStrokeWidth = 40
	DefaultStrokeColor = "#9AFFE8"
)

// Palette lists the preset brush colors.
var Palette = []string{
	"#000000", "#ffffff", "#d00000", "#ea8c00", "#eac300", "#00a000",
	"#b7ea00", "#0000c0", "#00c7ea", "#7500ea", "#bf00ea", "#ea00b0",
	"#555555", "#d2d2d2", "#ffc6c6", "#ffd999", "#fff0ab", "#adffad",
	"#ecffb2", "#9ad7ff", "#9affe8", "#9d9aff", "#e4a8f3", "#ff9ae6",
}

// StrokeStyle is the brush used for one segment.
type StrokeStyle struct {
	Color gg.RGBA
	Width float64
}

// DefaultStrokeStyle returns the initial brush.
func DefaultStrokeStyle() StrokeStyle {
	return StrokeStyle{Color: gg.Hex(DefaultStrokeColor), Width: DefaultStrokeWidth}
}

// ParseColor parses "#RGB", "#RGBA", "#RRGGBB" or "#RRGGBBAA"; the leading
// '#' is optional.
func ParseColor(s string) (gg.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(hex) {
	case 3, 4, 6, 8:
	default:
		return gg.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	for i := 0; i < len(hex); i++ {
		c := hex[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return gg.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
	}
	return gg.Hex(hex), nil
}

// NewStrokeStyle builds a style from a hex color and a width. The width is
// clamped to [MinStrokeWidth, MaxStrokeWidth].
func NewStrokeStyle(color string, width float64) (StrokeStyle, error) {
	c, err := ParseColor(color)
	if err != nil {
		return StrokeStyle{}, err
	}
	return StrokeStyle{Color: c, Width: ClampWidth(width)}, nil
}

// ClampWidth limits w to the picker range.
func ClampWidth(w float64) float64 {
	switch {
	case !(w >= MinStrokeWidth):
		return MinStrokeWidth
	case w > MaxStrokeWidth:
		return MaxStrokeWidth
	}
	return w
}
