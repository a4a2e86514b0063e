package raster

import (
	"math"

	"github.com/gogpu/gg"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"wallpaint/internal/mathutil"
)

// Gradient stops of one stamp: full opacity at the center, 30% at half the
// stroke width, transparent at the full width.
const (
	stampMidOffset = 0.5
	stampMidAlpha  = 0.3
)

// StampStep returns the distance between stamp centers for a stroke
// width. Thicker strokes step proportionally further.
func StampStep(width float64) float64 {
	return width / 4
}

// StrokeSegment paints the segment from → to into the paint layer and
// returns the dirty box: the endpoints' bounding box grown by the stroke
// width on every side. Stamps are applied in path order; the layer is
// never cleared between them. Stamps whose blob cannot reach the layer are
// skipped without being generated, so stamps counts only those placed.
//
// The box may extend past the canvas. Callers clamp it.
func StrokeSegment(layer *PixelBuffer, from, to vec.Vec2, style StrokeStyle) (dirty rect.Rect, stamps int) {
	w := style.Width
	steps := mathutil.NewSteps(from, to, StampStep(w))
	lo, hi := steps.Within(rect.Rect{
		LLx: -w,
		LLy: -w,
		URx: float64(layer.Width) + w,
		URy: float64(layer.Height) + w,
	})
	for k := lo; k < hi; k++ {
		Stamp(layer, steps.At(k), style)
		stamps++
	}
	return SegmentBounds(from, to, w), stamps
}

// SegmentBounds returns the dirty box of a segment drawn with width w.
func SegmentBounds(from, to vec.Vec2, w float64) rect.Rect {
	return rect.Rect{
		LLx: math.Min(from.X, to.X) - w,
		LLy: math.Min(from.Y, to.Y) - w,
		URx: math.Max(from.X, to.X) + w,
		URy: math.Max(from.Y, to.Y) + w,
	}
}

// Stamp paints one soft round blob of the stroke color centered at c.
// Coverage is sampled at pixel centers inside the 2w×2w square around c,
// clipped to the layer.
func Stamp(layer *PixelBuffer, c vec.Vec2, style StrokeStyle) {
	w := style.Width
	if !(w > 0) {
		return
	}

	col := style.Color
	brush := gg.NewRadialGradientBrush(c.X, c.Y, 0, w).
		AddColorStop(0, gg.RGBA2(col.R, col.G, col.B, col.A)).
		AddColorStop(stampMidOffset, gg.RGBA2(col.R, col.G, col.B, col.A*stampMidAlpha)).
		AddColorStop(1, gg.RGBA2(col.R, col.G, col.B, 0))

	x0, x1 := pixelSpan(c.X-w, c.X+w, layer.Width)
	y0, y1 := pixelSpan(c.Y-w, c.Y+w, layer.Height)
	r2 := w * w

	for y := y0; y < y1; y++ {
		py := float64(y) + 0.5
		dy := py - c.Y
		for x := x0; x < x1; x++ {
			px := float64(x) + 0.5
			dx := px - c.X
			if dx*dx+dy*dy >= r2 {
				continue
			}
			off := layer.Offset(x, y)
			blendOver(layer.Pix[off:off+4], brush.ColorAt(px, py))
		}
	}
}

// pixelSpan returns the pixels [p0, p1) whose centers lie in [lo, hi),
// clipped to [0, limit).
func pixelSpan(lo, hi float64, limit int) (p0, p1 int) {
	p0 = int(math.Ceil(lo - 0.5))
	p1 = int(math.Ceil(hi - 0.5))
	if p0 < 0 {
		p0 = 0
	}
	if p1 > limit {
		p1 = limit
	}
	if p1 < p0 {
		p1 = p0
	}
	return p0, p1
}

// blendOver composites c over the non-premultiplied RGBA pixel dst.
func blendOver(dst []uint8, c gg.RGBA) {
	sa := c.A
	if !(sa > 0) {
		return
	}
	if sa > 1 {
		sa = 1
	}
	da := float64(dst[3]) / 255
	k := da * (1 - sa)
	oa := sa + k

	dst[0] = clamp255((c.R*255*sa + float64(dst[0])*k) / oa)
	dst[1] = clamp255((c.G*255*sa + float64(dst[1])*k) / oa)
	dst[2] = clamp255((c.B*255*sa + float64(dst[2])*k) / oa)
	dst[3] = clamp255(oa * 255)
}
