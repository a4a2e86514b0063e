package raster

import (
	"image"
	"math"

	"seehuhn.de/go/geom/rect"
)

// Compositor turns the paint layer and a lit Surface into output pixels.
type Compositor struct {
	Light   LightConfig
	Workers int
}

// ClampBox converts a floating-point dirty box to the pixel rectangle it
// covers, intersected with [0,w)×[0,h). The result may be empty.
func ClampBox(box rect.Rect, w, h int) image.Rectangle {
	x0, x1 := math.Floor(box.LLx), math.Ceil(box.URx)
	y0, y1 := math.Floor(box.LLy), math.Ceil(box.URy)
	if !(x1 > 0 && y1 > 0 && x0 < float64(w) && y0 < float64(h)) {
		return image.Rectangle{}
	}
	r := image.Rect(
		int(math.Max(x0, 0)), int(math.Max(y0, 0)),
		int(math.Min(x1, float64(w))), int(math.Min(y1, float64(h))),
	)
	return r
}

// Composite recomputes out inside box. Each pixel is the relit paint
// color plus its specular highlight, alpha-over the pre-lit base:
//
//	a      = paint.A / 255
//	i_s    = a · specular · SpecularGain
//	i_d[c] = a · (Bias + paint.c) · shading
//	out[c] = i_d[c] + i_s + (1 − a) · base.c
//
// Output alpha is opaque. Pixels outside the clamped box are untouched.
// With no surface (textures not ready) nothing is written and ok is false.
func (c *Compositor) Composite(out, layer *PixelBuffer, s *Surface, box rect.Rect) (region image.Rectangle, ok bool) {
	if s == nil || s.Base == nil || s.Shading == nil || s.Specular == nil {
		return image.Rectangle{}, false
	}
	if checkSize("output", s.Width, s.Height, out) != nil ||
		checkSize("paint layer", s.Width, s.Height, layer) != nil {
		return image.Rectangle{}, false
	}

	region = ClampBox(box, s.Width, s.Height)
	if region.Empty() {
		return region, true
	}

	w := s.Width
	gain := c.Light.SpecularGain
	bias := c.Light.Bias
	shading := s.Shading.Values
	specular := s.Specular.Values
	base := s.Base.Pix
	paint := layer.Pix
	dst := out.Pix

	forRows(region.Min.Y, region.Max.Y, c.Workers, func(y int) {
		for x := region.Min.X; x < region.Max.X; x++ {
			i := x + y*w
			p := i * 4
			alpha := float64(paint[p+3]) / 255
			if alpha == 0 {
				dst[p] = base[p]
				dst[p+1] = base[p+1]
				dst[p+2] = base[p+2]
				dst[p+3] = 255
				continue
			}

			sh := shading[i]
			is := alpha * specular[i] * gain
			inv := 1 - alpha

			dst[p] = clamp255(alpha*(bias+float64(paint[p]))*sh + is + inv*float64(base[p]))
			dst[p+1] = clamp255(alpha*(bias+float64(paint[p+1]))*sh + is + inv*float64(base[p+1]))
			dst[p+2] = clamp255(alpha*(bias+float64(paint[p+2]))*sh + is + inv*float64(base[p+2]))
			dst[p+3] = 255
		}
	})
	return region, true
}

// CompositeAll recomputes every pixel of out.
func (c *Compositor) CompositeAll(out, layer *PixelBuffer, s *Surface) bool {
	if s == nil {
		return false
	}
	_, ok := c.Composite(out, layer, s, rect.Rect{URx: float64(s.Width), URy: float64(s.Height)})
	return ok
}

// Reset writes the pre-lit base image into out, as if no paint existed.
// Without a surface out is zeroed.
func (c *Compositor) Reset(out *PixelBuffer, s *Surface) {
	if s == nil || s.Base == nil || !out.SameSize(s.Base) {
		out.Clear()
		return
	}
	base := s.Base.Pix
	dst := out.Pix
	forRows(0, out.Height, c.Workers, func(y int) {
		row := y * out.Width * 4
		for p := row; p < row+out.Width*4; p += 4 {
			dst[p] = base[p]
			dst[p+1] = base[p+1]
			dst[p+2] = base[p+2]
			dst[p+3] = 255
		}
	})
}
