package raster

import (
	"image"
	"image/color"
)

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// flatNormal is a normal map texel pointing straight at the viewer.
var flatNormal = color.NRGBA{R: 128, G: 128, B: 255, A: 255}

func graySurface(w, h int, gray uint8) *Surface {
	s, err := BuildSurface(
		solidImage(8, 8, flatNormal),
		solidImage(8, 8, color.NRGBA{R: gray, G: gray, B: gray, A: 255}),
		w, h, DefaultLightConfig(), 1)
	if err != nil {
		panic(err)
	}
	return s
}

func pixelAt(b *PixelBuffer, x, y int) [4]uint8 {
	o := b.Offset(x, y)
	return [4]uint8{b.Pix[o], b.Pix[o+1], b.Pix[o+2], b.Pix[o+3]}
}
