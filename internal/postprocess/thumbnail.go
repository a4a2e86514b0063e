// Package postprocess derives secondary images from finished renders.
package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// FitSize scales w×h down so the longer edge is at most maxEdge, keeping the
// aspect ratio. Neither edge drops below 1. Images that already fit are
// returned unchanged.
func FitSize(w, h, maxEdge int) (int, int) {
	if maxEdge <= 0 || (w <= maxEdge && h <= maxEdge) {
		return w, h
	}
	if w >= h {
		return maxEdge, max(1, (h*maxEdge+w/2)/w)
	}
	return max(1, (w*maxEdge+h/2)/h), maxEdge
}

// Thumbnail reduces img so its longer edge is maxEdge. Filtering runs on
// premultiplied pixels so transparent paint does not leave dark fringes:
// the scaler premultiplies NRGBA input into an RGBA image and the final
// draw converts back. The input is returned as is when it already fits.
func Thumbnail(img *image.NRGBA, maxEdge int) *image.NRGBA {
	b := img.Bounds()
	tw, th := FitSize(b.Dx(), b.Dy(), maxEdge)
	if tw == b.Dx() && th == b.Dy() {
		return img
	}

	premul := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(premul, premul.Bounds(), img, b, draw.Src, nil)

	result := image.NewNRGBA(premul.Bounds())
	draw.Draw(result, result.Bounds(), premul, image.Point{}, draw.Src)
	return result
}
