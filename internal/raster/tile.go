package raster

import "image"

// Tile repeats src to fill a w×h buffer without scaling, anchored at the
// top-left corner: dst(x,y) = src(x mod sw, y mod sh). An empty source
// yields an all-zero buffer.
func Tile(src *image.NRGBA, w, h int) *PixelBuffer {
	dst := NewPixelBuffer(w, h)
	sb := src.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	if sw == 0 || sh == 0 || w == 0 || h == 0 {
		return dst
	}

	rowLen := w * 4
	srcRowLen := sw * 4
	for y := 0; y < h; y++ {
		srcOff := src.PixOffset(sb.Min.X, sb.Min.Y+y%sh)
		srcRow := src.Pix[srcOff : srcOff+srcRowLen]
		dstRow := dst.Pix[y*rowLen : (y+1)*rowLen]
		for x := 0; x < rowLen; x += srcRowLen {
			copy(dstRow[x:], srcRow)
		}
	}
	return dst
}
