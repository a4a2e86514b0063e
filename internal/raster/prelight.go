package raster

import (
	"fmt"
	"image"
)

// Prelight multiplies the R, G and B channels of base by the shading field
// in place. Alpha is left untouched. Products are clamped to a byte only
// when written, so negative shading darkens to black.
func Prelight(base *PixelBuffer, shading *ScalarField, workers int) error {
	if shading == nil {
		return fmt.Errorf("raster: prelight: no shading field")
	}
	if err := checkSize("prelight base", shading.Width, shading.Height, base); err != nil {
		return err
	}

	w := base.Width
	forRows(0, base.Height, workers, func(y int) {
		for x := 0; x < w; x++ {
			i := x + y*w
			s := shading.Values[i]
			p := i * 4
			base.Pix[p] = clamp255(float64(base.Pix[p]) * s)
			base.Pix[p+1] = clamp255(float64(base.Pix[p+1]) * s)
			base.Pix[p+2] = clamp255(float64(base.Pix[p+2]) * s)
		}
	})
	return nil
}

// PrelightTexture tiles the diffuse texture to the shading field's size
// and pre-lights it, returning the base image.
func PrelightTexture(diffuse *image.NRGBA, shading *ScalarField, workers int) (*PixelBuffer, error) {
	if diffuse == nil {
		return nil, fmt.Errorf("raster: prelight: no diffuse texture")
	}
	if shading == nil {
		return nil, fmt.Errorf("raster: prelight: no shading field")
	}
	base := Tile(diffuse, shading.Width, shading.Height)
	if err := Prelight(base, shading, workers); err != nil {
		return nil, err
	}
	return base, nil
}
