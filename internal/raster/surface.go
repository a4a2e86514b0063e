package raster

import (
	"fmt"
	"image"
)

// Surface is the lit wall for one canvas size: the shading and specular
// fields and the pre-lit base image. It is built once and never mutated,
// so it can be shared with any number of readers.
type Surface struct {
	Width    int
	Height   int
	Shading  *ScalarField
	Specular *ScalarField
	Base     *PixelBuffer
}

// BuildSurface runs the lighting precomputation and the diffuse pre-lighting
// for a w×h canvas. Nothing is returned until every field is complete.
func BuildSurface(normalMap, diffuse *image.NRGBA, w, h int, lc LightConfig, workers int) (*Surface, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("raster: build surface: invalid size %dx%d", w, h)
	}
	shading, specular, err := PrecomputeLighting(normalMap, w, h, lc, workers)
	if err != nil {
		return nil, fmt.Errorf("raster: build surface: %w", err)
	}
	base, err := PrelightTexture(diffuse, shading, workers)
	if err != nil {
		return nil, fmt.Errorf("raster: build surface: %w", err)
	}
	return &Surface{
		Width:    w,
		Height:   h,
		Shading:  shading,
		Specular: specular,
		Base:     base,
	}, nil
}
